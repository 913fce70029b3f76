package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/twin_talk/internal/capture"
	"github.com/Vovarama1992/twin_talk/internal/config"
	"github.com/Vovarama1992/twin_talk/internal/exchange"
	"github.com/Vovarama1992/twin_talk/internal/history"
	"github.com/Vovarama1992/twin_talk/internal/identity"
	"github.com/Vovarama1992/twin_talk/internal/playback"
	"github.com/Vovarama1992/twin_talk/internal/session"
	"github.com/Vovarama1992/twin_talk/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// tokenTransport adds the service bearer token to every request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "twin_talk:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadClient()

	// the terminal belongs to the TUI, so logs go to a file
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{cfg.LogPath}
	zcfg.ErrorOutputPaths = []string{cfg.LogPath}
	log, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = history.DefaultDBPath()
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Token != "" {
		transport = tokenTransport{token: cfg.Token, base: transport}
	}
	httpClient := &http.Client{Transport: transport, Timeout: 90 * time.Second}

	platform := capture.SystemPlatform{
		RecognizerSocket: cfg.RecognizerSocket,
		Locale:           cfg.Locale,
		RecordCommand:    cfg.RecordCommand,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridge := tui.NewBridge()
	ctrl := session.New(session.NewState(cfg.TargetLanguage), bridge, session.Deps{
		Identity:    identity.NewHTTPResolver(cfg.ServiceURL, httpClient),
		Store:       store,
		Exchange:    exchange.NewHTTPClient(cfg.ServiceURL, httpClient),
		Synthesizer: playback.NewHTTPSynthesizer(cfg.ServiceURL, httpClient),
		Player:      playback.NewExecPlayer(cfg.PlayerCommand, nil),
		Platform:    platform,
		Log:         log,
	})

	log.Info("starting",
		zap.String("service", cfg.ServiceURL),
		zap.String("db", dbPath),
		zap.Stringer("capture", ctrl.CaptureStrategy()),
	)

	program := tea.NewProgram(tui.New(ctx, ctrl, ctrl.CaptureStrategy()), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(program)

	_, err = program.Run()
	interrupted := ctx.Err() != nil

	// tea.Quit does not cancel ctx; recorder and player processes are bound to it.
	cancel()
	ctrl.WaitCapture()

	if err != nil && !interrupted {
		return err
	}
	return nil
}
