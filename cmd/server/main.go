package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/twin_talk/internal/ai"
	"github.com/Vovarama1992/twin_talk/internal/archive"
	"github.com/Vovarama1992/twin_talk/internal/audit"
	"github.com/Vovarama1992/twin_talk/internal/config"
	"github.com/Vovarama1992/twin_talk/internal/delivery"
	"github.com/Vovarama1992/twin_talk/internal/speech"

	_ "github.com/lib/pq"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// =========================================================================
	// AUDIT (optional postgres)
	// =========================================================================

	var auditRepo audit.Repo
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping failed: %v", err)
		}
		if err := audit.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("audit schema: %v", err)
		}
		auditRepo = audit.NewRepo(db)
	}
	auditService := audit.NewService(auditRepo, zl)

	// =========================================================================
	// ARCHIVE (optional s3)
	// =========================================================================

	var archiver delivery.Archiver
	if cfg.S3.Enabled() {
		s3Client, err := archive.NewS3Client(ctx, archive.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		archiver = archive.NewService(s3Client)
	}

	// =========================================================================
	// CLIENTS (GPT / WHISPER / TTS)
	// =========================================================================

	oa := openai.NewClient(cfg.OpenAIKey)
	openAIClient := ai.NewOpenAIClient(oa, openai.GPT4o)
	speechClient := speech.NewOpenAIClient(oa)

	var stt speech.STTClient = speechClient
	if cfg.STTProvider == "deepgram" {
		stt = speech.NewDeepgramClient(cfg.DeepgramKey, &http.Client{Timeout: 60 * time.Second})
	}

	var tts speech.TTSClient = speechClient
	if cfg.TTSProvider == "elevenlabs" {
		tts = speech.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID, &http.Client{Timeout: 60 * time.Second})
	}

	// =========================================================================
	// SERVICES
	// =========================================================================

	translator := ai.NewTranslatorService(openAIClient, baseLogger)
	speechService := speech.NewService(stt, tts)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	handler := delivery.NewHandler(translator, speechService, auditService, archiver, zl)
	r := delivery.NewRouter(handler, delivery.RouterConfig{
		RateLimit: cfg.RateLimit,
		Token:     cfg.APIToken,
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "twin_talk",
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
