package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/twin_talk/internal/audit"
	"github.com/Vovarama1992/twin_talk/internal/exchange"
	"github.com/Vovarama1992/twin_talk/internal/speech"
	"github.com/goccy/go-json"
)

const (
	maxUploadBytes = 25 << 20
	maxFormMemory  = 32 << 20
	inputLogRunes  = 60
)

type Translator interface {
	Translate(ctx context.Context, text, targetLang string, mode exchange.Mode) (exchange.Reply, error)
}

type Speech interface {
	Transcribe(ctx context.Context, name string, audio io.Reader) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Auditor interface {
	Record(ctx context.Context, ip string, action audit.Action, info string)
}

type Archiver interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type Handler struct {
	translator Translator
	speech     Speech
	audit      Auditor
	archive    Archiver
	log        *logger.ZapLogger
}

// NewHandler builds the HTTP handlers. archive may be nil.
func NewHandler(translator Translator, speech Speech, audit Auditor, archive Archiver, log *logger.ZapLogger) *Handler {
	return &Handler{
		translator: translator,
		speech:     speech,
		audit:      audit,
		archive:    archive,
		log:        log,
	}
}

func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (h *Handler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	h.audit.Record(r.Context(), ip, audit.ActionView, r.URL.Path)
	writeJSON(w, http.StatusOK, map[string]string{"ip": ip})
}

func (h *Handler) TranscribeAndSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ip := clientIP(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err, Service: "delivery"})
			writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
			return
		}
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
			return
		}
	}

	mode := exchange.Mode(r.FormValue("mode"))
	if mode == "" {
		mode = exchange.ModeSummary
	}
	targetLang := strings.TrimSpace(r.FormValue("target_lang"))
	userText := strings.TrimSpace(r.FormValue("text_input"))

	if file, header, err := r.FormFile("audio_file"); err == nil && header.Filename != "" {
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "read audio: "+err.Error())
			return
		}

		h.archiveAudio(ctx, header.Filename, data, header.Header.Get("Content-Type"))

		text, err := h.speech.Transcribe(ctx, header.Filename, bytes.NewReader(data))
		if err != nil {
			h.audit.Record(ctx, ip, audit.ActionWhisperErr, err.Error())
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Whisper error: %v", err))
			return
		}
		userText = strings.TrimSpace(text)
	}

	if userText == "" {
		writeError(w, http.StatusBadRequest, "No input")
		return
	}

	h.audit.Record(ctx, ip, audit.ActionInput, firstRunes(userText, inputLogRunes))

	reply, err := h.translator.Translate(ctx, userText, targetLang, mode)
	if err != nil {
		h.audit.Record(ctx, ip, audit.ActionGPTErr, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) archiveAudio(ctx context.Context, name string, data []byte, contentType string) {
	if h.archive == nil {
		return
	}
	url, err := h.archive.Save(ctx, name, data, contentType)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "archive upload failed", Error: err, Service: "delivery"})
		return
	}
	h.log.Log(logger.LogEntry{Level: "info", Message: "archived " + url, Service: "delivery"})
}

func (h *Handler) TTS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	audio, err := h.speech.Synthesize(r.Context(), req.Text)
	switch {
	case errors.Is(err, speech.ErrEmptyText), errors.Is(err, speech.ErrTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.audit.Record(r.Context(), clientIP(r), audit.ActionTTSErr, err.Error())
		writeError(w, http.StatusInternalServerError, "tts error: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
