package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterConfig struct {
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
	// Token, when set, is required as a bearer token on every route but /ping.
	Token string
}

func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	RegisterRoutes(r, h, cfg)
	return r
}

func RegisterRoutes(r chi.Router, h *Handler, cfg RouterConfig) {
	r.With(httputil.RecoverMiddleware).Get("/ping", h.Ping)

	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)
		if cfg.RateLimit > 0 {
			pr.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}
		pr.Use(AuthMiddleware(cfg.Token))

		pr.Get("/whoami", h.WhoAmI)
		pr.Post("/transcribe_and_summarize", h.TranscribeAndSummarize)
		pr.Post("/tts", h.TTS)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}
