package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/status", statusHandler(cfg))
	r.Post("/pause", pauseHandler(cfg))
	r.Post("/resume", resumeHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := snapshotToResponse(cfg.Controller.Snapshot())
		resp.Paused = cfg.Controller.IsPaused()

		if cfg.Layout != nil {
			counts, err := cfg.Layout.Counts()
			if err != nil {
				cfg.Logger.Warn("cannot count workspace files", "error", err)
			} else {
				resp.Workspace = counts
			}
		}

		resp.Engine = EngineStatus{Ready: true}
		if cfg.Preflight != nil {
			if err := cfg.Preflight(); err != nil {
				resp.Engine = EngineStatus{Ready: false, Error: err.Error()}
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Controller.Pause()
		WriteJSON(w, http.StatusOK, PauseResponse{Paused: true})
	}
}

func resumeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Controller.Resume()
		WriteJSON(w, http.StatusOK, PauseResponse{Paused: false})
	}
}
