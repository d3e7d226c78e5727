package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check on /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.withRequestID, s.withAccessLog, s.withRecovery, s.withCORS, s.withBodyLimit)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Post("/connect", s.handleConnect)
				r.Get("/firmware", s.handleFirmwareStatus)
				r.Post("/firmware", s.handleStartFirmware)
				r.Delete("/firmware", s.handleCancelFirmware)
			})
		})

		r.Route("/scan", func(r chi.Router) {
			r.Get("/", s.handleScanStatus)
			r.Post("/", s.handleStartScan)
			r.Delete("/", s.handleCancelScan)
		})

		r.Route("/equalizer", func(r chi.Router) {
			r.Get("/", s.handleGetEqualizer)
			r.Get("/presets", s.handleListPresets)
			r.Put("/preset", s.handleSetPreset)
			r.Put("/bands/{index}", s.handleSetBand)
			r.Post("/reset", s.handleResetEqualizer)
		})

		r.Route("/control", func(r chi.Router) {
			r.Get("/", s.handleGetControls)
			r.Put("/noise", s.handleSetNoiseMode)
			r.Put("/volume", s.handleSetVolume)
			r.Put("/enhancements/{name}", s.handleSetEnhancement)
			r.Post("/find", s.handleFindDevice)
		})

		r.Get("/preferences", s.handleGetPreferences)
		r.Patch("/preferences", s.handleUpdatePreferences)

		if s.journal != nil {
			r.Get("/journal", s.handleJournal)
		}

		r.Get("/ws", s.serveWS)
	})

	return r
}

// handleHealth returns the server health status and each wired dependency.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	components := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check.HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            status,
		"version":           s.version,
		"components":        components,
		"websocket_clients": clients,
	})
}

// handleStatus returns the whole-session read-out.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}
