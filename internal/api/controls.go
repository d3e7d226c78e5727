package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/earpanel-core/internal/control"
)

type noiseRequest struct {
	Mode string `json:"mode"`
}

type volumeRequest struct {
	Volume *int `json:"volume"`
}

type enhancementRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleGetControls returns the active device and its settings.
func (s *Server) handleGetControls(w http.ResponseWriter, _ *http.Request) {
	d, settings, err := s.ctrl.Controls()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": d.ID,
		"settings":  settings,
		"capabilities": map[string]bool{
			"anc":             d.HasANC,
			"transparency":    d.HasTransparency,
			"find_my":         d.HasFindMy,
			"dual_connection": d.HasDualConnection,
		},
	})
}

func (s *Server) handleSetNoiseMode(w http.ResponseWriter, r *http.Request) {
	var req noiseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := s.ctrl.SetNoiseMode(req.Mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Volume == nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "volume is required")
		return
	}
	settings, err := s.ctrl.SetVolume(*req.Volume)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSetEnhancement(w http.ResponseWriter, r *http.Request) {
	var req enhancementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "enabled is required")
		return
	}
	settings, err := s.ctrl.SetEnhancement(chi.URLParam(r, "name"), *req.Enabled)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleFindDevice asks the active device to play its locator sound.
func (s *Server) handleFindDevice(w http.ResponseWriter, _ *http.Request) {
	id, err := s.ctrl.FindDevice()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"device_id": id, "requested": true})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Preferences())
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch control.PreferencesPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	prefs, err := s.ctrl.UpdatePreferences(patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
