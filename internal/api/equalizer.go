package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/earpanel-core/internal/equalizer"
)

type presetRequest struct {
	Name string `json:"name"`
}

type bandRequest struct {
	Value *int `json:"value"`
}

func (s *Server) handleGetEqualizer(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Equalizer())
}

func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	presets := make(map[string][]int)
	for _, name := range equalizer.Presets() {
		bands, err := equalizer.PresetBands(name)
		if err != nil {
			continue
		}
		presets[name] = bands[:]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"presets":     presets,
		"order":       equalizer.Presets(),
		"frequencies": equalizer.Frequencies(),
	})
}

func (s *Server) handleSetPreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "name is required")
		return
	}
	if err := s.ctrl.SetPreset(req.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Equalizer())
}

// handleSetBand sets one band. Out-of-range gains are clamped, and the
// response carries the stored value.
func (s *Server) handleSetBand(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "band index must be an integer")
		return
	}
	var req bandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "value is required")
		return
	}

	gain, err := s.ctrl.SetBand(index, *req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index":     index,
		"gain":      gain,
		"equalizer": s.ctrl.Equalizer(),
	})
}

func (s *Server) handleResetEqualizer(w http.ResponseWriter, _ *http.Request) {
	if err := s.ctrl.ResetEqualizer(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Equalizer())
}
