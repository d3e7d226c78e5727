package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/earpanel-core/internal/status"
)

// handleListDevices returns every known device in insertion order.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.ctrl.Devices()
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns one device with its display summary.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.ctrl.Device(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device":  d,
		"summary": status.Summarize(*d),
	})
}

// handleConnect toggles the connection of one device. Connecting a device
// disconnects whichever device was active.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	change, err := s.ctrl.Connect(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"previous":     change.Previous,
		"current":      change.Current,
		"disconnected": change.Disconnected(),
	})
}

// handleStartFirmware starts a simulated firmware update.
func (s *Server) handleStartFirmware(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ctrl.StartFirmwareUpdate(id); err != nil {
		writeDomainError(w, err)
		return
	}
	st, err := s.ctrl.FirmwareStatus(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// handleFirmwareStatus reports the firmware operation of one device.
func (s *Server) handleFirmwareStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.ctrl.FirmwareStatus(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleCancelFirmware abandons a pending update.
func (s *Server) handleCancelFirmware(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.ctrl.Device(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": s.ctrl.CancelFirmwareUpdate(id)})
}

// handleStartScan starts device discovery.
func (s *Server) handleStartScan(w http.ResponseWriter, _ *http.Request) {
	if err := s.ctrl.StartScan(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.ctrl.ScanStatus())
}

// handleScanStatus reports the scan operation.
func (s *Server) handleScanStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.ScanStatus())
}

// handleCancelScan abandons a pending scan.
func (s *Server) handleCancelScan(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": s.ctrl.CancelScan()})
}
