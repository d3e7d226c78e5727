package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/earpanel-core/internal/journal"
)

// handleJournal returns recent journal entries, newest first.
//
// Query parameters:
//   - device_id: filter by device
//   - type: filter by event type
//   - limit: maximum entries (default 50, max 500)
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	q := journal.Query{
		DeviceID: r.URL.Query().Get("device_id"),
		Type:     r.URL.Query().Get("type"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "limit must be a non-negative integer")
			return
		}
		q.Limit = limit
	}

	entries, err := s.journal.Recent(r.Context(), q)
	if err != nil {
		s.logger.Error("journal query failed", "error", err)
		writeInternalError(w, "failed to read journal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
