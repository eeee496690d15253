package api

import (
	"net/http"

	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
)

// handleListEvents returns the most recent events across all bins.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := s.events.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("listing events failed", "error", err)
		writeInternalError(w, "failed to list events")
		return
	}
	writeEventList(w, entries)
}

// writeEventList writes a list of event entries as JSON.
func writeEventList(w http.ResponseWriter, entries []eventlog.Entry) {
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": entries, "count": len(entries)})
}
