package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/control"
)

// createBinRequest is the payload for provisioning a bin.
type createBinRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Mode        string  `json:"mode"`
	ThresholdCM float64 `json:"threshold_cm"`
	CapacityCM  float64 `json:"capacity_cm"`
}

// commandRequest is the payload for a remote lid command.
type commandRequest struct {
	Action string `json:"action"`
}

// handleListBins returns all known bins.
func (s *Server) handleListBins(w http.ResponseWriter, r *http.Request) {
	bins, err := s.bins.List(r.Context())
	if err != nil {
		s.logger.Error("listing bins failed", "error", err)
		writeInternalError(w, "failed to list bins")
		return
	}
	if bins == nil {
		bins = []bin.Bin{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bins": bins, "count": len(bins)})
}

// handleGetBin returns one bin by ID.
func (s *Server) handleGetBin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := s.bins.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, bin.ErrBinNotFound) {
			writeNotFound(w, "bin not found")
			return
		}
		s.logger.Error("getting bin failed", "bin_id", id, "error", err)
		writeInternalError(w, "failed to get bin")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleCreateBin provisions a new bin and publishes its initial retained
// configuration so the device picks it up on first connect.
func (s *Server) handleCreateBin(w http.ResponseWriter, r *http.Request) {
	var req createBinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "id is required")
		return
	}

	mode := bin.Mode(req.Mode)
	if req.Mode == "" {
		mode = bin.ModeAuto
	}
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "mode must be AUTO or AUTH")
		return
	}
	if req.CapacityCM <= 0 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "capacity_cm must be positive")
		return
	}
	if req.ThresholdCM <= 0 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "threshold_cm must be positive")
		return
	}

	b := &bin.Bin{
		ID:          req.ID,
		Name:        req.Name,
		Location:    req.Location,
		Mode:        mode,
		ThresholdCM: req.ThresholdCM,
		CapacityCM:  req.CapacityCM,
	}

	if err := s.bins.Create(r.Context(), b); err != nil {
		if errors.Is(err, bin.ErrBinExists) {
			writeConflict(w, "bin already exists")
			return
		}
		s.logger.Error("creating bin failed", "bin_id", req.ID, "error", err)
		writeInternalError(w, "failed to create bin")
		return
	}

	if err := s.distributor.Republish(r.Context(), b.ID); err != nil {
		// The bin exists; config lands on the next update instead.
		s.logger.Warn("publishing initial config failed", "bin_id", b.ID, "error", err)
	}

	writeJSON(w, http.StatusCreated, b)
}

// handleUpdateBinConfig applies a partial configuration update and
// distributes the result to the device.
func (s *Server) handleUpdateBinConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// ConfigUpdate is the allow-list: unknown fields in the body are
	// simply never decoded into anything.
	var update bin.ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	updated, err := s.distributor.Apply(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, bin.ErrEmptyUpdate):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "no recognised configuration fields in update")
		case errors.Is(err, bin.ErrBinNotFound):
			writeNotFound(w, "bin not found")
		case errors.Is(err, bin.ErrInvalidMode):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "mode must be AUTO or AUTH")
		default:
			s.logger.Error("updating bin config failed", "bin_id", id, "error", err)
			writeInternalError(w, "failed to update configuration")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// handleBinCommand publishes a remote open/close command.
func (s *Server) handleBinCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.commander.Send(r.Context(), id, req.Action); err != nil {
		switch {
		case errors.Is(err, control.ErrInvalidAction):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "action must be open or close")
		case errors.Is(err, bin.ErrBinNotFound):
			writeNotFound(w, "bin not found")
		default:
			s.logger.Error("sending command failed", "bin_id", id, "error", err)
			writeInternalError(w, "failed to send command")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent", "action": req.Action})
}

// handleListBinEvents returns one bin's recent event log, newest first.
func (s *Server) handleListBinEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := parseLimit(r)

	entries, err := s.events.ListByBin(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("listing bin events failed", "bin_id", id, "error", err)
		writeInternalError(w, "failed to list events")
		return
	}
	writeEventList(w, entries)
}

// parseLimit reads the ?limit query parameter, 0 when absent or invalid.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
