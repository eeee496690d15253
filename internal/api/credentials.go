package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartbin-iot/smartbin-core/internal/credential"
)

// createCredentialRequest is the payload for registering a credential.
type createCredentialRequest struct {
	UID    string `json:"uid"`
	Holder string `json:"holder"`
	Role   string `json:"role"`
}

// updateCredentialRequest toggles a credential's active flag.
type updateCredentialRequest struct {
	Active *bool `json:"active"`
}

// handleListCredentials returns all registered credentials.
func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := s.credentials.List(r.Context())
	if err != nil {
		s.logger.Error("listing credentials failed", "error", err)
		writeInternalError(w, "failed to list credentials")
		return
	}
	if creds == nil {
		creds = []credential.Credential{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"credentials": creds, "count": len(creds)})
}

// handleCreateCredential registers a new credential, active immediately.
func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	var req createCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "uid is required")
		return
	}
	if req.Holder == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "holder is required")
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}

	c := &credential.Credential{
		UID:    req.UID,
		Holder: req.Holder,
		Role:   req.Role,
		Active: true,
	}

	if err := s.credentials.Create(r.Context(), c); err != nil {
		if errors.Is(err, credential.ErrExists) {
			writeConflict(w, "credential already exists")
			return
		}
		s.logger.Error("creating credential failed", "uid", req.UID, "error", err)
		writeInternalError(w, "failed to create credential")
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// handleUpdateCredential enables or disables a credential. Disabling
// takes effect on the holder's next scan.
func (s *Server) handleUpdateCredential(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var req updateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "active is required")
		return
	}

	if err := s.credentials.SetActive(r.Context(), uid, *req.Active); err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			writeNotFound(w, "credential not found")
			return
		}
		s.logger.Error("updating credential failed", "uid", uid, "error", err)
		writeInternalError(w, "failed to update credential")
		return
	}

	c, err := s.credentials.GetByUID(r.Context(), uid)
	if err != nil {
		s.logger.Error("reloading credential failed", "uid", uid, "error", err)
		writeInternalError(w, "failed to reload credential")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
