package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/runtime"
	"github.com/credohq/credo/internal/store"
	"github.com/go-chi/chi/v5"
)

type ContradictionHandler struct {
	rt *runtime.Runtime
}

func NewContradictionHandler(rt *runtime.Runtime) *ContradictionHandler {
	return &ContradictionHandler{rt: rt}
}

func (h *ContradictionHandler) Scan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"new": h.rt.ScanContradictions(time.Now().UTC()),
	})
}

func (h *ContradictionHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"contradictions": h.rt.ListContradictions(),
	})
}

type resolveRequest struct {
	Status string `json:"status"`
}

func (h *ContradictionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidResolutionStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid resolution status")
		return
	}

	err := h.rt.ResolveContradiction(chi.URLParam(r, "id"), domain.ResolutionStatus(req.Status))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "contradiction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve contradiction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resolved": true})
}

type createPolicyRequest struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	AppliesTo   string         `json:"applies_to"`
	Enforcement string         `json:"enforcement"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (h *ContradictionHandler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req createPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p := h.rt.RecordPolicy(req.Name, req.Type, req.AppliesTo, req.Enforcement, time.Now().UTC(), req.Metadata)
	if p == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ContradictionHandler) CreateMeaningVersion(w http.ResponseWriter, r *http.Request) {
	var m domain.MeaningVersion
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.MeaningID == "" || m.Version == "" {
		writeError(w, http.StatusBadRequest, "meaning_id and version are required")
		return
	}

	h.rt.RecordMeaningVersion(&m)
	writeJSON(w, http.StatusCreated, m)
}
