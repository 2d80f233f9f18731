package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/runtime"
	"github.com/go-chi/chi/v5"
)

type AssertionHandler struct {
	rt *runtime.Runtime
}

func NewAssertionHandler(rt *runtime.Runtime) *AssertionHandler {
	return &AssertionHandler{rt: rt}
}

type createEvidenceRequest struct {
	Type                  string `json:"type"`
	ContentHash           string `json:"content_hash"`
	Source                string `json:"source"`
	Timestamp             string `json:"timestamp,omitempty"`
	ValidityPeriodSeconds int64  `json:"validity_period_seconds,omitempty"`
}

func (h *AssertionHandler) CreateEvidence(w http.ResponseWriter, r *http.Request) {
	var req createEvidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidEvidenceType(req.Type) {
		writeError(w, http.StatusBadRequest, "invalid evidence type")
		return
	}

	var validity *time.Duration
	if req.ValidityPeriodSeconds > 0 {
		d := time.Duration(req.ValidityPeriodSeconds) * time.Second
		validity = &d
	}

	e := h.rt.RecordEvidence(domain.EvidenceType(req.Type), req.ContentHash, req.Source, parseTime(req.Timestamp), validity)
	if e == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

type createAssertionRequest struct {
	Claim          string         `json:"claim"`
	EvidenceIDs    []string       `json:"evidence_ids"`
	Transformation string         `json:"transformation,omitempty"`
	Source         string         `json:"source"`
	Timestamp      string         `json:"timestamp,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

func (h *AssertionHandler) CreateAssertion(w http.ResponseWriter, r *http.Request) {
	var req createAssertionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Claim == "" {
		writeError(w, http.StatusBadRequest, "claim is required")
		return
	}

	a := h.rt.RecordAssertion(req.Claim, req.EvidenceIDs, req.Transformation, req.Source, parseTime(req.Timestamp), req.Metadata)
	if a == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AssertionHandler) Lineage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lineage := h.rt.Lineage(id)
	if lineage == nil {
		if h.rt.Flags().Enabled && h.rt.Flags().AssertionGraph {
			writeError(w, http.StatusNotFound, "assertion not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"lineage": nil})
		return
	}
	writeJSON(w, http.StatusOK, lineage)
}
