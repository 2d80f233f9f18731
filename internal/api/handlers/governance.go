package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/runtime"
	"github.com/credohq/credo/internal/service"
	"github.com/credohq/credo/internal/store"
	"github.com/go-chi/chi/v5"
)

type GovernanceHandler struct {
	rt *runtime.Runtime
}

func NewGovernanceHandler(rt *runtime.Runtime) *GovernanceHandler {
	return &GovernanceHandler{rt: rt}
}

type createDecisionRequest struct {
	Type      string         `json:"type"`
	Action    string         `json:"action"`
	Rationale []string       `json:"rationale,omitempty"`
	BeliefIDs []string       `json:"belief_ids,omitempty"`
	PolicyIDs []string       `json:"policy_ids,omitempty"`
	Authority string         `json:"authority,omitempty"`
	Scope     string         `json:"scope,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (h *GovernanceHandler) CreateDecision(w http.ResponseWriter, r *http.Request) {
	var req createDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidDecisionType(req.Type) {
		writeError(w, http.StatusBadRequest, "invalid decision type")
		return
	}

	d := h.rt.RecordDecision(domain.DecisionType(req.Type), req.Action, req.Rationale, req.BeliefIDs, req.PolicyIDs, req.Authority, req.Scope, req.ExpiresAt, time.Now().UTC(), req.Metadata)
	if d == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

type createOverrideRequest struct {
	OriginalDecision string    `json:"original_decision"`
	OverrideDecision string    `json:"override_decision"`
	Authority        string    `json:"authority"`
	Scope            string    `json:"scope"`
	Rationale        string    `json:"rationale"`
	ExpiresAt        time.Time `json:"expires_at"`
	RequiresRenewal  bool      `json:"requires_renewal"`
}

func (h *GovernanceHandler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var req createOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Authority == "" {
		writeError(w, http.StatusBadRequest, "authority is required")
		return
	}

	o := h.rt.CreateOverride(req.OriginalDecision, req.OverrideDecision, req.Authority, req.Scope, req.Rationale, req.ExpiresAt, req.RequiresRenewal, time.Now().UTC())
	if o == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

type renewOverrideRequest struct {
	RenewalDecisionID string    `json:"renewal_decision_id"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func (h *GovernanceHandler) RenewOverride(w http.ResponseWriter, r *http.Request) {
	var req renewOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.rt.RenewOverride(chi.URLParam(r, "id"), req.RenewalDecisionID, req.ExpiresAt)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "override not found")
		case errors.Is(err, service.ErrOverrideNotRenewable):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to renew override")
		}
		return
	}
	if o == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *GovernanceHandler) ActiveOverrides(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"overrides": h.rt.ActiveOverrides(time.Now().UTC()),
	})
}

type reconcileRequest struct {
	BeliefID   string `json:"belief_id"`
	OverrideID string `json:"override_id"`
}

func (h *GovernanceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.rt.Reconcile(req.BeliefID, req.OverrideID, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusNotFound, "belief or override not found")
		return
	}
	if result == nil {
		writeJSON(w, http.StatusOK, map[string]any{"reconciled": false})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *GovernanceHandler) ScanDivergence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"new": h.rt.DetectDivergence(time.Now().UTC()),
	})
}

func (h *GovernanceHandler) DivergenceHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"divergences": h.rt.DivergenceHistory(),
	})
}
