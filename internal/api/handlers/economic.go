package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/runtime"
	"github.com/credohq/credo/internal/store"
	"github.com/go-chi/chi/v5"
)

type EconomicHandler struct {
	rt *runtime.Runtime
}

func NewEconomicHandler(rt *runtime.Runtime) *EconomicHandler {
	return &EconomicHandler{rt: rt}
}

type createSignalRequest struct {
	Type       string         `json:"type"`
	Amount     float64        `json:"amount"`
	Unit       string         `json:"unit"`
	Source     string         `json:"source"`
	AppliesTo  string         `json:"applies_to"`
	Confidence float64        `json:"confidence"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (h *EconomicHandler) CreateSignal(w http.ResponseWriter, r *http.Request) {
	var req createSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidSignalType(req.Type) {
		writeError(w, http.StatusBadRequest, "invalid signal type")
		return
	}

	sig, err := h.rt.RecordSignal(domain.SignalType(req.Type), req.Amount, req.Unit, req.Source, req.AppliesTo, req.Confidence, parseTime(req.Timestamp), req.Metadata)
	if err != nil {
		if errors.Is(err, domain.ErrConfidenceOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record signal")
		return
	}
	if sig == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusCreated, sig)
}

func (h *EconomicHandler) TargetTotals(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")
	writeJSON(w, http.StatusOK, map[string]any{
		"target": target,
		"cost":   h.rt.TotalCost(target),
		"risk":   h.rt.TotalRisk(target),
		"value":  h.rt.TotalValue(target),
	})
}

func (h *EconomicHandler) BudgetPressure(w http.ResponseWriter, r *http.Request) {
	org := r.URL.Query().Get("org")
	if org == "" {
		writeError(w, http.StatusBadRequest, "org is required")
		return
	}
	limit, err := strconv.ParseFloat(r.URL.Query().Get("limit"), 64)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive number")
		return
	}

	pressure := h.rt.EvaluateBudgetPressure(org, limit, time.Now().UTC())
	if pressure == nil {
		writeJSON(w, http.StatusOK, map[string]any{"pressure": nil})
		return
	}
	writeJSON(w, http.StatusOK, pressure)
}

type influenceRequest struct {
	Target string `json:"target"`
}

func (h *EconomicHandler) InfluenceBelief(w http.ResponseWriter, r *http.Request) {
	var req influenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.rt.InfluenceBelief(chi.URLParam(r, "id"), req.Target, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "belief not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to influence belief")
		return
	}
	if b == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusOK, b)
}
