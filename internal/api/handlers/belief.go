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

type BeliefHandler struct {
	rt *runtime.Runtime
}

func NewBeliefHandler(rt *runtime.Runtime) *BeliefHandler {
	return &BeliefHandler{rt: rt}
}

type createBeliefRequest struct {
	AssertionID          string         `json:"assertion_id"`
	Confidence           float64        `json:"confidence"`
	DecayRate            float64        `json:"decay_rate,omitempty"`
	ValidityUntil        *time.Time     `json:"validity_until,omitempty"`
	UpstreamDependencies []string       `json:"upstream_dependencies,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
}

func (h *BeliefHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBeliefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AssertionID == "" {
		writeError(w, http.StatusBadRequest, "assertion_id is required")
		return
	}

	opts := service.FormBeliefOpts{
		DecayRate:     req.DecayRate,
		ValidityUntil: req.ValidityUntil,
		Upstream:      req.UpstreamDependencies,
		Metadata:      req.Metadata,
	}
	b, err := h.rt.FormBelief(req.AssertionID, req.Confidence, opts, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConfidenceOutOfRange), errors.Is(err, domain.ErrNegativeDecayRate):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to form belief")
		}
		return
	}
	if b == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BeliefHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	b, err := h.rt.GetBelief(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "belief not found")
		return
	}
	if b == nil {
		writeJSON(w, http.StatusOK, map[string]any{"belief": nil})
		return
	}
	now := time.Now().UTC()
	current, _ := h.rt.CurrentConfidence(b.ID, now)
	writeJSON(w, http.StatusOK, map[string]any{
		"belief":             b,
		"current_confidence": current,
	})
}

type updateConfidenceRequest struct {
	Confidence float64 `json:"confidence"`
}

func (h *BeliefHandler) UpdateConfidence(w http.ResponseWriter, r *http.Request) {
	var req updateConfidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.rt.UpdateBeliefConfidence(chi.URLParam(r, "id"), req.Confidence, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConfidenceOutOfRange):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "belief not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update belief")
		}
		return
	}
	if b == nil {
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BeliefHandler) Compose(w http.ResponseWriter, r *http.Request) {
	strategy := service.DefaultCompositionStrategy
	if s := r.URL.Query().Get("strategy"); s != "" {
		if !service.ValidCompositionStrategy(s) {
			writeError(w, http.StatusBadRequest, "invalid composition strategy")
			return
		}
		strategy = service.CompositionStrategy(s)
	}

	assertionID := chi.URLParam(r, "id")
	confidence := h.rt.ComposeConfidence(assertionID, strategy, nil, time.Now().UTC())
	writeJSON(w, http.StatusOK, map[string]any{
		"assertion_id": assertionID,
		"strategy":     strategy,
		"confidence":   confidence,
	})
}

type propagateRequest struct {
	Threshold float64 `json:"threshold,omitempty"`
}

func (h *BeliefHandler) PropagateDecay(w http.ResponseWriter, r *http.Request) {
	var req propagateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	affected, err := h.rt.PropagateDecay(chi.URLParam(r, "id"), req.Threshold, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "belief not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to propagate decay")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"affected": affected})
}

func (h *BeliefHandler) Prune(w http.ResponseWriter, r *http.Request) {
	pruned := h.rt.PruneExpiredBeliefs(time.Now().UTC())
	writeJSON(w, http.StatusOK, map[string]any{"pruned": pruned})
}
