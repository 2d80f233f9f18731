package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/runtime"
)

type PatternHandler struct {
	rt *runtime.Runtime
}

func NewPatternHandler(rt *runtime.Runtime) *PatternHandler {
	return &PatternHandler{rt: rt}
}

func (h *PatternHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"patterns": h.rt.DetectPatterns(time.Now().UTC()),
	})
}

func (h *PatternHandler) StageGate(w http.ResponseWriter, r *http.Request) {
	var profile domain.OrgProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gate := h.rt.DetectStageGate(profile, time.Now().UTC())
	if gate == nil {
		writeJSON(w, http.StatusOK, map[string]any{"stage": nil})
		return
	}
	writeJSON(w, http.StatusOK, gate)
}

type toolingMismatchRequest struct {
	Stage   string            `json:"stage,omitempty"`
	Profile domain.OrgProfile `json:"profile"`
}

func (h *PatternHandler) ToolingMismatch(w http.ResponseWriter, r *http.Request) {
	var req toolingMismatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC()
	stage := domain.OrgStage(req.Stage)
	if stage == "" {
		if gate := h.rt.DetectStageGate(req.Profile, now); gate != nil {
			stage = gate.Stage
		}
	}

	mismatch := h.rt.DetectToolingMismatch(stage, req.Profile, now)
	writeJSON(w, http.StatusOK, map[string]any{"mismatch": mismatch})
}
