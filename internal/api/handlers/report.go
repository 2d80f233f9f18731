package handlers

import (
	"net/http"
	"time"

	"github.com/credohq/credo/internal/runtime"
)

type ReportHandler struct {
	rt *runtime.Runtime
}

func NewReportHandler(rt *runtime.Runtime) *ReportHandler {
	return &ReportHandler{rt: rt}
}

// Summary renders the cognitive summary. format=text yields the
// human-readable rendering; anything else the structured one.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(h.rt.SummaryText(now)))
		return
	}

	summary := h.rt.Summary(now)
	if summary == nil {
		writeJSON(w, http.StatusOK, map[string]any{"summary": nil})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) Events(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"events": h.rt.Telemetry().Events(),
		"stats":  h.rt.Telemetry().Stats(),
	})
}
