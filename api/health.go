package api

import (
	"net/http"

	"github.com/skepee/knowledge-rag/internal/log"
)

type healthHandler struct {
	system Answerer
	logger log.Logger
}

// liveness reports that the process is alive.
func (h *healthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness checks that the knowledge store answers.
func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if _, err := h.system.CacheStats(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		http.Error(w, "knowledge store not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
