package api

import (
	"net/http"

	"github.com/skepee/knowledge-rag/internal/knowledge"
	"github.com/skepee/knowledge-rag/internal/log"
)

type statsHandler struct {
	system Answerer
	logger log.Logger
}

// handle reports store size. A store failure degrades to zero counts so
// dashboards polling this endpoint keep working.
func (h *statsHandler) handle(w http.ResponseWriter, r *http.Request) {
	stats, err := h.system.CacheStats(r.Context())
	if err != nil {
		h.logger.Warn("reading cache stats failed", "error", err)
		writeJSON(w, http.StatusOK, knowledge.Stats{}, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, stats, h.logger)
}
