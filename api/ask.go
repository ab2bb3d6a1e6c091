package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/skepee/knowledge-rag/internal/log"
	"github.com/skepee/knowledge-rag/internal/rag"
)

// maxAskBodySize bounds the request body for ask and course requests.
const maxAskBodySize = 1 << 20 // 1 MB

type askHandler struct {
	system Answerer
	logger log.Logger
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *askHandler) handle(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", h.logger)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "Question is required", h.logger)
		return
	}

	answer, err := h.system.AnswerQuestion(r.Context(), question)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrNoSources):
			writeError(w, http.StatusNotFound, "No Wikipedia articles found", h.logger)
		case errors.Is(err, rag.ErrNoInformation):
			writeError(w, http.StatusNotFound, "No information found", h.logger)
		default:
			h.logger.Error("answering question failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		}
		return
	}

	writeJSON(w, http.StatusOK, answer, h.logger)
}
