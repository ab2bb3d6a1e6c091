package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skepee/knowledge-rag/internal/log"
)

const defaultCourseLevel = "university"

type courseHandler struct {
	courses CourseGenerator
	logger  log.Logger
}

type courseRequest struct {
	Topic string `json:"topic"`
	Level string `json:"level"`
}

func (h *courseHandler) handle(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", h.logger)
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "Topic is required", h.logger)
		return
	}
	level := strings.TrimSpace(req.Level)
	if level == "" {
		level = defaultCourseLevel
	}

	generated, err := h.courses.Generate(r.Context(), topic, level)
	if err != nil {
		h.logger.Error("course generation failed", "topic", topic, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, generated, h.logger)
}
