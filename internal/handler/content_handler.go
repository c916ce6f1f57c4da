package handler

import (
	"net/http"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/scoring"
	"github.com/dailywell/content-engine/internal/service"
	"github.com/gin-gonic/gin"
)

// ContentHandler handles content generation and validation requests
type ContentHandler struct {
	generation service.GenerationService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(generation service.GenerationService) *ContentHandler {
	return &ContentHandler{generation: generation}
}

// Generate handles POST /api/v1/generate
func (h *ContentHandler) Generate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.generation.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "content generation failed")
		return
	}

	if result.Skipped {
		common.Success(c, result)
		return
	}
	common.Created(c, result)
}

// Validate handles POST /api/v1/validate
func (h *ContentHandler) Validate(c *gin.Context) {
	var in scoring.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	common.Success(c, h.generation.Validate(in))
}
