package handler

import (
	"net/http"
	"strconv"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/service"
	"github.com/gin-gonic/gin"
)

// RuleHandler handles approval rule management
type RuleHandler struct {
	rules service.RuleService
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(rules service.RuleService) *RuleHandler {
	return &RuleHandler{rules: rules}
}

// List handles GET /api/v1/rules
func (h *RuleHandler) List(c *gin.Context) {
	ruleSet, err := h.rules.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "rule list fetch failed")
		return
	}
	common.Success(c, ruleSet)
}

// Create handles POST /api/v1/rules
func (h *RuleHandler) Create(c *gin.Context) {
	var req service.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rule, err := h.rules.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "rule create failed")
		return
	}
	common.Created(c, rule)
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetEnabled handles PATCH /api/v1/rules/:id/enabled
func (h *RuleHandler) SetEnabled(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid rule id", err)
		return
	}

	var req setEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.rules.SetEnabled(c.Request.Context(), id, *req.Enabled); err != nil {
		respondError(c, err, "rule update failed")
		return
	}
	common.Success(c, gin.H{"id": id, "enabled": *req.Enabled})
}
