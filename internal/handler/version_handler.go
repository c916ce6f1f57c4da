package handler

import (
	"net/http"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/service"
	"github.com/gin-gonic/gin"
)

// VersionHandler handles version history requests
type VersionHandler struct {
	versions service.VersionService
}

// NewVersionHandler creates a new VersionHandler
func NewVersionHandler(versions service.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

// History handles GET /api/v1/versions/history
func (h *VersionHandler) History(c *gin.Context) {
	contentID := c.Query("content_id")
	if contentID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "content_id is required", nil)
		return
	}

	versions, changeLog, err := h.versions.History(c.Request.Context(), contentID)
	if err != nil {
		respondError(c, err, "version history fetch failed")
		return
	}

	common.Success(c, gin.H{
		"versions":   versions,
		"change_log": changeLog,
	})
}

type createVersionRequest struct {
	ContentID       string  `json:"content_id" binding:"required"`
	Title           string  `json:"title" binding:"required"`
	Summary         string  `json:"summary" binding:"required"`
	Topic           string  `json:"topic"`
	Confidence      float64 `json:"confidence"`
	ChangeType      string  `json:"change_type" binding:"required"`
	Reason          string  `json:"reason"`
	Author          string  `json:"author" binding:"required"`
	ExpectedVersion int     `json:"expected_version"`
}

// Create handles POST /api/v1/versions/create
func (h *VersionHandler) Create(c *gin.Context) {
	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	snapshot := domain.VersionSnapshot{
		Title:      req.Title,
		Summary:    req.Summary,
		Topic:      req.Topic,
		Confidence: req.Confidence,
	}
	version, created, err := h.versions.CreateVersion(c.Request.Context(), req.ContentID, snapshot,
		domain.ChangeType(req.ChangeType), req.Reason, req.Author, req.ExpectedVersion)
	if err != nil {
		respondError(c, err, "version create failed")
		return
	}

	if !created {
		common.Success(c, gin.H{"version": version, "created": false})
		return
	}
	common.Created(c, gin.H{"version": version, "created": true})
}

type rollbackRequest struct {
	ContentID     string `json:"content_id" binding:"required"`
	TargetVersion int    `json:"target_version" binding:"required"`
	Reason        string `json:"reason"`
	Author        string `json:"author" binding:"required"`
}

// Rollback handles POST /api/v1/versions/rollback
func (h *VersionHandler) Rollback(c *gin.Context) {
	var req rollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	version, err := h.versions.Rollback(c.Request.Context(), req.ContentID, req.TargetVersion, req.Reason, req.Author)
	if err != nil {
		respondError(c, err, "rollback failed")
		return
	}

	common.Created(c, gin.H{"version": version})
}
