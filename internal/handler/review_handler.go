package handler

import (
	"net/http"
	"strconv"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/service"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles review workflow requests
type ReviewHandler struct {
	reviews service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Queue handles GET /api/v1/review/queue
func (h *ReviewHandler) Queue(c *gin.Context) {
	status := c.DefaultQuery("status", "pending_review")
	reviewerID := c.Query("reviewer_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.reviews.Queue(c.Request.Context(), status, reviewerID, limit, offset)
	if err != nil {
		respondError(c, err, "review queue fetch failed")
		return
	}

	common.SuccessWithMeta(c, gin.H{
		"items":         items,
		"pending_depth": h.reviews.PendingDepth(c.Request.Context()),
	}, &common.Meta{Limit: limit, Offset: offset, Total: total})
}

// Action handles POST /api/v1/review/action
func (h *ReviewHandler) Action(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid review item id", err)
		return
	}

	var req service.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	item, err := h.reviews.Act(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "review action failed")
		return
	}

	common.Success(c, item)
}

// Batch handles POST /api/v1/moderation/batch
func (h *ReviewHandler) Batch(c *gin.Context) {
	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	op, err := h.reviews.Batch(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "batch operation failed")
		return
	}

	common.Success(c, gin.H{
		"batch_operation": op,
		"results":         op.ItemResults(),
	})
}
