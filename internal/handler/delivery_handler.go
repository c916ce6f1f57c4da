package handler

import (
	"net/http"
	"strconv"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/service"
	"github.com/gin-gonic/gin"
)

// DeliveryHandler handles cached content delivery and CDN operations
type DeliveryHandler struct {
	delivery service.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(delivery service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

// Cached handles GET /api/v1/content/cached.
// This endpoint speaks raw HTTP caching semantics instead of the JSON
// envelope: validators in, 304 or encoded body out.
func (h *DeliveryHandler) Cached(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "date is required", nil)
		return
	}

	resp, err := h.delivery.ServeCached(c.Request.Context(), date, service.ConditionalRequest{
		IfNoneMatch:     c.GetHeader("If-None-Match"),
		IfModifiedSince: c.GetHeader("If-Modified-Since"),
		AcceptEncoding:  c.GetHeader("Accept-Encoding"),
	})
	if err != nil {
		respondError(c, err, "cached content fetch failed")
		return
	}

	c.Header("ETag", `"`+resp.ETag+`"`)
	c.Header("Last-Modified", resp.LastModified.Format(http.TimeFormat))
	c.Header("Cache-Control", resp.CacheControl)
	c.Header("Vary", "Accept-Encoding")

	if resp.NotModified {
		c.Header("X-Cache", "HIT")
		c.Status(http.StatusNotModified)
		return
	}

	if resp.Encoding != domain.CompressionNone {
		c.Header("Content-Encoding", resp.Encoding)
	}
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", resp.Body)
}

// Performance handles GET /api/v1/cdn/performance. An optional metric
// query narrows the response to one section of the report.
func (h *DeliveryHandler) Performance(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	report, err := h.delivery.Performance(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, "performance report failed")
		return
	}

	switch c.Query("metric") {
	case "":
		common.Success(c, report)
	case "hit_rate":
		common.Success(c, gin.H{"days": report.Days, "hit_rate": report.HitRate,
			"cache_hits": report.CacheHits, "cache_misses": report.CacheMisses})
	case "compression":
		common.Success(c, gin.H{"days": report.Days, "compression_usage": report.CompressionUsage})
	case "grade":
		common.Success(c, gin.H{"days": report.Days, "score": report.Score, "grade": report.Grade})
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "unknown metric", nil)
	}
}

type warmCacheRequest struct {
	Dates []string `json:"dates" binding:"required"`
}

// WarmCache handles POST /api/v1/cdn/warm-cache
func (h *DeliveryHandler) WarmCache(c *gin.Context) {
	var req warmCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	results := h.delivery.WarmCache(c.Request.Context(), req.Dates)
	common.Success(c, gin.H{"results": results})
}
