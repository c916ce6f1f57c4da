package handler

import (
	"errors"
	"net/http"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/gin-gonic/gin"
)

// respondError maps service sentinels onto HTTP statuses so every
// handler reports failures the same way.
func respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrMalformedRule),
		errors.Is(err, common.ErrEscalationReasonRequired):
		common.ErrorResponse(c, http.StatusBadRequest, message, err)
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrContentNotFound),
		errors.Is(err, common.ErrReviewItemNotFound),
		errors.Is(err, common.ErrVersionNotFound),
		errors.Is(err, common.ErrRuleNotFound):
		common.ErrorResponse(c, http.StatusNotFound, message, err)
	case errors.Is(err, common.ErrVersionConflict),
		errors.Is(err, common.ErrContentExists),
		errors.Is(err, common.ErrInvalidTransition),
		errors.Is(err, common.ErrReviewerAtCapacity):
		common.ErrorResponse(c, http.StatusConflict, message, err)
	case errors.Is(err, common.ErrNoChanges):
		common.ErrorResponse(c, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, common.ErrGenerationFailed):
		common.ErrorResponse(c, http.StatusBadGateway, message, err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
