package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/housing-check-api/internal/models"
	"github.com/noah-isme/housing-check-api/internal/service"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
	"github.com/noah-isme/housing-check-api/pkg/response"
)

type reviewService interface {
	Review(ctx context.Context, req service.ReviewRequest) (*models.Submission, error)
}

// ReviewHandler exposes the tutor verdict endpoint.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler builds a new handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Review godoc
// @Summary Record per-evidence verdicts for a disclosure
// @Description Recomputes the aggregate status and clears the pending notice
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body service.ReviewRequest true "Verdicts"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /appartment/check [post]
func (h *ReviewHandler) Review(c *gin.Context) {
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	submission, err := h.service.Review(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}
