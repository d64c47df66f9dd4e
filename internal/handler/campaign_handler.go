package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
	"github.com/noah-isme/housing-check-api/pkg/response"
)

type campaignService interface {
	Open(ctx context.Context, tutorID string) (*models.Campaign, error)
	Summary(ctx context.Context, tutorID string) ([]models.CampaignSummary, error)
	Detail(ctx context.Context, campaignID, groupID string) (*models.CampaignDetail, error)
	Override(ctx context.Context, entries []models.OverrideEntry) error
	ExportSummary(ctx context.Context, tutorID, format string) ([]byte, string, string, error)
	Groups(ctx context.Context, tutorID string) ([]models.Group, error)
}

// CampaignHandler exposes verification campaign endpoints.
type CampaignHandler struct {
	service campaignService
}

// NewCampaignHandler builds a new handler.
func NewCampaignHandler(service campaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

// Open godoc
// @Summary Open a verification campaign
// @Description Finishes the tutor's running campaigns and notifies every supervised student
// @Tags Campaigns
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /permission-create [post]
func (h *CampaignHandler) Open(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	campaign, err := h.service.Open(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, campaign)
}

// Summary godoc
// @Summary List the tutor's campaigns with progress counters
// @Tags Campaigns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /my-permissions [get]
func (h *CampaignHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summaries, err := h.service.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// Detail godoc
// @Summary Campaign detail with per-group progress
// @Tags Campaigns
// @Produce json
// @Param permissionId path string true "Campaign ID"
// @Param groupId path string false "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /{permissionId}/{groupId} [get]
func (h *CampaignHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("permissionId"), c.Param("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Override godoc
// @Summary Force students back to must-resubmit
// @Description Whole batch applies atomically; the first conflicting entry aborts it
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param payload body []models.OverrideEntry true "Student entries"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /special [post]
func (h *CampaignHandler) Override(c *gin.Context) {
	var entries []models.OverrideEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}
	if err := h.service.Override(c.Request.Context(), entries); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Groups godoc
// @Summary List the tutor's supervised groups
// @Tags Campaigns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /my-groups [get]
func (h *CampaignHandler) Groups(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	groups, err := h.service.Groups(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Export godoc
// @Summary Export the campaign summary
// @Tags Campaigns
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /my-permissions/export [get]
func (h *CampaignHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	data, filename, contentType, err := h.service.ExportSummary(c.Request.Context(), claims.UserID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
