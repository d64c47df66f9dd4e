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

type notificationService interface {
	CreateFor(ctx context.Context, channel models.NotificationChannel, req service.CreateNotificationRequest) (*models.Notification, error)
	List(ctx context.Context, userID string, channel models.NotificationChannel) (*models.NotificationFeed, error)
	MarkAllRead(ctx context.Context, userID string, channel models.NotificationChannel) error
}

// NotificationHandler exposes the notification ledger endpoints.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler builds a new handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// CreateReport godoc
// @Summary Create a report-channel notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notification/report [post]
func (h *NotificationHandler) CreateReport(c *gin.Context) {
	h.create(c, models.ChannelReport)
}

// CreatePush godoc
// @Summary Create a push-channel notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notification/push [post]
func (h *NotificationHandler) CreatePush(c *gin.Context) {
	h.create(c, models.ChannelPush)
}

func (h *NotificationHandler) create(c *gin.Context, channel models.NotificationChannel) {
	var req service.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notification payload"))
		return
	}
	notification, err := h.service.CreateFor(c.Request.Context(), channel, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notification)
}

// ListReport godoc
// @Summary List a user's report-channel notifications
// @Tags Notifications
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /notification/report/{userId} [get]
func (h *NotificationHandler) ListReport(c *gin.Context) {
	h.list(c, models.ChannelReport)
}

// ListPush godoc
// @Summary List a user's push-channel notifications
// @Tags Notifications
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /notification/push/{userId} [get]
func (h *NotificationHandler) ListPush(c *gin.Context) {
	h.list(c, models.ChannelPush)
}

func (h *NotificationHandler) list(c *gin.Context, channel models.NotificationChannel) {
	feed, err := h.service.List(c.Request.Context(), c.Param("userId"), channel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed.Items, nil, map[string]interface{}{
		"total":  feed.Total,
		"unread": feed.Unread,
	})
}

// MarkAllRead godoc
// @Summary Mark all report-channel notifications read
// @Tags Notifications
// @Produce json
// @Param userId path string true "User ID"
// @Success 204 {object} response.Envelope
// @Router /notification/report/{userId}/read [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), c.Param("userId"), models.ChannelReport); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
