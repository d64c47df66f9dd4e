package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Purge(ctx context.Context, filter models.NotificationFilter) error
	List(ctx context.Context, userID string, channel models.NotificationChannel) ([]models.Notification, int, int, error)
	MarkAllRead(ctx context.Context, userID string, channel models.NotificationChannel) error
}

// CreateNotificationRequest holds the payload for appending a ledger entry.
type CreateNotificationRequest struct {
	UserID       string                   `json:"user_id" validate:"required"`
	Color        models.NotificationColor `json:"color" validate:"required"`
	CampaignID   *string                  `json:"campaign_id"`
	SubmissionID *string                  `json:"submission_id"`
}

// NotificationService exposes the status ledger use-cases. It has no state
// machine of its own; the submission and campaign services drive the colors.
type NotificationService struct {
	repo      notificationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(repo notificationRepository, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, validator: validate, logger: logger}
}

// CreateFor appends one entry on the given channel. Callers needing the
// one-blue-per-submission invariant must purge before creating.
func (s *NotificationService) CreateFor(ctx context.Context, channel models.NotificationChannel, req CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	if !req.Color.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown notification color")
	}
	n := &models.Notification{
		UserID:       req.UserID,
		Channel:      channel,
		Color:        req.Color,
		CampaignID:   req.CampaignID,
		SubmissionID: req.SubmissionID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	return n, nil
}

// Purge bulk-deletes matching entries; used to drop stale colors before a new
// one is written.
func (s *NotificationService) Purge(ctx context.Context, filter models.NotificationFilter) error {
	if err := s.repo.Purge(ctx, filter); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge notifications")
	}
	return nil
}

// List returns a user's feed for one channel, newest first, with counters.
func (s *NotificationService) List(ctx context.Context, userID string, channel models.NotificationChannel) (*models.NotificationFeed, error) {
	items, total, unread, err := s.repo.List(ctx, userID, channel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &models.NotificationFeed{Items: items, Total: total, Unread: unread}, nil
}

// MarkAllRead flips the read flag on every entry of the channel.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string, channel models.NotificationChannel) error {
	if err := s.repo.MarkAllRead(ctx, userID, channel); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}
