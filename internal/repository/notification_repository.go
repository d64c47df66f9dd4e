package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/housing-check-api/internal/models"
)

// NotificationRepository manages persistence for the status ledger.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts one ledger entry. Callers are responsible for purging stale
// colors first; no dedup happens here.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, user_id, channel, color, campaign_id, submission_id, is_read, created_at)
        VALUES (:id, :user_id, :channel, :color, :campaign_id, :submission_id, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// Purge bulk-deletes ledger entries matching the filter.
func (r *NotificationRepository) Purge(ctx context.Context, filter models.NotificationFilter) error {
	where, args := purgeConditions(filter)
	if len(where) == 0 {
		return fmt.Errorf("purge notifications: empty filter")
	}
	query := fmt.Sprintf("DELETE FROM notifications WHERE %s", strings.Join(where, " AND "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("purge notifications: %w", err)
	}
	return nil
}

// List returns a user's entries for one channel, newest first, along with the
// total and unread counters.
func (r *NotificationRepository) List(ctx context.Context, userID string, channel models.NotificationChannel) ([]models.Notification, int, int, error) {
	const query = `SELECT id, user_id, channel, color, campaign_id, submission_id, is_read, created_at
        FROM notifications WHERE user_id = $1 AND channel = $2 ORDER BY created_at DESC`
	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, userID, channel); err != nil {
		return nil, 0, 0, fmt.Errorf("list notifications: %w", err)
	}

	const countQuery = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_read = FALSE) AS unread
        FROM notifications WHERE user_id = $1 AND channel = $2`
	var counts struct {
		Total  int `db:"total"`
		Unread int `db:"unread"`
	}
	if err := r.db.GetContext(ctx, &counts, countQuery, userID, channel); err != nil {
		return nil, 0, 0, fmt.Errorf("count notifications: %w", err)
	}
	return items, counts.Total, counts.Unread, nil
}

// MarkAllRead flips is_read on every matching entry.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, channel models.NotificationChannel) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND channel = $2 AND is_read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID, channel); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// insertNoticeTx writes one ledger entry inside an ongoing transaction. Shared
// by the submission and campaign repositories so every delete-then-insert swap
// commits atomically.
func insertNoticeTx(ctx context.Context, tx *sqlx.Tx, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, user_id, channel, color, campaign_id, submission_id, is_read, created_at)
        VALUES (:id, :user_id, :channel, :color, :campaign_id, :submission_id, :is_read, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

// deleteNoticesTx removes matching ledger entries inside an ongoing transaction.
func deleteNoticesTx(ctx context.Context, tx *sqlx.Tx, filter models.NotificationFilter) error {
	where, args := purgeConditions(filter)
	if len(where) == 0 {
		return fmt.Errorf("delete notices: empty filter")
	}
	query := fmt.Sprintf("DELETE FROM notifications WHERE %s", strings.Join(where, " AND "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete notices: %w", err)
	}
	return nil
}

func purgeConditions(filter models.NotificationFilter) ([]string, []interface{}) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	if filter.ID != "" {
		conditions = append(conditions, fmt.Sprintf("id = $%d", len(args)+1))
		args = append(args, filter.ID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Channel != "" {
		conditions = append(conditions, fmt.Sprintf("channel = $%d", len(args)+1))
		args = append(args, filter.Channel)
	}
	if len(filter.Colors) > 0 {
		values := make([]string, len(filter.Colors))
		for i, c := range filter.Colors {
			values[i] = string(c)
		}
		conditions = append(conditions, fmt.Sprintf("color = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(values))
	}
	if filter.CampaignID != "" {
		conditions = append(conditions, fmt.Sprintf("campaign_id = $%d", len(args)+1))
		args = append(args, filter.CampaignID)
	}
	if filter.SubmissionID != "" {
		conditions = append(conditions, fmt.Sprintf("submission_id = $%d", len(args)+1))
		args = append(args, filter.SubmissionID)
	}
	return conditions, args
}
