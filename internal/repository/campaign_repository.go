package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
)

// CampaignRepository manages persistence for verification campaigns.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository constructs a CampaignRepository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// FindByID fetches a campaign by ID.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	const query = `SELECT id, owner_id, status, created_at FROM campaigns WHERE id = $1`
	var campaign models.Campaign
	if err := r.db.GetContext(ctx, &campaign, query, id); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// OpenWithFanOut finishes the tutor's running campaigns, inserts the new one,
// purges every eligible student's report entries and writes one red "must
// resubmit" notice per student. The whole cascade commits atomically so a
// finished campaign can never be left without its red notices.
func (r *CampaignRepository) OpenWithFanOut(ctx context.Context, campaign *models.Campaign, studentIDs []string) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = time.Now().UTC()
	}
	campaign.Status = models.CampaignStatusProcess

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin open campaign tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE campaigns SET status = $1 WHERE owner_id = $2 AND status = $3`,
		models.CampaignStatusFinished, campaign.OwnerID, models.CampaignStatusProcess); err != nil {
		return fmt.Errorf("finish previous campaigns: %w", err)
	}

	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO campaigns (id, owner_id, status, created_at) VALUES (:id, :owner_id, :status, :created_at)`,
		campaign); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}

	if len(studentIDs) > 0 {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM notifications WHERE channel = $1 AND user_id = ANY($2)`,
			models.ChannelReport, pq.Array(studentIDs)); err != nil {
			return fmt.Errorf("purge student notices: %w", err)
		}
		if err = bulkInsertRedNoticesTx(ctx, tx, campaign.ID, studentIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit open campaign tx: %w", err)
	}
	return nil
}

// bulkInsertRedNoticesTx writes one red notice per student in a single
// multi-row INSERT; insertion order is irrelevant.
func bulkInsertRedNoticesTx(ctx context.Context, tx *sqlx.Tx, campaignID string, studentIDs []string) error {
	now := time.Now().UTC()
	values := make([]string, 0, len(studentIDs))
	args := make([]interface{}, 0, len(studentIDs)*5)
	for _, studentID := range studentIDs {
		base := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, FALSE, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, uuid.NewString(), studentID, models.ChannelReport, models.ColorRed, campaignID, now)
	}
	query := fmt.Sprintf(`INSERT INTO notifications (id, user_id, channel, color, campaign_id, is_read, created_at) VALUES %s`,
		strings.Join(values, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert red notices: %w", err)
	}
	return nil
}

// SummaryByOwner returns the tutor's campaigns with progress counters.
func (r *CampaignRepository) SummaryByOwner(ctx context.Context, tutorID string) ([]models.CampaignSummary, error) {
	const query = `SELECT c.id, c.owner_id, c.status, c.created_at,
        (SELECT COUNT(*) FROM notifications n WHERE n.campaign_id = c.id AND n.channel = 'report' AND n.color = 'red') AS not_submitted,
        (SELECT COUNT(*) FROM submissions s WHERE s.campaign_id = c.id AND s.is_current = TRUE AND s.aggregate_status = 'pending') AS being_checked,
        (SELECT COUNT(*) FROM submissions s WHERE s.campaign_id = c.id AND s.is_current = TRUE AND s.aggregate_status = 'red') AS reviewed_red,
        (SELECT COUNT(*) FROM submissions s WHERE s.campaign_id = c.id AND s.is_current = TRUE AND s.aggregate_status = 'yellow') AS reviewed_yellow,
        (SELECT COUNT(*) FROM submissions s WHERE s.campaign_id = c.id AND s.is_current = TRUE AND s.aggregate_status = 'green') AS reviewed_green
        FROM campaigns c WHERE c.owner_id = $1 ORDER BY c.created_at DESC`
	var summaries []models.CampaignSummary
	if err := r.db.SelectContext(ctx, &summaries, query, tutorID); err != nil {
		return nil, fmt.Errorf("campaign summary: %w", err)
	}
	return summaries, nil
}

// DetailByGroup aggregates submission progress per group for one campaign.
// When groupID is empty every group of the campaign owner is included.
func (r *CampaignRepository) DetailByGroup(ctx context.Context, campaignID, groupID string) ([]models.CampaignGroupDetail, error) {
	query := `SELECT g.id AS group_id, g.name AS group_name,
        COUNT(DISTINCT gs.student_id) AS total_students,
        COUNT(DISTINCT n.user_id) FILTER (WHERE n.color = 'red') AS not_submitted,
        COUNT(DISTINCT s.student_id) FILTER (WHERE s.aggregate_status = 'pending') AS being_checked,
        COUNT(DISTINCT s.student_id) FILTER (WHERE s.aggregate_status = 'red') AS reviewed_red,
        COUNT(DISTINCT s.student_id) FILTER (WHERE s.aggregate_status = 'yellow') AS reviewed_yellow,
        COUNT(DISTINCT s.student_id) FILTER (WHERE s.aggregate_status = 'green') AS reviewed_green
        FROM groups g
        JOIN group_students gs ON gs.group_id = g.id
        LEFT JOIN notifications n ON n.user_id = gs.student_id AND n.campaign_id = $1 AND n.channel = 'report'
        LEFT JOIN submissions s ON s.student_id = gs.student_id AND s.campaign_id = $1 AND s.is_current = TRUE
        WHERE g.tutor_id = (SELECT owner_id FROM campaigns WHERE id = $1)`
	args := []interface{}{campaignID}
	if groupID != "" {
		query += " AND g.id = $2"
		args = append(args, groupID)
	}
	query += " GROUP BY g.id, g.name ORDER BY g.name"

	var details []models.CampaignGroupDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("campaign detail: %w", err)
	}
	return details, nil
}

// Override forces the named students back to "must resubmit". The whole batch
// runs in one transaction; the first conflict rolls everything back.
func (r *CampaignRepository) Override(ctx context.Context, entries []models.OverrideEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin override tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, entry := range entries {
		if err = r.overrideStudentTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit override tx: %w", err)
	}
	return nil
}

func (r *CampaignRepository) overrideStudentTx(ctx context.Context, tx *sqlx.Tx, entry models.OverrideEntry) error {
	var status models.CampaignStatus
	if err := tx.GetContext(ctx, &status, `SELECT status FROM campaigns WHERE id = $1`, entry.CampaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return fmt.Errorf("load campaign: %w", err)
	}
	if status == models.CampaignStatusFinished {
		return appErrors.ErrCampaignFinished
	}

	var hasRed bool
	if err := tx.GetContext(ctx, &hasRed,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE user_id = $1 AND campaign_id = $2 AND channel = $3 AND color = $4)`,
		entry.StudentID, entry.CampaignID, models.ChannelReport, models.ColorRed); err != nil {
		return fmt.Errorf("check red notice: %w", err)
	}
	if hasRed {
		return appErrors.ErrResubmitRequested
	}

	var hasPending bool
	if err := tx.GetContext(ctx, &hasPending,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE student_id = $1 AND campaign_id = $2 AND aggregate_status = $3 AND is_current = TRUE)`,
		entry.StudentID, entry.CampaignID, models.AggregatePending); err != nil {
		return fmt.Errorf("check pending submission: %w", err)
	}
	if hasPending {
		return appErrors.ErrReviewPending
	}

	// The only place a submission is deleted outright instead of superseded.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM submissions WHERE student_id = $1 AND campaign_id = $2`,
		entry.StudentID, entry.CampaignID); err != nil {
		return fmt.Errorf("delete overridden submission: %w", err)
	}

	if err := deleteNoticesTx(ctx, tx, models.NotificationFilter{
		UserID:  entry.StudentID,
		Channel: models.ChannelReport,
		Colors:  []models.NotificationColor{models.ColorGreen, models.ColorBlue},
	}); err != nil {
		return err
	}

	campaignID := entry.CampaignID
	return insertNoticeTx(ctx, tx, &models.Notification{
		UserID:     entry.StudentID,
		Channel:    models.ChannelReport,
		Color:      models.ColorRed,
		CampaignID: &campaignID,
	})
}
