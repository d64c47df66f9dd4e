package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/housing-check-api/internal/models"
)

const submissionColumns = `id, student_id, campaign_id, kind, owner_name, owner_phone, room_number, building,
        boiler_url, boiler_verdict, gas_stove_url, gas_stove_verdict, chimney_url, chimney_verdict,
        addition_url, addition_verdict, aggregate_status, is_current, needs_resubmit, created_at, updated_at`

// SubmissionRepository manages persistence for housing disclosures.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// FindByID fetches a submission by ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE id = $1", submissionColumns)
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindCurrentTenant returns the student's active tenant submission, if any.
// sql.ErrNoRows means the student is free to create one.
func (r *SubmissionRepository) FindCurrentTenant(ctx context.Context, studentID string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions
        WHERE student_id = $1 AND kind = $2 AND is_current = TRUE AND needs_resubmit = FALSE
        ORDER BY created_at DESC LIMIT 1`, submissionColumns)
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, studentID, models.KindTenant); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByStatus returns current submissions filtered by aggregate status.
func (r *SubmissionRepository) ListByStatus(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM submissions
        WHERE aggregate_status = $1 AND is_current = TRUE
        ORDER BY created_at DESC LIMIT %d OFFSET %d`, submissionColumns, size, offset)
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query, filter.Status); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM submissions WHERE aggregate_status = $1 AND is_current = TRUE`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, filter.Status); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return subs, total, nil
}

// CreateWithNotice persists a new submission, retires the student's previous
// current one, purges the student's report entries and writes the blue
// "awaiting review" notice, all in one transaction.
func (r *SubmissionRepository) CreateWithNotice(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create submission tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE submissions SET is_current = FALSE, updated_at = $2 WHERE student_id = $1 AND is_current = TRUE`,
		sub.StudentID, now); err != nil {
		return fmt.Errorf("retire previous submissions: %w", err)
	}

	const insert = `INSERT INTO submissions (id, student_id, campaign_id, kind, owner_name, owner_phone, room_number, building,
        boiler_url, boiler_verdict, gas_stove_url, gas_stove_verdict, chimney_url, chimney_verdict,
        addition_url, addition_verdict, aggregate_status, is_current, needs_resubmit, created_at, updated_at)
        VALUES (:id, :student_id, :campaign_id, :kind, :owner_name, :owner_phone, :room_number, :building,
        :boiler_url, :boiler_verdict, :gas_stove_url, :gas_stove_verdict, :chimney_url, :chimney_verdict,
        :addition_url, :addition_verdict, :aggregate_status, :is_current, :needs_resubmit, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	if err = deleteNoticesTx(ctx, tx, models.NotificationFilter{UserID: sub.StudentID, Channel: models.ChannelReport}); err != nil {
		return err
	}
	if err = insertNoticeTx(ctx, tx, &models.Notification{
		UserID:       sub.StudentID,
		Channel:      models.ChannelReport,
		Color:        models.ColorBlue,
		CampaignID:   sub.CampaignID,
		SubmissionID: &sub.ID,
	}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create submission tx: %w", err)
	}
	return nil
}

// UpdateWithNotice saves a resubmission. The aggregate is expected to be reset
// by the caller; the submission's blue notice is replaced with a fresh one and
// the notice the client names as superseded is deleted when given.
func (r *SubmissionRepository) UpdateWithNotice(ctx context.Context, sub *models.Submission, supersededNoticeID string) error {
	now := time.Now().UTC()
	sub.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update submission tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE submissions SET owner_name = :owner_name, owner_phone = :owner_phone,
        room_number = :room_number, building = :building,
        boiler_url = :boiler_url, boiler_verdict = :boiler_verdict,
        gas_stove_url = :gas_stove_url, gas_stove_verdict = :gas_stove_verdict,
        chimney_url = :chimney_url, chimney_verdict = :chimney_verdict,
        addition_url = :addition_url, addition_verdict = :addition_verdict,
        aggregate_status = :aggregate_status, needs_resubmit = :needs_resubmit, updated_at = :updated_at
        WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, update, sub); err != nil {
		return fmt.Errorf("update submission: %w", err)
	}

	if supersededNoticeID != "" {
		if err = deleteNoticesTx(ctx, tx, models.NotificationFilter{ID: supersededNoticeID}); err != nil {
			return err
		}
	}
	if err = deleteNoticesTx(ctx, tx, models.NotificationFilter{
		UserID:  sub.StudentID,
		Channel: models.ChannelReport,
		Colors:  []models.NotificationColor{models.ColorBlue, models.ColorRed},
	}); err != nil {
		return err
	}
	if err = insertNoticeTx(ctx, tx, &models.Notification{
		UserID:       sub.StudentID,
		Channel:      models.ChannelReport,
		Color:        models.ColorBlue,
		CampaignID:   sub.CampaignID,
		SubmissionID: &sub.ID,
	}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update submission tx: %w", err)
	}
	return nil
}

// ApplyReview persists per-item verdicts with the computed aggregate and
// removes the submission's blue notice. Re-running it is harmless: the update
// overwrites the same columns and the delete matches nothing.
func (r *SubmissionRepository) ApplyReview(ctx context.Context, sub *models.Submission) error {
	now := time.Now().UTC()
	sub.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE submissions SET boiler_verdict = :boiler_verdict, gas_stove_verdict = :gas_stove_verdict,
        chimney_verdict = :chimney_verdict, addition_verdict = :addition_verdict,
        aggregate_status = :aggregate_status, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, update, sub); err != nil {
		return fmt.Errorf("apply review: %w", err)
	}

	if err = deleteNoticesTx(ctx, tx, models.NotificationFilter{
		SubmissionID: sub.ID,
		Colors:       []models.NotificationColor{models.ColorBlue},
	}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit review tx: %w", err)
	}
	return nil
}

// HasPendingForCampaign reports whether the student still has a submission
// awaiting review in the given campaign.
func (r *SubmissionRepository) HasPendingForCampaign(ctx context.Context, studentID, campaignID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM submissions
        WHERE student_id = $1 AND campaign_id = $2 AND aggregate_status = $3 AND is_current = TRUE)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, campaignID, models.AggregatePending); err != nil {
		return false, fmt.Errorf("check pending submission: %w", err)
	}
	return exists, nil
}
