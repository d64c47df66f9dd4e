package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
)

type submissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindCurrentTenant(ctx context.Context, studentID string) (*models.Submission, error)
	ListByStatus(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
	CreateWithNotice(ctx context.Context, sub *models.Submission) error
	UpdateWithNotice(ctx context.Context, sub *models.Submission, supersededNoticeID string) error
}

// fileReleaser deletes a stored evidence photo once its URL is superseded.
type fileReleaser interface {
	Delete(filename string) error
}

// cacheInvalidator drops cached campaign aggregations after mutations.
type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateSubmissionRequest holds the payload for a new housing disclosure.
// Evidence fields carry the relative URLs returned by the upload collaborator.
type CreateSubmissionRequest struct {
	CampaignID  *string               `json:"campaign_id"`
	Kind        models.SubmissionKind `json:"kind" validate:"required"`
	OwnerName   string                `json:"owner_name"`
	OwnerPhone  string                `json:"owner_phone"`
	RoomNumber  string                `json:"room_number"`
	Building    string                `json:"building"`
	BoilerURL   string                `json:"boiler"`
	GasStoveURL string                `json:"gas_stove"`
	ChimneyURL  string                `json:"chimney"`
	AdditionURL string                `json:"addition"`
}

// UpdateSubmissionRequest carries a resubmission. Only provided fields are
// replaced; SupersededNoticeID optionally names the ledger entry the client
// considers outdated.
type UpdateSubmissionRequest struct {
	OwnerName          string `json:"owner_name"`
	OwnerPhone         string `json:"owner_phone"`
	RoomNumber         string `json:"room_number"`
	Building           string `json:"building"`
	BoilerURL          string `json:"boiler"`
	GasStoveURL        string `json:"gas_stove"`
	ChimneyURL         string `json:"chimney"`
	AdditionURL        string `json:"addition"`
	SupersededNoticeID string `json:"notification_id"`
}

// requiredFields lists what each submission kind must carry. Tenants disclose
// rented housing and must prove boiler, stove and chimney safety with photos;
// the other kinds carry contact or room details instead and skip evidence.
var requiredFields = map[models.SubmissionKind][]struct {
	name string
	get  func(CreateSubmissionRequest) string
}{
	models.KindTenant: {
		{"boiler", func(r CreateSubmissionRequest) string { return r.BoilerURL }},
		{"gas_stove", func(r CreateSubmissionRequest) string { return r.GasStoveURL }},
		{"chimney", func(r CreateSubmissionRequest) string { return r.ChimneyURL }},
	},
	models.KindRelative: {
		{"owner_name", func(r CreateSubmissionRequest) string { return r.OwnerName }},
		{"owner_phone", func(r CreateSubmissionRequest) string { return r.OwnerPhone }},
	},
	models.KindLittleHouse: {
		{"owner_name", func(r CreateSubmissionRequest) string { return r.OwnerName }},
		{"owner_phone", func(r CreateSubmissionRequest) string { return r.OwnerPhone }},
	},
	models.KindBedroom: {
		{"room_number", func(r CreateSubmissionRequest) string { return r.RoomNumber }},
		{"building", func(r CreateSubmissionRequest) string { return r.Building }},
	},
}

// SubmissionService owns the disclosure lifecycle.
type SubmissionService struct {
	repo      submissionRepository
	files     fileReleaser
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(repo submissionRepository, files fileReleaser, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, files: files, cache: cache, validator: validate, logger: logger}
}

// Create registers a student's housing disclosure and flips their ledger
// entry to blue (awaiting review).
func (s *SubmissionService) Create(ctx context.Context, studentID string, req CreateSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	rules, ok := requiredFields[req.Kind]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission kind")
	}
	var missing []string
	for _, rule := range rules {
		if strings.TrimSpace(rule.get(req)) == "" {
			missing = append(missing, rule.name)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	if req.Kind == models.KindTenant {
		if _, err := s.repo.FindCurrentTenant(ctx, studentID); err == nil {
			return nil, appErrors.ErrDuplicateSubmission
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing submission")
		}
	}

	sub := &models.Submission{
		StudentID:       studentID,
		CampaignID:      req.CampaignID,
		Kind:            req.Kind,
		AggregateStatus: models.AggregatePending,
		IsCurrent:       true,
	}
	switch req.Kind {
	case models.KindTenant:
		sub.BoilerURL = optional(req.BoilerURL)
		sub.GasStoveURL = optional(req.GasStoveURL)
		sub.ChimneyURL = optional(req.ChimneyURL)
		sub.AdditionURL = optional(req.AdditionURL)
	case models.KindRelative, models.KindLittleHouse:
		sub.OwnerName = optional(req.OwnerName)
		sub.OwnerPhone = optional(req.OwnerPhone)
	case models.KindBedroom:
		sub.RoomNumber = optional(req.RoomNumber)
		sub.Building = optional(req.Building)
	}

	if err := s.repo.CreateWithNotice(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}
	s.invalidateCampaignCache(ctx)
	return sub, nil
}

// Update applies a resubmission. Replaced evidence photos are released from
// storage, the per-item verdict is cleared and the aggregate drops back to
// pending so the submission is reviewed again.
func (s *SubmissionService) Update(ctx context.Context, studentID, id string, req UpdateSubmissionRequest) (*models.Submission, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if sub.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another student")
	}

	changed := false
	changed = s.replaceEvidence(&sub.BoilerURL, &sub.BoilerVerdict, req.BoilerURL) || changed
	changed = s.replaceEvidence(&sub.GasStoveURL, &sub.GasStoveVerdict, req.GasStoveURL) || changed
	changed = s.replaceEvidence(&sub.ChimneyURL, &sub.ChimneyVerdict, req.ChimneyURL) || changed
	changed = s.replaceEvidence(&sub.AdditionURL, &sub.AdditionVerdict, req.AdditionURL) || changed

	if req.OwnerName != "" {
		sub.OwnerName = optional(req.OwnerName)
	}
	if req.OwnerPhone != "" {
		sub.OwnerPhone = optional(req.OwnerPhone)
	}
	if req.RoomNumber != "" {
		sub.RoomNumber = optional(req.RoomNumber)
	}
	if req.Building != "" {
		sub.Building = optional(req.Building)
	}

	if changed {
		sub.AggregateStatus = models.AggregatePending
	}
	sub.NeedsResubmit = false

	if err := s.repo.UpdateWithNotice(ctx, sub, req.SupersededNoticeID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
	}
	s.invalidateCampaignCache(ctx)
	return sub, nil
}

// ListByStatus returns current submissions filtered by aggregate status. The
// legacy literal "Being checked" selects submissions awaiting review.
func (s *SubmissionService) ListByStatus(ctx context.Context, rawStatus string, page, pageSize int) ([]models.Submission, *models.Pagination, error) {
	status, err := normalizeStatus(rawStatus)
	if err != nil {
		return nil, nil, err
	}
	subs, total, err := s.repo.ListByStatus(ctx, models.SubmissionFilter{Status: status, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return subs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// replaceEvidence swaps in a new photo URL, releasing the superseded file and
// clearing the item's verdict. Returns true when the item actually changed.
func (s *SubmissionService) replaceEvidence(url **string, verdict **models.Verdict, newURL string) bool {
	if newURL == "" {
		return false
	}
	if *url != nil && **url == newURL {
		return false
	}
	if *url != nil && s.files != nil {
		if err := s.files.Delete(**url); err != nil {
			s.logger.Warn("failed to release superseded photo", zap.String("url", **url), zap.Error(err))
		}
	}
	*url = &newURL
	*verdict = nil
	return true
}

func (s *SubmissionService) invalidateCampaignCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "campaigns:*"); err != nil {
		s.logger.Warn("failed to invalidate campaign cache", zap.Error(err))
	}
}

func normalizeStatus(raw string) (models.AggregateStatus, error) {
	switch raw {
	case "Being checked", "blue", string(models.AggregatePending):
		return models.AggregatePending, nil
	case string(models.AggregateRed):
		return models.AggregateRed, nil
	case string(models.AggregateYellow):
		return models.AggregateYellow, nil
	case string(models.AggregateGreen):
		return models.AggregateGreen, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unknown submission status")
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
