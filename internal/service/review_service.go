package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
)

type reviewSubmissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	ApplyReview(ctx context.Context, sub *models.Submission) error
}

type reviewCampaignRepository interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

// ReviewRequest carries the tutor's per-item verdicts for one submission.
type ReviewRequest struct {
	SubmissionID string         `json:"submission_id" validate:"required"`
	Boiler       models.Verdict `json:"boiler" validate:"required"`
	GasStove     models.Verdict `json:"gas_stove" validate:"required"`
	Chimney      models.Verdict `json:"chimney" validate:"required"`
	Addition     models.Verdict `json:"addition"`
}

// ReviewService evaluates submitted evidence into an aggregate verdict.
type ReviewService struct {
	submissions reviewSubmissionRepository
	campaigns   reviewCampaignRepository
	cache       cacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReviewService constructs the review service.
func NewReviewService(submissions reviewSubmissionRepository, campaigns reviewCampaignRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{submissions: submissions, campaigns: campaigns, cache: cache, validator: validate, logger: logger}
}

// Review writes per-item verdicts and the aggregate, then clears the blue
// "awaiting review" notice. The aggregate is the worst of boiler, stove and
// chimney; the addition photo is advisory and never counts. Re-reviewing
// overwrites the previous verdict and is allowed while the campaign runs.
func (s *ReviewService) Review(ctx context.Context, req ReviewRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	for _, v := range []models.Verdict{req.Boiler, req.GasStove, req.Chimney} {
		if !v.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "verdicts must be red, yellow or green")
		}
	}
	if req.Addition != "" && !req.Addition.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "verdicts must be red, yellow or green")
	}

	sub, err := s.submissions.FindByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if sub.Kind != models.KindTenant {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only tenant submissions carry reviewable evidence")
	}

	if sub.CampaignID != nil {
		campaign, err := s.campaigns.FindByID(ctx, *sub.CampaignID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
		}
		if campaign.Status == models.CampaignStatusFinished {
			return nil, appErrors.ErrCampaignFinished
		}
	}

	boiler, gasStove, chimney := req.Boiler, req.GasStove, req.Chimney
	sub.BoilerVerdict = &boiler
	sub.GasStoveVerdict = &gasStove
	sub.ChimneyVerdict = &chimney
	if req.Addition != "" {
		addition := req.Addition
		sub.AdditionVerdict = &addition
	}
	sub.AggregateStatus = models.AggregateStatus(req.Boiler.Worse(req.GasStove).Worse(req.Chimney))

	if err := s.submissions.ApplyReview(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist review")
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "campaigns:*"); err != nil {
			s.logger.Warn("failed to invalidate campaign cache", zap.Error(err))
		}
	}
	return sub, nil
}
