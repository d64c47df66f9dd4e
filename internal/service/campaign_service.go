package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
	"github.com/noah-isme/housing-check-api/pkg/export"
)

type campaignRepository interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	OpenWithFanOut(ctx context.Context, campaign *models.Campaign, studentIDs []string) error
	SummaryByOwner(ctx context.Context, tutorID string) ([]models.CampaignSummary, error)
	DetailByGroup(ctx context.Context, campaignID, groupID string) ([]models.CampaignGroupDetail, error)
	Override(ctx context.Context, entries []models.OverrideEntry) error
}

// groupDirectory resolves tutor groups to student ids. Backed by tables the
// external student directory keeps in sync.
type groupDirectory interface {
	ListByTutor(ctx context.Context, tutorID string) ([]models.Group, error)
	ListStudentIDsByTutor(ctx context.Context, tutorID string) ([]string, error)
}

// campaignCache reads and writes cached aggregation payloads.
type campaignCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CampaignCacheConfig tunes aggregation caching.
type CampaignCacheConfig struct {
	Enabled    bool
	SummaryTTL time.Duration
	DetailTTL  time.Duration
}

// CampaignService orchestrates bulk re-verification cycles.
type CampaignService struct {
	repo      campaignRepository
	directory groupDirectory
	cache     campaignCache
	cacheCfg  CampaignCacheConfig
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs the campaign service.
func NewCampaignService(repo campaignRepository, directory groupDirectory, cache campaignCache, cacheCfg CampaignCacheConfig, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{
		repo:      repo,
		directory: directory,
		cache:     cache,
		cacheCfg:  cacheCfg,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Open starts a new verification cycle for the tutor. Prior running campaigns
// are finished and every student in the tutor's groups gets a red "must
// resubmit" notice, all in one storage transaction.
func (s *CampaignService) Open(ctx context.Context, tutorID string) (*models.Campaign, error) {
	if tutorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tutor id required")
	}
	studentIDs, err := s.directory.ListStudentIDsByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve students")
	}

	campaign := &models.Campaign{OwnerID: tutorID, Status: models.CampaignStatusProcess}
	if err := s.repo.OpenWithFanOut(ctx, campaign, studentIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open campaign")
	}
	s.logger.Info("campaign opened",
		zap.String("campaign_id", campaign.ID),
		zap.String("tutor_id", tutorID),
		zap.Int("students", len(studentIDs)))
	s.invalidate(ctx)
	return campaign, nil
}

// Summary returns the tutor's campaigns with progress counters.
func (s *CampaignService) Summary(ctx context.Context, tutorID string) ([]models.CampaignSummary, error) {
	key := "campaigns:summary:" + tutorID
	if s.cacheEnabled() {
		var cached []models.CampaignSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("campaign summary cache read failed", zap.Error(err))
		}
	}

	summaries, err := s.repo.SummaryByOwner(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign summary")
	}
	if summaries == nil {
		summaries = []models.CampaignSummary{}
	}
	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, summaries, s.cacheCfg.SummaryTTL); err != nil {
			s.logger.Warn("campaign summary cache write failed", zap.Error(err))
		}
	}
	return summaries, nil
}

// Detail returns the per-group breakdown for one campaign, optionally limited
// to a single group. Read-only.
func (s *CampaignService) Detail(ctx context.Context, campaignID, groupID string) (*models.CampaignDetail, error) {
	key := fmt.Sprintf("campaigns:detail:%s:%s", campaignID, groupID)
	if s.cacheEnabled() {
		var cached models.CampaignDetail
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("campaign detail cache read failed", zap.Error(err))
		}
	}

	campaign, err := s.repo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	groups, err := s.repo.DetailByGroup(ctx, campaignID, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign detail")
	}
	if groups == nil {
		groups = []models.CampaignGroupDetail{}
	}
	detail := &models.CampaignDetail{Campaign: *campaign, Groups: groups}
	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, detail, s.cacheCfg.DetailTTL); err != nil {
			s.logger.Warn("campaign detail cache write failed", zap.Error(err))
		}
	}
	return detail, nil
}

// Override forces the named students back to "must resubmit" outside the
// normal review outcome. The first conflicting entry aborts the whole batch.
func (s *CampaignService) Override(ctx context.Context, entries []models.OverrideEntry) error {
	if len(entries) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one student entry required")
	}
	for _, entry := range entries {
		if err := s.validator.Struct(entry); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override entry")
		}
	}
	if err := s.repo.Override(ctx, entries); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply override")
	}
	s.invalidate(ctx)
	return nil
}

// ExportSummary renders the tutor's campaign summary as CSV or PDF.
func (s *CampaignService) ExportSummary(ctx context.Context, tutorID, format string) ([]byte, string, string, error) {
	summaries, err := s.Summary(ctx, tutorID)
	if err != nil {
		return nil, "", "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Campaign", "Status", "Opened", "Not submitted", "Being checked", "Red", "Yellow", "Green"},
	}
	for _, summary := range summaries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Campaign":      summary.ID,
			"Status":        string(summary.Status),
			"Opened":        summary.CreatedAt.Format("2006-01-02"),
			"Not submitted": strconv.Itoa(summary.NotSubmitted),
			"Being checked": strconv.Itoa(summary.BeingChecked),
			"Red":           strconv.Itoa(summary.ReviewedRed),
			"Yellow":        strconv.Itoa(summary.ReviewedYellow),
			"Green":         strconv.Itoa(summary.ReviewedGreen),
		})
	}

	switch format {
	case "pdf":
		data, err := s.pdf.Render(dataset, "Housing verification summary")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "campaign-summary.pdf", "application/pdf", nil
	case "", "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "campaign-summary.csv", "text/csv", nil
	}
	return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unknown export format")
}

// Groups lists the tutor's supervised groups.
func (s *CampaignService) Groups(ctx context.Context, tutorID string) ([]models.Group, error) {
	groups, err := s.directory.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

func (s *CampaignService) cacheEnabled() bool {
	return s.cache != nil && s.cacheCfg.Enabled
}

func (s *CampaignService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "campaigns:*"); err != nil {
		s.logger.Warn("failed to invalidate campaign cache", zap.Error(err))
	}
}
