package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
)

type campaignRepoStub struct {
	campaign      *models.Campaign
	findErr       error
	openedWith    []string
	openErr       error
	summaries     []models.CampaignSummary
	summaryErr    error
	summaryCalls  int
	details       []models.CampaignGroupDetail
	detailErr     error
	overridden    []models.OverrideEntry
	overrideErr   error
	overrideCalls int
}

func (s *campaignRepoStub) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	return s.campaign, s.findErr
}

func (s *campaignRepoStub) OpenWithFanOut(ctx context.Context, campaign *models.Campaign, studentIDs []string) error {
	if s.openErr != nil {
		return s.openErr
	}
	campaign.ID = "camp-new"
	s.openedWith = studentIDs
	return nil
}

func (s *campaignRepoStub) SummaryByOwner(ctx context.Context, tutorID string) ([]models.CampaignSummary, error) {
	s.summaryCalls++
	return s.summaries, s.summaryErr
}

func (s *campaignRepoStub) DetailByGroup(ctx context.Context, campaignID, groupID string) ([]models.CampaignGroupDetail, error) {
	return s.details, s.detailErr
}

func (s *campaignRepoStub) Override(ctx context.Context, entries []models.OverrideEntry) error {
	s.overrideCalls++
	if s.overrideErr != nil {
		return s.overrideErr
	}
	s.overridden = entries
	return nil
}

type groupDirectoryStub struct {
	groups     []models.Group
	studentIDs []string
	err        error
}

func (s *groupDirectoryStub) ListByTutor(ctx context.Context, tutorID string) ([]models.Group, error) {
	return s.groups, s.err
}

func (s *groupDirectoryStub) ListStudentIDsByTutor(ctx context.Context, tutorID string) ([]string, error) {
	return s.studentIDs, s.err
}

type campaignCacheStub struct {
	store  map[string][]byte
	gets   []string
	sets   []string
	purged []string
}

func newCampaignCacheStub() *campaignCacheStub {
	return &campaignCacheStub{store: map[string][]byte{}}
}

func (s *campaignCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.gets = append(s.gets, key)
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *campaignCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets = append(s.sets, key)
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = raw
	return nil
}

func (s *campaignCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.purged = append(s.purged, pattern)
	s.store = map[string][]byte{}
	return nil
}

func cacheOn() CampaignCacheConfig {
	return CampaignCacheConfig{Enabled: true, SummaryTTL: time.Minute, DetailTTL: time.Minute}
}

func TestCampaignOpenFansOutToAllStudents(t *testing.T) {
	repo := &campaignRepoStub{}
	directory := &groupDirectoryStub{studentIDs: []string{"s-1", "s-2", "s-3"}}
	cache := newCampaignCacheStub()
	svc := NewCampaignService(repo, directory, cache, cacheOn(), nil, nil)

	campaign, err := svc.Open(context.Background(), "tutor-1")
	require.NoError(t, err)
	assert.Equal(t, "camp-new", campaign.ID)
	assert.Equal(t, []string{"s-1", "s-2", "s-3"}, repo.openedWith)
	assert.Contains(t, cache.purged, "campaigns:*")
}

func TestCampaignOpenRequiresTutor(t *testing.T) {
	svc := NewCampaignService(&campaignRepoStub{}, &groupDirectoryStub{}, nil, CampaignCacheConfig{}, nil, nil)
	_, err := svc.Open(context.Background(), "")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCampaignSummaryUsesCacheOnSecondCall(t *testing.T) {
	repo := &campaignRepoStub{summaries: []models.CampaignSummary{{
		Campaign: models.Campaign{ID: "camp-1", OwnerID: "tutor-1", Status: models.CampaignStatusProcess},
	}}}
	cache := newCampaignCacheStub()
	svc := NewCampaignService(repo, &groupDirectoryStub{}, cache, cacheOn(), nil, nil)

	first, err := svc.Summary(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Summary(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.summaryCalls)
	assert.Contains(t, cache.sets, "campaigns:summary:tutor-1")
}

func TestCampaignSummaryReturnsEmptySliceNotNil(t *testing.T) {
	svc := NewCampaignService(&campaignRepoStub{}, &groupDirectoryStub{}, nil, CampaignCacheConfig{}, nil, nil)
	summaries, err := svc.Summary(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.NotNil(t, summaries)
	assert.Len(t, summaries, 0)
}

func TestCampaignDetailNotFound(t *testing.T) {
	repo := &campaignRepoStub{findErr: sql.ErrNoRows}
	svc := NewCampaignService(repo, &groupDirectoryStub{}, nil, CampaignCacheConfig{}, nil, nil)

	_, err := svc.Detail(context.Background(), "missing", "")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCampaignDetailIncludesGroups(t *testing.T) {
	repo := &campaignRepoStub{
		campaign: &models.Campaign{ID: "camp-1", OwnerID: "tutor-1", Status: models.CampaignStatusProcess},
		details: []models.CampaignGroupDetail{
			{GroupID: "g-1", GroupName: "Group A", TotalStudents: 20, NotSubmitted: 5},
		},
	}
	svc := NewCampaignService(repo, &groupDirectoryStub{}, nil, CampaignCacheConfig{}, nil, nil)

	detail, err := svc.Detail(context.Background(), "camp-1", "g-1")
	require.NoError(t, err)
	assert.Equal(t, "camp-1", detail.Campaign.ID)
	require.Len(t, detail.Groups, 1)
	assert.Equal(t, 5, detail.Groups[0].NotSubmitted)
}

func TestCampaignOverrideRejectsEmptyBatch(t *testing.T) {
	repo := &campaignRepoStub{}
	svc := NewCampaignService(repo, &groupDirectoryStub{}, nil, CampaignCacheConfig{}, nil, nil)

	err := svc.Override(context.Background(), nil)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, 0, repo.overrideCalls)
}

func TestCampaignOverridePassesConflictThrough(t *testing.T) {
	repo := &campaignRepoStub{overrideErr: appErrors.ErrReviewPending}
	cache := newCampaignCacheStub()
	svc := NewCampaignService(repo, &groupDirectoryStub{}, cache, cacheOn(), nil, nil)

	err := svc.Override(context.Background(), []models.OverrideEntry{{StudentID: "s-1", CampaignID: "camp-1"}})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrReviewPending.Code, appErr.Code)
	assert.Empty(t, cache.purged)
}

func TestCampaignOverrideInvalidatesCache(t *testing.T) {
	repo := &campaignRepoStub{}
	cache := newCampaignCacheStub()
	svc := NewCampaignService(repo, &groupDirectoryStub{}, cache, cacheOn(), nil, nil)

	entries := []models.OverrideEntry{{StudentID: "s-1", CampaignID: "camp-1"}}
	require.NoError(t, svc.Override(context.Background(), entries))
	assert.Equal(t, entries, repo.overridden)
	assert.Contains(t, cache.purged, "campaigns:*")
}

func TestCampaignExportSummaryCSV(t *testing.T) {
	repo := &campaignRepoStub{summaries: []models.CampaignSummary{{
		Campaign:      models.Campaign{ID: "camp-1", OwnerID: "tutor-1", Status: models.CampaignStatusProcess, CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		NotSubmitted:  4,
		BeingChecked:  2,
		ReviewedGreen: 10,
	}}}
	svc := NewCampaignService(repo, &groupDirectoryStub{}, nil, CampaignCacheConfig{}, nil, nil)

	data, filename, contentType, err := svc.ExportSummary(context.Background(), "tutor-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "campaign-summary.csv", filename)
	assert.Equal(t, "text/csv", contentType)
	body := string(data)
	assert.True(t, strings.HasPrefix(body, "Campaign,Status,Opened"))
	assert.Contains(t, body, "camp-1,process,2026-03-02,4,2,0,0,10")
}

func TestCampaignExportSummaryUnknownFormat(t *testing.T) {
	svc := NewCampaignService(&campaignRepoStub{}, &groupDirectoryStub{}, nil, CampaignCacheConfig{}, nil, nil)
	_, _, _, err := svc.ExportSummary(context.Background(), "tutor-1", "xlsx")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
