package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/housing-check-api/internal/middleware"
	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
)

type campaignServiceMock struct {
	openResp       *models.Campaign
	openErr        error
	summaryResp    []models.CampaignSummary
	detailResp     *models.CampaignDetail
	detailErr      error
	overrideErr    error
	exportData     []byte
	groupsResp     []models.Group
	openTutor      string
	detailCampaign string
	detailGroup    string
	overridden     []models.OverrideEntry
	exportFormat   string
}

func (m *campaignServiceMock) Open(ctx context.Context, tutorID string) (*models.Campaign, error) {
	m.openTutor = tutorID
	return m.openResp, m.openErr
}

func (m *campaignServiceMock) Summary(ctx context.Context, tutorID string) ([]models.CampaignSummary, error) {
	return m.summaryResp, nil
}

func (m *campaignServiceMock) Detail(ctx context.Context, campaignID, groupID string) (*models.CampaignDetail, error) {
	m.detailCampaign = campaignID
	m.detailGroup = groupID
	return m.detailResp, m.detailErr
}

func (m *campaignServiceMock) Override(ctx context.Context, entries []models.OverrideEntry) error {
	m.overridden = entries
	return m.overrideErr
}

func (m *campaignServiceMock) ExportSummary(ctx context.Context, tutorID, format string) ([]byte, string, string, error) {
	m.exportFormat = format
	return m.exportData, "campaign-summary.csv", "text/csv", nil
}

func (m *campaignServiceMock) Groups(ctx context.Context, tutorID string) ([]models.Group, error) {
	return m.groupsResp, nil
}

func tutorContext(t *testing.T, w *httptest.ResponseRecorder) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tutor-1", Role: models.RoleTutor})
	return c
}

func TestCampaignHandlerOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &campaignServiceMock{openResp: &models.Campaign{ID: "camp-1", OwnerID: "tutor-1"}}
	handler := NewCampaignHandler(mockSvc)

	w := httptest.NewRecorder()
	c := tutorContext(t, w)
	req, _ := http.NewRequest(http.MethodPost, "/permission-create", nil)
	c.Request = req

	handler.Open(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tutor-1", mockSvc.openTutor)
}

func TestCampaignHandlerOpenUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCampaignHandler(&campaignServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/permission-create", nil)
	c.Request = req

	handler.Open(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCampaignHandlerDetailNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &campaignServiceMock{detailErr: appErrors.Clone(appErrors.ErrNotFound, "campaign not found")}
	handler := NewCampaignHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/camp-missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "permissionId", Value: "camp-missing"}}

	handler.Detail(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "camp-missing", mockSvc.detailCampaign)
	assert.Empty(t, mockSvc.detailGroup)
}

func TestCampaignHandlerOverride(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &campaignServiceMock{}
	handler := NewCampaignHandler(mockSvc)

	payload, _ := json.Marshal([]models.OverrideEntry{{StudentID: "s-1", CampaignID: "camp-1"}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/special", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Override(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, mockSvc.overridden, 1)
	assert.Equal(t, "s-1", mockSvc.overridden[0].StudentID)
}

func TestCampaignHandlerOverrideConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &campaignServiceMock{overrideErr: appErrors.ErrReviewPending}
	handler := NewCampaignHandler(mockSvc)

	payload, _ := json.Marshal([]models.OverrideEntry{{StudentID: "s-1", CampaignID: "camp-1"}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/special", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Override(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCampaignHandlerOverrideInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCampaignHandler(&campaignServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/special", bytes.NewBufferString(`{"studentId":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Override(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCampaignHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &campaignServiceMock{exportData: []byte("Campaign,Status\n")}
	handler := NewCampaignHandler(mockSvc)

	w := httptest.NewRecorder()
	c := tutorContext(t, w)
	req, _ := http.NewRequest(http.MethodGet, "/my-permissions/export?format=csv", nil)
	c.Request = req

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.exportFormat)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "campaign-summary.csv")
	assert.Equal(t, "Campaign,Status\n", w.Body.String())
}
