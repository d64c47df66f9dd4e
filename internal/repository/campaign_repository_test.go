package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/housing-check-api/internal/models"
	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
)

func TestCampaignRepositoryOpenWithFanOut(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status = $1")).
		WithArgs(string(models.CampaignStatusFinished), "tutor-1", string(models.CampaignStatusProcess)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE channel = $1 AND user_id = ANY($2)")).
		WithArgs(string(models.ChannelReport), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications (id, user_id, channel, color, campaign_id, is_read, created_at) VALUES")).
		WillReturnResult(sqlmock.NewResult(3, 3))
	mock.ExpectCommit()

	campaign := &models.Campaign{OwnerID: "tutor-1"}
	err := repo.OpenWithFanOut(context.Background(), campaign, []string{"s-1", "s-2", "s-3"})
	require.NoError(t, err)
	require.NotEmpty(t, campaign.ID)
	require.Equal(t, models.CampaignStatusProcess, campaign.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryOpenWithoutStudentsSkipsFanOut(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.OpenWithFanOut(context.Background(), &models.Campaign{OwnerID: "tutor-1"}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryOverrideSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM campaigns")).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("process"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM notifications")).
		WithArgs("student-1", "camp-1", string(models.ChannelReport), string(models.ColorRed)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM submissions")).
		WithArgs("student-1", "camp-1", string(models.AggregatePending)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM submissions WHERE student_id = $1 AND campaign_id = $2")).
		WithArgs("student-1", "camp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE user_id = $1 AND channel = $2 AND color = ANY($3)")).
		WithArgs("student-1", string(models.ChannelReport), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Override(context.Background(), []models.OverrideEntry{{StudentID: "student-1", CampaignID: "camp-1"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryOverridePendingReviewAbortsBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM campaigns")).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("process"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM notifications")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM submissions")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Override(context.Background(), []models.OverrideEntry{
		{StudentID: "student-1", CampaignID: "camp-1"},
		{StudentID: "student-2", CampaignID: "camp-1"},
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrReviewPending.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryOverrideFinishedCampaign(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM campaigns")).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("finished"))
	mock.ExpectRollback()

	err := repo.Override(context.Background(), []models.OverrideEntry{{StudentID: "student-1", CampaignID: "camp-1"}})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrCampaignFinished.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositorySummaryByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "status", "created_at",
		"not_submitted", "being_checked", "reviewed_red", "reviewed_yellow", "reviewed_green"}).
		AddRow("camp-1", "tutor-1", "process", now, 4, 2, 1, 0, 3)
	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns c WHERE c.owner_id = $1")).
		WithArgs("tutor-1").
		WillReturnRows(rows)

	summaries, err := repo.SummaryByOwner(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, 4, summaries[0].NotSubmitted)
	require.Equal(t, 3, summaries[0].ReviewedGreen)
	require.NoError(t, mock.ExpectationsWereMet())
}
