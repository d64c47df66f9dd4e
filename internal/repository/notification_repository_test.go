package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/housing-check-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.Notification{
		UserID:  "student-1",
		Channel: models.ChannelReport,
		Color:   models.ColorBlue,
	}
	require.NoError(t, repo.Create(context.Background(), n))
	require.NotEmpty(t, n.ID)
	require.False(t, n.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryPurgeByColors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE user_id = $1 AND channel = $2 AND color = ANY($3)")).
		WithArgs("student-1", string(models.ChannelReport), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Purge(context.Background(), models.NotificationFilter{
		UserID:  "student-1",
		Channel: models.ChannelReport,
		Colors:  []models.NotificationColor{models.ColorBlue, models.ColorRed},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryPurgeRejectsEmptyFilter(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	err := repo.Purge(context.Background(), models.NotificationFilter{})
	require.Error(t, err)
}

func TestNotificationRepositoryListReturnsCounters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	now := time.Now().UTC()
	campaignID := "camp-1"
	rows := sqlmock.NewRows([]string{"id", "user_id", "channel", "color", "campaign_id", "submission_id", "is_read", "created_at"}).
		AddRow("n-2", "student-1", "report", "blue", campaignID, "sub-1", false, now).
		AddRow("n-1", "student-1", "report", "red", campaignID, nil, true, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, channel, color")).
		WithArgs("student-1", string(models.ChannelReport)).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE is_read = FALSE)")).
		WithArgs("student-1", string(models.ChannelReport)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "unread"}).AddRow(2, 1))

	items, total, unread, err := repo.List(context.Background(), "student-1", models.ChannelReport)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "n-2", items[0].ID)
	require.Equal(t, 2, total)
	require.Equal(t, 1, unread)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkAllRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read = TRUE")).
		WithArgs("student-1", string(models.ChannelReport)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.MarkAllRead(context.Background(), "student-1", models.ChannelReport))
	require.NoError(t, mock.ExpectationsWereMet())
}
