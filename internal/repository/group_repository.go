package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/housing-check-api/internal/models"
)

// GroupRepository reads the tutor group roster. The tables behind it are
// synchronized from the external student directory out of band; this service
// never writes them.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// ListByTutor returns the groups a tutor supervises.
func (r *GroupRepository) ListByTutor(ctx context.Context, tutorID string) ([]models.Group, error) {
	const query = `SELECT id, name, tutor_id, created_at FROM groups WHERE tutor_id = $1 ORDER BY name`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, tutorID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// ListStudentIDsByTutor resolves every student in the tutor's groups with a
// single query, deduplicated across groups.
func (r *GroupRepository) ListStudentIDsByTutor(ctx context.Context, tutorID string) ([]string, error) {
	const query = `SELECT DISTINCT gs.student_id FROM group_students gs
        JOIN groups g ON g.id = gs.group_id WHERE g.tutor_id = $1`
	var studentIDs []string
	if err := r.db.SelectContext(ctx, &studentIDs, query, tutorID); err != nil {
		return nil, fmt.Errorf("resolve group students: %w", err)
	}
	return studentIDs, nil
}
