package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/openedu-labs/lms-service/internal/cache"
	"github.com/openedu-labs/lms-service/internal/repositories"
)

type gradebookRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewGradebookPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.GradebookRepository {
	return &gradebookRepository{db: db, cacheManager: cacheManager}
}

// CourseGradebook returns one row per (enrolled student, assignment) pair
// for a course, with the score where a graded submission exists.
func (r *gradebookRepository) CourseGradebook(ctx context.Context, courseID uint) ([]*repositories.GradebookRow, error) {
	cacheKey := fmt.Sprintf("course:%d:rows", courseID)
	var rows []*repositories.GradebookRow

	err := r.cacheManager.Gradebook.CacheOrExecute(ctx, cacheKey, &rows, cache.GradebookCacheConfig.TTL, func() (interface{}, error) {
		var dbRows []*repositories.GradebookRow
		err := r.db.WithContext(ctx).Raw(`
			SELECT u.id            AS student_id,
			       u.email         AS student_email,
			       a.id            AS assignment_id,
			       a.title         AS assignment,
			       a.max_points    AS max_points,
			       s.score         AS score,
			       s.letter_grade  AS letter_grade,
			       to_char(s.graded_at, 'YYYY-MM-DD HH24:MI') AS graded_at
			FROM enrollments e
			JOIN users u       ON u.id = e.user_id AND u.deleted_at IS NULL
			JOIN assignments a ON a.course_id = e.course_id AND a.deleted_at IS NULL
			LEFT JOIN submissions s
			       ON s.assignment_id = a.id AND s.user_id = u.id
			WHERE e.course_id = ?
			ORDER BY u.email, a.created_at`, courseID).
			Scan(&dbRows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to query gradebook: %w", err)
		}
		return dbRows, nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}
