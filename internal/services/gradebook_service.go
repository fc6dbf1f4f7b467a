package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
)

type gradebookService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGradebookService(repo repositories.Repository, logger *slog.Logger) GradebookService {
	return &gradebookService{repo: repo, logger: logger}
}

// ExportCourseGradebook renders the course gradebook as an .xlsx
// workbook. Admins export any course; instructors only their own.
func (s *gradebookService) ExportCourseGradebook(ctx context.Context, courseID uint, actor *models.User) ([]byte, string, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrCourseNotFound
		}
		return nil, "", err
	}

	if actor.Role != models.RoleAdmin && course.OwnerID != actor.ID {
		return nil, "", NewPermissionError(actor.ID, "gradebook", "export", "not course owner or insufficient permissions")
	}

	rows, err := s.repo.Gradebook().CourseGradebook(ctx, courseID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load gradebook: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Gradebook"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student", "Assignment", "Max Points", "Score", "Letter Grade", "Graded At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.StudentEmail,
			row.Assignment,
			row.MaxPoints,
			cellOrEmpty(row.Score),
			cellOrEmptyString(row.LetterGrade),
			cellOrEmptyString(row.GradedAt),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("gradebook-course-%d.xlsx", courseID)
	s.logger.Info("Gradebook exported",
		"course_id", courseID,
		"rows", len(rows),
		"actor_id", actor.ID)

	return buf.Bytes(), filename, nil
}

func cellOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellOrEmptyString(v *string) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
