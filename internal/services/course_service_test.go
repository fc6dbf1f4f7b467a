package services

import (
	"context"
	"errors"
	"testing"

	"github.com/openedu-labs/lms-service/internal/models"
)

func newTestCourseService(t *testing.T, repo *mockRepository) CourseService {
	t.Helper()
	return NewCourseService(repo, newTestIdentity(repo), testLogger(), newTestValidator(t))
}

func TestCourseCreateSetsOwner(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)

	instructor := repo.seedUser("instructor@gmail.com", models.RoleInstructor)

	course, err := svc.Create(context.Background(), &CreateCourseRequest{Title: "Algebra I"}, instructor)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if course.OwnerID != instructor.ID {
		t.Errorf("owner = %q, want the actor %q", course.OwnerID, instructor.ID)
	}
	if !course.CanEdit || !course.CanDelete {
		t.Error("owner must see can_edit and can_delete")
	}
}

func TestCourseCreateValidation(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	instructor := repo.seedUser("instructor@gmail.com", models.RoleInstructor)

	_, err := svc.Create(context.Background(), &CreateCourseRequest{Title: ""}, instructor)

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want ValidationErrors", err)
	}
}

func TestCourseDeleteOwnerAndAdminOnly(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	ctx := context.Background()

	owner := repo.seedUser("owner@example.com", models.RoleInstructor)
	other := repo.seedUser("other@example.com", models.RoleInstructor)
	admin := repo.seedUser("admin@gmail.com", models.RoleAdmin)

	course := repo.seedCourse(owner.ID, "Biology")

	// Another instructor holds the capability but not the course.
	err := svc.Delete(ctx, course.ID, other)
	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("non-owner delete error = %v, want PermissionError", err)
	}

	// Admin overrides ownership.
	if err := svc.Delete(ctx, course.ID, admin); err != nil {
		t.Fatalf("admin delete error = %v", err)
	}

	// Owner deletes their own.
	course2 := repo.seedCourse(owner.ID, "Chemistry")
	if err := svc.Delete(ctx, course2.ID, owner); err != nil {
		t.Fatalf("owner delete error = %v", err)
	}
}

func TestCourseDeleteNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	admin := repo.seedUser("admin@gmail.com", models.RoleAdmin)

	if err := svc.Delete(context.Background(), 404, admin); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("Delete() error = %v, want ErrCourseNotFound", err)
	}
}

func TestEnrollIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	ctx := context.Background()

	owner := repo.seedUser("owner@example.com", models.RoleInstructor)
	student := repo.seedUser("student@gmail.com", models.RoleStudent)
	course := repo.seedCourse(owner.ID, "History")

	first, err := svc.Enroll(ctx, course.ID, "", student)
	if err != nil {
		t.Fatalf("first Enroll() error = %v", err)
	}
	if first.AlreadyEnrolled {
		t.Error("first enrollment reported already_enrolled")
	}

	second, err := svc.Enroll(ctx, course.ID, "", student)
	if err != nil {
		t.Fatalf("second Enroll() error = %v", err)
	}
	if !second.AlreadyEnrolled {
		t.Error("second enrollment must report already_enrolled")
	}
	if second.Enrollment.ID != first.Enrollment.ID {
		t.Errorf("second enrollment row %d, want the existing %d", second.Enrollment.ID, first.Enrollment.ID)
	}

	if count, _ := repo.Enrollment().CountByCourse(ctx, course.ID); count != 1 {
		t.Errorf("enrollment count = %d, want exactly 1", count)
	}
}

func TestEnrollConvergesOnInsertRace(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	ctx := context.Background()

	owner := repo.seedUser("owner@example.com", models.RoleInstructor)
	student := repo.seedUser("student@gmail.com", models.RoleStudent)
	course := repo.seedCourse(owner.ID, "Physics")

	// A concurrent enrollment wins between the service's pre-check and
	// its insert: the pre-check misses once, the insert then hits the
	// winner's uniqueness violation, and the re-query converges.
	winner := &models.Enrollment{CourseID: course.ID, UserID: student.ID}
	if err := repo.Enrollment().Create(ctx, winner); err != nil {
		t.Fatalf("seeding winner enrollment: %v", err)
	}
	repo.enrollmentGetMiss = true

	result, err := svc.Enroll(ctx, course.ID, "", student)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if !result.AlreadyEnrolled {
		t.Error("race loser must report already_enrolled")
	}
}

func TestEnrollOtherUserByEmail(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	ctx := context.Background()

	owner := repo.seedUser("owner@example.com", models.RoleInstructor)
	course := repo.seedCourse(owner.ID, "Latin")

	// The target email has never been seen; enrollment creates the user.
	result, err := svc.Enroll(ctx, course.ID, "fresh@example.com", owner)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if result.AlreadyEnrolled {
		t.Error("fresh enrollment reported already_enrolled")
	}

	target, err := repo.User().GetByEmail(ctx, "fresh@example.com")
	if err != nil {
		t.Fatalf("target user was not created: %v", err)
	}
	if result.Enrollment.UserID != target.ID {
		t.Errorf("enrolled user = %q, want %q", result.Enrollment.UserID, target.ID)
	}
}

func TestEnrollCourseNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	student := repo.seedUser("student@gmail.com", models.RoleStudent)

	_, err := svc.Enroll(context.Background(), 77, "", student)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("Enroll() error = %v, want ErrCourseNotFound", err)
	}
}

func TestUnenroll(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	ctx := context.Background()

	owner := repo.seedUser("owner@example.com", models.RoleInstructor)
	student := repo.seedUser("student@gmail.com", models.RoleStudent)
	course := repo.seedCourse(owner.ID, "Music")

	if _, err := svc.Enroll(ctx, course.ID, "", student); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if err := svc.Unenroll(ctx, course.ID, "", student); err != nil {
		t.Fatalf("Unenroll() error = %v", err)
	}
	if err := svc.Unenroll(ctx, course.ID, "", student); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("second Unenroll() error = %v, want ErrEnrollmentNotFound", err)
	}
}

func TestListOwnedCourses(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)
	ctx := context.Background()

	owner := repo.seedUser("owner@example.com", models.RoleInstructor)
	other := repo.seedUser("other@example.com", models.RoleInstructor)
	repo.seedCourse(owner.ID, "Algebra")
	repo.seedCourse(owner.ID, "Geometry")
	repo.seedCourse(other.ID, "History")

	courses, err := svc.ListOwned(ctx, owner)
	if err != nil {
		t.Fatalf("ListOwned() error = %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("ListOwned() returned %d courses, want 2", len(courses))
	}
	for _, course := range courses {
		if course.OwnerID != owner.ID {
			t.Errorf("course %q owned by %q, want %q", course.Title, course.OwnerID, owner.ID)
		}
		if !course.CanEdit || !course.CanDelete {
			t.Errorf("course %q must be editable by its owner", course.Title)
		}
	}

	none, err := svc.ListOwned(ctx, repo.seedUser("student@gmail.com", models.RoleStudent))
	if err != nil {
		t.Fatalf("ListOwned() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListOwned() for a non-owner returned %d courses, want 0", len(none))
	}
}

func TestCourseUpdateNonOwnerDenied(t *testing.T) {
	repo := newMockRepository()
	svc := newTestCourseService(t, repo)

	owner := repo.seedUser("owner@example.com", models.RoleInstructor)
	other := repo.seedUser("other@example.com", models.RoleContentCreator)
	course := repo.seedCourse(owner.ID, "Drama")

	title := "Renamed"
	_, err := svc.Update(context.Background(), course.ID, &UpdateCourseRequest{Title: &title}, other)

	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want PermissionError", err)
	}
}
