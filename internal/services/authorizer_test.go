package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/openedu-labs/lms-service/internal/models"
)

func newTestAuthorizer(repo *mockRepository) Authorizer {
	return NewAuthorizer(newTestIdentity(repo), testLogger())
}

func TestAuthorizeSessionWinsOverExplicit(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)

	admin := repo.seedUser("admin@gmail.com", models.RoleAdmin)
	student := repo.seedUser("student@gmail.com", models.RoleStudent)

	decision := authorizer.Authorize(context.Background(), AuthContext{
		SessionUserID: student.ID,
		Explicit:      []string{admin.Email},
		FallbackID:    admin.Email,
	}, models.ActionAdminUsers)

	if decision.Ok {
		t.Fatal("expected denial: session identity is a student, explicit admin fields must be ignored")
	}
	if decision.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", decision.Status)
	}
}

func TestAuthorizeExplicitWinsOverFallback(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)

	instructor := repo.seedUser("instructor@gmail.com", models.RoleInstructor)
	repo.seedUser("student@gmail.com", models.RoleStudent)

	decision := authorizer.Authorize(context.Background(), AuthContext{
		Explicit:   []string{instructor.Email},
		FallbackID: "student@gmail.com",
	}, models.ActionCourseCreate)

	if !decision.Ok {
		t.Fatalf("expected success, got %d %q", decision.Status, decision.Message)
	}
	if decision.User.ID != instructor.ID {
		t.Errorf("acting user = %q, want the explicit instructor %q", decision.User.ID, instructor.ID)
	}
}

func TestAuthorizeFallbackHeaderFlow(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)
	ctx := context.Background()

	// The demo header names an email never seen before; it must be
	// created lazily with its demo role and then pass the capability
	// check.
	decision := authorizer.Authorize(ctx, AuthContext{
		FallbackID: "instructor@gmail.com",
	}, models.ActionCourseCreate)

	if !decision.Ok {
		t.Fatalf("expected success, got %d %q", decision.Status, decision.Message)
	}
	if decision.User.Role != models.RoleInstructor {
		t.Errorf("role = %q, want instructor", decision.User.Role)
	}

	// The same identity must not reach admin surfaces.
	denied := authorizer.Authorize(ctx, AuthContext{
		FallbackID: "instructor@gmail.com",
	}, models.ActionAdminUsers)
	if denied.Ok || denied.Status != http.StatusForbidden {
		t.Errorf("admin action: ok=%v status=%d, want 403 denial", denied.Ok, denied.Status)
	}
}

func TestAuthorizeNoIdentifier(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)

	decision := authorizer.Authorize(context.Background(), AuthContext{}, models.ActionCourseCreate)
	if decision.Ok || decision.Status != http.StatusUnauthorized {
		t.Errorf("ok=%v status=%d, want 401", decision.Ok, decision.Status)
	}
}

func TestAuthorizeUnresolvableIdentifier(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)

	decision := authorizer.Authorize(context.Background(), AuthContext{
		Explicit: []string{"42"},
	}, models.ActionCourseCreate)
	if decision.Ok || decision.Status != http.StatusBadRequest {
		t.Errorf("ok=%v status=%d, want 400 for an unknown legacy id", decision.Ok, decision.Status)
	}
}

func TestAuthorizeUUIDTokenMustExist(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)

	decision := authorizer.Authorize(context.Background(), AuthContext{
		Explicit: []string{"6f1e1c2a-9be1-4a59-8a3e-000000000001"},
	}, models.ActionCourseCreate)
	if decision.Ok || decision.Status != http.StatusUnauthorized {
		t.Errorf("ok=%v status=%d, want 401 for a UUID naming no row", decision.Ok, decision.Status)
	}
}

func TestAuthorizeSeesFreshRole(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)
	ctx := context.Background()

	user := repo.seedUser("upgraded@example.com", models.RoleStudent)

	denied := authorizer.Authorize(ctx, AuthContext{Explicit: []string{user.Email}}, models.ActionCourseCreate)
	if denied.Ok {
		t.Fatal("student must not create courses")
	}

	if err := repo.User().UpdateRole(ctx, user.ID, models.RoleInstructor); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	granted := authorizer.Authorize(ctx, AuthContext{Explicit: []string{user.Email}}, models.ActionCourseCreate)
	if !granted.Ok {
		t.Errorf("expected the next check to observe the new role, got %d %q", granted.Status, granted.Message)
	}
}

func TestAuthenticateSkipsCapabilityCheck(t *testing.T) {
	repo := newMockRepository()
	authorizer := newTestAuthorizer(repo)

	student := repo.seedUser("student@gmail.com", models.RoleStudent)

	decision := authorizer.Authenticate(context.Background(), AuthContext{
		Explicit: []string{student.Email},
	})
	if !decision.Ok {
		t.Fatalf("expected success, got %d %q", decision.Status, decision.Message)
	}
	if decision.User.ID != student.ID {
		t.Errorf("acting user = %q, want %q", decision.User.ID, student.ID)
	}
}
