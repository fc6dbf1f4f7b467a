package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
)

func TestResolveEmailCreatesUserOnFirstSight(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	id, err := identity.Resolve(ctx, "newcomer@example.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id == "" {
		t.Fatal("Resolve() returned empty id")
	}

	user, err := identity.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Email != "newcomer@example.com" {
		t.Errorf("email = %q, want %q", user.Email, "newcomer@example.com")
	}
	if user.Role != models.RoleStudent {
		t.Errorf("role = %q, want student for an unknown email", user.Role)
	}
}

func TestResolveEmailIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	first, err := identity.Resolve(ctx, "student@gmail.com")
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	second, err := identity.Resolve(ctx, "student@gmail.com")
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if first != second {
		t.Errorf("repeated resolution returned different ids: %q vs %q", first, second)
	}

	if len(repo.users) != 1 {
		t.Errorf("user count = %d, want 1", len(repo.users))
	}
}

func TestResolveEmailCaseInsensitive(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	lower, err := identity.Resolve(ctx, "student@gmail.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	mixed, err := identity.Resolve(ctx, "Student@Gmail.com")
	if err != nil {
		t.Fatalf("Resolve() mixed case error = %v", err)
	}
	if lower != mixed {
		t.Errorf("case variants resolved to different ids: %q vs %q", lower, mixed)
	}
}

func TestResolveDemoEmailGetsDemoRole(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	id, err := identity.Resolve(ctx, "instructor@gmail.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	role, err := identity.RoleOf(ctx, id)
	if err != nil {
		t.Fatalf("RoleOf() error = %v", err)
	}
	if role != models.RoleInstructor {
		t.Errorf("role = %q, want instructor", role)
	}
}

func TestResolveLegacyNumericID(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	id, err := identity.Resolve(ctx, "1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	user, err := identity.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Email != "admin@gmail.com" {
		t.Errorf("legacy id 1 resolved to %q, want admin@gmail.com", user.Email)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", user.Role)
	}

	// Same legacy id and its email converge on one row.
	byEmail, err := identity.Resolve(ctx, "admin@gmail.com")
	if err != nil {
		t.Fatalf("Resolve() by email error = %v", err)
	}
	if byEmail != id {
		t.Errorf("legacy id and email resolved to different ids: %q vs %q", id, byEmail)
	}
}

func TestResolveUUIDShapedTokenPassesThrough(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)

	token := "6f1e1c2a-9be1-4a59-8a3e-000000000001"
	id, err := identity.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != token {
		t.Errorf("Resolve() = %q, want the token unchanged", id)
	}
}

func TestResolveFailures(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"blank", "", ErrMissingIdentifier},
		{"whitespace", "   ", ErrMissingIdentifier},
		{"unknown numeric", "999", ErrCannotCanonicalize},
		{"garbage", "notanything", ErrCannotCanonicalize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := identity.Resolve(ctx, tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve(%q) error = %v, want %v", tt.token, err, tt.wantErr)
			}
		})
	}
}

func TestResolveConvergesOnCreateRace(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	// Simulate losing the insert race: the first Create fails with a
	// duplicate key after another resolution slipped its row in.
	winner := repo.seedUser("racer@example.com", models.RoleStudent)
	repo.userCreateErr = repositories.ErrDuplicateKey

	id, err := identity.Resolve(ctx, "racer@example.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != winner.ID {
		t.Errorf("Resolve() = %q, want the winning row %q", id, winner.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("user count = %d, want exactly 1 after the race", len(repo.users))
	}
}

func TestResolveConcurrentSameEmail(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	const workers = 16
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ids[n], errs[n] = identity.Resolve(ctx, "concurrent@example.com")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: Resolve() error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d resolved %q, want %q", i, ids[i], ids[0])
		}
	}
	if len(repo.users) != 1 {
		t.Errorf("user count = %d, want exactly 1", len(repo.users))
	}
}

func TestRoleOfReadsLive(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)
	ctx := context.Background()

	user := repo.seedUser("promotee@example.com", models.RoleStudent)

	role, err := identity.RoleOf(ctx, user.ID)
	if err != nil {
		t.Fatalf("RoleOf() error = %v", err)
	}
	if role != models.RoleStudent {
		t.Fatalf("role = %q, want student", role)
	}

	if err := repo.User().UpdateRole(ctx, user.ID, models.RoleInstructor); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	// The very next read must observe the change.
	role, err = identity.RoleOf(ctx, user.ID)
	if err != nil {
		t.Fatalf("RoleOf() after update error = %v", err)
	}
	if role != models.RoleInstructor {
		t.Errorf("role = %q, want instructor immediately after the grant", role)
	}
}

func TestGetUserNotFound(t *testing.T) {
	repo := newMockRepository()
	identity := newTestIdentity(repo)

	_, err := identity.GetUser(context.Background(), "ffffffff-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser() error = %v, want ErrUserNotFound", err)
	}
}
