package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openedu-labs/lms-service/internal/models"
)

type authorizerService struct {
	identity IdentityService
	logger   *slog.Logger
}

func NewAuthorizer(identity IdentityService, logger *slog.Logger) Authorizer {
	return &authorizerService{identity: identity, logger: logger}
}

// Authorize locates the acting identifier (session, then explicit fields,
// then the fallback header), resolves it, and checks the role capability
// table. The only side effect is the resolver's lazy user creation.
func (a *authorizerService) Authorize(ctx context.Context, ac AuthContext, action models.Action) *AuthDecision {
	decision := a.Authenticate(ctx, ac)
	if !decision.Ok {
		return decision
	}

	if !models.Permits(decision.User.Role, action) {
		return deny(http.StatusForbidden, "insufficient role")
	}

	return decision
}

// Authenticate resolves the acting user and verifies the row exists, with
// no capability check.
func (a *authorizerService) Authenticate(ctx context.Context, ac AuthContext) *AuthDecision {
	token, fromSession := a.pickIdentifier(ac)
	if token == "" {
		return deny(http.StatusUnauthorized, "no identifiable acting user")
	}

	userID := token
	if !fromSession {
		resolved, err := a.identity.Resolve(ctx, token)
		if err != nil {
			return a.resolutionFailure(err)
		}
		userID = resolved
	}

	// Fresh role read on every check, even for session-derived ids. This
	// also verifies a UUID-shaped token names a real row.
	user, err := a.identity.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return deny(http.StatusUnauthorized, "user not found")
		}
		a.logger.Error("authorization lookup failed", "error", err)
		return deny(http.StatusInternalServerError, "database error during authorization")
	}

	return &AuthDecision{Ok: true, User: user}
}

// pickIdentifier applies the priority order: verified session, explicit
// body/query fields, fallback header.
func (a *authorizerService) pickIdentifier(ac AuthContext) (token string, fromSession bool) {
	if s := strings.TrimSpace(ac.SessionUserID); s != "" {
		return s, true
	}
	for _, candidate := range ac.Explicit {
		if c := strings.TrimSpace(candidate); c != "" {
			return c, false
		}
	}
	if f := strings.TrimSpace(ac.FallbackID); f != "" {
		return f, false
	}
	return "", false
}

func (a *authorizerService) resolutionFailure(err error) *AuthDecision {
	switch {
	case errors.Is(err, ErrMissingIdentifier):
		return deny(http.StatusUnauthorized, "missing identifier")
	case errors.Is(err, ErrCannotCanonicalize):
		return deny(http.StatusBadRequest, "cannot canonicalize identifier")
	default:
		a.logger.Error("identifier resolution failed", "error", err)
		return deny(http.StatusInternalServerError, "database error during resolution")
	}
}

func deny(status int, message string) *AuthDecision {
	return &AuthDecision{Ok: false, Status: status, Message: message}
}
