package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/events"
	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
)

// AuthService verifies credentials and issues, checks and revokes session tokens.
type AuthService struct {
	deps Deps
}

func NewAuthService(d Deps) *AuthService {
	d = d.withDefaults()
	d.Logger = d.Logger.With("component", "auth")
	return &AuthService{deps: d}
}

// LoginResult is the issued token and the member it belongs to.
type LoginResult struct {
	Token  string
	Claims *auth.Claims
	Member *models.Member
}

var errInvalidCredentials = newError(ErrUnauthenticated, "Invalid credentials")

// Login answers unknown ids and wrong passwords with the same error.
func (s *AuthService) Login(ctx context.Context, memberID, password string) (*LoginResult, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" || password == "" {
		return nil, newError(ErrValidation, "User ID and password are required")
	}

	member, err := s.deps.Members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.deps.Hasher.CompareDummy(password)
			s.deps.Metrics.LoginAttempt(false)
			s.deps.Logger.InfoContext(ctx, "Login rejected", "member_id", memberID)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("login %s: %w", memberID, err)
	}

	if !s.deps.Hasher.Compare(member.PasswordHash, password) {
		s.deps.Metrics.LoginAttempt(false)
		s.deps.Logger.InfoContext(ctx, "Login rejected", "member_id", memberID)
		return nil, errInvalidCredentials
	}

	token, claims, err := s.deps.Tokens.Generate(member)
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.LoginAttempt(true)
	s.deps.Logger.InfoContext(ctx, "Member logged in", "member_id", member.MemberID, "role", member.Role)
	return &LoginResult{Token: token, Claims: claims, Member: member}, nil
}

// Authenticate validates a bearer token and returns its claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.deps.Tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrMissingToken) {
			return nil, newError(ErrUnauthenticated, "Access token required")
		}
		return nil, newError(ErrUnauthenticated, "Invalid or expired token")
	}

	revoked, err := s.deps.Revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, newError(ErrUnauthenticated, "Invalid or expired token")
	}
	return claims, nil
}

// Authorize applies the role policy to already authenticated claims.
func (s *AuthService) Authorize(claims *auth.Claims, req auth.Requirement) error {
	switch err := auth.Authorize(claims, req); {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrForbidden):
		return newError(ErrForbidden, "Admin access required")
	default:
		return newError(ErrUnauthenticated, "Access token required")
	}
}

// ChangePassword re-checks the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, memberID, current, next string) error {
	if current == "" || next == "" {
		return newError(ErrValidation, "Current and new password are required")
	}

	member, err := s.deps.Members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrNotFound, "Member not found")
		}
		return fmt.Errorf("change password for %s: %w", memberID, err)
	}

	if !s.deps.Hasher.Compare(member.PasswordHash, current) {
		return newError(ErrUnauthenticated, "Current password is incorrect")
	}

	hash, err := s.deps.Hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.deps.Members.UpdatePassword(ctx, memberID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrNotFound, "Member not found")
		}
		return err
	}

	s.deps.Logger.InfoContext(ctx, "Password changed", "member_id", memberID)
	s.deps.publish(ctx, events.PasswordChanged, map[string]string{"memberId": memberID})
	return nil
}

// Logout revokes the session token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return newError(ErrUnauthenticated, "Access token required")
	}
	if err := s.deps.Revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.deps.Logger.InfoContext(ctx, "Member logged out", "member_id", claims.MemberID)
	return nil
}
