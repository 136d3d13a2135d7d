package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markjakearzadon/clubdues-gobackend/internal/events"
	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
)

type MemberService struct {
	deps Deps
}

func NewMemberService(d Deps) *MemberService {
	d = d.withDefaults()
	d.Logger = d.Logger.With("component", "members")
	return &MemberService{deps: d}
}

// NewMember is the admin input for creating an account.
type NewMember struct {
	MemberID   string
	MemberName string
	Password   string
	Role       string
}

func (s *MemberService) Create(ctx context.Context, in NewMember) (*models.Member, error) {
	in.MemberID = strings.TrimSpace(in.MemberID)
	in.MemberName = strings.TrimSpace(in.MemberName)
	if in.MemberID == "" || in.MemberName == "" || in.Password == "" {
		return nil, newError(ErrValidation, "Member ID, name, and password are required")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, newError(ErrValidation, "Role must be admin or member")
	}

	hash, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		MemberID:     in.MemberID,
		MemberName:   in.MemberName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.deps.Now().UTC(),
	}
	if err := s.deps.Members.Create(ctx, member); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "Member ID already exists")
		}
		return nil, err
	}

	s.deps.Logger.InfoContext(ctx, "Member created", "member_id", member.MemberID, "role", member.Role)
	s.deps.publish(ctx, events.MemberCreated, map[string]string{
		"memberId": member.MemberID,
		"role":     string(member.Role),
	})
	return member, nil
}

func (s *MemberService) List(ctx context.Context) ([]models.Member, error) {
	return s.deps.Members.FindAll(ctx)
}

// Get returns the member without its password hash.
func (s *MemberService) Get(ctx context.Context, memberID string) (*models.Member, error) {
	member, err := s.deps.Members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "Member not found")
		}
		return nil, err
	}
	member.PasswordHash = ""
	return member, nil
}

// Delete removes a member. The bootstrap admin can never be deleted.
func (s *MemberService) Delete(ctx context.Context, memberID string) error {
	if memberID == s.deps.BootstrapAdminID {
		return newError(ErrForbidden, "Cannot delete main admin")
	}
	if err := s.deps.Members.Delete(ctx, memberID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrNotFound, "Member not found")
		}
		return err
	}

	s.deps.Logger.InfoContext(ctx, "Member deleted", "member_id", memberID)
	s.deps.publish(ctx, events.MemberDeleted, map[string]string{"memberId": memberID})
	return nil
}

// EnsureBootstrapAdmin creates the reserved admin account if it is missing.
// It reports whether an account was created.
func (s *MemberService) EnsureBootstrapAdmin(ctx context.Context, name, password string) (bool, error) {
	if password == "" {
		return false, newError(ErrValidation, "Bootstrap admin password is required")
	}
	if name == "" {
		name = "Admin User"
	}

	_, err := s.deps.Members.FindByID(ctx, s.deps.BootstrapAdminID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("look up bootstrap admin: %w", err)
	}

	_, err = s.Create(ctx, NewMember{
		MemberID:   s.deps.BootstrapAdminID,
		MemberName: name,
		Password:   password,
		Role:       string(models.RoleAdmin),
	})
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
