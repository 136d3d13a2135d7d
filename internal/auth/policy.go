package auth

import (
	"errors"

	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
)

var ErrForbidden = errors.New("admin access required")

// Requirement is what a route demands of the caller. The zero value only
// requires a valid session.
type Requirement struct {
	Role models.Role
}

var (
	Authenticated = Requirement{}
	AdminOnly     = Requirement{Role: models.RoleAdmin}
)

// Authorize permits the request (nil) or denies it. Nil claims are treated
// as unauthenticated.
func Authorize(claims *Claims, req Requirement) error {
	if claims == nil {
		return ErrMissingToken
	}
	if req.Role != "" && claims.Role != req.Role {
		return ErrForbidden
	}
	return nil
}
