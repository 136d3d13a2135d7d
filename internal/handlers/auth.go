package handlers

import (
	"net/http"

	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	UserID   string `json:"userId"`
	MemberID string `json:"memberId"`
	Password string `json:"password"`
}

type userView struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Role       string `json:"role"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := req.UserID
	if id == "" {
		id = req.MemberID
	}

	res, err := h.service.Login(r.Context(), id, req.Password)
	if err != nil {
		writeError(w, r, err, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": res.Token,
		"user": userView{
			MemberID:   res.Member.MemberID,
			MemberName: res.Member.MemberName,
			Role:       string(res.Member.Role),
		},
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	claims := ClaimsFrom(r.Context())
	if err := h.service.ChangePassword(r.Context(), claims.MemberID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err, "Failed to change password")
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), ClaimsFrom(r.Context())); err != nil {
		writeError(w, r, err, "Failed to log out")
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}
