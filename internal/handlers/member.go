package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

type MemberHandler struct {
	service *services.MemberService
}

func NewMemberHandler(service *services.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

// GetMembers handles GET /api/members
func (h *MemberHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch members")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// GetMe handles GET /api/members/me
func (h *MemberHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	member, err := h.service.Get(r.Context(), claims.MemberID)
	if err != nil {
		writeError(w, r, err, "Failed to fetch member details")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

type createMemberRequest struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

// CreateMember handles POST /api/members
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := h.service.Create(r.Context(), services.NewMember{
		MemberID:   req.MemberID,
		MemberName: req.MemberName,
		Password:   req.Password,
		Role:       req.Role,
	})
	if err != nil {
		// clients treat a taken id like any other bad input
		if errors.Is(err, services.ErrConflict) {
			writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, err, "Failed to add member")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Member added successfully",
		"member": struct {
			MemberID   string    `json:"memberId"`
			MemberName string    `json:"memberName"`
			Role       string    `json:"role"`
			CreatedAt  time.Time `json:"createdAt"`
		}{member.MemberID, member.MemberName, string(member.Role), member.CreatedAt},
	})
}

// DeleteMember handles DELETE /api/members/{memberId}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]
	if err := h.service.Delete(r.Context(), memberID); err != nil {
		writeError(w, r, err, "Failed to delete member")
		return
	}
	writeMessage(w, http.StatusOK, "Member deleted successfully")
}
