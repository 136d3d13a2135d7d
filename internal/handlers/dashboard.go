package handlers

import (
	"net/http"
	"time"

	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetStats handles GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch dashboard statistics")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"message":   "Club Management API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// InitHandler creates the bootstrap admin on first call.
type InitHandler struct {
	service   *services.MemberService
	adminName string
	password  string
}

func NewInitHandler(service *services.MemberService, adminName, password string) *InitHandler {
	return &InitHandler{service: service, adminName: adminName, password: password}
}

// Init handles POST /api/init
func (h *InitHandler) Init(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.EnsureBootstrapAdmin(r.Context(), h.adminName, h.password)
	if err != nil {
		writeError(w, r, err, "Failed to initialize")
		return
	}
	if !created {
		writeErrorMessage(w, http.StatusBadRequest, "Admin already initialized")
		return
	}
	writeMessage(w, http.StatusOK, "Default admin created successfully")
}
