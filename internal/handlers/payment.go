package handlers

import (
	"net/http"
	"strconv"

	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type recordPaymentsRequest struct {
	Month    int `json:"month"`
	Year     int `json:"year"`
	Payments []struct {
		MemberID string   `json:"memberId"`
		Status   string   `json:"status"`
		Amount   *float64 `json:"amount"`
	} `json:"payments"`
}

// RecordPayments handles POST /api/payments
func (h *PaymentHandler) RecordPayments(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Month == 0 || req.Year == 0 || req.Payments == nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	entries := make([]services.PaymentEntry, 0, len(req.Payments))
	for _, p := range req.Payments {
		entries = append(entries, services.PaymentEntry{
			MemberID: p.MemberID,
			Status:   models.PaymentStatus(p.Status),
			Amount:   p.Amount,
		})
	}

	period := models.Period{Month: req.Month, Year: req.Year}
	result, err := h.service.RecordPeriod(r.Context(), period, entries)
	if err != nil {
		writeError(w, r, err, "Failed to update payments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payments updated successfully",
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
}

// GetStats handles GET /api/payments/stats?month=&year=
func (h *PaymentHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	month, errMonth := strconv.Atoi(r.URL.Query().Get("month"))
	year, errYear := strconv.Atoi(r.URL.Query().Get("year"))
	if errMonth != nil || errYear != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Month and year are required")
		return
	}

	stats, err := h.service.StatsForPeriod(r.Context(), models.Period{Month: month, Year: year})
	if err != nil {
		writeError(w, r, err, "Failed to fetch payment statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
