package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

type ExpenseHandler struct {
	service *services.ExpenseService
}

func NewExpenseHandler(service *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// GetExpenses handles GET /api/expenses
func (h *ExpenseHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch expenses")
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

type createExpenseRequest struct {
	Month           int      `json:"month"`
	Year            int      `json:"year"`
	ElectricityBill *float64 `json:"electricityBill"`
	InternetBill    *float64 `json:"internetBill"`
	Miscellaneous   *float64 `json:"miscellaneous"`
}

// CreateExpense handles POST /api/expenses
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Month == 0 || req.Year == 0 {
		writeErrorMessage(w, http.StatusBadRequest, "Month and year are required")
		return
	}

	expense, err := h.service.Add(r.Context(), services.ExpenseInput{
		Month:           req.Month,
		Year:            req.Year,
		ElectricityBill: req.ElectricityBill,
		InternetBill:    req.InternetBill,
		Miscellaneous:   req.Miscellaneous,
	})
	if err != nil {
		writeError(w, r, err, "Failed to add expense")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Expense added successfully",
		"expense": expense,
	})
}

// DeleteExpense handles DELETE /api/expenses/{id}
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err, "Failed to delete expense")
		return
	}
	writeMessage(w, http.StatusOK, "Expense deleted successfully")
}
