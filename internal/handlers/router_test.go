package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/metrics"
	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store/memory"
)

type testServer struct {
	handler http.Handler
	members *services.MemberService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := memory.New()
	deps := services.Deps{
		Members:  mem.Members(),
		Expenses: mem.Expenses(),
		Hasher:   auth.NewHasher(bcrypt.MinCost),
		Tokens:   auth.NewTokenManager("handler-test-secret-0123", time.Hour),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	members := services.NewMemberService(deps)

	_, err := members.EnsureBootstrapAdmin(context.Background(), "Admin", "admin-pw")
	require.NoError(t, err)
	_, err = members.Create(context.Background(), services.NewMember{
		MemberID: "bob", MemberName: "Bob", Password: "bob-pw",
	})
	require.NoError(t, err)

	return &testServer{
		members: members,
		handler: NewRouter(RouterConfig{
			Auth:          services.NewAuthService(deps),
			Members:       members,
			Payments:      services.NewPaymentService(deps),
			Expenses:      services.NewExpenseService(deps),
			Dashboard:     services.NewDashboardService(deps),
			Metrics:       metrics.New(),
			Logger:        deps.Logger,
			InitAdminName: "Admin",
			InitPassword:  "admin-pw",
		}),
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, id, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"userId": id, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/nope", "/elsewhere"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Route not found", decode[map[string]string](t, rec)["error"])
	}

	rec := s.do(t, http.MethodPut, "/api/members", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"userId": "bob", "password": "bob-pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Token string `json:"token"`
		User  struct {
			MemberID string `json:"memberId"`
			Role     string `json:"role"`
		} `json:"user"`
	}](t, rec)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "bob", body.User.MemberID)
	assert.Equal(t, "member", body.User.Role)

	wrong := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"userId": "bob", "password": "nope"})
	unknown := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"userId": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	missing := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"userId": "bob"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	bad := httptest.NewRecorder()
	s.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)
	memberToken := s.login(t, "bob", "bob-pw")

	rec := s.do(t, http.MethodGet, "/api/members", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", decode[map[string]string](t, rec)["error"])

	rec = s.do(t, http.MethodGet, "/api/members", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decode[map[string]string](t, rec)["error"])

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/members"},
		{http.MethodPost, "/api/members"},
		{http.MethodPost, "/api/payments"},
		{http.MethodPost, "/api/expenses"},
		{http.MethodDelete, "/api/expenses/0123456789abcdef01234567"},
		{http.MethodGet, "/api/dashboard/stats"},
	} {
		rec := s.do(t, route.method, route.path, memberToken, map[string]any{})
		assert.Equal(t, http.StatusForbidden, rec.Code, route.path)
	}

	for _, path := range []string{"/api/payments/stats?month=3&year=2024", "/api/expenses"} {
		rec := s.do(t, http.MethodGet, path, memberToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec = s.do(t, http.MethodGet, "/api/members/me", memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "bob", me["memberId"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestMembersFlow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, services.DefaultBootstrapAdminID, "admin-pw")

	rec := s.do(t, http.MethodPost, "/api/members", adminToken, map[string]string{
		"memberId": "carol", "memberName": "Carol", "password": "carol-pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Member added successfully", decode[map[string]any](t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/api/members", adminToken, map[string]string{
		"memberId": "carol", "memberName": "Carol", "password": "carol-pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/members", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)

	rec = s.do(t, http.MethodDelete, "/api/members/"+services.DefaultBootstrapAdminID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/members/carol", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/members/carol", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentsAndDashboard(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, services.DefaultBootstrapAdminID, "admin-pw")
	now := models.PeriodOf(time.Now())

	rec := s.do(t, http.MethodPost, "/api/payments", adminToken, map[string]any{
		"month": now.Month,
		"year":  now.Year,
		"payments": []map[string]any{
			{"memberId": "bob", "status": "paid", "amount": 150},
			{"memberId": "ghost", "status": "paid"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	batch := decode[struct {
		Updated []string `json:"updated"`
		Skipped []string `json:"skipped"`
	}](t, rec)
	assert.Equal(t, []string{"bob"}, batch.Updated)
	assert.Equal(t, []string{"ghost"}, batch.Skipped)

	rec = s.do(t, http.MethodPost, "/api/payments", adminToken, map[string]any{"month": now.Month, "year": now.Year})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/payments/stats?month=x", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/payments/stats?month="+strconv.Itoa(now.Month)+"&year="+strconv.Itoa(now.Year), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.PaymentStats](t, rec)
	assert.Equal(t, 2, stats.TotalMembers)
	assert.Equal(t, 1, stats.PaidMembers)
	assert.Equal(t, 150.0, stats.TotalCollection)

	rec = s.do(t, http.MethodPost, "/api/expenses", adminToken, map[string]any{
		"month": now.Month, "year": now.Year, "electricityBill": 100, "internetBill": 20,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Expense struct {
			ID           string  `json:"_id"`
			TotalExpense float64 `json:"totalExpense"`
		} `json:"expense"`
	}](t, rec)
	assert.Equal(t, 120.0, created.Expense.TotalExpense)

	rec = s.do(t, http.MethodPost, "/api/expenses", adminToken, map[string]any{"month": now.Month, "year": now.Year})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/dashboard/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[models.DashboardSummary](t, rec)
	assert.Equal(t, 150.0, summary.MonthlyCollection)
	assert.Equal(t, 120.0, summary.MonthlyExpenses)
	assert.Equal(t, 30.0, summary.NetBalance)
	assert.Len(t, summary.ChartData, 6)

	rec = s.do(t, http.MethodDelete, "/api/expenses/"+created.Expense.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/expenses/"+created.Expense.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangePasswordAndLogout(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "bob", "bob-pw")

	rec := s.do(t, http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"currentPassword": "wrong", "newPassword": "x",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"currentPassword": "bob-pw", "newPassword": "bob-pw-2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token = s.login(t, "bob", "bob-pw-2")

	rec = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/members/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInit(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/init", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "admin already provisioned")
}

func TestCORSAndMetrics(t *testing.T) {
	s := newTestServer(t)

	preflight := httptest.NewRequest(http.MethodOptions, "/api/members/bob", nil)
	preflight.Header.Set("Origin", "https://club.example")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	preflight.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodDelete, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://club.example")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "x-request-id", strings.ToLower(rec.Header().Get("Access-Control-Expose-Headers")))

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clubdues_http_requests_total{method="GET",route="/api/health",status="200"}`)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("panic gets the error envelope", func(t *testing.T) {
		h := recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "Internal server error", decode[map[string]string](t, rec)["error"])
	})

	t.Run("handler responses pass through", func(t *testing.T) {
		h := recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeErrorMessage(w, http.StatusInternalServerError, "Failed to fetch members")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/members", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to fetch members", decode[map[string]string](t, rec)["error"])
	})
}
