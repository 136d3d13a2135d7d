package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/metrics"
	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

// RouterConfig carries the services behind the HTTP API.
type RouterConfig struct {
	Auth      *services.AuthService
	Members   *services.MemberService
	Payments  *services.PaymentService
	Expenses  *services.ExpenseService
	Dashboard *services.DashboardService

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	InitAdminName string
	// InitPassword enables POST /api/init when non-empty.
	InitPassword  string
}

// NewRouter builds the API handler including its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authn := NewAuthenticator(cfg.Auth)
	authHandler := NewAuthHandler(cfg.Auth)
	memberHandler := NewMemberHandler(cfg.Members)
	paymentHandler := NewPaymentHandler(cfg.Payments)
	expenseHandler := NewExpenseHandler(cfg.Expenses)
	dashboardHandler := NewDashboardHandler(cfg.Dashboard)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", Health).Methods("GET")
	if cfg.InitPassword != "" {
		initHandler := NewInitHandler(cfg.Members, cfg.InitAdminName, cfg.InitPassword)
		api.HandleFunc("/init", initHandler.Init).Methods("POST")
	}

	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/change-password", authn.Require(auth.Authenticated, authHandler.ChangePassword)).Methods("POST")
	api.HandleFunc("/auth/logout", authn.Require(auth.Authenticated, authHandler.Logout)).Methods("POST")

	api.HandleFunc("/members", authn.Require(auth.AdminOnly, memberHandler.GetMembers)).Methods("GET")
	api.HandleFunc("/members", authn.Require(auth.AdminOnly, memberHandler.CreateMember)).Methods("POST")
	api.HandleFunc("/members/me", authn.Require(auth.Authenticated, memberHandler.GetMe)).Methods("GET")
	api.HandleFunc("/members/{memberId}", authn.Require(auth.AdminOnly, memberHandler.DeleteMember)).Methods("DELETE")

	api.HandleFunc("/payments", authn.Require(auth.AdminOnly, paymentHandler.RecordPayments)).Methods("POST")
	api.HandleFunc("/payments/stats", authn.Require(auth.Authenticated, paymentHandler.GetStats)).Methods("GET")

	api.HandleFunc("/expenses", authn.Require(auth.Authenticated, expenseHandler.GetExpenses)).Methods("GET")
	api.HandleFunc("/expenses", authn.Require(auth.AdminOnly, expenseHandler.CreateExpense)).Methods("POST")
	api.HandleFunc("/expenses/{id}", authn.Require(auth.AdminOnly, expenseHandler.DeleteExpense)).Methods("DELETE")

	api.HandleFunc("/dashboard/stats", authn.Require(auth.AdminOnly, dashboardHandler.GetStats)).Methods("GET")

	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler()).Methods("GET")
	}

	for _, r := range []*mux.Router{router, api} {
		r.NotFoundHandler = http.HandlerFunc(notFound)
		r.MethodNotAllowedHandler = http.HandlerFunc(notFound)
	}

	var h http.Handler = router
	h = cors()(h)
	h = recovery(logger)(h)
	h = requestLogging(router, logger, cfg.Metrics)(h)
	return h
}
