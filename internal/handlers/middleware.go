package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/metrics"
	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	loggerKey contextKey = "logger"
)

// ClaimsFrom returns the session claims set by Require, or nil.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Authenticator gates handlers on a valid bearer token and a role requirement.
type Authenticator struct {
	auth *services.AuthService
}

func NewAuthenticator(svc *services.AuthService) *Authenticator {
	return &Authenticator{auth: svc}
}

// Require runs next only for callers whose token satisfies req.
func (a *Authenticator) Require(req auth.Requirement, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, r, err, "Failed to authenticate")
			return
		}
		if err := a.auth.Authorize(claims, req); err != nil {
			writeError(w, r, err, "Failed to authorize")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>". A
// malformed header is passed through so validation rejects it as invalid.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return header
	}
	return strings.TrimSpace(token)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestLogging assigns a request id, logs completion and records metrics
// labelled by the matched route template.
func requestLogging(router *mux.Router, logger *slog.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			reqLogger := logger.With("request_id", requestID)
			ctx := context.WithValue(r.Context(), loggerKey, reqLogger)
			r = r.WithContext(ctx)

			route := "unmatched"
			var match mux.RouteMatch
			if router.Match(r, &match) && match.Route != nil {
				if tmpl, err := match.Route.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			m.ObserveRequest(r.Method, route, sw.status, duration)
			reqLogger.InfoContext(ctx, "Request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", sw.status,
				"duration_ms", duration.Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// recovery answers a panic with the JSON error envelope. gorilla's
// RecoveryHandler only sets the status, so the writer it is given fills in
// the body unless the handler had already started its response.
func recovery(logger *slog.Logger) mux.MiddlewareFunc {
	recoverPanics := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(panicLogger{logger}),
		gorillahandlers.PrintRecoveryStack(false),
	)
	return func(next http.Handler) http.Handler {
		inner := recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(handlerWriter{w.(*envelopeWriter)}, r)
		}))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.ServeHTTP(&envelopeWriter{ResponseWriter: w}, r)
		})
	}
}

// envelopeWriter is what RecoveryHandler writes to.
type envelopeWriter struct {
	http.ResponseWriter
	started bool
}

func (w *envelopeWriter) WriteHeader(code int) {
	if w.started {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.started = true
	writeErrorMessage(w.ResponseWriter, code, "Internal server error")
}

// handlerWriter is what the wrapped handler writes to; any write marks the
// response as started.
type handlerWriter struct {
	*envelopeWriter
}

func (w handlerWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w handlerWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) Println(v ...any) {
	l.logger.Error("Panic while serving request", "panic", fmt.Sprint(v...))
}

// cors allows any origin for the browser client.
func cors() mux.MiddlewareFunc {
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		gorillahandlers.ExposedHeaders([]string{"X-Request-ID"}),
		gorillahandlers.OptionStatusCode(http.StatusNoContent),
	)
}
