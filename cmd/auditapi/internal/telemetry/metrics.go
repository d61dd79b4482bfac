package telemetry

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ServerMetrics holds metric instruments for HTTP server telemetry.
type ServerMetrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	ActiveConnections metric.Int64UpDownCounter
	ErrorCounter      metric.Int64Counter // 5xx responses
}

// NewServerMetrics creates the HTTP server instruments.
func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("auditapi/http")

	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	activeConnections, err := meter.Int64UpDownCounter(
		"http.server.active_connections",
		metric.WithDescription("Number of active HTTP connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		ActiveConnections: activeConnections,
		ErrorCounter:      errorCounter,
	}, nil
}

// RecordRequest records an HTTP request with method, route, status, and duration.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.String(AttrHTTPStatusCode, status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)

	if len(status) > 0 && status[0] == '5' {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// Middleware records every request once the handler chain has finished.
// The route label is the chi route pattern so ids do not explode cardinality.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordRequest(r.Context(), r.Method, route, strconv.Itoa(status), float64(time.Since(start).Microseconds())/1000)
	})
}

// ConnState tracks open connections. Assign it to http.Server.ConnState.
func (m *ServerMetrics) ConnState(_ net.Conn, state http.ConnState) {
	ctx := context.Background()
	switch state {
	case http.StateNew:
		m.ActiveConnections.Add(ctx, 1)
	case http.StateClosed, http.StateHijacked:
		m.ActiveConnections.Add(ctx, -1)
	}
}

// DatabaseMetrics holds metric instruments for database operations.
type DatabaseMetrics struct {
	QueryCounter  metric.Int64Counter     // Total database queries
	QueryDuration metric.Float64Histogram // Query latency
	QueryErrors   metric.Int64Counter     // Total query errors
}

// NewDatabaseMetrics creates metric instruments for database telemetry.
func NewDatabaseMetrics() (*DatabaseMetrics, error) {
	meter := otel.Meter("auditapi/database")

	queryCounter, err := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2000),
	)
	if err != nil {
		return nil, err
	}

	queryErrors, err := meter.Int64Counter(
		"db.query.error.count",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &DatabaseMetrics{
		QueryCounter:  queryCounter,
		QueryDuration: queryDuration,
		QueryErrors:   queryErrors,
	}, nil
}

// RecordQuery records a database query with operation type and duration.
func (d *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, durationMs float64, err error) {
	attrs := metric.WithAttributes(
		attribute.String(AttrDBOperation, operation), // SELECT, INSERT, UPDATE, DELETE
	)

	d.QueryCounter.Add(ctx, 1, attrs)
	d.QueryDuration.Record(ctx, durationMs, attrs)

	if err != nil {
		d.QueryErrors.Add(ctx, 1, attrs)
	}
}

// AuthMetrics holds metric instruments for the authentication gate and the
// authorization guard.
type AuthMetrics struct {
	AuthAttempts     metric.Int64Counter // Credentials checked, by method and outcome
	AuthFailures     metric.Int64Counter
	AuthDuration     metric.Float64Histogram
	PolicyDecisions  metric.Int64Counter // Guard outcomes, by activity and outcome
	UpstreamDuration metric.Float64Histogram
}

// NewAuthMetrics creates metric instruments for authentication telemetry.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("auditapi/auth")

	authAttempts, err := meter.Int64Counter(
		"auth.attempt.count",
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter(
		"auth.failure.count",
		metric.WithDescription("Total number of failed authentication attempts"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	authDuration, err := meter.Float64Histogram(
		"auth.duration",
		metric.WithDescription("Authentication operation duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		return nil, err
	}

	policyDecisions, err := meter.Int64Counter(
		"authz.decision.count",
		metric.WithDescription("Total number of authorization guard outcomes"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	upstreamDuration, err := meter.Float64Histogram(
		"authz.policy.duration",
		metric.WithDescription("Policy service call duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		AuthAttempts:     authAttempts,
		AuthFailures:     authFailures,
		AuthDuration:     authDuration,
		PolicyDecisions:  policyDecisions,
		UpstreamDuration: upstreamDuration,
	}, nil
}

// RecordAuth records an authentication attempt with result and duration.
// A nil receiver records nothing.
func (a *AuthMetrics) RecordAuth(ctx context.Context, method string, success bool, durationMs float64) {
	if a == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrAuthMethod, method), // user, service
		attribute.Bool(AttrAuthSuccess, success),
	)

	a.AuthAttempts.Add(ctx, 1, attrs)
	a.AuthDuration.Record(ctx, durationMs, attrs)

	if !success {
		a.AuthFailures.Add(ctx, 1, attrs)
	}
}

// RecordDecision records one authorization guard outcome. outcome is one of
// allowed, denied, bad_request, unauthenticated or unavailable.
func (a *AuthMetrics) RecordDecision(ctx context.Context, activity, outcome string, policyMs float64) {
	if a == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrAuthzActivity, activity),
		attribute.String(AttrAuthzOutcome, outcome),
	)
	a.PolicyDecisions.Add(ctx, 1, attrs)
	if policyMs > 0 {
		a.UpstreamDuration.Record(ctx, policyMs, attrs)
	}
}

// Common metric attribute keys for audit API services
const (
	// HTTP attributes
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	// Database attributes
	AttrDBOperation = "db.operation"
	AttrDBTable     = "db.table"

	// Auth attributes
	AttrAuthMethod  = "auth.method"
	AttrAuthSuccess = "auth.success"

	// Authorization attributes
	AttrAuthzActivity = "authz.activity"
	AttrAuthzOutcome  = "authz.outcome"
)
