package bunx

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// QueryRecorder receives one observation per executed query.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, operation string, durationMs float64, err error)
}

// MetricsHook reports query counts, latency and failures to a QueryRecorder.
// sql.ErrNoRows is not counted as a failure.
type MetricsHook struct {
	recorder QueryRecorder
}

var _ bun.QueryHook = (*MetricsHook)(nil)

// NewMetricsHook returns a hook bound to recorder.
func NewMetricsHook(recorder QueryRecorder) *MetricsHook {
	return &MetricsHook{recorder: recorder}
}

// BeforeQuery implements bun.QueryHook.
func (h *MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery implements bun.QueryHook.
func (h *MetricsHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if h.recorder == nil {
		return
	}
	err := event.Err
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	ms := float64(time.Since(event.StartTime).Microseconds()) / 1000
	h.recorder.RecordQuery(ctx, event.Operation(), ms, err)
}
