package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys used across the auth pipeline and the domain services.
const (
	AttrPrincipalID = "principal.id"
	AttrServiceID   = "service.id"
	AttrPeerService = "peer.service"

	AttrPolicyActivity = "policy.activity"
	AttrPolicyProject  = "policy.project"
	AttrPolicyAllowed  = "policy.allowed"

	AttrCompanyID    = "company.id"
	AttrEngagementID = "engagement.id"
	AttrMasterTable  = "master.table"
)

// StartSpan starts a span on the named tracer. Callers end it:
//
//	ctx, span := telemetry.StartSpan(ctx, tracerName, "company.Create",
//	    attribute.String(telemetry.AttrCompanyID, id),
//	)
//	defer span.End()
//
// With no tracer provider installed the span is a noop.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent records a point-in-time event such as a forced token refresh.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
