package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/strata/internal/domain"
)

// NewDomainMiddleware opens a span per command or query. Commands sent from
// inside Execute get child spans because the span travels in ctx. A nil
// tracer yields a pass-through middleware.
func NewDomainMiddleware(tracer trace.Tracer) domain.Middleware {
	if tracer == nil {
		return func(next domain.Handler) domain.Handler { return next }
	}

	return func(next domain.Handler) domain.Handler {
		return domain.HandlerFunc(func(ctx context.Context, dispatch domain.Dispatch) error {
			prefix := SpanPrefixCommand
			if dispatch.Kind == domain.KindQuery {
				prefix = SpanPrefixQuery
			}

			ctx, span := tracer.Start(ctx, prefix+dispatch.Name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String(AttrDispatchKind, string(dispatch.Kind)),
					attribute.String(AttrDispatchName, dispatch.Name),
					attribute.String(AttrDomain, dispatch.Domain),
				),
			)
			defer span.End()

			if dispatch.ID != "" {
				span.SetAttributes(attribute.String(AttrDispatchID, dispatch.ID))
			}

			err := next.Handle(ctx, dispatch)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		})
	}
}
