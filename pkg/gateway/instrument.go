package gateway

import (
	"context"

	"viksit_backend/pkg/monitoring"
	"viksit_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type instrumented struct {
	next Gateway
}

// Instrument records a span and a counter for every provider call.
func Instrument(g Gateway) Gateway {
	return &instrumented{next: g}
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	ctx, span := tracing.Tracer.Start(ctx, "gateway.CreateCheckout")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.provider", i.next.Name()),
		attribute.String("payment.order_id", req.OrderID),
		attribute.Int64("payment.amount_minor", req.AmountMinor),
	)

	out, err := i.next.CreateCheckout(ctx, req)
	i.observe(span, "checkout", err)
	return out, err
}

func (i *instrumented) OrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	ctx, span := tracing.Tracer.Start(ctx, "gateway.OrderStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.provider", i.next.Name()),
		attribute.String("payment.order_id", orderID),
	)

	out, err := i.next.OrderStatus(ctx, orderID)
	if err == nil {
		span.SetAttributes(attribute.String("payment.state", out.State))
	}
	i.observe(span, "status", err)
	return out, err
}

func (i *instrumented) observe(span trace.Span, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	monitoring.GatewayRequests.WithLabelValues(i.next.Name(), op, outcome).Inc()
}
