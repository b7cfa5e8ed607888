// Package gateway talks to the external payment providers used for course
// purchases. Providers are normalised to three order states.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"viksit_backend/internal/config"
)

const (
	StateCompleted = "COMPLETED"
	StatePending   = "PENDING"
	StateFailed    = "FAILED"
)

type CheckoutRequest struct {
	OrderID string
	// AmountMinor is the amount in minor currency units (paise).
	AmountMinor int64
	// RedirectURL is where the provider sends the browser when checkout ends.
	RedirectURL string
}

type Checkout struct {
	RedirectURL     string
	ProviderOrderID string
}

type OrderStatus struct {
	OrderID       string
	State         string
	TransactionID string
	Raw           json.RawMessage
}

func (s *OrderStatus) Completed() bool {
	return s != nil && s.State == StateCompleted
}

type Gateway interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	OrderStatus(ctx context.Context, orderID string) (*OrderStatus, error)
}

// New builds the configured provider wrapped with tracing and metrics.
func New(cfg *config.PaymentConfig) (Gateway, error) {
	switch cfg.Provider {
	case "phonepe", "":
		return Instrument(NewPhonePe(cfg)), nil
	case "midtrans":
		return Instrument(NewMidtrans(cfg)), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
}
