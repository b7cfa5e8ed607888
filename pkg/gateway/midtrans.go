package gateway

import (
	"context"
	"encoding/json"

	"viksit_backend/internal/config"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// Midtrans uses Snap for the hosted checkout page and the Core API for
// status checks.
type Midtrans struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtrans(cfg *config.PaymentConfig) *Midtrans {
	env := midtrans.Sandbox
	if cfg.MidtransProduction {
		env = midtrans.Production
	}
	m := &Midtrans{}
	m.snap.New(cfg.MidtransServerKey, env)
	m.core.New(cfg.MidtransServerKey, env)
	return m
}

func (m *Midtrans) Name() string {
	return "midtrans"
}

func (m *Midtrans) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.AmountMinor / 100,
		},
		Callbacks: &snap.Callbacks{
			Finish: req.RedirectURL,
		},
	}

	resp, merr := m.snap.CreateTransaction(snapReq)
	if merr != nil {
		return nil, merr
	}
	return &Checkout{RedirectURL: resp.RedirectURL, ProviderOrderID: req.OrderID}, nil
}

func (m *Midtrans) OrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, merr := m.core.CheckTransaction(orderID)
	if merr != nil {
		return nil, merr
	}

	raw, _ := json.Marshal(resp)
	return &OrderStatus{
		OrderID:       orderID,
		State:         normalizeMidtransState(resp.TransactionStatus, resp.FraudStatus),
		TransactionID: resp.TransactionID,
		Raw:           raw,
	}, nil
}

func normalizeMidtransState(status, fraud string) string {
	switch status {
	case "settlement":
		return StateCompleted
	case "capture":
		if fraud == "" || fraud == "accept" {
			return StateCompleted
		}
		return StatePending
	case "deny", "cancel", "expire", "failure":
		return StateFailed
	}
	return StatePending
}
