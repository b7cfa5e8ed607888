package service

import (
	"context"
	"testing"
	"time"

	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/pkg/database"
	"viksit_backend/pkg/gateway"

	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type stubGateway struct {
	checkoutErr error
	status      *gateway.OrderStatus
	statusErr   error

	checkouts    int
	statusCalls  int
	lastCheckout gateway.CheckoutRequest
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) CreateCheckout(ctx context.Context, req gateway.CheckoutRequest) (*gateway.Checkout, error) {
	g.checkouts++
	g.lastCheckout = req
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return &gateway.Checkout{RedirectURL: "https://pay.example/checkout/" + req.OrderID, ProviderOrderID: "P-" + req.OrderID}, nil
}

func (g *stubGateway) OrderStatus(ctx context.Context, orderID string) (*gateway.OrderStatus, error) {
	g.statusCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	st := *g.status
	st.OrderID = orderID
	return &st, nil
}

// seedMathTest stores a one-question mock: "2 + 2 = ?" with options 3 and 4,
// 4 being correct.
func seedMathTest(t *testing.T, db *gorm.DB) *model.Mock {
	t.Helper()
	mock := &model.Mock{
		Title:  "Math Test",
		Course: "cuet_ug_icar",
		Questions: []model.Question{{
			Text:     "2 + 2 = ?",
			Position: 1,
			Options: []model.Option{
				{Text: "3", Position: 1},
				{Text: "4", IsCorrect: true, Position: 2},
			},
		}},
	}
	if err := repository.NewMockRepository(db).CreateWithQuestions(mock); err != nil {
		t.Fatalf("seed mock: %v", err)
	}
	return mock
}
