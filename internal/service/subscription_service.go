package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"viksit_backend/internal/config"
	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/gateway"
	"viksit_backend/pkg/logger"
	"viksit_backend/pkg/monitoring"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	Repo    *repository.SubscriptionRepository
	Gateway gateway.Gateway
	Catalog *CatalogStore
	// PublicBaseURL prefixes the return URL handed to the gateway.
	PublicBaseURL string

	now        func() time.Time
	newOrderID func() (string, error)
}

func NewSubscriptionService(repo *repository.SubscriptionRepository, gw gateway.Gateway, catalog *CatalogStore, publicBaseURL string) *SubscriptionService {
	return &SubscriptionService{
		Repo:          repo,
		Gateway:       gw,
		Catalog:       catalog,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
		newOrderID:    func() (string, error) { return gonanoid.New() },
	}
}

// dateOf truncates t to its calendar day in UTC so stored and compared dates
// always agree regardless of driver.
func dateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func (s *SubscriptionService) today() datatypes.Date {
	return dateOf(s.now())
}

func (s *SubscriptionService) Course(slug string) config.Course {
	return s.Catalog.Get().Lookup(slug)
}

// HasActiveSubscription is true iff a paid subscription for courseSlug ends
// today or later.
func (s *SubscriptionService) HasActiveSubscription(userID uint, courseSlug string) (bool, error) {
	return s.Repo.HasActive(userID, courseSlug, s.today())
}

func (s *SubscriptionService) ActiveSubscriptions(userID uint) ([]model.CourseSubscription, error) {
	return s.Repo.ListActive(userID, s.today())
}

func (s *SubscriptionService) ActiveCourseSlugs(userID uint) ([]string, error) {
	return s.Repo.ActiveSlugs(userID, s.today())
}

type Initiation struct {
	Subscription *model.CourseSubscription
	Course       config.Course
	RedirectURL  string
}

// Initiate records an unpaid subscription and asks the gateway for a checkout
// page. When the gateway fails the row stays in the created state and a
// PaymentError wrapping util.ErrPaymentInitiation is returned.
func (s *SubscriptionService) Initiate(ctx context.Context, userID uint, courseSlug, mode string) (*Initiation, error) {
	catalog := s.Catalog.Get()
	amount, err := catalog.Price(courseSlug, mode)
	if err != nil {
		return nil, util.NewValidationError("mode", "Choose online or offline mode.")
	}
	course := catalog.Lookup(courseSlug)

	orderID, err := s.newOrderID()
	if err != nil {
		return nil, err
	}

	sub := &model.CourseSubscription{
		UserID:     userID,
		CourseSlug: courseSlug,
		Mode:       mode,
		UUID:       orderID,
		Amount:     amount,
		IsPaid:     false,
		Status:     model.SubscriptionCreated,
		EndDate:    dateOf(s.now().AddDate(0, 0, course.DurationDays)),
	}
	if err := s.Repo.Create(sub); err != nil {
		return nil, err
	}
	monitoring.SubscriptionTransitions.WithLabelValues(courseSlug, string(model.SubscriptionCreated)).Inc()

	checkout, err := s.Gateway.CreateCheckout(ctx, gateway.CheckoutRequest{
		OrderID:     orderID,
		AmountMinor: int64(amount) * 100,
		RedirectURL: s.returnURL(orderID, mode),
	})
	if err != nil {
		logger.Log.Error("Payment initiation failed",
			zap.String("orderID", orderID),
			zap.String("course", courseSlug),
			zap.Error(err),
		)
		return nil, &util.PaymentError{Kind: util.ErrPaymentInitiation, OrderID: orderID, Err: err}
	}

	if err := s.Repo.MarkPendingRedirect(sub.ID); err != nil {
		return nil, err
	}
	sub.Status = model.SubscriptionPendingRedirect
	monitoring.SubscriptionTransitions.WithLabelValues(courseSlug, string(sub.Status)).Inc()

	logger.Log.Info("Checkout created",
		zap.Uint("userID", userID),
		zap.String("orderID", orderID),
		zap.String("course", courseSlug),
		zap.Int("amount", amount),
	)
	return &Initiation{Subscription: sub, Course: course, RedirectURL: checkout.RedirectURL}, nil
}

func (s *SubscriptionService) returnURL(orderID, mode string) string {
	return fmt.Sprintf("%s/subscription-return/%s/?mode=%s", s.PublicBaseURL, url.PathEscape(orderID), url.QueryEscape(mode))
}

type ReturnOutcome struct {
	Subscription *model.CourseSubscription
	Course       config.Course
	Paid         bool
	// AlreadyPaid is set when the order had been reconciled before this call.
	AlreadyPaid bool
}

// HandleReturn reconciles an order after the gateway redirects back. It is
// safe to call any number of times for the same order.
func (s *SubscriptionService) HandleReturn(ctx context.Context, userID uint, orderID string) (*ReturnOutcome, error) {
	sub, err := s.Repo.FindByUUID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("subscription %q", orderID)
		}
		return nil, err
	}
	if sub.UserID != userID {
		return nil, util.NotFoundf("subscription %q", orderID)
	}

	out := &ReturnOutcome{Subscription: sub, Course: s.Course(sub.CourseSlug)}
	if sub.IsPaid {
		out.Paid = true
		out.AlreadyPaid = true
		return out, nil
	}

	status, err := s.Gateway.OrderStatus(ctx, orderID)
	if err != nil {
		logger.Log.Error("Payment status check failed", zap.String("orderID", orderID), zap.Error(err))
		return nil, &util.PaymentError{Kind: util.ErrPaymentProvider, OrderID: orderID, Err: err}
	}

	if !status.Completed() {
		if err := s.Repo.MarkUnpaidState(sub.ID, status.State, datatypes.JSON(status.Raw)); err != nil {
			return nil, err
		}
		sub.Status = model.SubscriptionFailedOrPending
		sub.ProviderState = status.State
		monitoring.SubscriptionTransitions.WithLabelValues(sub.CourseSlug, string(sub.Status)).Inc()
		return out, nil
	}

	now := s.now()
	update := repository.PaidUpdate{
		TransactionID: status.TransactionID,
		ProviderState: status.State,
		Payload:       datatypes.JSON(status.Raw),
		PaidAt:        now,
		EndDate:       dateOf(now.AddDate(0, 0, out.Course.DurationDays)),
	}
	applied, err := s.Repo.MarkPaid(sub.ID, update)
	if err != nil {
		return nil, err
	}

	out.Paid = true
	out.AlreadyPaid = !applied
	if applied {
		sub.IsPaid = true
		sub.Status = model.SubscriptionPaid
		sub.TransactionID = update.TransactionID
		sub.ProviderState = update.ProviderState
		sub.PaidAt = &now
		sub.EndDate = update.EndDate
		monitoring.SubscriptionTransitions.WithLabelValues(sub.CourseSlug, string(sub.Status)).Inc()
		logger.Log.Info("Subscription paid",
			zap.Uint("userID", userID),
			zap.String("orderID", orderID),
			zap.String("transactionID", update.TransactionID),
		)
	}
	return out, nil
}
