package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"viksit_backend/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// PhonePe issues tokens with the "O-Bearer" scheme rather than "Bearer".
const phonePeAuthScheme = "O-Bearer"

// PhonePe implements the standard checkout v2 flow: client-credentials token,
// checkout creation and order status.
type PhonePe struct {
	baseURL string
	creds   *clientcredentials.Config
	client  *http.Client
}

func NewPhonePe(cfg *config.PaymentConfig) *PhonePe {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PhonePe{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		creds: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(cfg.AuthURL, "/") + "/v1/oauth/token",
			EndpointParams: url.Values{
				"client_version": {cfg.ClientVersion},
			},
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (p *PhonePe) Name() string {
	return "phonepe"
}

type phonePeCheckoutBody struct {
	MerchantOrderID string             `json:"merchantOrderId"`
	Amount          int64              `json:"amount"`
	PaymentFlow     phonePePaymentFlow `json:"paymentFlow"`
}

type phonePePaymentFlow struct {
	Type         string              `json:"type"`
	MerchantURLs phonePeMerchantURLs `json:"merchantUrls"`
}

type phonePeMerchantURLs struct {
	RedirectURL string `json:"redirectUrl"`
}

type phonePeCheckoutResponse struct {
	OrderID     string `json:"orderId"`
	State       string `json:"state"`
	RedirectURL string `json:"redirectUrl"`
}

type phonePeStatusResponse struct {
	OrderID        string `json:"orderId"`
	State          string `json:"state"`
	PaymentDetails []struct {
		TransactionID string `json:"transactionId"`
		State         string `json:"state"`
	} `json:"paymentDetails"`
}

func (p *PhonePe) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	body := phonePeCheckoutBody{
		MerchantOrderID: req.OrderID,
		Amount:          req.AmountMinor,
		PaymentFlow: phonePePaymentFlow{
			Type:         "PG_CHECKOUT",
			MerchantURLs: phonePeMerchantURLs{RedirectURL: req.RedirectURL},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	raw, err := p.do(ctx, http.MethodPost, p.baseURL+"/checkout/v2/pay", payload)
	if err != nil {
		return nil, err
	}

	var resp phonePeCheckoutResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}
	if resp.RedirectURL == "" {
		return nil, errors.New("checkout response has no redirectUrl")
	}
	return &Checkout{RedirectURL: resp.RedirectURL, ProviderOrderID: resp.OrderID}, nil
}

func (p *PhonePe) OrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	endpoint := fmt.Sprintf("%s/checkout/v2/order/%s/status", p.baseURL, url.PathEscape(orderID))
	raw, err := p.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp phonePeStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	status := &OrderStatus{
		OrderID:       orderID,
		State:         normalizePhonePeState(resp.State),
		TransactionID: resp.OrderID,
		Raw:           raw,
	}
	for _, d := range resp.PaymentDetails {
		if d.TransactionID != "" && d.State == StateCompleted {
			status.TransactionID = d.TransactionID
			break
		}
	}
	return status, nil
}

func normalizePhonePeState(state string) string {
	switch strings.ToUpper(state) {
	case StateCompleted:
		return StateCompleted
	case StateFailed:
		return StateFailed
	}
	return StatePending
}

func (p *PhonePe) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	token, err := p.creds.Token(context.WithValue(ctx, oauth2.HTTPClient, p.client))
	if err != nil {
		return nil, fmt.Errorf("fetch access token: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", phonePeAuthScheme+" "+token.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
