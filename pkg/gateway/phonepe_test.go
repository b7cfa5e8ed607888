package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"viksit_backend/internal/config"
)

func newPhonePeServer(t *testing.T, status string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" ||
			r.Form.Get("client_id") != "cid" ||
			r.Form.Get("client_secret") != "csecret" ||
			r.Form.Get("client_version") != "1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"O-Bearer","expires_at":1999999999}`))
	})
	mux.HandleFunc("/checkout/v2/pay", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "O-Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var body phonePeCheckoutBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.MerchantOrderID != "ord1" || body.Amount != 200000 || body.PaymentFlow.Type != "PG_CHECKOUT" {
			t.Errorf("unexpected body %+v", body)
		}
		if body.PaymentFlow.MerchantURLs.RedirectURL != "http://site/subscription-return/ord1/?mode=online" {
			t.Errorf("unexpected redirect %q", body.PaymentFlow.MerchantURLs.RedirectURL)
		}
		w.Write([]byte(`{"orderId":"OMO1","state":"PENDING","redirectUrl":"https://pay.example/checkout/OMO1"}`))
	})
	mux.HandleFunc("/checkout/v2/order/ord1/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orderId":"OMO1","state":"` + status + `","paymentDetails":[{"transactionId":"TX9","state":"` + status + `"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testPaymentConfig(url string) *config.PaymentConfig {
	return &config.PaymentConfig{
		Provider:      "phonepe",
		AuthURL:       url,
		BaseURL:       url,
		ClientID:      "cid",
		ClientSecret:  "csecret",
		ClientVersion: "1",
		Timeout:       5 * time.Second,
	}
}

func TestPhonePeCheckoutAndStatus(t *testing.T) {
	srv := newPhonePeServer(t, "COMPLETED")
	p := NewPhonePe(testPaymentConfig(srv.URL))

	out, err := p.CreateCheckout(context.Background(), CheckoutRequest{
		OrderID:     "ord1",
		AmountMinor: 200000,
		RedirectURL: "http://site/subscription-return/ord1/?mode=online",
	})
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if out.RedirectURL != "https://pay.example/checkout/OMO1" {
		t.Fatalf("redirect = %q", out.RedirectURL)
	}

	st, err := p.OrderStatus(context.Background(), "ord1")
	if err != nil {
		t.Fatalf("OrderStatus: %v", err)
	}
	if !st.Completed() || st.TransactionID != "TX9" {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.Raw) == 0 {
		t.Fatalf("expected raw payload")
	}
}

func TestPhonePePendingState(t *testing.T) {
	srv := newPhonePeServer(t, "PENDING")
	p := NewPhonePe(testPaymentConfig(srv.URL))

	st, err := p.OrderStatus(context.Background(), "ord1")
	if err != nil {
		t.Fatalf("OrderStatus: %v", err)
	}
	if st.Completed() || st.State != StatePending || st.TransactionID != "OMO1" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestPhonePeBadCredentials(t *testing.T) {
	srv := newPhonePeServer(t, "COMPLETED")
	cfg := testPaymentConfig(srv.URL)
	cfg.ClientSecret = "wrong"
	p := NewPhonePe(cfg)

	if _, err := p.CreateCheckout(context.Background(), CheckoutRequest{OrderID: "ord1"}); err == nil {
		t.Fatalf("expected token error")
	}
}

func TestPhonePeServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"O-Bearer"}`))
	})
	mux.HandleFunc("/checkout/v2/pay", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"INTERNAL_SERVER_ERROR"}`, http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewPhonePe(testPaymentConfig(srv.URL))
	if _, err := p.CreateCheckout(context.Background(), CheckoutRequest{OrderID: "ord1"}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestNormalizeStates(t *testing.T) {
	cases := []struct {
		status, fraud, want string
	}{
		{"settlement", "", StateCompleted},
		{"capture", "accept", StateCompleted},
		{"capture", "challenge", StatePending},
		{"pending", "", StatePending},
		{"expire", "", StateFailed},
		{"deny", "", StateFailed},
	}
	for _, c := range cases {
		if got := normalizeMidtransState(c.status, c.fraud); got != c.want {
			t.Fatalf("normalizeMidtransState(%q,%q)=%q, want %q", c.status, c.fraud, got, c.want)
		}
	}
	if got := normalizePhonePeState("completed"); got != StateCompleted {
		t.Fatalf("normalizePhonePeState lower-case = %q", got)
	}
	if got := normalizePhonePeState("WEIRD"); got != StatePending {
		t.Fatalf("unknown phonepe state = %q", got)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(&config.PaymentConfig{Provider: "paypal"}); err == nil {
		t.Fatalf("expected error")
	}
}
