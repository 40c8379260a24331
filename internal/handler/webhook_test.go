package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adolfofidel/afdevs-admin/internal/service"
)

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// An unrecognized event type never reaches the stores, so nil stores are
// fine for exercising the HTTP surface.
func newWebhookTestHandler(secret string) *WebhookHandler {
	return NewWebhookHandler(service.NewWebhookService(nil, nil), secret)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newWebhookTestHandler("shared-secret")
	body := `{"event_type":"TEST.EVENT"}`

	tests := []struct {
		name      string
		signature string
	}{
		{"missing", ""},
		{"wrong secret", sign(body, "other-secret")},
		{"malformed", "md5=abcdef"},
		{"not hex prefixed", "garbage"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/paypal", strings.NewReader(body))
		if tt.signature != "" {
			req.Header.Set("X-Webhook-Signature", tt.signature)
		}
		rec := httptest.NewRecorder()
		h.HandlePayPal(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tt.name, rec.Code)
		}
	}
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	h := newWebhookTestHandler("shared-secret")
	body := `{"event_type":"TEST.EVENT"}`

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/paypal", strings.NewReader(body))
	req.Header.Set("X-Webhook-Signature", sign(body, "shared-secret"))
	rec := httptest.NewRecorder()
	h.HandlePayPal(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWebhookSkipsCheckWithoutSecret(t *testing.T) {
	h := newWebhookTestHandler("")

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/paypal", strings.NewReader(`{"event_type":"TEST.EVENT"}`))
	rec := httptest.NewRecorder()
	h.HandlePayPal(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestWebhookRejectsInvalidJSON(t *testing.T) {
	h := newWebhookTestHandler("")

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/paypal", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	h.HandlePayPal(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
