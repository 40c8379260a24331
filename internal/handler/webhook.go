package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/adolfofidel/afdevs-admin/internal/service"
)

// WebhookHandler ingests PayPal subscription lifecycle events.
type WebhookHandler struct {
	svc    *service.WebhookService
	secret string
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(svc *service.WebhookService, secret string) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret}
}

// HandlePayPal handles POST /api/webhooks/paypal. Once the signature checks
// out the endpoint always acknowledges with 200 {received:true}, whether or
// not the event was recognized or actionable, so the provider does not
// retry-storm us.
func (h *WebhookHandler) HandlePayPal(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if h.secret != "" {
		signature := r.Header.Get("X-Webhook-Signature")
		if !verifySignature(signature, body, h.secret) {
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var payload struct {
		EventType string          `json:"event_type"`
		Resource  json.RawMessage `json:"resource"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	log.Printf("webhook: PayPal event received: %s", payload.EventType)

	if err := h.svc.HandleEvent(r.Context(), payload.EventType, payload.Resource); err != nil {
		// Processing failures are logged but still acknowledged.
		log.Printf("webhook: failed to process %s: %v", payload.EventType, err)
	}

	JSON(w, http.StatusOK, map[string]bool{"received": true})
}

// verifySignature checks an HMAC-SHA256 signature of the form
// "sha256=<hex>" against the shared secret.
func verifySignature(signature string, payload []byte, secret string) bool {
	parts := strings.Split(signature, "=")
	if len(parts) != 2 || parts[0] != "sha256" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expectedMAC := mac.Sum(nil)
	expectedSignature := hex.EncodeToString(expectedMAC)

	return hmac.Equal([]byte(parts[1]), []byte(expectedSignature))
}
