package handler

import (
	"net/http"

	"github.com/adolfofidel/afdevs-admin/internal/contextkeys"
	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/adolfofidel/afdevs-admin/internal/service"
)

// SubscriptionHandler exposes the interactive subscription lifecycle and
// the dashboard/portal subscription reads.
type SubscriptionHandler struct {
	svc      *service.SubscriptionService
	subRepo  *repository.SubscriptionRepository
	payments *repository.PaymentRepository
}

// NewSubscriptionHandler creates a SubscriptionHandler.
func NewSubscriptionHandler(svc *service.SubscriptionService, subRepo *repository.SubscriptionRepository, payments *repository.PaymentRepository) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, subRepo: subRepo, payments: payments}
}

// writeOutcome renders the three-way result of a charge attempt.
func writeOutcome(w http.ResponseWriter, out *service.SubscribeOutcome) {
	switch {
	case out.Challenge != nil:
		JSON(w, http.StatusOK, map[string]interface{}{
			"requires3DS": true,
			"azulOrderId": out.Challenge.AzulOrderID,
			"threeDSData": out.Challenge.ThreeDSData,
		})
	case out.Decline != nil:
		JSON(w, http.StatusBadRequest, out.Decline)
	default:
		sub := out.Result.Subscription
		JSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"subscription": map[string]interface{}{
				"id":              sub.ID,
				"status":          sub.Status,
				"planName":        sub.PlanName,
				"priceUsd":        sub.PriceUSD,
				"nextBillingDate": sub.NextBillingDate,
			},
			"transaction": map[string]interface{}{
				"azulOrderId":       out.Result.AzulOrderID,
				"authorizationCode": out.Result.AuthorizationCode,
			},
		})
	}
}

// Create handles POST /api/subscriptions.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.SubscribeRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	out, err := h.svc.Subscribe(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}
	writeOutcome(w, out)
}

// Complete3DS handles POST /api/subscriptions/3ds/complete, resuming a
// charge halted by a step-up challenge.
func (h *SubscriptionHandler) Complete3DS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AzulOrderID string `json:"azulOrderId"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	out, err := h.svc.Complete3DS(r.Context(), req.AzulOrderID)
	if err != nil {
		Error(w, err)
		return
	}
	writeOutcome(w, out)
}

// resolveClientID determines which client the request is about: staff may
// pass an explicit clientId query parameter; portal users are resolved via
// their token email.
func (h *SubscriptionHandler) resolveClientID(r *http.Request) (string, error) {
	role, _ := r.Context().Value(contextkeys.UserRole).(string)
	if role == "admin" {
		if id := r.URL.Query().Get("clientId"); id != "" {
			return id, nil
		}
	}
	email, _ := r.Context().Value(contextkeys.UserEmail).(string)
	client, err := h.svc.ResolveClientByEmail(r.Context(), email)
	if err != nil {
		return "", err
	}
	return client.ID, nil
}

// GetCurrent handles GET /api/subscriptions/current.
func (h *SubscriptionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.resolveClientID(r)
	if err != nil {
		Error(w, err)
		return
	}

	sub, err := h.svc.GetCurrent(r.Context(), clientID)
	if err != nil {
		Error(w, err)
		return
	}
	if sub == nil {
		JSON(w, http.StatusOK, map[string]interface{}{"status": "none"})
		return
	}
	JSON(w, http.StatusOK, sub)
}

// Cancel handles DELETE /api/subscriptions/current.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.resolveClientID(r)
	if err != nil {
		Error(w, err)
		return
	}

	if err := h.svc.Cancel(r.Context(), clientID); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Payments handles GET /api/subscriptions/current/payments.
func (h *SubscriptionHandler) Payments(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.resolveClientID(r)
	if err != nil {
		Error(w, err)
		return
	}

	payments, err := h.payments.ListByClient(r.Context(), clientID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, payments)
}

// List handles GET /api/subscriptions (staff dashboard).
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subRepo.ListAll(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, subs)
}
