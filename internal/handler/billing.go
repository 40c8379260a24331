package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/adolfofidel/afdevs-admin/internal/service"
)

// BillingHandler exposes the recurring billing batch run, intended to be
// invoked once daily by an external scheduler.
type BillingHandler struct {
	svc        *service.BillingService
	cronSecret string
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(svc *service.BillingService, cronSecret string) *BillingHandler {
	return &BillingHandler{svc: svc, cronSecret: cronSecret}
}

// ProcessRecurring handles POST /api/billing/process-recurring. The caller
// must present the configured cron secret as a bearer token; the check runs
// before any ledger read.
func (h *BillingHandler) ProcessRecurring(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret != "" {
		auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(auth), []byte(h.cronSecret)) != 1 {
			JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
	}

	report, err := h.svc.ProcessDue(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, report)
}
