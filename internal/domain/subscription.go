package domain

import "time"

// Subscription status values. A client has at most one logically-current
// subscription; a new row is inserted on each (re)subscribe.
const (
	SubActive    = "active"
	SubPastDue   = "past_due"
	SubPaused    = "paused"
	SubCancelled = "cancelled"
)

// Payment history status values.
const (
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Subscription is one subscription lifecycle instance for a client.
type Subscription struct {
	ID        string `json:"id"`
	ClientID  string `json:"clientId"`
	Status    string `json:"status"`
	PlanName  string `json:"planName"`
	PriceUSD  int    `json:"priceUsd"` // monthly price in whole USD
	// AzulToken is the subscription's saved DataVault token, AES-GCM
	// encrypted at rest. Nil when the card was not vaulted.
	AzulToken            *string    `json:"-"`
	AzulOrderID          *string    `json:"azulOrderId"`
	PayPalSubscriptionID *string    `json:"paypalSubscriptionId"`
	StartedAt            time.Time  `json:"startedAt"`
	NextBillingDate      *time.Time `json:"nextBillingDate"`
	CancelledAt          *time.Time `json:"cancelledAt"`
	// BillingAttemptedAt is the batch-billing claim marker: set before a
	// charge is attempted so a repeated run in the same day cannot
	// re-select the row.
	BillingAttemptedAt *time.Time `json:"-"`
}

// PaymentHistory is one append-only billing attempt record. Rows are never
// mutated or deleted.
type PaymentHistory struct {
	ID                    string    `json:"id"`
	SubscriptionID        string    `json:"subscriptionId"`
	ClientID              string    `json:"clientId"`
	AmountUSD             float64   `json:"amountUsd"`
	AmountITBIS           *float64  `json:"amountItbis"`
	AzulTransactionID     *string   `json:"azulTransactionId"`
	AzulAuthorizationCode *string   `json:"azulAuthorizationCode"`
	PayPalTransactionID   *string   `json:"paypalTransactionId"`
	Status                string    `json:"status"`
	PaymentDate           time.Time `json:"paymentDate"`
}

// PendingChallenge records a sale that came back requiring 3-D-Secure
// authentication, keyed by the gateway's order id so the charge flow can be
// resumed once the cardholder completes the challenge.
type PendingChallenge struct {
	AzulOrderID string    `json:"azulOrderId"`
	ClientID    string    `json:"clientId"`
	PriceUSD    int       `json:"priceUsd"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SubscribeRequest is the input for the interactive subscription creation
// endpoint.
type SubscribeRequest struct {
	ClientID       string `json:"clientId" validate:"required"`
	CardNumber     string `json:"cardNumber" validate:"required"`
	Expiration     string `json:"expiration" validate:"required"` // YYYYMM
	CVC            string `json:"cvc" validate:"required"`
	CardholderName string `json:"cardholderName"`
	SaveCard       bool   `json:"saveCard"`
}

// SubscribeResult is the successful outcome of a subscription creation.
type SubscribeResult struct {
	Subscription      *Subscription `json:"subscription"`
	AzulOrderID       string        `json:"azulOrderId"`
	AuthorizationCode string        `json:"authorizationCode"`
}

// Challenge is the step-up payload returned when the gateway demands
// 3-D-Secure authentication before approving the charge.
type Challenge struct {
	AzulOrderID string      `json:"azulOrderId"`
	ThreeDSData interface{} `json:"threeDSData"`
}

// Decline is the business outcome of a well-formed but unapproved charge.
// It is data, not an error: callers branch on it.
type Decline struct {
	Reason  string `json:"error"`
	IsoCode string `json:"isoCode"`
}

// BillingReport is the aggregate result of one recurring billing run.
type BillingReport struct {
	Message    string   `json:"message"`
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}
