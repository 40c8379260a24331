package domain

import "time"

// Client is a paying customer of the maintenance business. A client owns
// sites and at most one logically-current subscription; the subscription
// workflows mirror the latest subscription state onto the client row.
type Client struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CompanyName        *string   `json:"companyName"`
	PrimaryEmail       *string   `json:"primaryEmail"`
	PrimaryPhone       *string   `json:"primaryPhone"`
	BillingAddress     *string   `json:"billingAddress"`
	IsActive           bool      `json:"isActive"`
	IsSubscribed       bool      `json:"isSubscribed"`
	SubscriptionStatus *string   `json:"subscriptionStatus"`
	// AzulCustomerToken is the client-level saved card (DataVault) token,
	// stored AES-GCM encrypted. Fallback when a subscription has no token
	// of its own.
	AzulCustomerToken *string   `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CreateClientRequest is the input for creating a client record.
type CreateClientRequest struct {
	Name           string  `json:"name" validate:"required"`
	CompanyName    *string `json:"companyName"`
	PrimaryEmail   *string `json:"primaryEmail" validate:"omitempty,email"`
	PrimaryPhone   *string `json:"primaryPhone"`
	BillingAddress *string `json:"billingAddress"`
}

// UpdateClientRequest is the input for updating a client record.
// Nil fields are left untouched.
type UpdateClientRequest struct {
	Name           *string `json:"name"`
	CompanyName    *string `json:"companyName"`
	PrimaryEmail   *string `json:"primaryEmail" validate:"omitempty,email"`
	PrimaryPhone   *string `json:"primaryPhone"`
	BillingAddress *string `json:"billingAddress"`
	IsActive       *bool   `json:"isActive"`
}
