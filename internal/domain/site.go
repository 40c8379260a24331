package domain

import "time"

// Site status values.
const (
	SiteActive       = "active"
	SiteInactive     = "inactive"
	SiteConstruction = "construction"
)

// Site is a property maintained for a client.
type Site struct {
	ID                  string    `json:"id"`
	ClientID            *string   `json:"clientId"`
	Name                string    `json:"name"`
	Address             *string   `json:"address"`
	City                *string   `json:"city"`
	Region              *string   `json:"region"`
	Status              string    `json:"status"`
	UnifiSiteID         *string   `json:"unifiSiteId"`
	GoogleDriveFolderID *string   `json:"googleDriveFolderId"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// CreateSiteRequest is the input for creating a site.
type CreateSiteRequest struct {
	ClientID            *string `json:"clientId"`
	Name                string  `json:"name" validate:"required"`
	Address             *string `json:"address"`
	City                *string `json:"city"`
	Region              *string `json:"region"`
	Status              string  `json:"status" validate:"omitempty,oneof=active inactive construction"`
	UnifiSiteID         *string `json:"unifiSiteId"`
	GoogleDriveFolderID *string `json:"googleDriveFolderId"`
}

// UpdateSiteRequest is the input for updating a site. Nil fields are left
// untouched.
type UpdateSiteRequest struct {
	ClientID            *string `json:"clientId"`
	Name                *string `json:"name"`
	Address             *string `json:"address"`
	City                *string `json:"city"`
	Region              *string `json:"region"`
	Status              *string `json:"status" validate:"omitempty,oneof=active inactive construction"`
	UnifiSiteID         *string `json:"unifiSiteId"`
	GoogleDriveFolderID *string `json:"googleDriveFolderId"`
}
