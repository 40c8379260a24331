package repository

import (
	"context"
	"fmt"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const siteColumns = `id, client_id, name, address, city, region, status,
	unifi_site_id, google_drive_folder_id, created_at, updated_at`

// SiteRepository handles database operations for sites.
type SiteRepository struct {
	db *pgxpool.Pool
}

// NewSiteRepository creates a new SiteRepository.
func NewSiteRepository(db *pgxpool.Pool) *SiteRepository {
	return &SiteRepository{db: db}
}

func scanSite(row pgx.Row) (*domain.Site, error) {
	var s domain.Site
	err := row.Scan(
		&s.ID, &s.ClientID, &s.Name, &s.Address, &s.City, &s.Region, &s.Status,
		&s.UnifiSiteID, &s.GoogleDriveFolderID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan site: %w", err)
	}
	return &s, nil
}

// Create inserts a new site.
func (r *SiteRepository) Create(ctx context.Context, s *domain.Site) error {
	query := `
		INSERT INTO sites (id, client_id, name, address, city, region, status,
			unifi_site_id, google_drive_folder_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.ClientID, s.Name, s.Address, s.City, s.Region, s.Status,
		s.UnifiSiteID, s.GoogleDriveFolderID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

// FindByID returns a site by ID, or nil if absent.
func (r *SiteRepository) FindByID(ctx context.Context, id string) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`
	return scanSite(r.db.QueryRow(ctx, query, id))
}

// ListAll returns all sites ordered by name.
func (r *SiteRepository) ListAll(ctx context.Context) ([]*domain.Site, error) {
	return r.list(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY name ASC`)
}

// ListByClient returns the sites belonging to a client.
func (r *SiteRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Site, error) {
	return r.list(ctx, `SELECT `+siteColumns+` FROM sites WHERE client_id = $1 ORDER BY name ASC`, clientID)
}

func (r *SiteRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Site, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, nil
}

// Update applies the non-nil fields of the request to a site row.
func (r *SiteRepository) Update(ctx context.Context, id string, req *domain.UpdateSiteRequest) error {
	query := `
		UPDATE sites SET
			client_id              = COALESCE($2, client_id),
			name                   = COALESCE($3, name),
			address                = COALESCE($4, address),
			city                   = COALESCE($5, city),
			region                 = COALESCE($6, region),
			status                 = COALESCE($7, status),
			unifi_site_id          = COALESCE($8, unifi_site_id),
			google_drive_folder_id = COALESCE($9, google_drive_folder_id),
			updated_at             = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id,
		req.ClientID, req.Name, req.Address, req.City, req.Region, req.Status,
		req.UnifiSiteID, req.GoogleDriveFolderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}
	return nil
}

// Delete removes a site by ID.
func (r *SiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return nil
}

// Search returns sites whose name or city matches the query, for the
// dashboard type-ahead box.
func (r *SiteRepository) Search(ctx context.Context, q string, limit int) ([]*domain.Site, error) {
	query := `
		SELECT ` + siteColumns + ` FROM sites
		WHERE name ILIKE '%' || $1 || '%' OR city ILIKE '%' || $1 || '%'
		ORDER BY name ASC LIMIT $2
	`
	return r.list(ctx, query, q, limit)
}
