// Package repo contains all database access logic for the directory.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SpotRepo defines the persistence operations for Spots.
// The service layer depends on this interface, not the Postgres implementation.
type SpotRepo interface {
	// Create inserts a new spot and returns the persisted record.
	// Returns domain.ErrSlugConflict if the slug is already held.
	Create(ctx context.Context, spot domain.Spot) (domain.Spot, error)

	// GetByID retrieves a spot regardless of publication state.
	// Returns domain.ErrNotFound if no spot with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Spot, error)

	// GetPublishedBySlug retrieves a published spot by slug.
	// Returns domain.ErrNotFound for unknown slugs and unpublished spots.
	GetPublishedBySlug(ctx context.Context, slug string) (domain.Spot, error)

	// SlugTaken reports whether any spot other than excludeID holds slug.
	// Pass uuid.Nil to check against every spot.
	SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

	// UpdateSlug sets the slug of a single spot.
	// Returns domain.ErrNotFound or domain.ErrSlugConflict.
	UpdateSlug(ctx context.Context, id uuid.UUID, slug string) error

	// List materializes a listing query.
	List(ctx context.Context, q domain.ListQuery) ([]domain.Spot, error)

	// ListForBackfill returns spots in stable (created_at, id) order.
	// When missingOnly is set, only spots without a slug are returned.
	ListForBackfill(ctx context.Context, missingOnly bool) ([]domain.Spot, error)
}

// pgSpotRepo is the Postgres implementation of SpotRepo.
type pgSpotRepo struct {
	db db
}

// NewSpotRepo constructs a SpotRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewSpotRepo(db db) SpotRepo {
	return &pgSpotRepo{db: db}
}

const spotColumns = `
	id, name, slug, address, neighborhood,
	google_places_id, map_iframe_url, latitude, longitude,
	wifi_quality, wifi_notes, food_available, food_notes,
	crowd_level_typical, crowd_notes, power_outlets,
	other_amenities_text, description_admin, main_photo_url,
	hours_of_operation_text, website_url, phone_number,
	date_last_verified_admin, is_published, created_at, updated_at`

// Create inserts a spot row. The slug unique index is the final arbiter of
// uniqueness; a collision surfaces as domain.ErrSlugConflict.
func (r *pgSpotRepo) Create(ctx context.Context, spot domain.Spot) (domain.Spot, error) {
	const q = `
		INSERT INTO spots (
			name, slug, address, neighborhood,
			google_places_id, map_iframe_url, latitude, longitude,
			wifi_quality, wifi_notes, food_available, food_notes,
			crowd_level_typical, crowd_notes, power_outlets,
			other_amenities_text, description_admin, main_photo_url,
			hours_of_operation_text, website_url, phone_number,
			date_last_verified_admin, is_published
		) VALUES (
			@name, @slug, @address, @neighborhood,
			@google_places_id, @map_iframe_url, @latitude, @longitude,
			@wifi_quality, @wifi_notes, @food_available, @food_notes,
			@crowd_level_typical, @crowd_notes, @power_outlets,
			@other_amenities_text, @description_admin, @main_photo_url,
			@hours_of_operation_text, @website_url, @phone_number,
			@date_last_verified_admin, @is_published
		)
		RETURNING ` + spotColumns

	spot = spot.WithDefaults()
	args := pgx.NamedArgs{
		"name":                     spot.Name,
		"slug":                     nullIfEmpty(spot.Slug),
		"address":                  spot.Address,
		"neighborhood":             spot.Neighborhood,
		"google_places_id":         spot.GooglePlacesID,
		"map_iframe_url":           spot.MapIframeURL,
		"latitude":                 spot.Latitude,
		"longitude":                spot.Longitude,
		"wifi_quality":             string(spot.WifiQuality),
		"wifi_notes":               spot.WifiNotes,
		"food_available":           spot.FoodAvailable,
		"food_notes":               spot.FoodNotes,
		"crowd_level_typical":      string(spot.CrowdLevel),
		"crowd_notes":              spot.CrowdNotes,
		"power_outlets":            string(spot.PowerOutlets),
		"other_amenities_text":     spot.OtherAmenities,
		"description_admin":        spot.DescriptionAdmin,
		"main_photo_url":           spot.MainPhotoURL,
		"hours_of_operation_text":  spot.HoursOfOperation,
		"website_url":              spot.WebsiteURL,
		"phone_number":             spot.PhoneNumber,
		"date_last_verified_admin": spot.DateLastVerified,
		"is_published":             spot.IsPublished,
	}

	result, err := scanSpot(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Spot{}, fmt.Errorf("repo.SpotRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

// GetByID retrieves a spot by primary key.
func (r *pgSpotRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Spot, error) {
	q := `SELECT ` + spotColumns + ` FROM spots WHERE id = @id`

	result, err := scanSpot(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Spot{}, fmt.Errorf("repo.SpotRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetPublishedBySlug retrieves a published spot by its slug.
func (r *pgSpotRepo) GetPublishedBySlug(ctx context.Context, slug string) (domain.Spot, error) {
	q := `SELECT ` + spotColumns + ` FROM spots WHERE slug = @slug AND is_published = true`

	result, err := scanSpot(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Spot{}, fmt.Errorf("repo.SpotRepo.GetPublishedBySlug: %w", err)
	}
	return result, nil
}

// SlugTaken is the membership check used while probing slug candidates.
func (r *pgSpotRepo) SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM spots
			WHERE slug = @slug AND id <> @exclude_id
		)`

	var taken bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug, "exclude_id": excludeID}).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("repo.SpotRepo.SlugTaken: %w", err)
	}
	return taken, nil
}

// UpdateSlug patches the slug of one spot.
func (r *pgSpotRepo) UpdateSlug(ctx context.Context, id uuid.UUID, slug string) error {
	const q = `
		UPDATE spots
		SET slug       = @slug,
		    updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "slug": slug})
	if err != nil {
		return fmt.Errorf("repo.SpotRepo.UpdateSlug: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SpotRepo.UpdateSlug: %w", domain.ErrNotFound)
	}
	return nil
}

// ListForBackfill returns spots in a stable order so repeated backfills
// resolve collisions identically.
func (r *pgSpotRepo) ListForBackfill(ctx context.Context, missingOnly bool) ([]domain.Spot, error) {
	q := `SELECT ` + spotColumns + ` FROM spots`
	if missingOnly {
		q += ` WHERE slug IS NULL OR slug = ''`
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SpotRepo.ListForBackfill: %w", err)
	}
	spots, err := collectSpots(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.SpotRepo.ListForBackfill: %w", err)
	}
	return spots, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanSpot to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanSpot maps a single row selected with spotColumns into a domain.Spot.
func scanSpot(s scanner) (domain.Spot, error) {
	var (
		sp    domain.Spot
		id    pgtype.UUID
		slug  *string
		wifi  string
		crowd string
		power string
	)

	err := s.Scan(
		&id, &sp.Name, &slug, &sp.Address, &sp.Neighborhood,
		&sp.GooglePlacesID, &sp.MapIframeURL, &sp.Latitude, &sp.Longitude,
		&wifi, &sp.WifiNotes, &sp.FoodAvailable, &sp.FoodNotes,
		&crowd, &sp.CrowdNotes, &power,
		&sp.OtherAmenities, &sp.DescriptionAdmin, &sp.MainPhotoURL,
		&sp.HoursOfOperation, &sp.WebsiteURL, &sp.PhoneNumber,
		&sp.DateLastVerified, &sp.IsPublished, &sp.CreatedAt, &sp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Spot{}, domain.ErrNotFound
		}
		return domain.Spot{}, err
	}

	sp.ID = uuid.UUID(id.Bytes)
	if slug != nil {
		sp.Slug = *slug
	}
	sp.WifiQuality = domain.WifiQuality(wifi)
	sp.CrowdLevel = domain.CrowdLevel(crowd)
	sp.PowerOutlets = domain.PowerOutlets(power)
	return sp, nil
}

// collectSpots drains rows into a non-nil slice and closes them.
func collectSpots(rows pgx.Rows) ([]domain.Spot, error) {
	defer rows.Close()

	spots := []domain.Spot{}
	for rows.Next() {
		sp, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		spots = append(spots, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return spots, nil
}

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// mapWriteError translates a collision on the slug index into
// domain.ErrSlugConflict and passes every other error through.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "spots_slug_key" {
		return domain.ErrSlugConflict
	}
	return err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
