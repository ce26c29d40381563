package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// SuggestionRepo defines the persistence operations for Suggestions.
// Status changes belong to the external review workflow and are not exposed.
type SuggestionRepo interface {
	// Create inserts a validated suggestion and returns the persisted record.
	Create(ctx context.Context, s domain.Suggestion) (domain.Suggestion, error)

	// GetByID retrieves a suggestion by primary key.
	// Returns domain.ErrNotFound if no suggestion with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Suggestion, error)
}

// pgSuggestionRepo is the Postgres implementation of SuggestionRepo.
type pgSuggestionRepo struct {
	db db
}

// NewSuggestionRepo constructs a SuggestionRepo backed by the provided db connection.
func NewSuggestionRepo(db db) SuggestionRepo {
	return &pgSuggestionRepo{db: db}
}

const suggestionColumns = `
	id, spot_name, address, neighborhood, reason,
	wifi_notes, food_notes, crowd_notes, power_notes, other_notes,
	suggester_name, suggester_email, submitted_at, status`

// Create inserts one suggestion row in a single statement.
func (r *pgSuggestionRepo) Create(ctx context.Context, s domain.Suggestion) (domain.Suggestion, error) {
	const q = `
		INSERT INTO suggestions (
			spot_name, address, neighborhood, reason,
			wifi_notes, food_notes, crowd_notes, power_notes, other_notes,
			suggester_name, suggester_email, submitted_at, status
		) VALUES (
			@spot_name, @address, @neighborhood, @reason,
			@wifi_notes, @food_notes, @crowd_notes, @power_notes, @other_notes,
			@suggester_name, @suggester_email, @submitted_at, @status
		)
		RETURNING ` + suggestionColumns

	args := pgx.NamedArgs{
		"spot_name":       s.SpotName,
		"address":         s.Address,
		"neighborhood":    s.Neighborhood,
		"reason":          s.Reason,
		"wifi_notes":      s.WifiNotes,
		"food_notes":      s.FoodNotes,
		"crowd_notes":     s.CrowdNotes,
		"power_notes":     s.PowerNotes,
		"other_notes":     s.OtherNotes,
		"suggester_name":  s.SuggesterName,
		"suggester_email": s.SuggesterEmail,
		"submitted_at":    s.SubmittedAt,
		"status":          string(s.Status),
	}

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a suggestion by primary key.
func (r *pgSuggestionRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Suggestion, error) {
	q := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = @id`

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.GetByID: %w", err)
	}
	return result, nil
}

// scanSuggestion maps a single row selected with suggestionColumns.
func scanSuggestion(s scanner) (domain.Suggestion, error) {
	var (
		sg     domain.Suggestion
		id     pgtype.UUID
		status string
	)
	err := s.Scan(
		&id, &sg.SpotName, &sg.Address, &sg.Neighborhood, &sg.Reason,
		&sg.WifiNotes, &sg.FoodNotes, &sg.CrowdNotes, &sg.PowerNotes, &sg.OtherNotes,
		&sg.SuggesterName, &sg.SuggesterEmail, &sg.SubmittedAt, &status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Suggestion{}, domain.ErrNotFound
		}
		return domain.Suggestion{}, err
	}
	sg.ID = uuid.UUID(id.Bytes)
	sg.Status = domain.SuggestionStatus(status)
	return sg, nil
}
