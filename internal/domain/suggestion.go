package domain

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionStatus tracks a suggestion through the external review workflow.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// RawSuggestion is an untrusted public submission exactly as received.
// Nil means the field was not sent at all.
type RawSuggestion struct {
	SpotName       *string
	Address        *string
	Neighborhood   *string
	Reason         *string
	WifiNotes      *string
	FoodNotes      *string
	CrowdNotes     *string
	PowerNotes     *string
	OtherNotes     *string
	SuggesterName  *string
	SuggesterEmail *string
}

// Suggestion is a validated, trimmed submission proposing a new spot.
// Optional fields are nil when absent; they are never empty strings.
type Suggestion struct {
	ID             uuid.UUID
	SpotName       string
	Address        *string
	Neighborhood   *string
	Reason         *string
	WifiNotes      *string
	FoodNotes      *string
	CrowdNotes     *string
	PowerNotes     *string
	OtherNotes     *string
	SuggesterName  *string
	SuggesterEmail *string
	SubmittedAt    time.Time
	Status         SuggestionStatus
}
