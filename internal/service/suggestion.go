package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kasuboski/remote-work-directory/internal/domain"
	"github.com/kasuboski/remote-work-directory/internal/repo"
)

// Field names reported in validation errors. They match the public form.
const (
	FieldSpotName       = "spot_name"
	FieldAddress        = "address"
	FieldNeighborhood   = "neighborhood"
	FieldReason         = "reason"
	FieldWifiNotes      = "wifi_notes"
	FieldFoodNotes      = "food_notes"
	FieldCrowdNotes     = "crowd_notes"
	FieldPowerNotes     = "power_notes"
	FieldOtherNotes     = "other_notes"
	FieldSuggesterName  = "suggester_name"
	FieldSuggesterEmail = "suggester_email"
	// FieldTotal is reported when the combined size of a submission is too large.
	FieldTotal = "_total"
)

// IntakeLimits holds the character caps applied to a suggestion. Lengths are
// counted in Unicode code points, not UTF-16 units as a browser's maxlength
// does, so an emoji counts once here and twice in the form.
type IntakeLimits struct {
	SpotName  int
	ShortText int // address, neighborhood, reason and every *_notes field
	Name      int
	Email     int
	Total     int
}

// DefaultIntakeLimits returns the caps used by the public form.
func DefaultIntakeLimits() IntakeLimits {
	return IntakeLimits{
		SpotName:  200,
		ShortText: 500,
		Name:      100,
		Email:     254,
		Total:     5000,
	}
}

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	placeholderEmails = []string{"test@test", "fake@fake", "example@example", "spam@spam"}
)

// SuggestionValidator turns raw public input into a Suggestion or a
// *domain.ValidationError. It holds no state besides its limits.
type SuggestionValidator struct {
	limits IntakeLimits
}

// NewSuggestionValidator returns a validator enforcing limits.
func NewSuggestionValidator(limits IntakeLimits) SuggestionValidator {
	return SuggestionValidator{limits: limits}
}

// intakeField pairs a trimmed value with its destination and cap.
type intakeField struct {
	name  string
	value *string
	max   int
}

// Validate trims every field, applies the length, email and total checks in
// that order, and returns the first failure. The returned Suggestion has no
// ID, timestamp or status.
func (v SuggestionValidator) Validate(raw domain.RawSuggestion) (domain.Suggestion, error) {
	out := domain.Suggestion{
		Address:        trimmed(raw.Address),
		Neighborhood:   trimmed(raw.Neighborhood),
		Reason:         trimmed(raw.Reason),
		WifiNotes:      trimmed(raw.WifiNotes),
		FoodNotes:      trimmed(raw.FoodNotes),
		CrowdNotes:     trimmed(raw.CrowdNotes),
		PowerNotes:     trimmed(raw.PowerNotes),
		OtherNotes:     trimmed(raw.OtherNotes),
		SuggesterName:  trimmed(raw.SuggesterName),
		SuggesterEmail: trimmed(raw.SuggesterEmail),
	}

	name := trimmed(raw.SpotName)
	if name == nil {
		return domain.Suggestion{}, domain.NewValidationError(FieldSpotName, "spot_name is required")
	}
	out.SpotName = *name

	fields := []intakeField{
		{FieldSpotName, name, v.limits.SpotName},
		{FieldAddress, out.Address, v.limits.ShortText},
		{FieldNeighborhood, out.Neighborhood, v.limits.ShortText},
		{FieldReason, out.Reason, v.limits.ShortText},
		{FieldWifiNotes, out.WifiNotes, v.limits.ShortText},
		{FieldFoodNotes, out.FoodNotes, v.limits.ShortText},
		{FieldCrowdNotes, out.CrowdNotes, v.limits.ShortText},
		{FieldPowerNotes, out.PowerNotes, v.limits.ShortText},
		{FieldOtherNotes, out.OtherNotes, v.limits.ShortText},
		{FieldSuggesterName, out.SuggesterName, v.limits.Name},
		{FieldSuggesterEmail, out.SuggesterEmail, v.limits.Email},
	}

	total := 0
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		n := utf8.RuneCountInString(*f.value)
		if f.max > 0 && n > f.max {
			return domain.Suggestion{}, domain.NewLengthError(f.name, f.max, n)
		}
		total += n
	}

	if out.SuggesterEmail != nil {
		if err := checkEmail(*out.SuggesterEmail); err != nil {
			return domain.Suggestion{}, err
		}
	}

	if v.limits.Total > 0 && total > v.limits.Total {
		e := domain.NewLengthError(FieldTotal, v.limits.Total, total)
		e.Message = fmt.Sprintf("submission is too long (%d characters); the maximum is %d", total, v.limits.Total)
		return domain.Suggestion{}, e
	}

	return out, nil
}

func checkEmail(email string) error {
	// RE2's \s is ASCII only; NBSP, vertical tab and other spaces count too.
	if strings.ContainsFunc(email, unicode.IsSpace) || !emailShape.MatchString(email) {
		return domain.NewValidationError(FieldSuggesterEmail, "suggester_email is not a valid email address")
	}
	if isPlaceholderEmail(email) {
		return domain.NewValidationError(FieldSuggesterEmail, "suggester_email looks like a placeholder address")
	}
	return nil
}

// isPlaceholderEmail matches addresses containing a well-known throwaway
// pattern anywhere ("test@test.com") and local parts made of one character
// repeated three or more times ("aaa@example.com").
func isPlaceholderEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, p := range placeholderEmails {
		if strings.Contains(lower, p) {
			return true
		}
	}

	local, _, _ := strings.Cut(lower, "@")
	if utf8.RuneCountInString(local) < 3 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(local)
	for _, r := range local {
		if r != first {
			return false
		}
	}
	return true
}

// trimmed returns nil for absent or blank input and the trimmed text otherwise.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// SuggestionService validates public suggestions and persists accepted ones.
type SuggestionService struct {
	repo      repo.SuggestionRepo
	validator SuggestionValidator
	now       func() time.Time
}

// SuggestionOption customizes a SuggestionService.
type SuggestionOption func(*SuggestionService)

// WithClock replaces time.Now as the source of submitted_at.
func WithClock(now func() time.Time) SuggestionOption {
	return func(s *SuggestionService) { s.now = now }
}

// NewSuggestionService constructs a SuggestionService with the given limits.
func NewSuggestionService(r repo.SuggestionRepo, limits IntakeLimits, opts ...SuggestionOption) *SuggestionService {
	s := &SuggestionService{
		repo:      r,
		validator: NewSuggestionValidator(limits),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates raw and stores it with status pending. Nothing is written
// when validation fails.
func (s *SuggestionService) Submit(ctx context.Context, raw domain.RawSuggestion) (domain.Suggestion, error) {
	sg, err := s.validator.Validate(raw)
	if err != nil {
		return domain.Suggestion{}, err
	}
	sg.Status = domain.SuggestionPending
	sg.SubmittedAt = s.now().UTC()

	created, err := s.repo.Create(ctx, sg)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("service.SuggestionService.Submit: %w", err)
	}
	return created, nil
}
