package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types for the JSON API. Field names and shapes follow spec/openapi.yaml.

// HealthResponse is returned by GET /healthz and GET /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ErrorDetail is the body of every non-2xx JSON response. Field, MaxLength
// and ActualLength are only set for validation failures.
type ErrorDetail struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Field        string `json:"field,omitempty"`
	MaxLength    *int   `json:"max_length,omitempty"`
	ActualLength *int   `json:"actual_length,omitempty"`
}

// ErrorResponse wraps ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Spot is the public representation of a published spot.
type Spot struct {
	Id               openapi_types.UUID `json:"id"`
	Name             string             `json:"name"`
	Slug             string             `json:"slug"`
	Address          string             `json:"address"`
	Neighborhood     *string            `json:"neighborhood,omitempty"`
	GooglePlacesId   *string            `json:"google_places_id,omitempty"`
	MapIframeUrl     *string            `json:"map_iframe_url,omitempty"`
	Latitude         *float64           `json:"latitude,omitempty"`
	Longitude        *float64           `json:"longitude,omitempty"`
	WifiQuality      string             `json:"wifi_quality"`
	WifiNotes        *string            `json:"wifi_notes,omitempty"`
	FoodAvailable    bool               `json:"food_available"`
	FoodNotes        *string            `json:"food_notes,omitempty"`
	CrowdLevel       string             `json:"crowd_level_typical"`
	CrowdNotes       *string            `json:"crowd_notes,omitempty"`
	PowerOutlets     string             `json:"power_outlets"`
	OtherAmenities   *string            `json:"other_amenities_text,omitempty"`
	Description      *string            `json:"description_admin,omitempty"`
	MainPhotoUrl     *string            `json:"main_photo_url,omitempty"`
	HoursOfOperation *string            `json:"hours_of_operation_text,omitempty"`
	WebsiteUrl       *string            `json:"website_url,omitempty"`
	PhoneNumber      *string            `json:"phone_number,omitempty"`
	DateLastVerified *string            `json:"date_last_verified_admin,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// SpotList is returned by GET /spots.
type SpotList struct {
	Data []Spot `json:"data"`
}

// SuggestionRequest is the JSON body of POST /suggestions. Every field is
// optional at the wire level; the service decides what is required.
type SuggestionRequest struct {
	SpotName       *string `json:"spot_name"`
	Address        *string `json:"address"`
	Neighborhood   *string `json:"neighborhood"`
	Reason         *string `json:"reason"`
	WifiNotes      *string `json:"wifi_notes"`
	FoodNotes      *string `json:"food_notes"`
	CrowdNotes     *string `json:"crowd_notes"`
	PowerNotes     *string `json:"power_notes"`
	OtherNotes     *string `json:"other_notes"`
	SuggesterName  *string `json:"suggester_name"`
	SuggesterEmail *string `json:"suggester_email"`
}

// SuggestionCreated is returned by POST /suggestions on success.
type SuggestionCreated struct {
	Id     openapi_types.UUID `json:"id"`
	Status string             `json:"status"`
}
