// Package domain contains the core data types for the remote work directory.
// This package has no knowledge of HTTP or SQL and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// WifiQuality is the closed set of wifi ratings a spot can carry.
type WifiQuality string

const (
	WifiExcellent WifiQuality = "Excellent"
	WifiGood      WifiQuality = "Good"
	WifiFair      WifiQuality = "Fair"
	WifiPoor      WifiQuality = "Poor"
	WifiUnknown   WifiQuality = "Unknown"
)

// Valid reports whether q is one of the defined literals.
func (q WifiQuality) Valid() bool {
	switch q {
	case WifiExcellent, WifiGood, WifiFair, WifiPoor, WifiUnknown:
		return true
	}
	return false
}

// CrowdLevel is the closed set of typical crowd levels.
type CrowdLevel string

const (
	CrowdQuiet    CrowdLevel = "Quiet"
	CrowdModerate CrowdLevel = "Moderate"
	CrowdBusy     CrowdLevel = "Busy"
	CrowdVaries   CrowdLevel = "Varies"
	CrowdUnknown  CrowdLevel = "Unknown"
)

// Valid reports whether c is one of the defined literals.
func (c CrowdLevel) Valid() bool {
	switch c {
	case CrowdQuiet, CrowdModerate, CrowdBusy, CrowdVaries, CrowdUnknown:
		return true
	}
	return false
}

// PowerOutlets is the closed set of power-outlet availability ratings.
type PowerOutlets string

const (
	PowerPlenty  PowerOutlets = "Plenty"
	PowerSome    PowerOutlets = "Some"
	PowerFew     PowerOutlets = "Few"
	PowerNone    PowerOutlets = "None"
	PowerUnknown PowerOutlets = "Unknown"
)

// Valid reports whether p is one of the defined literals.
func (p PowerOutlets) Valid() bool {
	switch p {
	case PowerPlenty, PowerSome, PowerFew, PowerNone, PowerUnknown:
		return true
	}
	return false
}

// Spot is a venue record in the directory.
//
// Slug is empty only for legacy rows that predate slug assignment; every spot
// created through SpotService receives one. Optional text fields use nil for
// "no information". Enumerated fields never use the zero value: absence of
// information is the Unknown literal.
type Spot struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Address      string
	Neighborhood *string

	GooglePlacesID *string
	MapIframeURL   *string
	Latitude       *float64
	Longitude      *float64

	WifiQuality   WifiQuality
	WifiNotes     *string
	FoodAvailable bool
	FoodNotes     *string
	CrowdLevel    CrowdLevel
	CrowdNotes    *string
	PowerOutlets  PowerOutlets

	OtherAmenities   *string
	DescriptionAdmin *string
	MainPhotoURL     *string
	HoursOfOperation *string
	WebsiteURL       *string
	PhoneNumber      *string

	// DateLastVerified is an ISO-8601 date; empty means never verified.
	DateLastVerified string
	IsPublished      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WithDefaults fills enumerated fields left at their zero value with the
// Unknown literal.
func (s Spot) WithDefaults() Spot {
	if s.WifiQuality == "" {
		s.WifiQuality = WifiUnknown
	}
	if s.CrowdLevel == "" {
		s.CrowdLevel = CrowdUnknown
	}
	if s.PowerOutlets == "" {
		s.PowerOutlets = PowerUnknown
	}
	return s
}
