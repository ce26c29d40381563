package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// importRecord is one spot in an import file. Field names match the public
// API. Slugs are always assigned on import, never read from the file.
type importRecord struct {
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Neighborhood     *string  `json:"neighborhood"`
	GooglePlacesID   *string  `json:"google_places_id"`
	MapIframeURL     *string  `json:"map_iframe_url"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	WifiQuality      string   `json:"wifi_quality"`
	WifiNotes        *string  `json:"wifi_notes"`
	FoodAvailable    bool     `json:"food_available"`
	FoodNotes        *string  `json:"food_notes"`
	CrowdLevel       string   `json:"crowd_level_typical"`
	CrowdNotes       *string  `json:"crowd_notes"`
	PowerOutlets     string   `json:"power_outlets"`
	OtherAmenities   *string  `json:"other_amenities_text"`
	DescriptionAdmin *string  `json:"description_admin"`
	MainPhotoURL     *string  `json:"main_photo_url"`
	HoursOfOperation *string  `json:"hours_of_operation_text"`
	WebsiteURL       *string  `json:"website_url"`
	PhoneNumber      *string  `json:"phone_number"`
	DateLastVerified string   `json:"date_last_verified_admin"`
	IsPublished      bool     `json:"is_published"`
}

// decodeImport parses a JSON array of spots and checks every enum value
// before anything is written.
func decodeImport(r io.Reader) ([]domain.Spot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []importRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	spots := make([]domain.Spot, 0, len(records))
	for i, rec := range records {
		s := domain.Spot{
			Name:             rec.Name,
			Address:          rec.Address,
			Neighborhood:     rec.Neighborhood,
			GooglePlacesID:   rec.GooglePlacesID,
			MapIframeURL:     rec.MapIframeURL,
			Latitude:         rec.Latitude,
			Longitude:        rec.Longitude,
			WifiQuality:      domain.WifiQuality(rec.WifiQuality),
			WifiNotes:        rec.WifiNotes,
			FoodAvailable:    rec.FoodAvailable,
			FoodNotes:        rec.FoodNotes,
			CrowdLevel:       domain.CrowdLevel(rec.CrowdLevel),
			CrowdNotes:       rec.CrowdNotes,
			PowerOutlets:     domain.PowerOutlets(rec.PowerOutlets),
			OtherAmenities:   rec.OtherAmenities,
			DescriptionAdmin: rec.DescriptionAdmin,
			MainPhotoURL:     rec.MainPhotoURL,
			HoursOfOperation: rec.HoursOfOperation,
			WebsiteURL:       rec.WebsiteURL,
			PhoneNumber:      rec.PhoneNumber,
			DateLastVerified: rec.DateLastVerified,
			IsPublished:      rec.IsPublished,
		}.WithDefaults()

		switch {
		case s.Name == "":
			return nil, fmt.Errorf("record %d: name is required", i)
		case !s.WifiQuality.Valid():
			return nil, fmt.Errorf("record %d (%s): unknown wifi_quality %q", i, s.Name, s.WifiQuality)
		case !s.CrowdLevel.Valid():
			return nil, fmt.Errorf("record %d (%s): unknown crowd_level_typical %q", i, s.Name, s.CrowdLevel)
		case !s.PowerOutlets.Valid():
			return nil, fmt.Errorf("record %d (%s): unknown power_outlets %q", i, s.Name, s.PowerOutlets)
		}
		spots = append(spots, s)
	}
	return spots, nil
}

// spotCreator is the part of SpotService an import needs.
type spotCreator interface {
	Create(ctx context.Context, spot domain.Spot) (domain.Spot, error)
}

// importSpots creates each spot in order and stops at the first failure.
func importSpots(ctx context.Context, svc spotCreator, spots []domain.Spot, w io.Writer) error {
	for i, s := range spots {
		created, err := svc.Create(ctx, s)
		if err != nil {
			return fmt.Errorf("import %q (record %d): %w", s.Name, i, err)
		}
		fmt.Fprintf(w, "created %s (%s)\n", created.Slug, created.ID)
	}
	fmt.Fprintf(w, "imported %d spot(s)\n", len(spots))
	return nil
}
