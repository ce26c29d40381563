package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// ListSpots handles GET /spots.
// Supports ?search=, ?wifiQuality=, ?foodAvailable= and ?crowdLevel=.
// Enum values are passed through unchecked: an unknown value matches nothing.
func (s *Server) ListSpots(w http.ResponseWriter, r *http.Request) {
	f, err := listFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid_parameter", err.Error()))
		return
	}

	spots, err := s.spots.ListPublished(r.Context(), f)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	data := make([]Spot, len(spots))
	for i, sp := range spots {
		data[i] = spotToResponse(sp)
	}
	writeJSON(w, http.StatusOK, SpotList{Data: data})
}

// GetSpot handles GET /spots/{slug}. Unpublished spots are reported as missing.
func (s *Server) GetSpot(w http.ResponseWriter, r *http.Request) {
	spot, ok, err := s.spots.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, notFoundBody("spot not found"))
		return
	}
	writeJSON(w, http.StatusOK, spotToResponse(spot))
}

// listFilters binds the listing query parameters.
func listFilters(r *http.Request) (domain.ListFilters, error) {
	q := r.URL.Query()
	var f domain.ListFilters

	if err := runtime.BindQueryParameter("form", true, false, "search", q, &f.Search); err != nil {
		return domain.ListFilters{}, fmt.Errorf("invalid format for parameter search: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "wifiQuality", q, &f.WifiQuality); err != nil {
		return domain.ListFilters{}, fmt.Errorf("invalid format for parameter wifiQuality: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "crowdLevel", q, &f.CrowdLevel); err != nil {
		return domain.ListFilters{}, fmt.Errorf("invalid format for parameter crowdLevel: %w", err)
	}

	// Only the literals "true" and "false" filter; anything else is ignored.
	switch q.Get("foodAvailable") {
	case "true":
		v := true
		f.FoodAvailable = &v
	case "false":
		v := false
		f.FoodAvailable = &v
	}
	return f, nil
}

// --- mapping helpers --------------------------------------------------------

// spotToResponse converts a domain.Spot into its wire form.
func spotToResponse(s domain.Spot) Spot {
	return Spot{
		Id:               s.ID,
		Name:             s.Name,
		Slug:             s.Slug,
		Address:          s.Address,
		Neighborhood:     s.Neighborhood,
		GooglePlacesId:   s.GooglePlacesID,
		MapIframeUrl:     s.MapIframeURL,
		Latitude:         s.Latitude,
		Longitude:        s.Longitude,
		WifiQuality:      string(s.WifiQuality),
		WifiNotes:        s.WifiNotes,
		FoodAvailable:    s.FoodAvailable,
		FoodNotes:        s.FoodNotes,
		CrowdLevel:       string(s.CrowdLevel),
		CrowdNotes:       s.CrowdNotes,
		PowerOutlets:     string(s.PowerOutlets),
		OtherAmenities:   s.OtherAmenities,
		Description:      s.DescriptionAdmin,
		MainPhotoUrl:     s.MainPhotoURL,
		HoursOfOperation: s.HoursOfOperation,
		WebsiteUrl:       s.WebsiteURL,
		PhoneNumber:      s.PhoneNumber,
		DateLastVerified: nilIfEmpty(s.DateLastVerified),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// nilIfEmpty returns nil for "" so optional strings are omitted from JSON.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
