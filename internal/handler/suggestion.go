package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// CreateSuggestion handles POST /suggestions.
// It accepts a JSON object or an HTML form post with the same snake_case
// field names, and answers 201 with the new suggestion's id.
func (s *Server) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	raw, status, err := decodeSuggestion(r)
	if err != nil {
		code := "invalid_body"
		switch status {
		case http.StatusRequestEntityTooLarge:
			code = "body_too_large"
		case http.StatusUnsupportedMediaType:
			code = "unsupported_media_type"
		}
		writeJSON(w, status, requestBody(code, err.Error()))
		return
	}

	created, err := s.suggestions.Submit(r.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, SuggestionCreated{Id: created.ID, Status: string(created.Status)})
}

// decodeSuggestion reads the request body according to its Content-Type.
// The returned status is only meaningful when err is non-nil.
func decodeSuggestion(r *http.Request) (domain.RawSuggestion, int, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "application/json", "":
		var body SuggestionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return domain.RawSuggestion{}, bodyErrorStatus(err), bodyError(err)
		}
		return requestToSuggestion(body), 0, nil

	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := parseForm(r, mediaType); err != nil {
			return domain.RawSuggestion{}, bodyErrorStatus(err), bodyError(err)
		}
		return formToSuggestion(r.PostForm), 0, nil
	}
	return domain.RawSuggestion{}, http.StatusUnsupportedMediaType,
		errors.New("content type must be application/json or application/x-www-form-urlencoded")
}

// maxMultipartMemory bounds in-memory parts; the body size limit applies first.
const maxMultipartMemory = 1 << 20

func parseForm(r *http.Request, mediaType string) error {
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxMultipartMemory)
	}
	return r.ParseForm()
}

func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return errors.New("request body is too large")
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	}
	return errors.New("request body is malformed")
}

// --- mapping helpers --------------------------------------------------------

func requestToSuggestion(b SuggestionRequest) domain.RawSuggestion {
	return domain.RawSuggestion{
		SpotName:       b.SpotName,
		Address:        b.Address,
		Neighborhood:   b.Neighborhood,
		Reason:         b.Reason,
		WifiNotes:      b.WifiNotes,
		FoodNotes:      b.FoodNotes,
		CrowdNotes:     b.CrowdNotes,
		PowerNotes:     b.PowerNotes,
		OtherNotes:     b.OtherNotes,
		SuggesterName:  b.SuggesterName,
		SuggesterEmail: b.SuggesterEmail,
	}
}

// formToSuggestion maps form fields; a field missing from the form is nil.
func formToSuggestion(v url.Values) domain.RawSuggestion {
	get := func(key string) *string {
		if !v.Has(key) {
			return nil
		}
		s := v.Get(key)
		return &s
	}
	return domain.RawSuggestion{
		SpotName:       get("spot_name"),
		Address:        get("address"),
		Neighborhood:   get("neighborhood"),
		Reason:         get("reason"),
		WifiNotes:      get("wifi_notes"),
		FoodNotes:      get("food_notes"),
		CrowdNotes:     get("crowd_notes"),
		PowerNotes:     get("power_notes"),
		OtherNotes:     get("other_notes"),
		SuggesterName:  get("suggester_name"),
		SuggesterEmail: get("suggester_email"),
	}
}
