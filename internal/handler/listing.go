package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/staynest/staynest-go/internal/media"
	"github.com/staynest/staynest-go/internal/model"
	"github.com/staynest/staynest-go/internal/service"
)

// listingPhotosField is the multipart field carrying listing photos.
const listingPhotosField = "listingPhotos"

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	service   *service.ListingService
	bodyLimit int64
}

// NewListingHandler creates a new ListingHandler. bodyLimit caps the
// creation body; zero disables the cap.
func NewListingHandler(svc *service.ListingService, bodyLimit int64) *ListingHandler {
	return &ListingHandler{service: svc, bodyLimit: bodyLimit}
}

// HandleCreate handles POST /properties/create multipart requests.
func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.bodyLimit); err != nil {
		if isBodyTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart form"))
		return
	}
	defer removeForm(r)

	req := model.CreateListingRequest{
		Creator:       r.FormValue("creator"),
		Category:      r.FormValue("category"),
		Type:          r.FormValue("type"),
		StreetAddress: r.FormValue("streetAddress"),
		AptSuite:      r.FormValue("aptSuite"),
		City:          r.FormValue("city"),
		Province:      r.FormValue("province"),
		Country:       r.FormValue("country"),
		GuestCount:    r.FormValue("guestCount"),
		BedroomCount:  r.FormValue("bedroomCount"),
		BedCount:      r.FormValue("bedCount"),
		BathroomCount: r.FormValue("bathroomCount"),
		Amenities:     amenitiesFromForm(r.MultipartForm.Value["amenities"]),
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Highlight:     r.FormValue("highlight"),
		HighlightDesc: r.FormValue("highlightDesc"),
		Price:         r.FormValue("price"),
	}

	resp, err := h.service.Create(r.Context(), req, media.PartsFromForm(r.MultipartForm, listingPhotosField))
	if err != nil {
		if errors.Is(err, service.ErrValidation) || media.IsValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		slog.ErrorContext(r.Context(), "listing creation failed", "error", err)
		writeJSON(w, http.StatusConflict, errorResponse("failed to create listing"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// amenitiesFromForm accepts either repeated form values or a single JSON
// array encoded as text.
func amenitiesFromForm(values []string) []string {
	if len(values) == 1 {
		v := strings.TrimSpace(values[0])
		if strings.HasPrefix(v, "[") {
			var list []string
			if err := json.Unmarshal([]byte(v), &list); err == nil {
				return list
			}
		}
		if strings.Contains(v, ",") {
			return strings.Split(v, ",")
		}
	}
	return values
}

// HandleList handles GET /properties with an optional category query.
func (h *ListingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		slog.ErrorContext(r.Context(), "listing query failed", "error", err)
		writeJSON(w, http.StatusNotFound, errorResponse("failed to fetch listings"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSearch handles GET /properties/search/{term}.
func (h *ListingHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	// chi matches against RawPath when the request carries one, leaving
	// the parameter escaped.
	term := chi.URLParam(r, "term")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(term); err == nil {
			term = unescaped
		}
	}

	resp, err := h.service.Search(r.Context(), term)
	if err != nil {
		slog.ErrorContext(r.Context(), "listing search failed", "error", err)
		writeJSON(w, http.StatusNotFound, errorResponse("failed to search listings"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /properties/{listingId}.
func (h *ListingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Get(r.Context(), chi.URLParam(r, "listingId"))
	if err != nil {
		if !errors.Is(err, service.ErrListingNotFound) {
			slog.ErrorContext(r.Context(), "listing lookup failed", "error", err)
		}
		writeJSON(w, http.StatusNotFound, errorResponse("listing not found"))
		return
	}

	writeJSON(w, http.StatusAccepted, resp)
}
