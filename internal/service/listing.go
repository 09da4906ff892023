package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/staynest/staynest-go/internal/media"
	"github.com/staynest/staynest-go/internal/metrics"
	"github.com/staynest/staynest-go/internal/model"
	"github.com/staynest/staynest-go/internal/repository"
)

// searchAll is the search term that disables filtering.
const searchAll = "all"

// maxPrice is the largest value the price column (DECIMAL(12,2)) holds.
// Prices are rounded to cents so every store keeps the same value.
const maxPrice = 9999999999.99

// ListingService handles listing creation and queries.
type ListingService struct {
	listings    ListingStore
	users       UserStore
	media       Ingestor
	photoPolicy media.Policy
	metrics     ListingMetrics
	text        *bluemonday.Policy
	now         func() time.Time
}

// NewListingService creates a new ListingService. m may be nil.
func NewListingService(listings ListingStore, users UserStore, ingestor Ingestor, photoPolicy media.Policy, m ListingMetrics) *ListingService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &ListingService{
		listings:    listings,
		users:       users,
		media:       ingestor,
		photoPolicy: photoPolicy,
		metrics:     m,
		text:        bluemonday.StrictPolicy(),
		now:         time.Now,
	}
}

// Create stores the photos in submission order and then persists the listing
// with their locators. Photos are discarded if the listing is not persisted.
func (s *ListingService) Create(ctx context.Context, req model.CreateListingRequest, photos []media.Part) (model.ListingResponse, error) {
	listing, err := s.buildListing(req)
	if err != nil {
		return model.ListingResponse{}, err
	}
	if len(photos) == 0 {
		return model.ListingResponse{}, media.ErrMissingAttachment
	}

	creator, err := s.users.GetByID(ctx, listing.CreatorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.ListingResponse{}, ErrCreatorNotFound
		}
		return model.ListingResponse{}, fmt.Errorf("looking up creator: %w", err)
	}

	paths, err := s.media.Many(ctx, photos, s.photoPolicy)
	if err != nil {
		if media.IsValidationError(err) {
			return model.ListingResponse{}, err
		}
		return model.ListingResponse{}, fmt.Errorf("storing listing photos: %w", err)
	}
	listing.PhotoPaths = paths

	if err := s.listings.Create(ctx, listing); err != nil {
		s.media.Discard(context.WithoutCancel(ctx), paths)
		if errors.Is(err, repository.ErrUnknownCreator) {
			return model.ListingResponse{}, ErrCreatorNotFound
		}
		return model.ListingResponse{}, fmt.Errorf("creating listing: %w", err)
	}

	s.metrics.RecordListingCreated()
	slog.InfoContext(ctx, "listing created", "listing_id", listing.ID, "creator_id", listing.CreatorID, "photos", len(paths))

	return model.NewListingResponse(listing, model.NewUserResponse(creator)), nil
}

func (s *ListingService) buildListing(req model.CreateListingRequest) (*model.Listing, error) {
	creator := strings.TrimSpace(req.Creator)
	if creator == "" {
		return nil, fmt.Errorf("%w: missing creator", ErrValidation)
	}
	title := s.clean(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrValidation)
	}

	l := &model.Listing{
		ID:            uuid.NewString(),
		CreatorID:     creator,
		Category:      s.clean(req.Category),
		Type:          s.clean(req.Type),
		StreetAddress: s.clean(req.StreetAddress),
		AptSuite:      s.clean(req.AptSuite),
		City:          s.clean(req.City),
		Province:      s.clean(req.Province),
		Country:       s.clean(req.Country),
		Amenities:     s.amenities(req.Amenities),
		Title:         title,
		Description:   s.clean(req.Description),
		Highlight:     s.clean(req.Highlight),
		HighlightDesc: s.clean(req.HighlightDesc),
		CreatedAt:     s.now().UTC(),
	}

	var err error
	if l.GuestCount, err = parseCount("guestCount", req.GuestCount); err != nil {
		return nil, err
	}
	if l.BedroomCount, err = parseCount("bedroomCount", req.BedroomCount); err != nil {
		return nil, err
	}
	if l.BedCount, err = parseCount("bedCount", req.BedCount); err != nil {
		return nil, err
	}
	if l.BathroomCount, err = parseCount("bathroomCount", req.BathroomCount); err != nil {
		return nil, err
	}
	if l.Price, err = parsePrice(req.Price); err != nil {
		return nil, err
	}

	return l, nil
}

// maxCleanRounds bounds how many layers of entity encoding clean peels off.
const maxCleanRounds = 4

// clean strips markup from user supplied text and trims it. Entities are
// decoded only once the decoded text no longer contains markup, so encoded
// tags are stripped instead of coming back as live markup. Text that is
// still changing after maxCleanRounds is kept in escaped form.
func (s *ListingService) clean(v string) string {
	for range maxCleanRounds {
		sanitized := s.text.Sanitize(v)
		decoded := html.UnescapeString(sanitized)
		if decoded == v {
			return strings.TrimSpace(v)
		}
		v = decoded
	}
	return strings.TrimSpace(s.text.Sanitize(v))
}

// amenities cleans tags and drops blanks and repeats, keeping first-seen order.
func (s *ListingService) amenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = s.clean(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func parseCount(field, v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrValidation, field)
	}
	return n, nil
}

func parsePrice(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	p, err := strconv.ParseFloat(v, 64)
	if err != nil || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	}
	p = math.Round(p*100) / 100
	if p > maxPrice {
		return 0, fmt.Errorf("%w: price must not exceed %.2f", ErrValidation, maxPrice)
	}
	return p, nil
}

// List returns every listing, or only those whose category equals category
// exactly when it is non-empty.
func (s *ListingService) List(ctx context.Context, category string) ([]model.ListingResponse, error) {
	return s.query(ctx, model.ListingFilter{Category: category})
}

// Search returns listings whose category or title contains term, ignoring
// case. The term "all" returns every listing.
func (s *ListingService) Search(ctx context.Context, term string) ([]model.ListingResponse, error) {
	term = strings.TrimSpace(term)
	if term == searchAll {
		term = ""
	}
	return s.query(ctx, model.ListingFilter{Term: term})
}

// Get returns a single listing with its creator resolved.
func (s *ListingService) Get(ctx context.Context, id string) (model.ListingResponse, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return model.ListingResponse{}, ErrListingNotFound
		}
		return model.ListingResponse{}, err
	}

	resolved, err := s.resolveCreators(ctx, []model.Listing{*l})
	if err != nil {
		return model.ListingResponse{}, err
	}
	return resolved[0], nil
}

func (s *ListingService) query(ctx context.Context, filter model.ListingFilter) ([]model.ListingResponse, error) {
	listings, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.resolveCreators(ctx, listings)
}

// resolveCreators joins each listing with its creator using one batch lookup.
func (s *ListingService) resolveCreators(ctx context.Context, listings []model.Listing) ([]model.ListingResponse, error) {
	result := make([]model.ListingResponse, len(listings))
	if len(listings) == 0 {
		return result, nil
	}

	ids := make([]string, len(listings))
	for i := range listings {
		ids[i] = listings[i].CreatorID
	}

	creators, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving creators: %w", err)
	}

	for i := range listings {
		l := &listings[i]
		creator := model.UserResponse{ID: l.CreatorID}
		if u, ok := creators[l.CreatorID]; ok {
			creator = model.NewUserResponse(u)
		} else {
			slog.WarnContext(ctx, "listing creator missing", "listing_id", l.ID, "creator_id", l.CreatorID)
		}
		result[i] = model.NewListingResponse(l, creator)
	}
	return result, nil
}
