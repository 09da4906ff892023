package model

import (
	"strings"
	"time"
)

// Listing represents a property listing in the database.
type Listing struct {
	ID            string
	CreatorID     string
	Category      string
	Type          string
	StreetAddress string
	AptSuite      string
	City          string
	Province      string
	Country       string
	GuestCount    int
	BedroomCount  int
	BedCount      int
	BathroomCount int
	Amenities     []string
	PhotoPaths    []string
	Title         string
	Description   string
	Highlight     string
	HighlightDesc string
	Price         float64
	CreatedAt     time.Time
}

// ListingFilter narrows a listing query. Zero value matches everything.
type ListingFilter struct {
	// Category is an exact match on the category.
	Category string
	// Term is a case-insensitive substring matched against category or title.
	Term string
}

// Matches reports whether l satisfies every set predicate of f.
func (f ListingFilter) Matches(l *Listing) bool {
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.Term != "" {
		term := strings.ToLower(f.Term)
		if !strings.Contains(strings.ToLower(l.Category), term) &&
			!strings.Contains(strings.ToLower(l.Title), term) {
			return false
		}
	}
	return true
}

// CreateListingRequest holds the text fields of a listing creation form.
// Numeric fields arrive as form text and are parsed by the service.
type CreateListingRequest struct {
	Creator       string
	Category      string
	Type          string
	StreetAddress string
	AptSuite      string
	City          string
	Province      string
	Country       string
	GuestCount    string
	BedroomCount  string
	BedCount      string
	BathroomCount string
	Amenities     []string
	Title         string
	Description   string
	Highlight     string
	HighlightDesc string
	Price         string
}

// ListingResponse is a listing with its creator resolved to the full public user.
type ListingResponse struct {
	ID                string       `json:"id"`
	Creator           UserResponse `json:"creator"`
	Category          string       `json:"category"`
	Type              string       `json:"type"`
	StreetAddress     string       `json:"streetAddress"`
	AptSuite          string       `json:"aptSuite"`
	City              string       `json:"city"`
	Province          string       `json:"province"`
	Country           string       `json:"country"`
	GuestCount        int          `json:"guestCount"`
	BedroomCount      int          `json:"bedroomCount"`
	BedCount          int          `json:"bedCount"`
	BathroomCount     int          `json:"bathroomCount"`
	Amenities         []string     `json:"amenities"`
	ListingPhotoPaths []string     `json:"listingPhotoPaths"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Highlight         string       `json:"highlight"`
	HighlightDesc     string       `json:"highlightDesc"`
	Price             float64      `json:"price"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// NewListingResponse joins l with its resolved creator.
func NewListingResponse(l *Listing, creator UserResponse) ListingResponse {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	photos := l.PhotoPaths
	if photos == nil {
		photos = []string{}
	}
	return ListingResponse{
		ID:                l.ID,
		Creator:           creator,
		Category:          l.Category,
		Type:              l.Type,
		StreetAddress:     l.StreetAddress,
		AptSuite:          l.AptSuite,
		City:              l.City,
		Province:          l.Province,
		Country:           l.Country,
		GuestCount:        l.GuestCount,
		BedroomCount:      l.BedroomCount,
		BedCount:          l.BedCount,
		BathroomCount:     l.BathroomCount,
		Amenities:         amenities,
		ListingPhotoPaths: photos,
		Title:             l.Title,
		Description:       l.Description,
		Highlight:         l.Highlight,
		HighlightDesc:     l.HighlightDesc,
		Price:             l.Price,
		CreatedAt:         l.CreatedAt,
	}
}
