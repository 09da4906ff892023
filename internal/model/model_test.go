package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	u := &User{ID: "u1", Email: "ana@example.com", PasswordHash: "$argon2id$secret"}

	for name, v := range map[string]any{"user": u, "response": NewUserResponse(u)} {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		if strings.Contains(string(b), "argon2id") || strings.Contains(strings.ToLower(string(b)), "password") {
			t.Errorf("%s: JSON leaks password hash: %s", name, b)
		}
	}
}

func TestListingFilterMatches(t *testing.T) {
	cabin := &Listing{Category: "Cabins", Title: "Cozy Cabin"}
	lake := &Listing{Category: "Lakefront", Title: "Lake House"}
	beach := &Listing{Category: "beach", Title: "Surf Shack"}

	tests := []struct {
		name    string
		filter  ListingFilter
		listing *Listing
		want    bool
	}{
		{"empty filter", ListingFilter{}, lake, true},
		{"category exact", ListingFilter{Category: "beach"}, beach, true},
		{"category is case sensitive", ListingFilter{Category: "Beach"}, beach, false},
		{"category other", ListingFilter{Category: "beach"}, cabin, false},
		{"term in title", ListingFilter{Term: "Cabin"}, cabin, true},
		{"term lower case", ListingFilter{Term: "cabin"}, cabin, true},
		{"term miss", ListingFilter{Term: "Cabin"}, lake, false},
		{"term in category", ListingFilter{Term: "LAKEFRONT"}, lake, true},
		{"both", ListingFilter{Category: "beach", Term: "surf"}, beach, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.listing); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewListingResponseNeverNilSlices(t *testing.T) {
	resp := NewListingResponse(&Listing{ID: "l1"}, UserResponse{ID: "u1"})

	if resp.Amenities == nil || resp.ListingPhotoPaths == nil {
		t.Fatal("expected non-nil slices")
	}
	if resp.Creator.ID != "u1" {
		t.Errorf("Creator.ID = %q, want u1", resp.Creator.ID)
	}
}
