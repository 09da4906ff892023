package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/staynest/staynest-go/internal/model"
)

func TestListingWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.ListingFilter
		wantWhere string
		wantArgs  []any
	}{
		{"no filter", model.ListingFilter{}, "", nil},
		{"category", model.ListingFilter{Category: "beach"}, " WHERE category = ?", []any{"beach"}},
		{
			"term is lower-cased",
			model.ListingFilter{Term: "Cabin"},
			" WHERE (LOWER(category) LIKE ? OR LOWER(title) LIKE ?)",
			[]any{"%cabin%", "%cabin%"},
		},
		{
			"term wildcards escaped",
			model.ListingFilter{Term: "50%_off"},
			" WHERE (LOWER(category) LIKE ? OR LOWER(title) LIKE ?)",
			[]any{`%50\%\_off%`, `%50\%\_off%`},
		},
		{
			"both",
			model.ListingFilter{Category: "beach", Term: "surf"},
			" WHERE category = ? AND (LOWER(category) LIKE ? OR LOWER(title) LIKE ?)",
			[]any{"beach", "%surf%", "%surf%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := listingWhere(tt.filter)
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Errorf("nonNil(nil) = %v, want empty slice", got)
	}
}

var listingRowColumns = []string{
	"id", "creator_id", "category", "type", "street_address", "apt_suite", "city", "province", "country",
	"guest_count", "bedroom_count", "bed_count", "bathroom_count", "amenities", "photo_paths",
	"title", "description", "highlight", "highlight_desc", "price", "created_at",
}

func testListing(id string, photos ...string) *model.Listing {
	return &model.Listing{
		ID:            id,
		CreatorID:     "u-1",
		Category:      "Beach",
		Type:          "An entire place",
		City:          "Sydney",
		Country:       "Australia",
		GuestCount:    4,
		BedroomCount:  2,
		BedCount:      3,
		BathroomCount: 1,
		Amenities:     []string{"Wifi", "Kitchen"},
		PhotoPaths:    photos,
		Title:         "Harbour loft",
		Price:         180.5,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func listingRow(rows *sqlmock.Rows, l *model.Listing, amenities, photos string) *sqlmock.Rows {
	return rows.AddRow(
		l.ID, l.CreatorID, l.Category, l.Type, l.StreetAddress, l.AptSuite, l.City, l.Province, l.Country,
		l.GuestCount, l.BedroomCount, l.BedCount, l.BathroomCount, []byte(amenities), []byte(photos),
		l.Title, l.Description, l.Highlight, l.HighlightDesc, l.Price, l.CreatedAt,
	)
}

const insertListingQuery = `(?s)^INSERT\s+INTO\s+listings\s*\(id,\s*creator_id,.*created_at\)\s*VALUES\s*\(\?(,\s*\?){20}\)$`

func TestListingCreateEncodesOrderedJSON(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingRepository(db)
	l := testListing("l-1", "public/uploads/2.jpg", "public/uploads/1.jpg")

	mock.ExpectExec(insertListingQuery).
		WithArgs(
			l.ID, l.CreatorID, l.Category, l.Type, l.StreetAddress, l.AptSuite, l.City, l.Province, l.Country,
			l.GuestCount, l.BedroomCount, l.BedCount, l.BathroomCount,
			[]byte(`["Wifi","Kitchen"]`), []byte(`["public/uploads/2.jpg","public/uploads/1.jpg"]`),
			l.Title, l.Description, l.Highlight, l.HighlightDesc, l.Price, l.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), l); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestListingCreateUnknownCreator(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingRepository(db)

	mock.ExpectExec(insertListingQuery).
		WillReturnError(&mysql.MySQLError{Number: mysqlNoReferencedRow, Message: "Cannot add or update a child row: a foreign key constraint fails"})

	err := repo.Create(context.Background(), testListing("l-1", "public/uploads/a.jpg"))
	if !errors.Is(err, ErrUnknownCreator) {
		t.Fatalf("want ErrUnknownCreator, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestListingGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingRepository(db)
	want := testListing("l-1", "public/uploads/b.jpg", "public/uploads/a.jpg", "public/uploads/c.jpg")

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+listings\s+WHERE\s+id\s*=\s*\?$`).
		WithArgs("l-1").
		WillReturnRows(listingRow(sqlmock.NewRows(listingRowColumns), want,
			`["Wifi","Kitchen"]`, `["public/uploads/b.jpg","public/uploads/a.jpg","public/uploads/c.jpg"]`))

	got, err := repo.GetByID(context.Background(), "l-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetByID() = %+v, want %+v", got, want)
	}
	expectationsMet(t, mock)
}

func TestListingGetByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingRepository(db)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+listings\s+WHERE\s+id\s*=\s*\?$`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(listingRowColumns))

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("want ErrListingNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestListingListByTerm(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingRepository(db)
	newer := testListing("l-2", "public/uploads/x.jpg", "public/uploads/y.jpg")
	older := testListing("l-1", "public/uploads/z.jpg")

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+listings\s+WHERE\s+\(LOWER\(category\)\s+LIKE\s+\?\s+OR\s+LOWER\(title\)\s+LIKE\s+\?\)\s+ORDER\s+BY\s+created_at\s+DESC,\s*id$`).
		WithArgs("%harbour%", "%harbour%").
		WillReturnRows(listingRow(listingRow(sqlmock.NewRows(listingRowColumns),
			newer, `["Wifi","Kitchen"]`, `["public/uploads/x.jpg","public/uploads/y.jpg"]`),
			older, `["Wifi","Kitchen"]`, `["public/uploads/z.jpg"]`))

	got, err := repo.List(context.Background(), model.ListingFilter{Term: "Harbour"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "l-2" || got[1].ID != "l-1" {
		t.Fatalf("List() = %+v, want [l-2 l-1]", got)
	}
	if !reflect.DeepEqual(got[0].PhotoPaths, newer.PhotoPaths) {
		t.Errorf("PhotoPaths = %v, want %v", got[0].PhotoPaths, newer.PhotoPaths)
	}
	expectationsMet(t, mock)
}

func TestListingListEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingRepository(db)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+listings\s+ORDER\s+BY\s+created_at\s+DESC,\s*id$`).
		WillReturnRows(sqlmock.NewRows(listingRowColumns))

	got, err := repo.List(context.Background(), model.ListingFilter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", got)
	}
	expectationsMet(t, mock)
}

func TestListingScanRejectsCorruptJSON(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingRepository(db)

	mock.ExpectQuery(`FROM\s+listings`).
		WillReturnRows(listingRow(sqlmock.NewRows(listingRowColumns), testListing("l-1"), `["Wifi"]`, `not-json`))

	if _, err := repo.GetByID(context.Background(), "l-1"); err == nil || errors.Is(err, ErrListingNotFound) {
		t.Fatalf("want decode error, got %v", err)
	}
}
