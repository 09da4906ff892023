package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/staynest/staynest-go/internal/model"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUnknownCreator  = errors.New("listing creator does not exist")
)

const listingColumns = `id, creator_id, category, type, street_address, apt_suite, city, province, country,
	guest_count, bedroom_count, bed_count, bathroom_count, amenities, photo_paths,
	title, description, highlight, highlight_desc, price, created_at`

// ListingRepository handles listing persistence operations.
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create inserts a listing. Amenities and photo paths are stored as JSON arrays
// so their order is preserved.
func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	amenities, err := json.Marshal(nonNil(l.Amenities))
	if err != nil {
		return fmt.Errorf("encoding amenities: %w", err)
	}
	photos, err := json.Marshal(nonNil(l.PhotoPaths))
	if err != nil {
		return fmt.Errorf("encoding photo paths: %w", err)
	}

	query := `INSERT INTO listings (` + listingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		l.ID, l.CreatorID, l.Category, l.Type, l.StreetAddress, l.AptSuite, l.City, l.Province, l.Country,
		l.GuestCount, l.BedroomCount, l.BedCount, l.BathroomCount, amenities, photos,
		l.Title, l.Description, l.Highlight, l.HighlightDesc, l.Price, l.CreatedAt,
	)
	if err != nil {
		if isMySQLError(err, mysqlNoReferencedRow) {
			return ErrUnknownCreator
		}
		return err
	}

	return nil
}

// GetByID retrieves a listing by its ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// List returns the listings matching filter, newest first.
func (r *ListingRepository) List(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	where, args := listingWhere(filter)
	query := `SELECT ` + listingColumns + ` FROM listings` + where + ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}

	return listings, rows.Err()
}

// listingWhere builds the WHERE clause for filter. Category is compared with
// the binary collation of the column; the term match lower-cases both sides.
func listingWhere(filter model.ListingFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Term != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Term)) + "%"
		conds = append(conds, "(LOWER(category) LIKE ? OR LOWER(title) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanListing(row rowScanner) (*model.Listing, error) {
	var (
		l                 model.Listing
		amenities, photos []byte
	)
	err := row.Scan(
		&l.ID, &l.CreatorID, &l.Category, &l.Type, &l.StreetAddress, &l.AptSuite, &l.City, &l.Province, &l.Country,
		&l.GuestCount, &l.BedroomCount, &l.BedCount, &l.BathroomCount, &amenities, &photos,
		&l.Title, &l.Description, &l.Highlight, &l.HighlightDesc, &l.Price, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(amenities, &l.Amenities); err != nil {
		return nil, fmt.Errorf("decoding amenities of listing %s: %w", l.ID, err)
	}
	if err := json.Unmarshal(photos, &l.PhotoPaths); err != nil {
		return nil, fmt.Errorf("decoding photo paths of listing %s: %w", l.ID, err)
	}

	return &l, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
