package service

import (
	"context"

	"github.com/staynest/staynest-go/internal/media"
	"github.com/staynest/staynest-go/internal/model"
)

// UserStore persists users. Implementations report a taken email as
// repository.ErrDuplicateEmail and a missing user as repository.ErrUserNotFound.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

// ListingStore persists listings.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenIssuer mints bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Ingestor writes attachments to durable storage.
type Ingestor interface {
	Single(ctx context.Context, parts []media.Part, policy media.Policy) (string, error)
	Many(ctx context.Context, parts []media.Part, policy media.Policy) ([]string, error)
	Discard(ctx context.Context, locators []string) error
}

// AuthMetrics records authentication outcomes.
type AuthMetrics interface {
	RecordRegistration(outcome string)
	RecordLogin(outcome string)
}

// ListingMetrics records listing events.
type ListingMetrics interface {
	RecordListingCreated()
}
