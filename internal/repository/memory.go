package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/staynest/staynest-go/internal/model"
)

// MemoryStore is an in-process user and listing store selected with
// STORE_DRIVER=memory. It enforces the same constraints as the MySQL schema:
// unique email and an existing creator for every listing.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*model.User
	byEmail  map[string]string
	listings map[string]*model.Listing
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*model.User),
		byEmail:  make(map[string]string),
		listings: make(map[string]*model.Listing),
	}
}

// Users returns the user-side view of the store.
func (s *MemoryStore) Users() *MemoryUsers { return &MemoryUsers{s: s} }

// Listings returns the listing-side view of the store.
func (s *MemoryStore) Listings() *MemoryListings { return &MemoryListings{s: s} }

// MemoryUsers implements the user store on top of a MemoryStore.
type MemoryUsers struct{ s *MemoryStore }

func (m *MemoryUsers) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.byEmail[user.Email]; ok {
		return ErrDuplicateEmail
	}
	u := *user
	m.s.users[u.ID] = &u
	m.s.byEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	id, ok := m.s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *m.s.users[id]
	return &u, nil
}

func (m *MemoryUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	u, ok := m.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUsers) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

// MemoryListings implements the listing store on top of a MemoryStore.
type MemoryListings struct{ s *MemoryStore }

func (m *MemoryListings) Create(ctx context.Context, l *model.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.users[l.CreatorID]; !ok {
		return ErrUnknownCreator
	}
	cp := cloneListing(l)
	m.s.listings[cp.ID] = cp
	return nil
}

func (m *MemoryListings) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	l, ok := m.s.listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (m *MemoryListings) List(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := []model.Listing{}
	for _, l := range m.s.listings {
		if filter.Matches(l) {
			out = append(out, *cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneListing(l *model.Listing) *model.Listing {
	cp := *l
	cp.Amenities = append([]string(nil), l.Amenities...)
	cp.PhotoPaths = append([]string(nil), l.PhotoPaths...)
	return &cp
}
