// Package memory implements the repository interfaces over in-process maps.
// It enforces the same uniqueness sentinels as the postgres implementation
// and backs the test suites.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dyilmaz/community-backend/internal/models"
	"github.com/dyilmaz/community-backend/internal/shared"
)

type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.User
}

func NewUsers() *Users {
	return &Users{byID: map[int64]models.User{}}
}

func (r *Users) Create(_ context.Context, firstName, lastName, email, passwordHash string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return models.User{}, shared.ErrDuplicateEmail
		}
	}
	r.nextID++
	u := models.User{
		ID:           r.nextID,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *Users) GetByID(_ context.Context, id int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return models.User{}, shared.ErrNotFound
}

func (r *Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, shared.ErrNotFound
}

func (r *Users) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type Profiles struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.Profile
}

func NewProfiles() *Profiles {
	return &Profiles{byID: map[int64]models.Profile{}}
}

func (r *Profiles) Create(_ context.Context, p models.Profile) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.byID {
		if other.Username == p.Username {
			return models.Profile{}, shared.ErrDuplicateUsername
		}
		if other.UserID == p.UserID {
			return models.Profile{}, shared.ErrProfileExists
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.byID[p.ID] = p
	return p, nil
}

func (r *Profiles) Update(_ context.Context, p models.Profile) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[p.ID]
	if !ok {
		return models.Profile{}, shared.ErrNotFound
	}
	for id, other := range r.byID {
		if id != p.ID && other.Username == p.Username {
			return models.Profile{}, shared.ErrDuplicateUsername
		}
	}
	p.UserID = cur.UserID
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now()
	r.byID[p.ID] = p
	return p, nil
}

func (r *Profiles) GetByUserID(_ context.Context, userID int64) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.UserID == userID {
			return p, nil
		}
	}
	return models.Profile{}, shared.ErrNotFound
}

func (r *Profiles) GetByUsername(_ context.Context, username string) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Username == username {
			return p, nil
		}
	}
	return models.Profile{}, shared.ErrNotFound
}

func (r *Profiles) SearchByUsername(_ context.Context, term string) ([]models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Profile
	for _, p := range r.byID {
		if strings.Contains(strings.ToLower(p.Username), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type Countries struct {
	mu    sync.Mutex
	items []models.Country
}

func NewCountries(names ...string) *Countries {
	c := &Countries{}
	for i, n := range names {
		c.items = append(c.items, models.Country{ID: int64(i + 1), Name: n})
	}
	return c
}

func (r *Countries) List(_ context.Context) ([]models.Country, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Country, len(r.items))
	copy(out, r.items)
	return out, nil
}

type AuditLogs struct {
	mu      sync.Mutex
	Entries []models.AuditLog
}

func NewAuditLogs() *AuditLogs { return &AuditLogs{} }

func (r *AuditLogs) Create(_ context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, l)
	return nil
}
