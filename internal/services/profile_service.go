package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dyilmaz/community-backend/internal/metrics"
	"github.com/dyilmaz/community-backend/internal/models"
	repo "github.com/dyilmaz/community-backend/internal/repository"
	"github.com/dyilmaz/community-backend/internal/shared"
	"github.com/dyilmaz/community-backend/internal/worker"
	"github.com/google/uuid"
)

// PhotoStore is the upload-store collaborator: it persists a photo under an
// opaque storage key and resolves keys back to servable URLs.
type PhotoStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	URL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Outcome tags which branch an upsert took, so handlers and tests can
// assert on the decision without inspecting HTTP redirects.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// PhotoUpload carries an optional uploaded file. A nil *PhotoUpload means no
// file was submitted.
type PhotoUpload struct {
	Filename string
	Data     io.Reader
}

type ProfileInput struct {
	Username string
	Country  string
	Bio      string
	Photo    *PhotoUpload
}

// ProfileView pairs a profile with its resolved photo URL; the URL is empty
// when the profile has no photo.
type ProfileView struct {
	models.Profile
	PhotoURL string `json:"photo_url,omitempty"`
}

type ProfileService struct {
	profiles repo.Profiles
	audit    repo.AuditLogs
	photos   PhotoStore
	wp       *worker.Pool
}

func NewProfileService(profiles repo.Profiles, audit repo.AuditLogs, photos PhotoStore, wp *worker.Pool) *ProfileService {
	return &ProfileService{profiles: profiles, audit: audit, photos: photos, wp: wp}
}

// GetOwn returns the caller's profile, or nil when none exists yet.
func (s *ProfileService) GetOwn(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save is the single upsert decision point: it creates the caller's profile
// when none exists and updates it otherwise. On update the stored photo key
// is replaced only when a new file was uploaded. Username uniqueness is
// arbitrated by the store; a duplicate surfaces as ErrDuplicateUsername with
// nothing written.
func (s *ProfileService) Save(ctx context.Context, userID int64, in ProfileInput) (models.Profile, Outcome, error) {
	p := models.Profile{
		Username: strings.TrimSpace(in.Username),
		Country:  strings.TrimSpace(in.Country),
		Bio:      in.Bio,
		UserID:   userID,
	}
	if err := p.Validate(); err != nil {
		return models.Profile{}, "", err
	}

	existing, err := s.GetOwn(ctx, userID)
	if err != nil {
		return models.Profile{}, "", err
	}

	var newKey string
	if in.Photo != nil {
		newKey, err = s.photos.Save(ctx, in.Photo.Filename, in.Photo.Data)
		if err != nil {
			return models.Profile{}, "", err
		}
	}

	if existing == nil {
		p.Photo = newKey
		created, err := s.profiles.Create(ctx, p)
		if err != nil {
			// The write lost; don't orphan the freshly uploaded object.
			s.removeAsync(newKey)
			return models.Profile{}, "", err
		}
		metrics.ProfileWritesTotal.WithLabelValues(string(OutcomeCreated)).Inc()
		s.auditAsync(created, "profile_created")
		return created, OutcomeCreated, nil
	}

	p.ID = existing.ID
	p.Photo = existing.Photo
	if newKey != "" {
		p.Photo = newKey
	}
	updated, err := s.profiles.Update(ctx, p)
	if err != nil {
		s.removeAsync(newKey)
		return models.Profile{}, "", err
	}
	if newKey != "" && existing.Photo != "" {
		s.removeAsync(existing.Photo)
	}
	metrics.ProfileWritesTotal.WithLabelValues(string(OutcomeUpdated)).Inc()
	s.auditAsync(updated, "profile_updated")
	return updated, OutcomeUpdated, nil
}

// Search performs a substring match on username. A blank term is rejected
// before any query runs; zero matches is a valid empty result, not an error.
func (s *ProfileService) Search(ctx context.Context, term string) ([]ProfileView, error) {
	if strings.TrimSpace(term) == "" {
		return nil, shared.ErrEmptySearchTerm
	}
	metrics.ProfileSearchesTotal.Inc()
	profiles, err := s.profiles.SearchByUsername(ctx, term)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, profiles)
}

// LookupByUsername is the exact-match counterpart of Search, used when a
// profile is addressed directly by its path segment.
func (s *ProfileService) LookupByUsername(ctx context.Context, username string) ([]ProfileView, error) {
	p, err := s.profiles.GetByUsername(ctx, username)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, []models.Profile{p})
}

func (s *ProfileService) resolve(ctx context.Context, profiles []models.Profile) ([]ProfileView, error) {
	views := make([]ProfileView, 0, len(profiles))
	for _, p := range profiles {
		v := ProfileView{Profile: p}
		if p.Photo != "" {
			url, err := s.photos.URL(ctx, p.Photo)
			if err != nil {
				return nil, fmt.Errorf("resolve photo url for %s: %w", p.Username, err)
			}
			v.PhotoURL = url
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *ProfileService) removeAsync(key string) {
	if key == "" {
		return
	}
	s.wp.Submit(func() {
		if err := s.photos.Remove(context.Background(), key); err != nil {
			slog.Warn("remove photo object", "key", key, "err", err)
		}
	})
}

func (s *ProfileService) auditAsync(p models.Profile, action string) {
	entityID := fmt.Sprintf("%d", p.ID)
	s.wp.Submit(func() {
		_ = s.audit.Create(context.Background(), models.AuditLog{
			ID:         uuid.NewString(),
			EntityType: "profile",
			EntityID:   &entityID,
			Action:     action,
			Details:    map[string]any{"username": p.Username},
		})
	})
}
