package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dyilmaz/community-backend/internal/api/httpx"
	"github.com/dyilmaz/community-backend/internal/api/validate"
	"github.com/dyilmaz/community-backend/internal/middleware"
	repo "github.com/dyilmaz/community-backend/internal/repository"
	"github.com/dyilmaz/community-backend/internal/services"
	"github.com/dyilmaz/community-backend/internal/shared"
)

const maxPhotoSize = 10 << 20 // 10MB

type CommunityHandler struct {
	Profiles  *services.ProfileService
	Countries repo.Countries
}

func NewCommunityHandler(profiles *services.ProfileService, countries repo.Countries) *CommunityHandler {
	return &CommunityHandler{Profiles: profiles, Countries: countries}
}

// Index is the public directory landing page.
func (h *CommunityHandler) Index(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"title": "Community",
		"flash": httpx.TakeFlash(w, r),
	})
}

// Profile routes the caller to the create or update flow depending on
// whether a profile exists yet. The redirect itself is the contract.
func (h *CommunityHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	p, err := h.Profiles.GetOwn(r.Context(), uid)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	if p != nil {
		httpx.Redirect(w, r, "/community/update_profile")
		return
	}
	httpx.Redirect(w, r, "/community/create_profile")
}

func (h *CommunityHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	if r.Method == http.MethodGet {
		// A caller who already has a profile belongs in the update flow.
		if p, err := h.Profiles.GetOwn(r.Context(), uid); err == nil && p != nil {
			httpx.Redirect(w, r, "/community/update_profile")
			return
		}
		h.renderForm(w, r, "Create Profile", nil)
		return
	}

	h.saveProfile(w, r, uid)
}

func (h *CommunityHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	existing, err := h.Profiles.GetOwn(r.Context(), uid)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	if existing == nil {
		httpx.SetFlash(w, "Create a profile first.")
		httpx.Redirect(w, r, "/community/create_profile")
		return
	}

	if r.Method == http.MethodGet {
		h.renderForm(w, r, "Update Profile", existing)
		return
	}

	h.saveProfile(w, r, uid)
}

// saveProfile is shared by both flows; the service decides create vs update.
func (h *CommunityHandler) saveProfile(w http.ResponseWriter, r *http.Request, uid int64) {
	input, cleanup, err := h.parseProfileForm(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed form", nil)
		return
	}
	defer cleanup()

	if err := validate.Collect(validate.Required("username", input.Username)); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", err.Error(), err)
		return
	}

	p, _, err := h.Profiles.Save(r.Context(), uid, input)
	switch {
	case errors.Is(err, shared.ErrDuplicateUsername):
		httpx.WriteError(w, http.StatusBadRequest, "duplicate_username",
			"That username is already taken.", nil)
		return
	case errors.Is(err, shared.ErrProfileExists):
		// a concurrent submit already created the profile
		httpx.Redirect(w, r, "/community/update_profile")
		return
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}

	httpx.Redirect(w, r, "/community/display_profiles/"+url.PathEscape(p.Username)+"/")
}

// DisplayProfiles handles both the search form and direct profile paths.
func (h *CommunityHandler) DisplayProfiles(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var (
		results []services.ProfileView
		err     error
	)
	if username != "" {
		results, err = h.Profiles.LookupByUsername(r.Context(), username)
	} else if r.Method == http.MethodPost {
		if perr := r.ParseForm(); perr != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed form", nil)
			return
		}
		results, err = h.Profiles.Search(r.Context(), r.PostFormValue("search_term"))
	}

	if errors.Is(err, shared.ErrEmptySearchTerm) {
		httpx.SetFlash(w, "Enter a name to search for")
		httpx.Redirect(w, r, "/community/")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	if len(results) == 0 {
		httpx.SetFlash(w, "No users found.")
		httpx.Redirect(w, r, "/community/")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"title":    "Profiles",
		"profiles": results,
	})
}

func (h *CommunityHandler) renderForm(w http.ResponseWriter, r *http.Request, title string, p any) {
	countries, err := h.Countries.List(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"title":     title,
		"profile":   p,
		"countries": countries,
		"flash":     httpx.TakeFlash(w, r),
	})
}

func (h *CommunityHandler) parseProfileForm(r *http.Request) (services.ProfileInput, func(), error) {
	var in services.ProfileInput
	cleanup := func() {}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
			return in, cleanup, err
		}
		if file, hdr, err := r.FormFile("photo"); err == nil && hdr.Filename != "" {
			in.Photo = &services.PhotoUpload{Filename: hdr.Filename, Data: file}
			cleanup = func() { _ = file.Close() }
		}
	} else if err := r.ParseForm(); err != nil {
		return in, cleanup, err
	}
	in.Username = r.PostFormValue("username")
	in.Country = r.PostFormValue("country")
	in.Bio = r.PostFormValue("bio")
	return in, cleanup, nil
}
