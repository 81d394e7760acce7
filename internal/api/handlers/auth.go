package handlers

import (
	"errors"
	"net/http"

	"github.com/dyilmaz/community-backend/internal/api/httpx"
	"github.com/dyilmaz/community-backend/internal/api/validate"
	"github.com/dyilmaz/community-backend/internal/auth"
	"github.com/dyilmaz/community-backend/internal/services"
	"github.com/dyilmaz/community-backend/internal/shared"
)

type AuthHandler struct {
	Users *services.UserService
	TM    *auth.TokenManager
}

func NewAuthHandler(users *services.UserService, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Users: users, TM: tm}
}

// LoginPage renders the login entry point. Redirected-away visitors find
// their flash message here.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"title": "Login",
		"flash": httpx.TakeFlash(w, r),
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed form", nil)
		return
	}
	first := r.PostFormValue("first_name")
	last := r.PostFormValue("last_name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	if err := validate.Collect(
		validate.Required("first_name", first),
		validate.Required("last_name", last),
		validate.Required("email", email),
		validate.Email("email", email),
		validate.MinLen("password", password, 6),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", err.Error(), err)
		return
	}

	u, err := h.Users.Register(r.Context(), first, last, email, password)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) {
			httpx.WriteError(w, http.StatusBadRequest, "duplicate_email",
				"An account already exists with this email address.", nil)
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	if !h.startSession(w, u.ID, false) {
		return
	}
	httpx.SetFlash(w, "Welcome, "+u.FirstName+"!")
	httpx.Redirect(w, r, "/")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed form", nil)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	remember := r.PostFormValue("remember") != ""

	u, err := h.Users.Authenticate(r.Context(), email, password)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.WriteError(w, http.StatusUnauthorized, "unknown_email",
			"No account found with that email address.", nil)
		return
	case errors.Is(err, shared.ErrInvalidCredential):
		httpx.WriteError(w, http.StatusUnauthorized, "bad_password", "Incorrect password.", nil)
		return
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}

	if !h.startSession(w, u.ID, remember) {
		return
	}
	httpx.Redirect(w, r, "/")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	httpx.Redirect(w, r, "/")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID int64, remember bool) bool {
	token, exp, err := h.TM.Issue(userID, remember)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return false
	}
	auth.SetSessionCookie(w, token, exp, remember)
	return true
}
