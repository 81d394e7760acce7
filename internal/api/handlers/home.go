package handlers

import (
	"net/http"

	"github.com/dyilmaz/community-backend/internal/api/httpx"
	"github.com/dyilmaz/community-backend/internal/middleware"
	"github.com/dyilmaz/community-backend/internal/services"
)

type HomeHandler struct {
	Users *services.UserService
}

func NewHomeHandler(users *services.UserService) *HomeHandler {
	return &HomeHandler{Users: users}
}

// Index greets the current identity by first name; anonymous visitors are a
// valid state and get the neutral greeting.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	name := "Anonymous"
	if uid, ok := middleware.UserID(r.Context()); ok {
		if u, err := h.Users.GetByID(r.Context(), uid); err == nil {
			name = u.FirstName
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"title": "Home page",
		"name":  name,
		"flash": httpx.TakeFlash(w, r),
	})
}
