package auth

import (
	"net/http"
	"time"
)

const SessionCookie = "community_session"

// SetSessionCookie writes the session token. Remember-me sessions get a
// persistent cookie matching the token expiry; plain logins get a browser
// session cookie so closing the browser ends the session.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, remember bool) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}
