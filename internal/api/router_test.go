package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyilmaz/community-backend/internal/auth"
	"github.com/dyilmaz/community-backend/internal/config"
	"github.com/dyilmaz/community-backend/internal/models"
	"github.com/dyilmaz/community-backend/internal/repository"
	"github.com/dyilmaz/community-backend/internal/repository/memory"
	"github.com/dyilmaz/community-backend/internal/services"
	"github.com/dyilmaz/community-backend/internal/shared"
	"github.com/dyilmaz/community-backend/internal/worker"
)

type fakePhotoStore struct {
	mu      sync.Mutex
	nextID  int
	saveErr error
}

func (f *fakePhotoStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.nextID++
	return fmt.Sprintf("photos/key-%d-%s", f.nextID, filename), nil
}

func (f *fakePhotoStore) failSave(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *fakePhotoStore) URL(_ context.Context, key string) (string, error) {
	return "https://photos.test/" + key, nil
}

func (f *fakePhotoStore) Remove(context.Context, string) error { return nil }

type testApp struct {
	srv    *httptest.Server
	users  *memory.Users
	photos *fakePhotoStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, memory.NewProfiles())
}

func newTestAppWith(t *testing.T, profiles repository.Profiles) *testApp {
	t.Helper()

	users := memory.NewUsers()
	audit := memory.NewAuditLogs()
	photos := &fakePhotoStore{}
	wp := worker.NewPool(2)
	t.Cleanup(wp.Stop)

	tm := auth.NewTokenManager("test-secret", 12*time.Hour, 30*24*time.Hour)
	r := NewRouter(Deps{
		Cfg:       config.Config{Env: "test", RateRPS: 1000},
		Users:     services.NewUserService(users, audit, wp),
		Profiles:  services.NewProfileService(profiles, audit, photos, wp),
		Countries: memory.NewCountries("France", "United Kingdom", "United States"),
		TM:        tm,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, users: users, photos: photos}
}

func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testApp) signup(t *testing.T, c *http.Client, first, last, email, password string) string {
	t.Helper()
	return postForm(t, c, a.srv.URL+"/signup", url.Values{
		"first_name": {first},
		"last_name":  {last},
		"email":      {email},
		"password":   {password},
	})
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values) string {
	t.Helper()
	resp, err := c.PostForm(target, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func get(t *testing.T, c *http.Client, target string) string {
	t.Helper()
	resp, err := c.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestProfileRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	body := get(t, c, app.srv.URL+"/community/profile")
	assert.Contains(t, body, "Login")
	assert.Contains(t, body, "You must be logged in to view that page.")
}

func TestSignupCreatesUserAndGreetsByFirstName(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	before := app.users.Count()
	body := app.signup(t, c, "First", "Last", "email@address.com", "password")

	assert.Equal(t, before+1, app.users.Count())
	assert.Contains(t, body, "First")
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	body := app.signup(t, app.client(t), "Other", "Person", "email@address.com", "password2")
	assert.Contains(t, body, "already exists")
	assert.Equal(t, 1, app.users.Count())
}

func TestLoginErrors(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t), "First", "Last", "email@address.com", "password")

	c := app.client(t)
	body := postForm(t, c, app.srv.URL+"/login", url.Values{
		"email": {"nobody@address.com"}, "password": {"password"},
	})
	assert.Contains(t, body, "No account found with that email address.")

	body = postForm(t, c, app.srv.URL+"/login", url.Values{
		"email": {"email@address.com"}, "password": {"wrong"},
	})
	assert.Contains(t, body, "Incorrect password.")
}

func TestProfileRoutesToCreateThenUpdate(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	body := get(t, c, app.srv.URL+"/community/profile")
	assert.Contains(t, body, "Create Profile")

	postForm(t, c, app.srv.URL+"/community/create_profile", url.Values{
		"username": {"alice"}, "country": {"France"}, "bio": {"hi"},
	})

	body = get(t, c, app.srv.URL+"/community/profile")
	assert.Contains(t, body, "Update Profile")
}

func TestCreateProfileAndSearch(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	body := postForm(t, c, app.srv.URL+"/community/create_profile", url.Values{
		"username": {"alice"}, "country": {"France"}, "bio": {"hi"},
	})
	// redirected to the directory view for the new username
	assert.Contains(t, body, "alice")

	body = postForm(t, c, app.srv.URL+"/community/display_profiles", url.Values{
		"search_term": {"ali"},
	})
	var page struct {
		Profiles []struct {
			Username string `json:"username"`
			PhotoURL string `json:"photo_url"`
		} `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Profiles, 1)
	assert.Equal(t, "alice", page.Profiles[0].Username)
	assert.Empty(t, page.Profiles[0].PhotoURL)
}

func TestSearchBlankTermPrompts(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	body := postForm(t, c, app.srv.URL+"/community/display_profiles", url.Values{
		"search_term": {""},
	})
	assert.Contains(t, body, "Enter a name to search for")
}

func TestSearchNoMatches(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	body := postForm(t, c, app.srv.URL+"/community/display_profiles", url.Values{
		"search_term": {"zzz"},
	})
	assert.Contains(t, body, "No users found.")
}

func TestDuplicateUsernameAcrossUsers(t *testing.T) {
	app := newTestApp(t)

	c1 := app.client(t)
	app.signup(t, c1, "First", "Last", "one@address.com", "password")
	postForm(t, c1, app.srv.URL+"/community/create_profile", url.Values{
		"username": {"alice"}, "bio": {"hi"},
	})

	c2 := app.client(t)
	app.signup(t, c2, "Second", "User", "two@address.com", "password")
	body := postForm(t, c2, app.srv.URL+"/community/create_profile", url.Values{
		"username": {"alice"}, "bio": {"me too"},
	})
	assert.Contains(t, body, "already taken")
}

func TestUpdateKeepsPhotoWhenNoneUploaded(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	// create with a photo
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("username", "alice"))
	require.NoError(t, mw.WriteField("bio", "hi"))
	fw, err := mw.CreateFormFile("photo", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := c.Post(app.srv.URL+"/community/create_profile", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	resp.Body.Close()

	photoURL := searchPhotoURL(t, c, app.srv.URL, "alice")
	require.NotEmpty(t, photoURL)

	// update the bio without a new photo
	postForm(t, c, app.srv.URL+"/community/update_profile", url.Values{
		"username": {"alice"}, "bio": {"new bio"},
	})

	assert.Equal(t, photoURL, searchPhotoURL(t, c, app.srv.URL, "alice"))
}

func searchPhotoURL(t *testing.T, c *http.Client, base, username string) string {
	t.Helper()
	body := postForm(t, c, base+"/community/display_profiles", url.Values{
		"search_term": {username},
	})
	var page struct {
		Profiles []struct {
			Username string `json:"username"`
			PhotoURL string `json:"photo_url"`
		} `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Profiles, 1)
	return page.Profiles[0].PhotoURL
}

func TestPhotoUploadFailureIsInternalError(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")
	app.photos.failSave(errors.New("upload backend down"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("username", "alice"))
	fw, err := mw.CreateFormFile("photo", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := c.Post(app.srv.URL+"/community/create_profile", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "internal_error")
	// the backend failure detail stays out of the response
	assert.NotContains(t, string(body), "upload backend down")
}

// racingProfiles simulates a double-submit: the existence check misses but
// the insert hits the one-profile-per-user constraint.
type racingProfiles struct{ *memory.Profiles }

func (racingProfiles) GetByUserID(context.Context, int64) (models.Profile, error) {
	return models.Profile{}, shared.ErrNotFound
}

func (racingProfiles) Create(context.Context, models.Profile) (models.Profile, error) {
	return models.Profile{}, shared.ErrProfileExists
}

func TestDoubleSubmitRoutesToUpdateFlow(t *testing.T) {
	app := newTestAppWith(t, racingProfiles{memory.NewProfiles()})
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := c.PostForm(app.srv.URL+"/community/create_profile", url.Values{
		"username": {"alice"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/community/update_profile", resp.Header.Get("Location"))
}

func TestExactUsernamePath(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")
	postForm(t, c, app.srv.URL+"/community/create_profile", url.Values{
		"username": {"alice"}, "bio": {"hi"},
	})

	body := get(t, c, app.srv.URL+"/community/display_profiles/alice/")
	assert.Contains(t, body, "alice")

	// an unknown username falls back to the directory with a message
	body = get(t, c, app.srv.URL+"/community/display_profiles/ghost/")
	assert.Contains(t, body, "No users found.")
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "First", "Last", "email@address.com", "password")

	body := get(t, c, app.srv.URL+"/")
	assert.Contains(t, body, "First")

	postForm(t, c, app.srv.URL+"/logout", url.Values{})

	body = get(t, c, app.srv.URL+"/")
	assert.Contains(t, body, "Anonymous")
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	assert.Equal(t, "ok", get(t, c, app.srv.URL+"/health"))

	resp, err := c.Get(app.srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
