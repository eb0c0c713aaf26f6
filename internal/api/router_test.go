package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidguard/parental-api/internal/core/ports"
	"github.com/kidguard/parental-api/internal/core/service"
	"github.com/kidguard/parental-api/internal/infrastructure/db/memory"
	"github.com/kidguard/parental-api/internal/infrastructure/db/repository"
)

// newTestRouter wires the real services over an in-memory store.
func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	store := memory.New(memory.WithUnique(ports.CollectionUsers, "username"))
	users := repository.NewUserRepository(store)
	searches := repository.NewSearchRepository(store)
	log := zerolog.Nop()

	creds := service.NewCredentialService(service.CredentialConfig{
		Secret:     "router-test-secret",
		TokenTTL:   30 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	})
	access := service.NewAccessService(users, creds)

	return NewRouter(Options{
		Auth:     service.NewAuthService(users, creds, nil, log),
		Children: service.NewChildService(users, searches, creds, access, log),
		Searches: service.NewSearchService(searches, users, access, nil, log),
		Access:   access,
		Logger:   log,
	})
}

type apiClient struct {
	t *testing.T
	e *echo.Echo
}

func (a apiClient) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a apiClient) login(username, password string) string {
	a.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		a.t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(a.t, rec, &resp)
	if resp.TokenType != "bearer" {
		a.t.Fatalf("unexpected token type %q", resp.TokenType)
	}
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}

type userBody struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	ParentID *string `json:"parent_id"`
}

func TestRouter_ParentFlow(t *testing.T) {
	api := apiClient{t: t, e: newTestRouter(t)}

	rec := api.do(http.MethodPost, "/users/register", "", `{"username":"alice","password":"pw1"}`)
	expectStatus(t, rec, http.StatusCreated)
	var alice userBody
	decode(t, rec, &alice)
	if alice.Role != "parent" || alice.ParentID != nil {
		t.Fatalf("unexpected parent: %+v", alice)
	}

	token := api.login("alice", "pw1")

	rec = api.do(http.MethodGet, "/users/me", token, "")
	expectStatus(t, rec, http.StatusOK)

	rec = api.do(http.MethodPost, "/children/", token, `{"username":"tim","password":"pw2"}`)
	expectStatus(t, rec, http.StatusCreated)
	var tim userBody
	decode(t, rec, &tim)
	if tim.ParentID == nil || *tim.ParentID != alice.ID {
		t.Fatalf("unexpected child: %+v", tim)
	}

	for _, q := range []string{"first", "second"} {
		rec = api.do(http.MethodPost, "/searches/log", "", `{"child_username":"tim","search_query":"`+q+`"}`)
		expectStatus(t, rec, http.StatusCreated)
		time.Sleep(2 * time.Millisecond)
	}

	rec = api.do(http.MethodGet, "/searches/"+tim.ID, token, "")
	expectStatus(t, rec, http.StatusOK)
	var history []struct {
		SearchQuery string `json:"search_query"`
		ChildID     string `json:"child_id"`
	}
	decode(t, rec, &history)
	if len(history) != 2 || history[0].SearchQuery != "second" || history[1].SearchQuery != "first" {
		t.Fatalf("expected newest first, got %+v", history)
	}

	rec = api.do(http.MethodPost, "/users/verify-parent-for-logout", "", `{"child_username":"tim","parent_password":"pw1"}`)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"verified":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = api.do(http.MethodPost, "/users/verify-parent-for-logout", "", `{"child_username":"tim","parent_password":"pw2"}`)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = api.do(http.MethodDelete, "/searches/clear/"+tim.ID, token, "")
	expectStatus(t, rec, http.StatusOK)
	var cleared struct {
		Message      string `json:"message"`
		DeletedCount int    `json:"deleted_count"`
	}
	decode(t, rec, &cleared)
	if cleared.DeletedCount != 2 {
		t.Fatalf("expected 2 cleared, got %+v", cleared)
	}

	rec = api.do(http.MethodDelete, "/children/"+tim.ID, token, "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Child account 'tim' and all associated data deleted successfully.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = api.do(http.MethodGet, "/children", token, "")
	expectStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected no children, got %s", rec.Body.String())
	}
}

func TestRouter_CrossParentIsolation(t *testing.T) {
	api := apiClient{t: t, e: newTestRouter(t)}

	expectStatus(t, api.do(http.MethodPost, "/users/register", "", `{"username":"alice","password":"pw1"}`), http.StatusCreated)
	expectStatus(t, api.do(http.MethodPost, "/users/register", "", `{"username":"bob","password":"pw3"}`), http.StatusCreated)
	aliceToken := api.login("alice", "pw1")
	bobToken := api.login("bob", "pw3")

	rec := api.do(http.MethodPost, "/children/", aliceToken, `{"username":"tim","password":"pw2"}`)
	expectStatus(t, rec, http.StatusCreated)
	var tim userBody
	decode(t, rec, &tim)
	expectStatus(t, api.do(http.MethodPost, "/searches/log", "", `{"child_username":"tim","search_query":"q"}`), http.StatusCreated)

	expectStatus(t, api.do(http.MethodGet, "/searches/"+tim.ID, bobToken, ""), http.StatusForbidden)
	expectStatus(t, api.do(http.MethodDelete, "/searches/clear/"+tim.ID, bobToken, ""), http.StatusForbidden)
	expectStatus(t, api.do(http.MethodDelete, "/children/"+tim.ID, bobToken, ""), http.StatusForbidden)

	rec = api.do(http.MethodGet, "/children/", bobToken, "")
	expectStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("bob should see no children, got %s", rec.Body.String())
	}

	// Alice's data is untouched.
	rec = api.do(http.MethodGet, "/searches/"+tim.ID, aliceToken, "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"search_query":"q"`) {
		t.Fatalf("expected alice's search to survive, got %s", rec.Body.String())
	}

	// Missing child: 404 on delete, 403 on the search routes.
	expectStatus(t, api.do(http.MethodDelete, "/children/nope", aliceToken, ""), http.StatusNotFound)
	expectStatus(t, api.do(http.MethodGet, "/searches/nope", aliceToken, ""), http.StatusForbidden)
}

func TestRouter_AuthErrors(t *testing.T) {
	api := apiClient{t: t, e: newTestRouter(t)}

	expectStatus(t, api.do(http.MethodPost, "/users/register", "", `{"username":"alice","password":"pw1"}`), http.StatusCreated)

	rec := api.do(http.MethodPost, "/users/register", "", `{"username":"alice","password":"other"}`)
	expectStatus(t, rec, http.StatusBadRequest)
	if !strings.Contains(rec.Body.String(), `"detail":"Username already registered"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = api.do(http.MethodGet, "/users/me", "", "")
	expectStatus(t, rec, http.StatusUnauthorized)
	if got := rec.Header().Get(echo.HeaderWWWAuthenticate); got != "Bearer" {
		t.Fatalf("expected Bearer challenge, got %q", got)
	}

	expectStatus(t, api.do(http.MethodGet, "/children/", "garbage", ""), http.StatusUnauthorized)

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)
	if !strings.Contains(rec.Body.String(), "Incorrect username or password") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	// A child token is valid but not a parent.
	parent := api.login("alice", "pw1")
	expectStatus(t, api.do(http.MethodPost, "/children/", parent, `{"username":"tim","password":"pw2"}`), http.StatusCreated)
	child := api.login("tim", "pw2")
	expectStatus(t, api.do(http.MethodGet, "/users/me", child, ""), http.StatusForbidden)
	expectStatus(t, api.do(http.MethodGet, "/children/", child, ""), http.StatusForbidden)

	expectStatus(t, api.do(http.MethodPost, "/searches/log", "", `{"child_username":"alice","search_query":"q"}`), http.StatusNotFound)
}

func TestRouter_Health(t *testing.T) {
	api := apiClient{t: t, e: newTestRouter(t)}

	expectStatus(t, api.do(http.MethodGet, "/health", "", ""), http.StatusOK)
	expectStatus(t, api.do(http.MethodGet, "/health/ready", "", ""), http.StatusOK)
}
