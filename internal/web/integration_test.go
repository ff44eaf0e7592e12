package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vbonduro/hbnb/internal/auth"
	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
	"github.com/vbonduro/hbnb/internal/service"
	"github.com/vbonduro/hbnb/internal/store/memory"
	"github.com/vbonduro/hbnb/internal/web"
)

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	facade *service.Facade
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWithUsers(t, memory.New[*domain.User]())
}

// userStore is the subset of the facade's user repository a test may swap.
type userStore interface {
	Add(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	Filter(ctx context.Context, keep func(*domain.User) bool) ([]*domain.User, error)
	Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	GetByAttribute(ctx context.Context, name string, value any) (*domain.User, error)
	GetAllByAttribute(ctx context.Context, name string, value any) ([]*domain.User, error)
	Clear(ctx context.Context) error
}

func newTestAPIWithUsers(t *testing.T, users userStore) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := service.NewFacade(
		users,
		memory.New[*domain.Place](),
		memory.New[*domain.Review](),
		memory.New[*domain.Amenity](),
		auth.NewBcryptHasher(bcrypt.MinCost),
		logger,
	)
	srv := httptest.NewServer(web.NewServer(facade, auth.NewTokenIssuer("test-secret", time.Hour), logger))
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, facade: facade}
}

// brokenLookupUsers fails every attribute lookup.
type brokenLookupUsers struct {
	*memory.Store[*domain.User]
}

func (brokenLookupUsers) GetByAttribute(context.Context, string, any) (*domain.User, error) {
	return nil, errors.New("disk on fire")
}

// do sends body as JSON and decodes a JSON response into out when given.
func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+"/api/v1"+path, rd)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) register(email string) map[string]any {
	a.t.Helper()
	var user map[string]any
	status := a.do("POST", "/users", "", map[string]any{
		"first_name": "Test", "last_name": "User", "email": email, "password": "pw",
	}, &user)
	require.Equal(a.t, http.StatusCreated, status)
	return user
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	status := a.do("POST", "/auth/login", "", map[string]any{"email": email, "password": password}, &resp)
	require.Equal(a.t, http.StatusOK, status)
	return resp.AccessToken
}

func (a *testAPI) seedAdmin(email string) string {
	a.t.Helper()
	_, err := a.facade.CreateUser(context.Background(), domain.UserInput{
		FirstName: "Admin", LastName: "User", Email: email, Password: "admin", IsAdmin: true,
	})
	require.NoError(a.t, err)
	return a.login(email, "admin")
}

func TestUserRegistrationAndLogin(t *testing.T) {
	api := newTestAPI(t)

	user := api.register("ada@example.com")
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, user, "password")
	assert.Equal(t, false, user["is_admin"])

	status := api.do("POST", "/users", "", map[string]any{
		"first_name": "Dup", "last_name": "User", "email": "ada@example.com", "password": "x",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	token := api.login("ada@example.com", "pw")
	assert.NotEmpty(t, token)

	status = api.do("POST", "/auth/login", "", map[string]any{"email": "ada@example.com", "password": "bad"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateAdminRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]any{
		"first_name": "Eve", "last_name": "X", "email": "eve@example.com", "password": "pw", "is_admin": true,
	}
	assert.Equal(t, http.StatusForbidden, api.do("POST", "/users", "", body, nil))

	admin := api.seedAdmin("admin@example.com")
	assert.Equal(t, http.StatusCreated, api.do("POST", "/users", admin, body, nil))
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do("POST", "/places", "", map[string]any{"title": "x", "price": 10}, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do("GET", "/places", "garbage", nil, nil))
	assert.Equal(t, http.StatusOK, api.do("GET", "/places", "", nil, nil))
}

func TestPlaceLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.register("owner@example.com")
	api.register("other@example.com")
	owner := api.login("owner@example.com", "pw")
	other := api.login("other@example.com", "pw")

	var place map[string]any
	status := api.do("POST", "/places", owner, map[string]any{
		"title": "Loft", "price": 100, "latitude": 10, "longitude": 20,
	}, &place)
	require.Equal(t, http.StatusCreated, status)
	id := place["id"].(string)

	status = api.do("PUT", "/places/"+id, owner, map[string]any{"price": -5}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.do("PUT", "/places/"+id, other, map[string]any{"price": 5}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = api.do("PUT", "/places/"+id, owner, map[string]any{"unknown": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var details map[string]any
	require.Equal(t, http.StatusOK, api.do("GET", "/places/"+id, "", nil, &details))
	assert.Equal(t, 100.0, details["price"])
	assert.NotNil(t, details["owner"])

	assert.Equal(t, http.StatusNoContent, api.do("DELETE", "/places/"+id, owner, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/places/"+id, "", nil, nil))
}

func TestReviewRules(t *testing.T) {
	api := newTestAPI(t)
	api.register("owner@example.com")
	api.register("guest@example.com")
	owner := api.login("owner@example.com", "pw")
	guest := api.login("guest@example.com", "pw")

	var place map[string]any
	require.Equal(t, http.StatusCreated, api.do("POST", "/places", owner, map[string]any{"title": "Loft", "price": 100}, &place))
	placeID := place["id"].(string)

	status := api.do("POST", "/reviews", owner, map[string]any{"text": "mine", "rating": 5, "place_id": placeID}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = api.do("POST", "/reviews", guest, map[string]any{"text": "meh", "rating": "7", "place_id": placeID}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var review map[string]any
	status = api.do("POST", "/reviews", guest, map[string]any{"text": "nice", "rating": "4", "place_id": placeID}, &review)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 4.0, review["rating"])

	status = api.do("POST", "/reviews", guest, map[string]any{"text": "again", "rating": 4, "place_id": placeID}, nil)
	assert.Equal(t, http.StatusConflict, status)

	var reviews []map[string]any
	require.Equal(t, http.StatusOK, api.do("GET", "/places/"+placeID+"/reviews", "", nil, &reviews))
	assert.Len(t, reviews, 1)
}

func TestAmenitiesAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	api.register("user@example.com")
	user := api.login("user@example.com", "pw")
	admin := api.seedAdmin("admin@example.com")

	assert.Equal(t, http.StatusForbidden, api.do("POST", "/amenities", user, map[string]any{"name": "Wi-Fi"}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do("POST", "/amenities", admin, map[string]any{"name": ""}, nil))

	var amenity map[string]any
	require.Equal(t, http.StatusCreated, api.do("POST", "/amenities", admin, map[string]any{"name": "Wi-Fi"}, &amenity))
	id := amenity["id"].(string)

	var got map[string]any
	require.Equal(t, http.StatusOK, api.do("GET", "/amenities/"+id, "", nil, &got))
	assert.Equal(t, "Wi-Fi", got["name"])

	var place map[string]any
	require.Equal(t, http.StatusCreated, api.do("POST", "/places", user, map[string]any{"title": "Loft", "price": 100}, &place))
	placeID := place["id"].(string)
	require.Equal(t, http.StatusOK, api.do("POST", "/places/"+placeID+"/amenities/"+id, user, nil, &place))
	assert.Equal(t, []any{id}, place["amenity_ids"])

	assert.Equal(t, http.StatusNoContent, api.do("DELETE", "/amenities/"+id, admin, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/amenities/"+id, "", nil, nil))
}

func TestListUsersAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	api.register("user@example.com")
	user := api.login("user@example.com", "pw")
	admin := api.seedAdmin("admin@example.com")

	assert.Equal(t, http.StatusForbidden, api.do("GET", "/users", user, nil, nil))

	var users []map[string]any
	require.Equal(t, http.StatusOK, api.do("GET", "/users", admin, nil, &users))
	assert.Len(t, users, 2)
}

func TestSecurityHeaders(t *testing.T) {
	api := newTestAPI(t)
	resp, err := http.Get(api.srv.URL + "/api/v1/places")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestLoginStoreFailureIsInternalError(t *testing.T) {
	api := newTestAPIWithUsers(t, brokenLookupUsers{memory.New[*domain.User]()})

	status := api.do("POST", "/auth/login", "", map[string]any{"email": "ada@example.com", "password": "pw"}, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestRevokedAdminLosesAccess(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	token := api.seedAdmin("admin@example.com")
	require.Equal(t, http.StatusOK, api.do("GET", "/users", token, nil, nil))

	admin, err := api.facade.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	demote := false
	_, err = api.facade.UpdateUser(ctx, admin.ID, domain.UserPatch{IsAdmin: &demote}, authz.Identity{ID: admin.ID, IsAdmin: true})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, api.do("GET", "/users", token, nil, nil))
}

func TestDeletedUserTokenRejected(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("gone@example.com")
	token := api.login("gone@example.com", "pw")

	require.Equal(t, http.StatusNoContent, api.do("DELETE", "/users/"+user["id"].(string), token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do("POST", "/places", token, map[string]any{"title": "Loft", "price": 100}, nil))
}
