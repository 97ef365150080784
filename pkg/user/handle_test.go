package user

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxpbx/adminapi/pkg/auth"
	"github.com/fluxpbx/adminapi/pkg/permission"
)

type handleFixture struct {
	*serviceFixture
	router *chi.Mux
	ja     *jwtauth.JWTAuth
}

func newHandleFixture(t *testing.T) *handleFixture {
	t.Helper()

	f := newServiceFixture(t)
	checker := permission.NewChecker(f.store)
	handle := NewHandle(f.service, checker)

	ja := auth.NewJWTAuth("test-secret")

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/", Index)
		r.NotFound(NotFoundHandler)
		r.Group(func(r chi.Router) {
			r.Use(auth.Verifier(ja))
			r.Use(auth.Authenticator)
			handle.RegisterRoutes(r)
		})
	})

	return &handleFixture{serviceFixture: f, router: r, ja: ja}
}

func (f *handleFixture) token(t *testing.T, capabilities ...string) string {
	t.Helper()
	_, tokenString, err := f.ja.Encode(map[string]interface{}{
		"user_uuid":   f.caller.UserID.String(),
		"username":    f.caller.Username,
		"domain_uuid": f.caller.DomainID.String(),
		"group_level": f.caller.GroupLevel,
		"permissions": capabilities,
	})
	require.NoError(t, err)
	return tokenString
}

func (f *handleFixture) do(t *testing.T, method, path, token, contentType, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (f *handleFixture) createBody(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"username":   "jdoe",
		"password":   "Str0ng-Passw0rd!",
		"user_email": "jdoe@example.com",
		"group_uuid": f.groupID.String(),
	})
	require.NoError(t, err)
	return string(data)
}

func TestHandleCreateUser(t *testing.T) {
	f := newHandleFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/users",
		f.token(t, "user_add"), "application/json", f.createBody(t))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "User created successfully", body["message"])
	assert.Equal(t, "jdoe", body["username"])
	assert.Equal(t, "jdoe@example.com", body["user_email"])

	id, err := uuid.Parse(body["user_uuid"].(string))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestHandleCreateUserFormEncoded(t *testing.T) {
	f := newHandleFixture(t)

	form := url.Values{}
	form.Set("username", "jdoe")
	form.Set("password", "Str0ng-Passw0rd!")
	form.Set("user_email", "jdoe@example.com")
	form.Set("group_uuid", f.groupID.String())

	rec, body := f.do(t, http.MethodPost, "/api/users",
		f.token(t, "user_add"), "application/x-www-form-urlencoded", form.Encode())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "jdoe", body["username"])
}

func TestHandleCreateUserUnauthenticated(t *testing.T) {
	f := newHandleFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/users", "", "application/json", f.createBody(t))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCreateUserBadToken(t *testing.T) {
	f := newHandleFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/users", "not-a-token", "application/json", f.createBody(t))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCreateUserForbidden(t *testing.T) {
	f := newHandleFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/users",
		f.token(t), "application/json", f.createBody(t))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Forbidden - Insufficient permissions", body["message"])
}

func TestHandleCreateUserMissingFields(t *testing.T) {
	f := newHandleFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/users",
		f.token(t, "user_add"), "application/json", `{"username":"jdoe"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", body["message"])
	assert.ElementsMatch(t, []interface{}{"password", "user_email", "group_uuid"},
		body["missing_fields"])
}

func TestHandleCreateUserMalformedJSON(t *testing.T) {
	f := newHandleFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/users",
		f.token(t, "user_add"), "application/json", `{"username": "jdoe"`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", body["message"])
	assert.ElementsMatch(t, []interface{}{"username", "password", "user_email", "group_uuid"},
		body["missing_fields"])
}

func TestHandleCreateUserDuplicate(t *testing.T) {
	f := newHandleFixture(t)
	f.repo.SeedUser(UserRecord{ID: uuid.New(), DomainID: f.domainID, Username: "jdoe"})

	rec, body := f.do(t, http.MethodPost, "/api/users",
		f.token(t, "user_add"), "application/json", f.createBody(t))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exists", body["message"])
}

func TestHandleCreateUserPersistenceFailure(t *testing.T) {
	f := newHandleFixture(t)
	f.repo.FailOn(KindUser, stderrors.New("connection reset"))

	rec, body := f.do(t, http.MethodPost, "/api/users",
		f.token(t, "user_add"), "application/json", f.createBody(t))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to create user", body["message"])
	assert.Contains(t, body["error"], "connection reset")
}

func TestHandleMethodNotAllowed(t *testing.T) {
	f := newHandleFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/users", f.token(t, "user_add"), "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed. Use POST to create a user.", body["message"])

	rec, body = f.do(t, http.MethodDelete, "/api/users", f.token(t, "user_add"), "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", body["message"])
}

func TestHandleIndex(t *testing.T) {
	f := newHandleFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
}

func TestHandleUnknownEndpoint(t *testing.T) {
	f := newHandleFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/nope", "", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", body["message"])
	assert.Equal(t, "/api/nope", body["endpoint"])
}
