package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yamdb/internal/models"
	"yamdb/internal/services"
	"yamdb/internal/testutil"
)

// inbox records the last code mailed to each username.
type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (b *inbox) SendConfirmationCode(email, username, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[username] = code
}

func (b *inbox) code(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codes[username]
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	tokens *services.TokenIssuer
	inbox  *inbox
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := testutil.NewDB(t)
	tokens := services.NewTokenIssuer("test-secret", time.Hour)
	box := &inbox{codes: map[string]string{}}
	deps := NewDeps(gdb, tokens, box, services.CryptoSource{}, zap.NewNop())
	deps.CORSOrigins = []string{"*"}

	return &testAPI{t: t, router: New(deps), db: gdb, tokens: tokens, inbox: box}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) tokenFor(u *models.User) string {
	a.t.Helper()
	tok, err := a.tokens.IssueAccessToken(u)
	require.NoError(a.t, err)
	return tok
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestSignupTokenReviewFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.CreateUser(t, api.db, "root", models.RoleAdmin)
	adminToken := api.tokenFor(admin)

	rr := api.do(http.MethodPost, "/api/v1/categories", adminToken, gin.H{"name": "Movie", "slug": "movie"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = api.do(http.MethodPost, "/api/v1/genres", adminToken, gin.H{"name": "Drama", "slug": "drama"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = api.do(http.MethodPost, "/api/v1/titles", adminToken, gin.H{
		"name": "Pulp Fiction", "year": 1994, "category": "movie", "genre": []string{"drama"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	title := decode(t, rr)
	assert.Nil(t, title["rating"])
	titlePath := "/api/v1/titles/1"

	rr = api.do(http.MethodPatch, titlePath, adminToken, map[string]any{"category": nil})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Nil(t, decode(t, rr)["category"])
	assert.Len(t, decode(t, rr)["genre"], 1)

	rr = api.do(http.MethodPost, "/api/v1/auth/signup", "", gin.H{"username": "alice", "email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"username":"alice","email":"alice@example.com"}`, rr.Body.String())
	code := api.inbox.code("alice")
	require.Len(t, code, services.ConfirmationCodeLength)

	rr = api.do(http.MethodPost, "/api/v1/auth/token", "", gin.H{"username": "alice", "confirmation_code": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(http.MethodPost, "/api/v1/auth/token", "", gin.H{"username": "alice", "confirmation_code": code})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token, _ := decode(t, rr)["token"].(string)
	require.NotEmpty(t, token)

	rr = api.do(http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user", decode(t, rr)["role"])

	rr = api.do(http.MethodPost, titlePath+"/reviews", token, gin.H{"text": "Great", "score": 9})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	review := decode(t, rr)
	assert.Equal(t, "alice", review["author"])

	rr = api.do(http.MethodPost, titlePath+"/reviews", token, gin.H{"text": "Again", "score": 3})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(http.MethodGet, titlePath, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.InDelta(t, 9.0, decode(t, rr)["rating"], 0.001)

	rr = api.do(http.MethodPost, titlePath+"/reviews/1/comments", token, gin.H{"text": "me too"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = api.do(http.MethodGet, titlePath+"/reviews/1/comments", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decode(t, rr)["count"])
}

func TestDiscussionPermissions(t *testing.T) {
	api := newTestAPI(t)
	author := testutil.CreateUser(t, api.db, "author", models.RoleUser)
	other := testutil.CreateUser(t, api.db, "other", models.RoleUser)
	moderator := testutil.CreateUser(t, api.db, "mod", models.RoleModerator)
	require.NoError(t, api.db.Create(&models.Title{Name: "Dune", Year: 1965}).Error)

	rr := api.do(http.MethodPost, "/api/v1/titles/1/reviews", "", gin.H{"text": "anon", "score": 5})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.do(http.MethodPost, "/api/v1/titles/1/reviews", api.tokenFor(author), gin.H{"text": "mine", "score": 5})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = api.do(http.MethodPatch, "/api/v1/titles/1/reviews/1", api.tokenFor(other), gin.H{"score": 1})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do(http.MethodPatch, "/api/v1/titles/1/reviews/1", api.tokenFor(moderator), gin.H{"score": 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.EqualValues(t, 2, decode(t, rr)["score"])

	rr = api.do(http.MethodGet, "/api/v1/titles/2/reviews/1", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = api.do(http.MethodGet, "/api/v1/titles/abc/reviews", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(http.MethodDelete, "/api/v1/titles/1/reviews/1", api.tokenFor(author), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCatalogAndUserAdminPermissions(t *testing.T) {
	api := newTestAPI(t)
	user := testutil.CreateUser(t, api.db, "plain", models.RoleUser)
	moderator := testutil.CreateUser(t, api.db, "mod", models.RoleModerator)

	rr := api.do(http.MethodPost, "/api/v1/genres", api.tokenFor(moderator), gin.H{"name": "Rock", "slug": "rock"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = api.do(http.MethodPost, "/api/v1/genres", "", gin.H{"name": "Rock", "slug": "rock"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = api.do(http.MethodGet, "/api/v1/genres", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(http.MethodGet, "/api/v1/users", api.tokenFor(user), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = api.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	superuser := &models.User{Username: "boss", Email: "boss@example.com", Role: models.RoleUser, IsSuperuser: true, Password: "!x"}
	require.NoError(t, api.db.Create(superuser).Error)
	rr = api.do(http.MethodPatch, "/api/v1/users/plain", api.tokenFor(superuser), gin.H{"role": "moderator"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "moderator", decode(t, rr)["role"])

	rr = api.do(http.MethodPut, "/api/v1/users/plain", api.tokenFor(superuser), gin.H{"role": "user"})
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestPaginationEnvelope(t *testing.T) {
	api := newTestAPI(t)
	for _, slug := range []string{"a", "b", "c"} {
		require.NoError(t, api.db.Create(&models.Genre{Name: "Genre " + slug, Slug: slug}).Error)
	}

	rr := api.do(http.MethodGet, "/api/v1/genres?page_size=2", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.EqualValues(t, 3, body["count"])
	assert.Len(t, body["results"], 2)
	assert.Contains(t, body["next"], "page=2")
	assert.Nil(t, body["previous"])

	rr = api.do(http.MethodGet, "/api/v1/genres?page_size=2&page=2", "", nil)
	body = decode(t, rr)
	assert.Len(t, body["results"], 1)
	assert.Nil(t, body["next"])
	assert.NotNil(t, body["previous"])
}

func TestOpsRoutes(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
