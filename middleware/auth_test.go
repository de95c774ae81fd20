package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/models"
)

type fakeRoles struct {
	roles map[int][]string
	err   error
}

func (f fakeRoles) Roles(ctx context.Context, userID int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.roles[userID], nil
}

var testRoles = fakeRoles{roles: map[int][]string{
	1: {models.RoleAdmin},
	3: {models.RoleUser},
}}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *TokenService {
	return NewTokenService(nil, []byte("test-secret"), time.Hour, 24*time.Hour)
}

func setupRouter(tokens *TokenService, roles RoleLookup) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	whoami := func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "roles": c.GetStringSlice(ContextRoles)})
	}
	r.GET("/public", OptionalAuth(tokens, roles), whoami)
	r.GET("/private", AuthMiddleware(tokens, roles), whoami)
	r.GET("/admin", AuthMiddleware(tokens, roles), RequireRole(models.RoleAdmin), whoami)
	r.GET("/guard-only", RequireRole(models.RoleAdmin), whoami)
	return r
}

func do(t *testing.T, r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, tokens *TokenService, userID int) string {
	t.Helper()
	token, err := tokens.GenerateAccessToken(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := setupRouter(newTokens(), testRoles)

	w := do(t, r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := setupRouter(newTokens(), testRoles)

	w := do(t, r, "/private", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	tokens := newTokens()
	r := setupRouter(tokens, testRoles)

	other := NewTokenService(nil, []byte("other-secret"), time.Hour, time.Hour)
	w := do(t, r, "/private", bearer(t, other, 3))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	tokens := newTokens()
	r := setupRouter(tokens, testRoles)

	expired := NewTokenService(nil, tokens.JWTSecret, -time.Minute, time.Hour)
	w := do(t, r, "/private", bearer(t, expired, 3))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := newTokens()
	r := setupRouter(tokens, testRoles)

	w := do(t, r, "/private", bearer(t, tokens, 3))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		UserID int      `json:"user_id"`
		Roles  []string `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.UserID)
	assert.Equal(t, []string{models.RoleUser}, body.Roles)
}

func TestAuthMiddleware_RoleLookupFailure(t *testing.T) {
	tokens := newTokens()
	r := setupRouter(tokens, fakeRoles{err: errors.New("db down")})

	w := do(t, r, "/private", bearer(t, tokens, 3))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens()
	r := setupRouter(tokens, testRoles)

	assert.Equal(t, http.StatusForbidden, do(t, r, "/admin", bearer(t, tokens, 3)).Code)
	assert.Equal(t, http.StatusOK, do(t, r, "/admin", bearer(t, tokens, 1)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/guard-only", "").Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := newTokens()
	r := setupRouter(tokens, testRoles)

	w := do(t, r, "/public", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)

	w = do(t, r, "/public", bearer(t, tokens, 3))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":3`)

	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/public", "Bearer not-a-jwt").Code)
}

func TestParseAccessToken_RejectsMissingUser(t *testing.T) {
	tokens := newTokens()
	token, err := tokens.GenerateAccessToken(0)
	require.NoError(t, err)

	_, err = tokens.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestGenerateTokens_StoresRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tokens := NewTokenService(db, []byte("test-secret"), time.Hour, 24*time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens (user_id, token, expires_at)`)).
		WithArgs(3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pair, err := tokens.GenerateTokens(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, pair.RefreshToken, 32)

	claims, err := tokens.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	tokens := NewTokenService(db, []byte("test-secret"), time.Hour, time.Hour)

	query := regexp.QuoteMeta(`SELECT user_id FROM refresh_tokens WHERE token = $1 AND expires_at > NOW()`)
	mock.ExpectQuery(query).WithArgs("good").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))
	mock.ExpectQuery(query).WithArgs("stale").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	userID, err := tokens.ValidateRefreshToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, 3, userID)

	_, err = tokens.ValidateRefreshToken(context.Background(), "stale")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Abcd_1234")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcd_1234", hash)
	assert.True(t, VerifyPassword(hash, "Abcd_1234"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
