package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/middleware"
	"github.com/Ammara9/GymBooking/models"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int]models.User
	roles  map[int][]string
	nextID int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int]models.User{}, roles: map[int][]string{}, nextID: 1}
}

func (f *fakeUsers) Create(ctx context.Context, u models.User, role string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return models.User{}, fmt.Errorf("email already registered: %w", apperrors.ErrValidation)
		}
	}
	u.ID = f.nextID
	u.CreatedAt = fixedNow
	f.nextID++
	f.byID[u.ID] = u
	f.roles[u.ID] = []string{role}
	return u, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}

func (f *fakeUsers) Roles(ctx context.Context, id int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[id], nil
}

var insertRefreshSQL = regexp.QuoteMeta(`INSERT INTO refresh_tokens (user_id, token, expires_at)`)

func setupAuthRouter(t *testing.T, viewerID int) (*gin.Engine, *fakeUsers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	users := newFakeUsers()
	tokens := middleware.NewTokenService(db, []byte("test-secret"), time.Hour, 24*time.Hour)
	h := NewAuthHandler(users, tokens)

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.RefreshToken)
	r.POST("/logout", as(viewerID, models.RoleUser), h.Logout)
	r.GET("/me", as(viewerID, models.RoleUser), h.GetUserInfo)
	return r, users, mock
}

func registerBody() gin.H {
	return gin.H{
		"email":      "Ada@Example.com",
		"password":   "Abcd_1234",
		"first_name": "Ada",
		"last_name":  "Lovelace",
	}
}

func TestRegister(t *testing.T) {
	r, users, mock := setupAuthRouter(t, 0)
	mock.ExpectExec(insertRefreshSQL).WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := doJSON(t, r, http.MethodPost, "/register", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	pair := decode[models.TokenPair](t, w)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	u, err := users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, middleware.VerifyPassword(u.PasswordHash, "Abcd_1234"))
	assert.Equal(t, []string{models.RoleUser}, users.roles[u.ID])
}

func TestRegister_Duplicate(t *testing.T) {
	r, users, _ := setupAuthRouter(t, 0)
	_, err := users.Create(context.Background(), models.User{Email: "ada@example.com"}, models.RoleUser)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/register", registerBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestRegister_InvalidPayload(t *testing.T) {
	r, _, _ := setupAuthRouter(t, 0)

	body := registerBody()
	body["password"] = "short"
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodPost, "/register", body).Code)

	body = registerBody()
	body["first_name"] = " "
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodPost, "/register", body).Code)
}

func TestLogin(t *testing.T) {
	r, users, mock := setupAuthRouter(t, 0)
	hash, err := middleware.HashPassword("Abcd_1234")
	require.NoError(t, err)
	u, err := users.Create(context.Background(), models.User{Email: "ada@example.com", PasswordHash: hash}, models.RoleUser)
	require.NoError(t, err)

	mock.ExpectExec(insertRefreshSQL).WithArgs(u.ID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := doJSON(t, r, http.MethodPost, "/login", gin.H{"email": "ada@example.com", "password": "Abcd_1234"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", gin.H{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", gin.H{"email": "nobody@example.com", "password": "Abcd_1234"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshToken(t *testing.T) {
	r, _, mock := setupAuthRouter(t, 0)
	validate := regexp.QuoteMeta(`SELECT user_id FROM refresh_tokens`)

	mock.ExpectQuery(validate).WithArgs("expired").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	w := doJSON(t, r, http.MethodPost, "/refresh", gin.H{"refresh_token": "expired"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mock.ExpectQuery(validate).WithArgs("current").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))
	mock.ExpectExec(insertRefreshSQL).WithArgs(3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE token = $1`)).WithArgs("current").
		WillReturnResult(sqlmock.NewResult(0, 1))
	w = doJSON(t, r, http.MethodPost, "/refresh", gin.H{"refresh_token": "current"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	r, _, mock := setupAuthRouter(t, 3)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE token = $1`)).WithArgs("current").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/logout", gin.H{"refresh_token": "current"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/logout", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserInfo(t *testing.T) {
	r, users, _ := setupAuthRouter(t, 1)
	_, err := users.Create(context.Background(), models.User{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
	}, models.RoleUser)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[models.UserProfile](t, w)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, []string{models.RoleUser}, profile.Roles)
	assert.True(t, profile.CreatedAt.Equal(fixedNow))
}
