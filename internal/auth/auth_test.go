package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"school-assistant-backend/internal/analytics"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(secret, 42)
	require.NoError(t, err)

	uid, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, 42, uid)

	_, err = ParseToken([]byte("other"), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(secret, tok+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	var gotUser, gotAnalyticsUser int
	h := New(secret).Wrap(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserIDFromContext(r.Context())
		gotAnalyticsUser, _ = analytics.UserIDFromContext(r.Context())
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := GenerateToken(secret, 5)
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotUser)
	assert.Equal(t, 5, gotAnalyticsUser)
}

func TestRegister(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("principal@school.in", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	h := RegisterHandler(conn, secret, zap.NewNop())
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":" Principal@School.in ","password":"correct horse"}`)))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		UserID int    `json:"user_id"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 11, resp.UserID)

	uid, err := ParseToken(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 11, uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejects(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	h := RegisterHandler(conn, secret, zap.NewNop())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","password":"short"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","password":"long enough"}`)))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	h := LoginHandler(conn, secret, zap.NewNop())

	mock.ExpectQuery("SELECT id, password FROM users").
		WithArgs("principal@school.in").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password"}).AddRow(3, string(hash)))
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"principal@school.in","password":"correct horse"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectQuery("SELECT id, password FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password"}).AddRow(3, string(hash)))
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"principal@school.in","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM dashboard_snapshots").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM analytics_events").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 9))
	mock.ExpectExec("DELETE FROM users").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := httptest.NewRequest(http.MethodDelete, "/auth/account", nil)
	r = r.WithContext(WithUserID(context.Background(), 4))
	w := httptest.NewRecorder()
	DeleteAccountHandler(conn, zap.NewNop())(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccountRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	r := httptest.NewRequest(http.MethodDelete, "/auth/account", nil)
	r = r.WithContext(WithUserID(context.Background(), 4))
	w := httptest.NewRecorder()
	DeleteAccountHandler(conn, zap.NewNop())(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
