package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func readCredentials(r *http.Request) (credentials, bool) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, false
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	return body, body.Email != "" && body.Password != ""
}

func writeToken(w http.ResponseWriter, status int, id int, token string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user_id": id,
		"token":   token,
	})
}

func RegisterHandler(dbx *sql.DB, secret []byte, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readCredentials(r)
		if !ok {
			http.Error(w, "email & password required", http.StatusBadRequest)
			return
		}
		if len(body.Password) < minPasswordLen {
			http.Error(w, "password too short", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash failed", http.StatusInternalServerError)
			return
		}

		var id int
		err = dbx.QueryRowContext(r.Context(), `
			INSERT INTO users (email, password)
			VALUES ($1, $2)
			RETURNING id
		`, body.Email, string(hash)).Scan(&id)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				http.Error(w, "user exists", http.StatusConflict)
				return
			}
			logger.Error("register", zap.Error(err))
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		token, err := GenerateToken(secret, id)
		if err != nil {
			http.Error(w, "token failed", http.StatusInternalServerError)
			return
		}
		writeToken(w, http.StatusCreated, id, token)
	}
}

func LoginHandler(dbx *sql.DB, secret []byte, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readCredentials(r)
		if !ok {
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}

		var (
			id   int
			hash string
		)
		err := dbx.QueryRowContext(r.Context(), `
			SELECT id, password FROM users WHERE email=$1
		`, body.Email).Scan(&id, &hash)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				logger.Error("login lookup", zap.Error(err))
			}
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}

		token, err := GenerateToken(secret, id)
		if err != nil {
			http.Error(w, "token failed", http.StatusInternalServerError)
			return
		}
		writeToken(w, http.StatusOK, id, token)
	}
}

func MeHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var email string
		if err := dbx.QueryRowContext(r.Context(), "SELECT email FROM users WHERE id=$1", uid).Scan(&email); err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id": uid,
			"email":   email,
		})
	}
}
