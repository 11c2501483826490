package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"school-assistant-backend/internal/analytics"
	"school-assistant-backend/internal/auth"
)

func GetTasksHandler(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		list, err := store.List(r.Context(), uid)
		if err != nil {
			logger.Error("list tasks", zap.Int("user_id", uid), zap.Error(err))
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func CreateTaskHandler(store *Store, events *analytics.Recorder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := NewUserTask(body.Title, body.Description)
		if err != nil {
			http.Error(w, "empty task", http.StatusBadRequest)
			return
		}
		t.CreatedAt = time.Now().UTC()

		if _, err := store.Append(r.Context(), uid, t); err != nil {
			logger.Error("create task", zap.Int("user_id", uid), zap.Error(err))
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		events.Log(r.Context(), env, analytics.EventTaskCreated, map[string]any{
			"task_id":      t.ID,
			"title_len":    len(t.Title),
			"created_from": "user",
		}, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(t)
	}
}

func CompleteTaskHandler(store *Store, events *analytics.Recorder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := mux.Vars(r)["id"]
		if id == "" {
			http.Error(w, "task id required", http.StatusBadRequest)
			return
		}

		if err := store.Complete(r.Context(), uid, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "task not found", http.StatusNotFound)
				return
			}
			logger.Error("complete task", zap.Int("user_id", uid), zap.String("task_id", id), zap.Error(err))
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		events.Log(r.Context(), env, analytics.EventTaskCompleted, map[string]any{
			"task_id": id,
		}, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
