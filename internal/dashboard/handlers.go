package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"school-assistant-backend/internal/auth"
	"school-assistant-backend/internal/schema"
)

func GetSnapshotHandler(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		snap, err := store.Get(r.Context(), uid)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "no snapshot", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("get snapshot", zap.Int("user_id", uid), zap.Error(err))
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func PutSnapshotHandler(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var snap Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var verr *schema.ValidationError
		if err := schema.Validate(&snap); errors.As(err, &verr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":  "invalid snapshot",
				"fields": verr.Fields,
			})
			return
		}

		if err := store.Put(r.Context(), uid, &snap); err != nil {
			logger.Error("put snapshot", zap.Int("user_id", uid), zap.Error(err))
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}
