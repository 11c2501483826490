package analytics

import (
	"encoding/json"
	"net/http"
)

// AppOpenedHandler records that the dashboard was opened.
func AppOpenedHandler(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"` // link/icon/unknown
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		env := FromRequest(r)
		env.UserID = uid

		props := map[string]any{
			"cold_start": body.ColdStart,
			"from":       body.From,
		}
		rec.Log(r.Context(), env, EventAppOpened, props, SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
