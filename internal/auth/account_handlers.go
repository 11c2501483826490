package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// tokens are stateless; the client drops its copy
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
		})
	}
}

// accountTables are cleared child-first before the user row.
var accountTables = []string{
	`DELETE FROM tasks WHERE user_id = $1`,
	`DELETE FROM dashboard_snapshots WHERE user_id = $1`,
	`DELETE FROM analytics_events WHERE user_id = $1`,
	`DELETE FROM users WHERE id = $1`,
}

func DeleteAccountHandler(dbx *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		tx, err := dbx.BeginTx(r.Context(), nil)
		if err != nil {
			http.Error(w, "db begin failed", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		for _, stmt := range accountTables {
			if _, err := tx.ExecContext(r.Context(), stmt, uid); err != nil {
				logger.Error("delete account", zap.Int("user_id", uid), zap.String("stmt", stmt), zap.Error(err))
				http.Error(w, "delete account failed", http.StatusInternalServerError)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "db commit failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
		})
	}
}
