package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type CtxKey string

const (
	ctxUserIDKey CtxKey = "analytics_user_id"
)

// Event names.
const (
	EventAppOpened        = "app_opened"
	EventAssistantQuery   = "assistant_query"
	EventVariantRouted    = "assistant_variant_routed"
	EventTaskProposed     = "task_proposed"
	EventTaskConfirmed    = "task_confirmed"
	EventTaskCreated      = "task_created"
	EventTaskCompleted    = "task_completed"
	EventInsightGenerated = "insight_generated"
	EventInvocationFailed = "invocation_failed"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       int
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(ctxUserIDKey)
	if v == nil {
		return 0, false
	}
	uid, ok := v.(int)
	return uid, ok
}

// SourceEventKeyFromRequest returns the client-provided idempotency key, if any.
func SourceEventKeyFromRequest(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Recorder writes events to analytics_events. Failures are logged and never
// break the calling flow.
type Recorder struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRecorder(db *sql.DB, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{db: db, logger: logger}
}

// Log inserts one event. Callers pass sanitized props: ids, counts and
// lengths, never raw user text. Duplicate source keys are ignored.
func (rec *Recorder) Log(ctx context.Context, env Envelope, eventName string, props any, sourceEventKey string) {
	if rec == nil || eventName == "" {
		return
	}

	userID := env.UserID
	if userID == 0 {
		uid, ok := UserIDFromContext(ctx)
		if !ok {
			return
		}
		userID = uid
	}

	b, err := json.Marshal(props)
	if err != nil {
		rec.logger.Warn("analytics props not serializable", zap.String("event", eventName), zap.Error(err))
		return
	}

	if sourceEventKey != "" {
		// one request may emit several events under the same key
		sourceEventKey = sourceEventKey + ":" + eventName
		_, err = rec.db.ExecContext(ctx, `
			INSERT INTO analytics_events (
				event_name, event_time,
				user_id, session_id,
				platform, app_version, device_locale,
				source_event_key,
				properties
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
			ON CONFLICT (source_event_key) DO NOTHING
		`, eventName, time.Now().UTC(),
			userID, nullIfEmpty(env.SessionID),
			env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
			sourceEventKey,
			string(b),
		)
	} else {
		_, err = rec.db.ExecContext(ctx, `
			INSERT INTO analytics_events (
				event_name, event_time,
				user_id, session_id,
				platform, app_version, device_locale,
				properties
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		`, eventName, time.Now().UTC(),
			userID, nullIfEmpty(env.SessionID),
			env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
			string(b),
		)
	}

	if err != nil {
		rec.logger.Warn("analytics insert failed", zap.String("event", eventName), zap.Int("user_id", userID), zap.Error(err))
	}
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
