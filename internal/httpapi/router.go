// Package httpapi assembles the HTTP surface: routes, auth, rate limiting,
// CORS and the server itself.
package httpapi

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"school-assistant-backend/internal/analytics"
	"school-assistant-backend/internal/assistant"
	"school-assistant-backend/internal/auth"
	"school-assistant-backend/internal/dashboard"
	"school-assistant-backend/internal/tasks"
)

type Deps struct {
	DB        *sql.DB
	JWTSecret []byte

	Invoker   Invoker
	Assistant *assistant.Service
	Sessions  assistant.SessionStore
	Tasks     *tasks.Store
	Snapshots *dashboard.Store
	Events    *analytics.Recorder
	Limiter   *Limiter

	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter registers every route. The result is not CORS-wrapped; see NewHandler.
func NewRouter(d Deps) *mux.Router {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	protect := auth.New(d.JWTSecret).Wrap
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		return protect(d.Limiter.Wrap(h))
	}

	r := mux.NewRouter()
	r.Use(instrument(logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// accounts
	r.HandleFunc("/auth/register", auth.RegisterHandler(d.DB, d.JWTSecret, logger)).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", auth.LoginHandler(d.DB, d.JWTSecret, logger)).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", protect(auth.LogoutHandler())).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", protect(auth.MeHandler(d.DB))).Methods(http.MethodGet)
	r.HandleFunc("/auth/account", protect(auth.DeleteAccountHandler(d.DB, logger))).Methods(http.MethodDelete)

	// insights
	r.HandleFunc("/capabilities", CapabilitiesHandler()).Methods(http.MethodGet)
	r.HandleFunc("/insights/{capability}", limited(InsightHandler(d.Invoker, d.Events, logger))).Methods(http.MethodPost)

	// assistant
	r.HandleFunc("/assistant/sessions", protect(assistant.CreateSessionHandler(d.Sessions, logger))).Methods(http.MethodPost)
	r.HandleFunc("/assistant/sessions/{id}", protect(assistant.GetSessionHandler(d.Sessions, logger))).Methods(http.MethodGet)
	r.HandleFunc("/assistant/sessions/{id}/messages", limited(assistant.AskHandler(d.Assistant, d.Sessions, d.Events, logger))).Methods(http.MethodPost)
	r.HandleFunc("/assistant/sessions/{id}/confirm", protect(assistant.ConfirmHandler(d.Assistant, d.Sessions, d.Events, logger))).Methods(http.MethodPost)

	// tasks
	r.HandleFunc("/tasks", protect(tasks.GetTasksHandler(d.Tasks, logger))).Methods(http.MethodGet)
	r.HandleFunc("/tasks", protect(tasks.CreateTaskHandler(d.Tasks, d.Events, logger))).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", protect(tasks.CompleteTaskHandler(d.Tasks, d.Events, logger))).Methods(http.MethodDelete)

	// dashboard
	r.HandleFunc("/dashboard/snapshot", protect(dashboard.GetSnapshotHandler(d.Snapshots, logger))).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/snapshot", protect(dashboard.PutSnapshotHandler(d.Snapshots, logger))).Methods(http.MethodPut)

	r.HandleFunc("/analytics/app-opened", protect(analytics.AppOpenedHandler(d.Events))).Methods(http.MethodPost)

	return r
}

// NewHandler is the router behind CORS.
func NewHandler(d Deps) http.Handler {
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Source-Event-Key"},
		AllowCredentials: true,
	})
	return c.Handler(NewRouter(d))
}

// NewServer serves h over HTTP/1.1 and cleartext HTTP/2.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(h, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// model calls can take most of a minute
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
