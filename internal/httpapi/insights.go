package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"school-assistant-backend/internal/ai"
	"school-assistant-backend/internal/analytics"
	"school-assistant-backend/internal/apierr"
	"school-assistant-backend/internal/auth"
	"school-assistant-backend/internal/schema"
)

// Invoker runs one capability. *ai.Invoker satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, c schema.Capability, input, out any) error
}

func CapabilitiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0)
		for _, c := range schema.Capabilities() {
			names = append(names, string(c))
		}
		apierr.WriteJSON(w, http.StatusOK, map[string]any{"capabilities": names})
	}
}

// InsightHandler runs any capability except chat, which only goes through a session.
func InsightHandler(inv Invoker, events *analytics.Recorder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, ok := schema.Lookup(mux.Vars(r)["capability"])
		if !ok || c == schema.CapChat {
			http.Error(w, "unknown capability", http.StatusNotFound)
			return
		}

		in := schema.NewInput(c)
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		key := analytics.SourceEventKeyFromRequest(r)

		out := schema.NewOutput(c)
		if err := inv.Invoke(r.Context(), c, in, out); err != nil {
			var ierr *ai.InvocationError
			if errors.As(err, &ierr) {
				events.Log(r.Context(), env, analytics.EventInvocationFailed, map[string]any{
					"capability": string(c),
					"stage":      string(ierr.Stage),
				}, key)
			}
			apierr.Write(w, logger, err)
			return
		}

		events.Log(r.Context(), env, analytics.EventInsightGenerated, map[string]any{
			"capability": string(c),
		}, key)
		apierr.WriteJSON(w, http.StatusOK, out)
	}
}
