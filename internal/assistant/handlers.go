package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"school-assistant-backend/internal/ai"
	"school-assistant-backend/internal/analytics"
	"school-assistant-backend/internal/apierr"
	"school-assistant-backend/internal/auth"
	"school-assistant-backend/internal/session"
)

type SessionStore interface {
	Create(ctx context.Context, userID int) (*session.Session, error)
	Get(ctx context.Context, id string, userID int) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
}

func CreateSessionHandler(sessions SessionStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sess, err := sessions.Create(r.Context(), uid)
		if err != nil {
			apierr.Write(w, logger, err)
			return
		}
		apierr.WriteJSON(w, http.StatusCreated, sess)
	}
}

func GetSessionHandler(sessions SessionStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sess, err := sessions.Get(r.Context(), mux.Vars(r)["id"], uid)
		if err != nil {
			apierr.Write(w, logger, err)
			return
		}
		apierr.WriteJSON(w, http.StatusOK, sess)
	}
}

func AskHandler(svc *Service, sessions SessionStore, events *analytics.Recorder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Query   string   `json:"query"`
			Context *Context `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sess, err := sessions.Get(r.Context(), mux.Vars(r)["id"], uid)
		if err != nil {
			apierr.Write(w, logger, err)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		key := analytics.SourceEventKeyFromRequest(r)

		reply, askErr := svc.Ask(r.Context(), sess, body.Query, body.Context)

		var ierr *ai.InvocationError
		if askErr != nil && !errors.As(askErr, &ierr) {
			// nothing changed in the session
			apierr.Write(w, logger, askErr)
			return
		}

		if err := sessions.Save(r.Context(), sess); err != nil {
			apierr.Write(w, logger, err)
			return
		}

		if askErr != nil {
			events.Log(r.Context(), env, analytics.EventInvocationFailed, map[string]any{
				"session_id": sess.ID,
				"capability": string(ierr.Capability),
				"stage":      string(ierr.Stage),
			}, key)
			apierr.Write(w, logger, askErr)
			return
		}

		kind := "none"
		if reply.Rendered != nil {
			kind = reply.Rendered.Kind
		}
		events.Log(r.Context(), env, analytics.EventAssistantQuery, map[string]any{
			"session_id": sess.ID,
			"query_len":  len(body.Query),
		}, key)
		events.Log(r.Context(), env, analytics.EventVariantRouted, map[string]any{
			"session_id": sess.ID,
			"kind":       kind,
		}, key)
		if p, ok := reply.Variant.(ConfirmAddTask); ok {
			events.Log(r.Context(), env, analytics.EventTaskProposed, map[string]any{
				"session_id":  sess.ID,
				"proposal_id": p.ProposalID,
				"task_id":     p.Proposed.ID,
			}, key)
		}

		apierr.WriteJSON(w, http.StatusOK, map[string]any{
			"reply":   reply.Rendered,
			"pending": sess.Pending,
		})
	}
}

func ConfirmHandler(svc *Service, sessions SessionStore, events *analytics.Recorder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			ProposalID string `json:"proposalId"`
		}
		// an empty body confirms whatever is pending
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sess, err := sessions.Get(r.Context(), mux.Vars(r)["id"], uid)
		if err != nil {
			apierr.Write(w, logger, err)
			return
		}

		res, err := svc.Confirm(r.Context(), sess, body.ProposalID)
		if err != nil {
			apierr.Write(w, logger, err)
			return
		}

		if res.Confirmed {
			if err := sessions.Save(r.Context(), sess); err != nil {
				apierr.Write(w, logger, err)
				return
			}

			env := analytics.FromRequest(r)
			env.UserID = uid
			events.Log(r.Context(), env, analytics.EventTaskConfirmed, map[string]any{
				"session_id": sess.ID,
				"task_id":    res.Task.ID,
				"inserted":   res.Inserted,
			}, analytics.SourceEventKeyFromRequest(r))
		}

		apierr.WriteJSON(w, http.StatusOK, res)
	}
}
