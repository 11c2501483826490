package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"school-assistant-backend/internal/ai"
	"school-assistant-backend/internal/dashboard"
	"school-assistant-backend/internal/schema"
	"school-assistant-backend/internal/session"
	"school-assistant-backend/internal/tasks"
)

func newTestService(t *testing.T, inv *fakeInvoker, store *memTasks, snaps SnapshotSource) *Service {
	t.Helper()
	return NewService(inv, store, snaps, zaptest.NewLogger(t))
}

func TestAskText(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("text", `{"text":"hello"}`)}
	store := newMemTasks()
	svc := newTestService(t, inv, store, nil)
	sess := &session.Session{ID: "s", UserID: 1}

	reply, err := svc.Ask(context.Background(), sess, "hi there", nil)
	require.NoError(t, err)
	require.NotNil(t, reply.Rendered)
	assert.Equal(t, session.KindText, reply.Rendered.Kind)
	assert.Equal(t, "hello", reply.Rendered.Text)

	require.Len(t, sess.History, 2)
	assert.Equal(t, session.RoleUser, sess.History[0].Role)
	assert.Equal(t, "hi there", sess.History[0].Text)
	assert.Equal(t, "hello", sess.History[1].Text)
	assert.Nil(t, sess.Pending)
	assert.Equal(t, 0, store.appends)
}

func TestAskInvalidQueryLeavesSessionUntouched(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("text", `{"text":"hello"}`)}
	svc := newTestService(t, inv, newMemTasks(), nil)
	sess := &session.Session{ID: "s", UserID: 1}

	_, err := svc.Ask(context.Background(), sess, "   ", nil)

	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "query", verr.Fields[0].Field)
	assert.Equal(t, 0, inv.calls)
	assert.Empty(t, sess.History)
}

func TestAskFailureAddsOnlyNotice(t *testing.T) {
	inv := &fakeInvoker{err: &ai.InvocationError{Capability: schema.CapChat, Stage: ai.StageTransport, Err: errors.New("timeout")}}
	svc := newTestService(t, inv, newMemTasks(), nil)

	pending := &session.PendingConfirmation{ProposalID: "p0", Task: tasks.Task{ID: "task-0", Title: "Earlier"}}
	sess := &session.Session{ID: "s", UserID: 1, Pending: pending}

	_, err := svc.Ask(context.Background(), sess, "add a task", nil)
	require.Error(t, err)

	require.Len(t, sess.History, 1)
	assert.Equal(t, session.KindError, sess.History[0].Kind)
	assert.Equal(t, ErrorNotice, sess.History[0].Text)
	assert.Same(t, pending, sess.Pending)
}

func TestAskBadPropsAddsNotice(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("todo-list", `{"text":"no tasks here"}`)}
	svc := newTestService(t, inv, newMemTasks(), nil)
	sess := &session.Session{ID: "s", UserID: 1}

	_, err := svc.Ask(context.Background(), sess, "show my tasks", nil)

	var ierr *ai.InvocationError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, ai.StageValidate, ierr.Stage)
	require.Len(t, sess.History, 1)
	assert.Equal(t, session.KindError, sess.History[0].Kind)
}

func TestAskUnknownComponentRendersNothing(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("unknown-widget", `{}`)}
	svc := newTestService(t, inv, newMemTasks(), nil)
	sess := &session.Session{ID: "s", UserID: 1}

	reply, err := svc.Ask(context.Background(), sess, "draw a chart", nil)
	require.NoError(t, err)
	assert.Nil(t, reply.Rendered)
	assert.Equal(t, Unknown{Tag: "unknown-widget"}, reply.Variant)
	require.Len(t, sess.History, 1)
	assert.Equal(t, session.RoleUser, sess.History[0].Role)
}

func TestAskEmptyTaskList(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("todo-list", `{"tasks":[]}`)}
	svc := newTestService(t, inv, newMemTasks(), nil)
	sess := &session.Session{ID: "s", UserID: 1}

	reply, err := svc.Ask(context.Background(), sess, "what's on my list", nil)
	require.NoError(t, err)
	assert.Equal(t, session.KindEmptyState, reply.Rendered.Kind)
	assert.Equal(t, session.KindEmptyState, sess.History[1].Kind)
}

func TestAskProposeThenConfirm(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("confirm-add-task", `{"task":{"title":"Call Mr. Singh","description":"About fees."}}`)}
	store := newMemTasks()
	svc := newTestService(t, inv, store, nil)
	sess := &session.Session{ID: "s", UserID: 1}

	reply, err := svc.Ask(context.Background(), sess, "remind me to call Mr. Singh", nil)
	require.NoError(t, err)
	require.NotNil(t, reply.Rendered.Proposal)
	require.NotNil(t, sess.Pending)
	assert.Equal(t, reply.Rendered.Proposal.ID, sess.Pending.ProposalID)
	assert.Equal(t, 0, store.appends)

	last := sess.History[len(sess.History)-1]
	assert.Equal(t, session.KindConfirmAddTask, last.Kind)
	assert.Equal(t, sess.Pending.ProposalID, last.ProposalID)

	res, err := svc.Confirm(context.Background(), sess, reply.Rendered.Proposal.ID)
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Equal(t, 1, store.count())
	assert.Equal(t, "About fees.", res.Task.Description)

	res, err = svc.Confirm(context.Background(), sess, reply.Rendered.Proposal.ID)
	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	assert.Equal(t, 1, store.count())
}

func TestAskSupersedesPending(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("confirm-add-task", `{"task":{"title":"First"}}`)}
	store := newMemTasks()
	svc := newTestService(t, inv, store, nil)
	sess := &session.Session{ID: "s", UserID: 1}

	first, err := svc.Ask(context.Background(), sess, "add first", nil)
	require.NoError(t, err)

	inv.out = chatOut("text", `{"text":"Sure."}`)
	_, err = svc.Ask(context.Background(), sess, "never mind", nil)
	require.NoError(t, err)
	assert.Nil(t, sess.Pending)

	res, err := svc.Confirm(context.Background(), sess, first.Rendered.Proposal.ID)
	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	assert.Equal(t, 0, store.appends)
}

func TestAskFillsContext(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("text", `{"text":"ok"}`)}
	store := newMemTasks()
	_, err := store.Append(context.Background(), 1, tasks.Task{ID: "task1", Title: "Approve fees", Link: "#"})
	require.NoError(t, err)

	snaps := fakeSnapshots{snap: &dashboard.Snapshot{
		GrowthData: []schema.GrowthMetric{{Month: "Jan", Admissions: 10}},
	}}
	svc := newTestService(t, inv, store, snaps)
	sess := &session.Session{ID: "s", UserID: 1}

	_, err = svc.Ask(context.Background(), sess, "how are admissions?", nil)
	require.NoError(t, err)

	assert.Equal(t, snaps.snap.GrowthData, inv.last.GrowthData)
	require.Len(t, inv.last.TodoTasks, 1)
	assert.Equal(t, "Approve fees", inv.last.TodoTasks[0].Title)
}

func TestAskKeepsClientContext(t *testing.T) {
	inv := &fakeInvoker{out: chatOut("text", `{"text":"ok"}`)}
	store := newMemTasks()
	svc := newTestService(t, inv, store, fakeSnapshots{})
	sess := &session.Session{ID: "s", UserID: 1}

	c := &Context{TodoTasks: []schema.ChatTask{{ID: "mine", Title: "From the client"}}}
	_, err := svc.Ask(context.Background(), sess, "what's next?", c)
	require.NoError(t, err)

	require.Len(t, inv.last.TodoTasks, 1)
	assert.Equal(t, "mine", inv.last.TodoTasks[0].ID)
}
