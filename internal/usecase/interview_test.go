package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"casebot/internal/domain"
	"casebot/internal/store"
)

type mockSink struct {
	ensureCalls int
	appendCalls int
	ensureErr   error
	appendErr   error
	lastRecord  domain.CompletedRecord
}

func (m *mockSink) EnsureReady(_ context.Context) error {
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockSink) AppendRecord(_ context.Context, rec domain.CompletedRecord) error {
	m.appendCalls++
	m.lastRecord = rec
	return m.appendErr
}

type mockSpill struct {
	records []domain.CompletedRecord
	err     error
}

func (m *mockSpill) Append(rec domain.CompletedRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

func testCatalog(t *testing.T) domain.Catalog {
	t.Helper()
	c, err := domain.NewCatalog([]domain.QuestionDefinition{
		{Key: "name", Prompt: "Name:", Type: domain.AnswerFreeText},
		{Key: "ok", Prompt: "Confirm?:", Type: domain.AnswerYesNo},
	})
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T, sink RecordSink, spill SpillRecorder) (*InterviewService, *store.Store) {
	t.Helper()
	st := store.New()
	svc, err := NewInterviewService(st, testCatalog(t), sink, spill)
	require.NoError(t, err)
	return svc, st
}

func TestNewInterviewServiceValidation(t *testing.T) {
	catalog := testCatalog(t)

	_, err := NewInterviewService(nil, catalog, &mockSink{}, nil)
	require.Error(t, err)

	_, err = NewInterviewService(store.New(), domain.Catalog{}, &mockSink{}, nil)
	require.Error(t, err)

	_, err = NewInterviewService(store.New(), catalog, nil, nil)
	require.Error(t, err)
}

func TestSubmitWithoutSessionIsIgnored(t *testing.T) {
	svc, _ := newTestService(t, &mockSink{}, nil)

	res, err := svc.Submit(context.Background(), 7, "hello")
	require.NoError(t, err)
	require.Equal(t, SubmitIgnored, res.Kind)
}

func TestBeginReturnsFirstPromptAndResets(t *testing.T) {
	svc, st := newTestService(t, &mockSink{}, nil)

	prompt := svc.Begin(7, "alice")
	require.Equal(t, "Name:", prompt)

	// Progress one answer, then begin again: cursor back to 0 and only
	// the seed entries survive.
	res, err := svc.Submit(context.Background(), 7, "Alice")
	require.NoError(t, err)
	require.Equal(t, SubmitPrompt, res.Kind)

	prompt = svc.Begin(7, "alice")
	require.Equal(t, "Name:", prompt)

	sess, ok := st.Get(7)
	require.True(t, ok)
	require.Equal(t, 0, sess.Cursor)
	require.Equal(t, map[string]string{
		domain.SeedKeyIdentity:    "7",
		domain.SeedKeyDisplayName: "alice",
	}, sess.Answers)
}

func TestFullFlowCompletesAndPersists(t *testing.T) {
	sink := &mockSink{}
	svc, st := newTestService(t, sink, nil)

	require.Equal(t, "Name:", svc.Begin(7, "alice"))

	res, err := svc.Submit(context.Background(), 7, "Alice")
	require.NoError(t, err)
	require.Equal(t, SubmitPrompt, res.Kind)
	require.Equal(t, "Confirm?:", res.Prompt)

	res, err = svc.Submit(context.Background(), 7, "yes")
	require.NoError(t, err)
	require.Equal(t, SubmitCompleted, res.Kind)

	require.Equal(t, 1, sink.ensureCalls)
	require.Equal(t, 1, sink.appendCalls)
	require.Equal(t, int64(7), sink.lastRecord.Identity)
	require.Equal(t, "alice", sink.lastRecord.DisplayName)
	require.Equal(t, "Alice", sink.lastRecord.Answers["name"])
	require.Equal(t, AnswerYes, sink.lastRecord.Answers["ok"])

	// Session is gone: further text is ignored.
	_, ok := st.Get(7)
	require.False(t, ok)
	res, err = svc.Submit(context.Background(), 7, "more")
	require.NoError(t, err)
	require.Equal(t, SubmitIgnored, res.Kind)
}

func TestRejectedAnswerKeepsCursor(t *testing.T) {
	sink := &mockSink{}
	svc, st := newTestService(t, sink, nil)

	svc.Begin(7, "alice")
	_, err := svc.Submit(context.Background(), 7, "Alice")
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), 7, "maybe")
	require.NoError(t, err)
	require.Equal(t, SubmitRejected, res.Kind)
	require.Equal(t, "Confirm?:", res.Prompt)

	sess, ok := st.Get(7)
	require.True(t, ok)
	require.Equal(t, 1, sess.Cursor)
	require.NotContains(t, sess.Answers, "ok")
	require.Zero(t, sink.appendCalls)

	// The same question accepts a valid retry.
	res, err = svc.Submit(context.Background(), 7, "no")
	require.NoError(t, err)
	require.Equal(t, SubmitCompleted, res.Kind)
	require.Equal(t, AnswerNo, sink.lastRecord.Answers["ok"])
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t, &mockSink{}, nil)

	require.False(t, svc.Cancel(7))

	svc.Begin(7, "alice")
	require.True(t, svc.Cancel(7))
	require.False(t, svc.Cancel(7))

	res, err := svc.Submit(context.Background(), 7, "Alice")
	require.NoError(t, err)
	require.Equal(t, SubmitIgnored, res.Kind)
}

func TestSchemaFailureDiscardsSessionAndSpills(t *testing.T) {
	sink := &mockSink{ensureErr: errors.New("boom")}
	sp := &mockSpill{}
	svc, st := newTestService(t, sink, sp)

	svc.Begin(7, "alice")
	_, err := svc.Submit(context.Background(), 7, "Alice")
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), 7, "yes")
	require.Equal(t, SubmitCompleted, res.Kind)

	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorSchema, ucErr.Code)
	require.Zero(t, sink.appendCalls)

	require.Len(t, sp.records, 1)
	require.Equal(t, "Alice", sp.records[0].Answers["name"])

	// The session is not preserved; the flow must be restarted.
	_, ok := st.Get(7)
	require.False(t, ok)
	require.Equal(t, "Name:", svc.Begin(7, "alice"))
}

func TestWriteFailureDiscardsSessionAndSpills(t *testing.T) {
	sink := &mockSink{appendErr: errors.New("append failed")}
	sp := &mockSpill{}
	svc, st := newTestService(t, sink, sp)

	svc.Begin(7, "alice")
	_, err := svc.Submit(context.Background(), 7, "Alice")
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), 7, "yes")
	require.Equal(t, SubmitCompleted, res.Kind)

	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorWrite, ucErr.Code)
	require.Len(t, sp.records, 1)

	_, ok := st.Get(7)
	require.False(t, ok)
}

func TestWriteFailureWithoutSpillStillReturnsError(t *testing.T) {
	sink := &mockSink{appendErr: errors.New("append failed")}
	svc, _ := newTestService(t, sink, nil)

	svc.Begin(7, "alice")
	_, err := svc.Submit(context.Background(), 7, "Alice")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), 7, "yes")
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorWrite, ucErr.Code)
}
