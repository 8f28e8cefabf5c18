package usecase

import (
	"context"
	"errors"

	"casebot/internal/domain"
	"casebot/internal/store"
)

// RecordSink is the persistence boundary for completed records. EnsureReady
// reconciles the remote schema (tab + header row) and is invoked before
// every append; AppendRecord durably appends one record as a new row.
type RecordSink interface {
	EnsureReady(ctx context.Context) error
	AppendRecord(ctx context.Context, rec domain.CompletedRecord) error
}

// SpillRecorder receives completed records the sink permanently rejected,
// so they can be recovered manually instead of vanishing.
type SpillRecorder interface {
	Append(rec domain.CompletedRecord) error
}

// SubmitKind discriminates the outcomes of Submit.
type SubmitKind int

const (
	// SubmitIgnored: no session exists for the identity; out-of-flow text.
	SubmitIgnored SubmitKind = iota
	// SubmitPrompt: answer accepted, Prompt holds the next question.
	SubmitPrompt
	// SubmitRejected: answer rejected, Prompt holds the same question again.
	SubmitRejected
	// SubmitCompleted: the flow finished and the record was handed to the
	// sink. The accompanying error reports the sink outcome.
	SubmitCompleted
)

type SubmitResult struct {
	Kind   SubmitKind
	Prompt string
	Record domain.CompletedRecord
}

// InterviewService drives one identity at a time through the question
// catalog and hands finished answer sets to the sink.
type InterviewService struct {
	store   *store.Store
	catalog domain.Catalog
	sink    RecordSink
	spill   SpillRecorder
}

// NewInterviewService wires the engine. spill may be nil, in which case
// permanently failed records are simply dropped (the reference behavior).
func NewInterviewService(st *store.Store, catalog domain.Catalog, sink RecordSink, spill SpillRecorder) (*InterviewService, error) {
	if st == nil {
		return nil, errors.New("usecase: store must not be nil")
	}
	if catalog.Len() == 0 {
		return nil, errors.New("usecase: catalog must not be empty")
	}
	if sink == nil {
		return nil, errors.New("usecase: sink must not be nil")
	}
	return &InterviewService{store: st, catalog: catalog, sink: sink, spill: spill}, nil
}

// Begin starts a fresh session for identity, discarding any prior one, and
// returns the first question's prompt.
func (s *InterviewService) Begin(identity int64, displayName string) string {
	s.store.Create(identity, displayName)
	return s.catalog.Question(0).Prompt
}

// Cancel removes the identity's session. Returns whether one existed.
func (s *InterviewService) Cancel(identity int64) bool {
	_, existed := s.store.Get(identity)
	s.store.Delete(identity)
	return existed
}

// Submit feeds one inbound text into the identity's flow. On completion the
// session is deleted before the sink is invoked; a sink failure therefore
// never restores the session, the operator must restart the flow.
func (s *InterviewService) Submit(ctx context.Context, identity int64, raw string) (SubmitResult, error) {
	sess, ok := s.store.Get(identity)
	if !ok {
		return SubmitResult{Kind: SubmitIgnored}, nil
	}
	if sess.Cursor < 0 || sess.Cursor >= s.catalog.Len() {
		s.store.Delete(identity)
		return SubmitResult{}, newError(ErrorInternal, "cursor_out_of_range", nil)
	}

	question := s.catalog.Question(sess.Cursor)
	value, accepted := validateAnswer(raw, question.Type)
	if !accepted {
		return SubmitResult{Kind: SubmitRejected, Prompt: question.Prompt}, nil
	}

	sess.Answers[question.Key] = value
	sess.Cursor++

	if sess.Cursor < s.catalog.Len() {
		return SubmitResult{Kind: SubmitPrompt, Prompt: s.catalog.Question(sess.Cursor).Prompt}, nil
	}

	record := domain.CompletedRecord{
		Identity:    sess.Identity,
		DisplayName: sess.DisplayName,
		Answers:     sess.Answers,
	}
	s.store.Delete(identity)

	result := SubmitResult{Kind: SubmitCompleted, Record: record}
	if err := s.persist(ctx, record); err != nil {
		return result, err
	}
	return result, nil
}

func (s *InterviewService) persist(ctx context.Context, record domain.CompletedRecord) error {
	if err := s.sink.EnsureReady(ctx); err != nil {
		s.spillRecord(record)
		return newError(ErrorSchema, "schema_ensure_failed", err)
	}
	if err := s.sink.AppendRecord(ctx, record); err != nil {
		s.spillRecord(record)
		return newError(ErrorWrite, "row_append_failed", err)
	}
	return nil
}

func (s *InterviewService) spillRecord(record domain.CompletedRecord) {
	if s.spill == nil {
		return
	}
	// A secondary spill failure would only mask the sink failure already
	// being returned.
	_ = s.spill.Append(record)
}
