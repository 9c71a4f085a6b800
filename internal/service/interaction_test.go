package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/meetlog/meetlog/internal/extract"
	"github.com/meetlog/meetlog/internal/model"
	"github.com/meetlog/meetlog/internal/repository"
)

// fakeTx implements Tx against an in-memory user set.
type fakeTx struct {
	users        map[string]int64
	resolveCalls []string
	inserted     []*model.Interaction
	insertErr    error
	commitErr    error
	committed    bool
	rolledBack   bool
}

func (t *fakeTx) GetUserIDByExternalID(ctx context.Context, externalID string) (int64, error) {
	t.resolveCalls = append(t.resolveCalls, externalID)
	id, ok := t.users[externalID]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	return id, nil
}

func (t *fakeTx) CreateInteraction(ctx context.Context, interaction *model.Interaction) error {
	if t.insertErr != nil {
		return t.insertErr
	}
	interaction.ID = int64(len(t.inserted) + 1)
	t.inserted = append(t.inserted, interaction)
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
		// Committed nothing, so forget any staged inserts.
		t.inserted = nil
	}
	return nil
}

type fakeStore struct {
	tx         *fakeTx
	beginCalls int
	beginErr   error
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	s.beginCalls++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

type fakeExtractor struct {
	calls int
	card  *model.InteractionCard
	err   error
}

func (e *fakeExtractor) Extract(ctx context.Context, text string) (*model.InteractionCard, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.card, nil
}

func strptr(s string) *string { return &s }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(tx *fakeTx, extractor *fakeExtractor) (*InteractionService, *fakeStore) {
	store := &fakeStore{tx: tx}
	return NewInteractionService(store, extractor, testLogger(), nil), store
}

func validInput() RecordInteractionInput {
	return RecordInteractionInput{
		Input:        "I met Alice at the library on Tuesday to discuss a book club.",
		ActingUserID: "u1",
		TargetUserID: "u2",
		Subject:      "u1",
	}
}

func twoUsers() map[string]int64 {
	return map[string]int64{"u1": 1, "u2": 2}
}

func TestRecordInteraction_Success(t *testing.T) {
	tx := &fakeTx{users: twoUsers()}
	extractor := &fakeExtractor{card: &model.InteractionCard{
		Who:   "Alice",
		Where: strptr("library"),
		When:  strptr("Tuesday"),
		Why:   strptr("book club"),
	}}
	svc, _ := newPipeline(tx, extractor)

	msg, err := svc.RecordInteraction(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if msg != "Interaction recorded successfully" {
		t.Errorf("unexpected message: %q", msg)
	}

	if !tx.committed {
		t.Error("expected transaction to be committed")
	}
	if len(tx.inserted) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(tx.inserted))
	}

	got := tx.inserted[0]
	if got.Who != "Alice" {
		t.Errorf("who = %q, want Alice", got.Who)
	}
	if got.Where == nil || *got.Where != "library" {
		t.Errorf("where = %v, want library", got.Where)
	}
	if got.When == nil || *got.When != "Tuesday" {
		t.Errorf("when = %v, want Tuesday", got.When)
	}
	if got.UserID != 1 || got.TargetUserID != 2 {
		t.Errorf("foreign keys = (%d, %d), want (1, 2)", got.UserID, got.TargetUserID)
	}
}

func TestRecordInteraction_Unauthorized(t *testing.T) {
	tx := &fakeTx{users: twoUsers()}
	extractor := &fakeExtractor{}
	svc, store := newPipeline(tx, extractor)

	input := validInput()
	input.Subject = "u3"

	_, err := svc.RecordInteraction(context.Background(), input)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Authorization fails before any database access.
	if store.beginCalls != 0 {
		t.Errorf("expected no transaction, got %d begins", store.beginCalls)
	}
	if len(tx.resolveCalls) != 0 {
		t.Errorf("expected no resolver calls, got %v", tx.resolveCalls)
	}
	if extractor.calls != 0 {
		t.Errorf("expected no extraction, got %d calls", extractor.calls)
	}
}

func TestRecordInteraction_ActingUserNotFound(t *testing.T) {
	tx := &fakeTx{users: map[string]int64{"u2": 2}}
	extractor := &fakeExtractor{}
	svc, _ := newPipeline(tx, extractor)

	_, err := svc.RecordInteraction(context.Background(), validInput())

	var notFound *UserNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected UserNotFoundError, got %v", err)
	}
	if notFound.ExternalID != "u1" {
		t.Errorf("failing id = %q, want u1", notFound.ExternalID)
	}

	// The first failure short-circuits; the target is never resolved.
	if len(tx.resolveCalls) != 1 || tx.resolveCalls[0] != "u1" {
		t.Errorf("resolver calls = %v, want [u1]", tx.resolveCalls)
	}
	if extractor.calls != 0 {
		t.Errorf("expected no extraction, got %d calls", extractor.calls)
	}
	if !tx.rolledBack {
		t.Error("expected transaction rollback")
	}
}

func TestRecordInteraction_TargetUserNotFound(t *testing.T) {
	tx := &fakeTx{users: map[string]int64{"u1": 1}}
	extractor := &fakeExtractor{}
	svc, _ := newPipeline(tx, extractor)

	input := validInput()
	input.TargetUserID = "ghost"

	_, err := svc.RecordInteraction(context.Background(), input)

	var notFound *UserNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected UserNotFoundError, got %v", err)
	}
	if notFound.ExternalID != "ghost" {
		t.Errorf("failing id = %q, want ghost", notFound.ExternalID)
	}

	// The acting lookup must have happened before the target lookup.
	want := []string{"u1", "ghost"}
	if len(tx.resolveCalls) != 2 || tx.resolveCalls[0] != want[0] || tx.resolveCalls[1] != want[1] {
		t.Errorf("resolver calls = %v, want %v", tx.resolveCalls, want)
	}
	if len(tx.inserted) != 0 {
		t.Errorf("expected no rows, got %d", len(tx.inserted))
	}
}

func TestRecordInteraction_EmptyInput(t *testing.T) {
	tx := &fakeTx{users: twoUsers()}
	extractor := &fakeExtractor{err: extract.ErrNoInput}
	svc, _ := newPipeline(tx, extractor)

	input := validInput()
	input.Input = "   "

	_, err := svc.RecordInteraction(context.Background(), input)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if len(tx.inserted) != 0 {
		t.Errorf("expected no rows, got %d", len(tx.inserted))
	}
	if tx.committed {
		t.Error("expected no commit")
	}
}

func TestRecordInteraction_ModelFailure(t *testing.T) {
	tx := &fakeTx{users: twoUsers()}
	extractor := &fakeExtractor{err: errors.New("model timeout")}
	svc, _ := newPipeline(tx, extractor)

	_, err := svc.RecordInteraction(context.Background(), validInput())
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if !tx.rolledBack {
		t.Error("expected transaction rollback")
	}
}

func TestRecordInteraction_PersistFailure(t *testing.T) {
	tx := &fakeTx{
		users:     twoUsers(),
		insertErr: repository.ErrUserReferenceMissing,
	}
	extractor := &fakeExtractor{card: &model.InteractionCard{Who: "Alice"}}
	svc, _ := newPipeline(tx, extractor)

	_, err := svc.RecordInteraction(context.Background(), validInput())
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}

	// Nothing partial survives a persistence failure.
	if tx.committed {
		t.Error("expected no commit")
	}
	if !tx.rolledBack {
		t.Error("expected transaction rollback")
	}
	if len(tx.inserted) != 0 {
		t.Errorf("expected no rows, got %d", len(tx.inserted))
	}
}

func TestRecordInteraction_CommitFailure(t *testing.T) {
	tx := &fakeTx{
		users:     twoUsers(),
		commitErr: errors.New("connection reset"),
	}
	extractor := &fakeExtractor{card: &model.InteractionCard{Who: "Alice"}}
	svc, _ := newPipeline(tx, extractor)

	_, err := svc.RecordInteraction(context.Background(), validInput())
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
}

func TestRecordInteraction_ResolutionIdempotent(t *testing.T) {
	extractor := &fakeExtractor{card: &model.InteractionCard{Who: "Alice"}}

	var firstIDs, secondIDs [2]int64
	for i, ids := range []*[2]int64{&firstIDs, &secondIDs} {
		tx := &fakeTx{users: twoUsers()}
		svc, _ := newPipeline(tx, extractor)

		if _, err := svc.RecordInteraction(context.Background(), validInput()); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		ids[0] = tx.inserted[0].UserID
		ids[1] = tx.inserted[0].TargetUserID
	}

	if firstIDs != secondIDs {
		t.Errorf("resolution not idempotent: %v vs %v", firstIDs, secondIDs)
	}
}
