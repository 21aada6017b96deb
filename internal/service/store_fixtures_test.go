package service

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"

	"github.com/alexanderramin/ideaforge/internal/db"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
	"github.com/alexanderramin/ideaforge/internal/repository"
	"github.com/alexanderramin/ideaforge/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testUserName = "Ada"

// syncBuffer is a log sink safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type storeEnv struct {
	db    *sql.DB
	repo  *repository.SQLiteSessionRepo
	store *SessionStore
	logs  *syncBuffer
}

// newStoreEnv writes seed fixtures straight to the repository before the store
// loads them.
func newStoreEnv(t *testing.T, uow db.UnitOfWork, database *sql.DB, seed ...*domain.SessionState) *storeEnv {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewSQLiteSessionRepo(database)
	for _, s := range seed {
		require.NoError(t, repo.Upsert(ctx, s))
	}
	if uow == nil {
		uow = testutil.NewTestUoW(database)
	}
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	st, err := NewSessionStore(ctx, repo, uow, logger, WithUserName(testUserName))
	require.NoError(t, err)
	return &storeEnv{db: database, repo: repo, store: st, logs: logs}
}

func setupStore(t *testing.T, seed ...*domain.SessionState) *storeEnv {
	t.Helper()
	return newStoreEnv(t, nil, testutil.NewTestDB(t), seed...)
}

// responderFunc adapts a function to intelligence.Responder.
type responderFunc func(ctx context.Context, req intelligence.ResponderRequest) (*intelligence.ResponderReply, error)

func (f responderFunc) Respond(ctx context.Context, req intelligence.ResponderRequest) (*intelligence.ResponderReply, error) {
	return f(ctx, req)
}

func replyWith(text string) responderFunc {
	return func(context.Context, intelligence.ResponderRequest) (*intelligence.ResponderReply, error) {
		return &intelligence.ResponderReply{ReplyText: text}, nil
	}
}

// gatedResponder blocks every call until release is closed and reports
// each call on started.
type gatedResponder struct {
	started chan intelligence.ResponderRequest
	release chan struct{}
	reply   string
}

func newGatedResponder(reply string) *gatedResponder {
	return &gatedResponder{
		started: make(chan intelligence.ResponderRequest, 8),
		release: make(chan struct{}),
		reply:   reply,
	}
}

func (g *gatedResponder) Respond(ctx context.Context, req intelligence.ResponderRequest) (*intelligence.ResponderReply, error) {
	g.started <- req
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &intelligence.ResponderReply{ReplyText: g.reply}, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.Name
	}
	return out
}

func namesOf(sessions []domain.SessionState) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.Name
	}
	return out
}

const summaryReply = `Here's where we landed.
SUMMARY_START
Title: Crux Exchange
Summary: A marketplace for used climbing gear with safety checks.
Target Audience: Climbers on a budget
Problem: Used gear is hard to trust
Solution: Inspected listings with a safety certificate
Uniqueness: Every rope and harness is inspected by a certified tech
Revenue Model: Commission on each sale
Key Roadmap Step: Partner with three climbing gyms
Founder's Angle: Route setter for ten years
Suggested Tagline: Climb on trusted gear
SUMMARY_END`
