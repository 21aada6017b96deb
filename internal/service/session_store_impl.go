package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/ideaforge/internal/conversation"
	"github.com/alexanderramin/ideaforge/internal/db"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/repository"
)

// SessionStore is the in-memory source of truth for sessions. Every
// mutation is persisted through the unit of work as a side effect; a failed
// write is retried once and then logged, never surfaced to the caller.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.SessionState
	activeID string

	uow      db.UnitOfWork
	logger   *slog.Logger
	userName string
}

// StoreOption customizes a SessionStore.
type StoreOption func(*SessionStore)

// WithUserName sets the name used in greetings and placeholders.
func WithUserName(name string) StoreOption {
	return func(s *SessionStore) { s.userName = name }
}

// NewSessionStore loads every persisted session from repo and restores the
// active pointer. When nothing usable is stored a fresh session is created.
func NewSessionStore(ctx context.Context, repo repository.SessionRepo, uow db.UnitOfWork, logger *slog.Logger, opts ...StoreOption) (*SessionStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	st := &SessionStore{
		sessions: make(map[string]domain.SessionState),
		uow:      uow,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(st)
	}

	stored, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	for _, s := range stored {
		st.sessions[s.ID] = s.Clone()
	}

	activeID, err := repo.GetActiveID(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading active session: %w", err)
	}
	if s, ok := st.sessions[activeID]; ok && !s.Archived {
		st.activeID = activeID
		return st, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if next, ok := st.mostRecentLocked(""); ok {
		st.activeID = next.ID
		st.persistLocked(ctx, "restore", next)
	} else {
		st.insertLocked(ctx, "create", conversation.NewSession(st.userName))
	}
	return st, nil
}

// Create starts a new empty session and makes it active.
func (st *SessionStore) Create(ctx context.Context) domain.SessionState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.insertLocked(ctx, "create", conversation.NewSession(st.userName))
}

// CreateBootstrapped starts a session named after ventureName. The caller
// submits the bootstrap directive as its first turn.
func (st *SessionStore) CreateBootstrapped(ctx context.Context, ventureName string) domain.SessionState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.insertLocked(ctx, "create-bootstrapped", conversation.NewBootstrapSession(ventureName))
}

// CreateContinued starts a session that resumes refinement of profile.
func (st *SessionStore) CreateContinued(ctx context.Context, profile *domain.VentureProfile, founderBackground *string) domain.SessionState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.insertLocked(ctx, "create-continued", conversation.NewContinuedSession(profile, founderBackground))
}

// Load makes id the active session. Loading an archived session restores it
// so the active session is always listed.
func (st *SessionStore) Load(ctx context.Context, id string) (domain.SessionState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return domain.SessionState{}, fmt.Errorf("load %s: %w", id, ErrSessionNotFound)
	}
	if s.Archived {
		s.Archived = false
		st.sessions[id] = s
	}
	st.activeID = id
	st.persistLocked(ctx, "load", s)
	return s.Clone(), nil
}

// Get returns a copy of session id without changing the active session.
func (st *SessionStore) Get(id string) (domain.SessionState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return domain.SessionState{}, fmt.Errorf("get %s: %w", id, ErrSessionNotFound)
	}
	return s.Clone(), nil
}

// Active returns a copy of the active session.
func (st *SessionStore) Active() domain.SessionState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[st.activeID].Clone()
}

// ResolveID expands a unique id prefix to a full session id.
func (st *SessionStore) ResolveID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty session id: %w", ErrSessionNotFound)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[prefix]; ok {
		return prefix, nil
	}
	var match string
	for id := range st.sessions {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%q: %w", prefix, ErrAmbiguousSession)
		}
		match = id
	}
	if match == "" {
		return "", fmt.Errorf("%q: %w", prefix, ErrSessionNotFound)
	}
	return match, nil
}

// Rename sets a user-given name. A blank name hands naming back to the
// automatic rules. Renaming counts as a modification for list ordering.
func (st *SessionStore) Rename(ctx context.Context, id, name string) (domain.SessionState, error) {
	return st.mutate(ctx, "rename", id, func(s *domain.SessionState) {
		s.UpdatedAt = time.Now().UTC()
		name = strings.TrimSpace(name)
		if name == "" {
			s.NameIsAuto = true
			s.Name = conversation.PlaceholderName(s.CreatedAt)
			return
		}
		s.Name = name
		s.NameIsAuto = false
	})
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (st *SessionStore) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	s, err := st.mutate(ctx, "toggle-favorite", id, func(s *domain.SessionState) {
		s.Favorite = !s.Favorite
	})
	return s.Favorite, err
}

// ToggleArchive flips the archived flag and returns the new value.
// Archiving the active session selects a replacement the way Delete does.
func (st *SessionStore) ToggleArchive(ctx context.Context, id string) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return false, fmt.Errorf("toggle-archive %s: %w", id, ErrSessionNotFound)
	}
	s.Archived = !s.Archived
	st.sessions[id] = s
	if s.Archived && st.activeID == id {
		st.replaceActiveLocked(ctx, id)
	}
	st.persistLocked(ctx, "toggle-archive", s)
	return s.Archived, nil
}

// Delete removes session id. Deleting the active session activates the
// most recent remaining non-archived session, or a brand new one.
func (st *SessionStore) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrSessionNotFound)
	}
	delete(st.sessions, id)
	wasActive := st.activeID == id

	err := st.retry(func() error {
		return st.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteSessionRepo(tx).Delete(ctx, id)
		})
	})
	if err != nil {
		st.logger.ErrorContext(ctx, "session persistence failed", "session_id", id, "op", "delete", "error", err)
	}
	if wasActive {
		st.replaceActiveLocked(ctx, id)
	}
	return nil
}

// ListActive returns non-archived sessions, favorites first, then most
// recently modified.
func (st *SessionStore) ListActive() []domain.SessionState {
	return st.list(func(s domain.SessionState) bool { return !s.Archived })
}

// ListArchived returns archived sessions in the same order as ListActive.
func (st *SessionStore) ListArchived() []domain.SessionState {
	return st.list(func(s domain.SessionState) bool { return s.Archived })
}

// Update applies fn to a copy of session id and stores the result. fn
// errors leave the session untouched. Auto-naming runs on every update.
func (st *SessionStore) Update(ctx context.Context, id string, fn func(domain.SessionState) (domain.SessionState, error)) (domain.SessionState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	cur, ok := st.sessions[id]
	if !ok {
		return domain.SessionState{}, fmt.Errorf("update %s: %w", id, ErrSessionNotFound)
	}
	next, err := fn(cur.Clone())
	if err != nil {
		return cur.Clone(), err
	}
	next.ID = cur.ID
	applyAutoName(&next, st.userName)
	st.sessions[id] = next
	st.persistLocked(ctx, "update", next)
	return next.Clone(), nil
}

func (st *SessionStore) mutate(ctx context.Context, op, id string, fn func(*domain.SessionState)) (domain.SessionState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return domain.SessionState{}, fmt.Errorf("%s %s: %w", op, id, ErrSessionNotFound)
	}
	s = s.Clone()
	fn(&s)
	applyAutoName(&s, st.userName)
	st.sessions[id] = s
	st.persistLocked(ctx, op, s)
	return s.Clone(), nil
}

func (st *SessionStore) list(keep func(domain.SessionState) bool) []domain.SessionState {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]domain.SessionState, 0, len(st.sessions))
	for _, s := range st.sessions {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Favorite != b.Favorite {
			return a.Favorite
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

func (st *SessionStore) insertLocked(ctx context.Context, op string, s domain.SessionState) domain.SessionState {
	st.sessions[s.ID] = s
	st.activeID = s.ID
	st.persistLocked(ctx, op, s)
	return s.Clone()
}

// mostRecentLocked returns the most recently modified non-archived session
// other than skip.
func (st *SessionStore) mostRecentLocked(skip string) (domain.SessionState, bool) {
	var best domain.SessionState
	found := false
	for id, s := range st.sessions {
		if id == skip || s.Archived {
			continue
		}
		if !found || s.UpdatedAt.After(best.UpdatedAt) {
			best, found = s, true
		}
	}
	return best, found
}

func (st *SessionStore) replaceActiveLocked(ctx context.Context, gone string) {
	if next, ok := st.mostRecentLocked(gone); ok {
		st.activeID = next.ID
		st.persistLocked(ctx, "activate", next)
		return
	}
	st.insertLocked(ctx, "create", conversation.NewSession(st.userName))
}

// persistLocked writes s and the active pointer in one transaction. The
// pointer is left alone when the active session was never written.
func (st *SessionStore) persistLocked(ctx context.Context, op string, s domain.SessionState) {
	activeID := st.activeID
	err := st.retry(func() error {
		return st.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			repo := repository.NewSQLiteSessionRepo(tx)
			if err := repo.Upsert(ctx, &s); err != nil {
				return err
			}
			if activeID == "" {
				return nil
			}
			if err := repo.SetActiveID(ctx, activeID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			return nil
		})
	})
	if err != nil {
		st.logger.ErrorContext(ctx, "session persistence failed", "session_id", s.ID, "op", op, "error", err)
	}
}

func (st *SessionStore) retry(write func() error) error {
	err := write()
	if err == nil {
		return nil
	}
	st.logger.Warn("session write failed, retrying", "error", err)
	return write()
}
