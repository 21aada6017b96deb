package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/alexanderramin/ideaforge/internal/conversation"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/repository"
	"github.com/alexanderramin/ideaforge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userTurn(text string) func(domain.SessionState) (domain.SessionState, error) {
	return func(s domain.SessionState) (domain.SessionState, error) {
		return conversation.ApplyUserTurn(s, text)
	}
}

func TestNewSessionStore_CreatesSessionWhenEmpty(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()

	active := env.store.Active()
	require.NotEmpty(t, active.ID)
	require.Len(t, active.Messages, 1)
	assert.Equal(t, conversation.Greeting(testUserName), active.Messages[0].Text)
	assert.True(t, active.NameIsAuto)

	id, err := env.repo.GetActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, active.ID, id)
}

func TestNewSessionStore_RestoresActivePointer(t *testing.T) {
	database := testutil.NewTestDB(t)
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	repo := repository.NewSQLiteSessionRepo(database)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, a))
	require.NoError(t, repo.Upsert(ctx, b))
	require.NoError(t, repo.SetActiveID(ctx, a.ID))

	env := newStoreEnv(t, nil, database)

	assert.Equal(t, a.ID, env.store.Active().ID)
	assert.Len(t, env.store.ListActive(), 2)
}

func TestNewSessionStore_FallsBackToMostRecentNonArchived(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	c := testutil.NewTestSession("C", testutil.WithArchived())

	env := setupStore(t, a, b, c)

	assert.Equal(t, b.ID, env.store.Active().ID)
}

func TestSessionStore_ReloadFromDisk(t *testing.T) {
	database, _ := testutil.NewFileTestDB(t)
	ctx := context.Background()

	first := newStoreEnv(t, nil, database)
	sess := first.store.Create(ctx)
	_, err := first.store.Update(ctx, sess.ID, userTurn("A marketplace for used climbing gear"))
	require.NoError(t, err)
	_, err = first.store.ToggleFavorite(ctx, sess.ID)
	require.NoError(t, err)

	second := newStoreEnv(t, nil, database)

	got := second.store.Active()
	assert.Equal(t, sess.ID, got.ID)
	assert.True(t, got.Favorite)
	assert.Equal(t, 1, got.TurnCount)
	assert.Equal(t, "A marketplace for used climbing gear", got.Name)
	assert.Len(t, second.store.ListActive(), 2)
}

func TestSessionStore_ListOrderingFavoritesFirst(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	c := testutil.NewTestSession("C")
	env := setupStore(t, a, b, c)
	ctx := context.Background()

	assert.Equal(t, []string{"C", "B", "A"}, namesOf(env.store.ListActive()))

	fav, err := env.store.ToggleFavorite(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []string{"B", "C", "A"}, namesOf(env.store.ListActive()))

	// Modifying A moves it ahead of C but not of the favorite.
	_, err = env.store.Update(ctx, a.ID, func(s domain.SessionState) (domain.SessionState, error) {
		next, _ := conversation.ApplyModeSwitch(s, domain.ModeGeneral)
		return next, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, namesOf(env.store.ListActive()))
}

func TestSessionStore_ArchivedListedSeparately(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	env := setupStore(t, a, b)
	ctx := context.Background()

	archived, err := env.store.ToggleArchive(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, archived)

	assert.Equal(t, []string{"B"}, namesOf(env.store.ListActive()))
	assert.Equal(t, []string{"A"}, namesOf(env.store.ListArchived()))

	archived, err = env.store.ToggleArchive(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, archived)
	assert.Empty(t, env.store.ListArchived())
}

func TestSessionStore_ArchivingActiveSelectsReplacement(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	env := setupStore(t, a, b)
	ctx := context.Background()
	require.Equal(t, b.ID, env.store.Active().ID)

	_, err := env.store.ToggleArchive(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, a.ID, env.store.Active().ID)
}

func TestSessionStore_DeleteActiveSelectsMostRecentRemaining(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	c := testutil.NewTestSession("C", testutil.WithArchived())
	env := setupStore(t, a, b, c)
	ctx := context.Background()
	require.Equal(t, b.ID, env.store.Active().ID)

	require.NoError(t, env.store.Delete(ctx, b.ID))

	assert.Equal(t, a.ID, env.store.Active().ID)
	_, err := env.store.Get(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = env.repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	id, err := env.repo.GetActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)
}

func TestSessionStore_DeleteOnlySessionCreatesNewOne(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()
	only := env.store.Active()

	require.NoError(t, env.store.Delete(ctx, only.ID))

	active := env.store.Active()
	require.NotEmpty(t, active.ID)
	assert.NotEqual(t, only.ID, active.ID)
	assert.Len(t, env.store.ListActive(), 1)
	assert.Equal(t, conversation.GreetingClarity, active.ClarityScore)
}

func TestSessionStore_DeleteUnknown(t *testing.T) {
	env := setupStore(t)

	err := env.store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_LoadSwitchesActive(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	env := setupStore(t, a, b)
	ctx := context.Background()

	got, err := env.store.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, a.ID, env.store.Active().ID)

	id, err := env.repo.GetActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	_, err = env.store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_LoadArchivedRestoresIt(t *testing.T) {
	a := testutil.NewTestSession("A", testutil.WithArchived())
	b := testutil.NewTestSession("B")
	env := setupStore(t, a, b)
	ctx := context.Background()

	got, err := env.store.Load(ctx, a.ID)
	require.NoError(t, err)

	assert.False(t, got.Archived)
	assert.Equal(t, a.ID, env.store.Active().ID)
	assert.ElementsMatch(t, []string{"A", "B"}, namesOf(env.store.ListActive()))
	assert.Empty(t, env.store.ListArchived())

	stored, err := env.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.Archived)
}

func TestSessionStore_ReturnsCopies(t *testing.T) {
	env := setupStore(t)

	got := env.store.Active()
	got.Messages[0].Text = "mutated"
	got.Name = "mutated"

	fresh := env.store.Active()
	assert.NotEqual(t, "mutated", fresh.Messages[0].Text)
	assert.NotEqual(t, "mutated", fresh.Name)
}

func TestSessionStore_AutoNamesFromFirstSubstantiveMessage(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()
	sess := env.store.Active()
	placeholder := sess.Name

	got, err := env.store.Update(ctx, sess.ID, userTurn("hi"))
	require.NoError(t, err)
	assert.Equal(t, placeholder, got.Name)

	got, err = env.store.Update(ctx, sess.ID, userTurn("A marketplace for used climbing gear"))
	require.NoError(t, err)
	assert.Equal(t, "A marketplace for used climbing gear", got.Name)

	got, err = env.store.Update(ctx, sess.ID, userTurn("Also rentals for beginners"))
	require.NoError(t, err)
	assert.Equal(t, "A marketplace for used climbing gear", got.Name, "first substantive message keeps naming the session")
}

func TestSessionStore_AutoNameTruncatesLongMessages(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()
	long := "An app that helps independent bookstores share inventory and coordinate author events across a whole city"

	got, err := env.store.Update(ctx, env.store.Active().ID, userTurn(long))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(got.Name, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(got.Name), autoNameMaxRunes+1)
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got.Name, "…")))
}

func TestSessionStore_AutoNamePrefersFinalTitle(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()
	id := env.store.Active().ID

	_, err := env.store.Update(ctx, id, userTurn("A marketplace for used climbing gear"))
	require.NoError(t, err)

	got, err := env.store.Update(ctx, id, func(s domain.SessionState) (domain.SessionState, error) {
		s.Profile = testutil.NewTestProfile("Crux Exchange")
		s.SummaryFinalized = true
		return s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Crux Exchange", got.Name)
}

func TestSessionStore_RenameDisablesAutoNaming(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()
	id := env.store.Active().ID

	got, err := env.store.Rename(ctx, id, "  Crux  ")
	require.NoError(t, err)
	assert.Equal(t, "Crux", got.Name)
	assert.False(t, got.NameIsAuto)

	got, err = env.store.Update(ctx, id, userTurn("A marketplace for used climbing gear"))
	require.NoError(t, err)
	assert.Equal(t, "Crux", got.Name)

	// A blank rename hands naming back to the automatic rules.
	got, err = env.store.Rename(ctx, id, " ")
	require.NoError(t, err)
	assert.True(t, got.NameIsAuto)
	assert.Equal(t, "A marketplace for used climbing gear", got.Name)
}

func TestSessionStore_RenameMovesSessionUp(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	env := setupStore(t, a, b)
	ctx := context.Background()
	require.Equal(t, []string{"B", "A"}, namesOf(env.store.ListActive()))

	got, err := env.store.Rename(ctx, a.ID, "Crux")
	require.NoError(t, err)

	assert.True(t, got.UpdatedAt.After(a.UpdatedAt))
	assert.Equal(t, []string{"Crux", "B"}, namesOf(env.store.ListActive()))
}

func TestSessionStore_UpdateErrorLeavesSessionUntouched(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()
	before := env.store.Active()
	boom := errors.New("boom")

	_, err := env.store.Update(ctx, before.ID, func(s domain.SessionState) (domain.SessionState, error) {
		s.Name = "changed"
		return s, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before.Name, env.store.Active().Name)
}

func TestSessionStore_PersistenceFailureKeepsMemoryState(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 1, Err: errors.New("disk full")}
	env := newStoreEnv(t, uow, database)
	ctx := context.Background()
	id := env.store.Active().ID

	got, err := env.store.Update(ctx, id, userTurn("A marketplace for used climbing gear"))
	require.NoError(t, err)
	assert.Equal(t, 1, got.TurnCount)
	assert.Equal(t, 1, env.store.Active().TurnCount)

	logs := env.logs.String()
	assert.Contains(t, logs, "session persistence failed")
	assert.Contains(t, logs, "op=update")
	assert.Contains(t, logs, "session_id="+id)

	_, err = env.repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionStore_PersistenceRetrySucceeds(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 1, FailTxs: 1, Err: errors.New("database is locked")}
	env := newStoreEnv(t, uow, database)
	ctx := context.Background()

	assert.Equal(t, 2, uow.Transactions())
	assert.Contains(t, env.logs.String(), "retrying")
	assert.NotContains(t, env.logs.String(), "session persistence failed")

	stored, err := env.repo.GetByID(ctx, env.store.Active().ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 1)
}

func TestSessionStore_ResolveID(t *testing.T) {
	a := testutil.NewTestSession("A")
	a.ID = "abc-111"
	b := testutil.NewTestSession("B")
	b.ID = "abc-222"
	env := setupStore(t, a, b)

	id, err := env.store.ResolveID("abc-1")
	require.NoError(t, err)
	assert.Equal(t, "abc-111", id)

	id, err = env.store.ResolveID("abc-222")
	require.NoError(t, err)
	assert.Equal(t, "abc-222", id)

	_, err = env.store.ResolveID("abc")
	assert.ErrorIs(t, err, ErrAmbiguousSession)

	_, err = env.store.ResolveID("zzz")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = env.store.ResolveID("")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_CreateContinuedNamedAfterProfile(t *testing.T) {
	env := setupStore(t)
	ctx := context.Background()

	sess := env.store.CreateContinued(ctx, testutil.NewTestProfile("Crux Exchange"), domain.StrPtr("Route setter"))
	assert.Equal(t, sess.ID, env.store.Active().ID)
	assert.Equal(t, domain.OriginContinued, sess.Origin)

	got, err := env.store.Update(ctx, sess.ID, userTurn("Let's tighten the revenue model please"))
	require.NoError(t, err)
	assert.Equal(t, "Crux Exchange", got.Name)
}
