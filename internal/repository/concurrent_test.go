package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alexanderramin/ideaforge/internal/db"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_SequentialWritesConcurrentReads builds up sessions
// through sequential transactional writes while readers list concurrently.
// A file-backed database is required: every ":memory:" connection is its own
// database.
func TestConcurrentAccess_SequentialWritesConcurrentReads(t *testing.T) {
	database, _ := testutil.NewFileTestDB(t)
	ctx := context.Background()
	uow := db.NewSQLiteUnitOfWork(database)
	reader := NewSQLiteSessionRepo(database)

	const sessionCount = 10

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < sessionCount; i++ {
			s := testutil.NewTestSession(fmt.Sprintf("Idea-%d", i), testutil.WithExchange("hi", "hello"))
			err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				repo := NewSQLiteSessionRepo(tx)
				if err := repo.Upsert(ctx, s); err != nil {
					return err
				}
				return repo.SetActiveID(ctx, s.ID)
			})
			if err != nil {
				t.Errorf("writer: upsert %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				sessions, err := reader.List(ctx)
				if err != nil {
					t.Errorf("reader %d: list: %v", n, err)
					return
				}
				for _, s := range sessions {
					// A committed session is always complete.
					if len(s.Messages) != 3 {
						t.Errorf("reader %d: session %s has %d messages", n, s.Name, len(s.Messages))
					}
				}
			}
		}(r)
	}

	wg.Wait()

	sessions, err := reader.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, sessionCount)

	activeID, err := reader.GetActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, sessions[0].ID, activeID, "pointer follows the last committed write")
}

// TestUpsert_RollbackLeavesPreviousState verifies a failed transaction never
// leaves the active pointer referencing a session that was not written.
func TestUpsert_RollbackLeavesPreviousState(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteSessionRepo(database)

	first := testutil.NewTestSession("First")
	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.SetActiveID(ctx, first.ID))

	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: fmt.Errorf("disk full")}
	second := testutil.NewTestSession("Second", testutil.WithExchange("hi", "hello"))
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := NewSQLiteSessionRepo(tx)
		if err := txRepo.Upsert(ctx, second); err != nil {
			return err
		}
		return txRepo.SetActiveID(ctx, second.ID)
	})
	require.Error(t, err)

	_, err = repo.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	activeID, err := repo.GetActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, activeID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"First"}, namesOf(list))
}

func namesOf(sessions []*domain.SessionState) []string {
	names := make([]string, len(sessions))
	for i, s := range sessions {
		names[i] = s.Name
	}
	return names
}
