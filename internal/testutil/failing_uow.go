package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/ideaforge/internal/db"
)

// FailOnNthExecUoW is a test UoW that injects Err on the FailOn-th ExecContext
// call of a transaction, simulating a persistence failure partway through a
// session upsert. ExecContext calls are counted from 1 per transaction; reads
// pass through.
//
// FailTxs limits injection to the first FailTxs transactions (0 means every
// transaction fails), which lets tests exercise a retry that succeeds.
type FailOnNthExecUoW struct {
	DB      *sql.DB
	FailOn  int32
	FailTxs int32
	Err     error

	txs atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	n := u.txs.Add(1)

	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	var conn db.DBTX = tx
	if u.FailTxs == 0 || n <= u.FailTxs {
		conn = &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: u.Err}
	}
	if fnErr := fn(ctx, conn); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

// Transactions reports how many transactions were started.
func (u *FailOnNthExecUoW) Transactions() int {
	return int(u.txs.Load())
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.count.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
