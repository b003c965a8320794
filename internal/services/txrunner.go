package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/allocerr"
	"github.com/talentvine/talentvine-backend/internal/platform/dbctx"
	"github.com/talentvine/talentvine-backend/internal/platform/envutil"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

type TxFunc func(dbc dbctx.Context) error

type TxRunnerConfig struct {
	// MaxConcurrent bounds the number of allocation transactions in flight.
	MaxConcurrent int
	// WaitBudget bounds the time spent queueing for a transaction slot.
	WaitBudget time.Duration
	// ExecBudget bounds a single transaction attempt.
	ExecBudget time.Duration
}

func TxRunnerConfigFromEnv() TxRunnerConfig {
	return TxRunnerConfig{
		MaxConcurrent: envutil.Int("ALLOC_TX_MAX_CONCURRENT", 32),
		WaitBudget:    envutil.Duration("ALLOC_TX_WAIT_BUDGET", 10*time.Second),
		ExecBudget:    envutil.Duration("ALLOC_TX_EXEC_BUDGET", 30*time.Second),
	}
}

// TxRunner executes allocation transactions under wait and execution
// budgets, retrying exactly once on the transient-conflict class. The
// retry re-runs fn from fresh reads; any other error, or a second transient
// failure, propagates unchanged. Callers must keep side effects out of fn
// so a retried attempt cannot duplicate them.
type TxRunner struct {
	db         *gorm.DB
	log        *logger.Logger
	slots      chan struct{}
	waitBudget time.Duration
	execBudget time.Duration
}

func NewTxRunner(db *gorm.DB, baseLog *logger.Logger, cfg TxRunnerConfig) *TxRunner {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 32
	}
	if cfg.WaitBudget <= 0 {
		cfg.WaitBudget = 10 * time.Second
	}
	if cfg.ExecBudget <= 0 {
		cfg.ExecBudget = 30 * time.Second
	}
	return &TxRunner{
		db:         db,
		log:        baseLog.With("service", "TxRunner"),
		slots:      make(chan struct{}, cfg.MaxConcurrent),
		waitBudget: cfg.WaitBudget,
		execBudget: cfg.ExecBudget,
	}
}

func (r *TxRunner) Run(ctx context.Context, fn TxFunc) error {
	release, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = r.attempt(ctx, fn)
	if err == nil || !allocerr.IsTransientTx(err) {
		return err
	}

	r.log.Warn("transient transaction conflict, retrying once", "error", err)
	return r.attempt(ctx, fn)
}

func (r *TxRunner) acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(r.waitBudget)
	defer timer.Stop()

	select {
	case r.slots <- struct{}{}:
		return func() { <-r.slots }, nil
	case <-timer.C:
		return nil, allocerr.ErrWaitBudgetExceeded
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *TxRunner) attempt(ctx context.Context, fn TxFunc) error {
	attemptCtx, cancel := context.WithTimeout(ctx, r.execBudget)
	defer cancel()

	return r.db.WithContext(attemptCtx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: attemptCtx, Tx: tx})
	})
}
