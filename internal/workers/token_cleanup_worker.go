package workers

import (
	"context"
	"time"

	"boilerplate_backend/internal/logger"
)

const tokenCleanupWorkerName = "token_cleanup"

// ExpiredTokenCleaner - часть UserRepository, нужная воркеру
type ExpiredTokenCleaner interface {
	ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type TokenCleanupWorker struct {
	repo     ExpiredTokenCleaner
	interval time.Duration
	now      func() time.Time
}

func NewTokenCleanupWorker(repo ExpiredTokenCleaner, interval time.Duration) *TokenCleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanupWorker{
		repo:     repo,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start запускает очистку просроченных токенов в фоне
func (w *TokenCleanupWorker) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Run блокируется до отмены ctx
func (w *TokenCleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token cleanup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce снимает просроченные токены подтверждения и сброса пароля
func (w *TokenCleanupWorker) RunOnce(ctx context.Context) (verification, reset int64) {
	now := w.now()

	verification, err := w.repo.ClearExpiredVerificationTokens(ctx, now)
	if err != nil {
		logger.WorkerLog(tokenCleanupWorkerName, "clear_verification_tokens", err)
	} else if verification > 0 {
		logger.WorkerLog(tokenCleanupWorkerName, "clear_verification_tokens", nil, "cleared", verification)
	}

	reset, err = w.repo.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		logger.WorkerLog(tokenCleanupWorkerName, "clear_reset_tokens", err)
	} else if reset > 0 {
		logger.WorkerLog(tokenCleanupWorkerName, "clear_reset_tokens", nil, "cleared", reset)
	}

	return verification, reset
}
