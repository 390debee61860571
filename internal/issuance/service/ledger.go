package service

import (
	"context"
	"log/slog"

	"issuer-gateway/internal/issuance/metrics"
	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
	dErrors "issuer-gateway/pkg/domain-errors"
)

// Ledger owns the invariant that an issuer's stored auth token always
// reflects the most recent value returned by any provider call made on that
// issuer's behalf. Every component calls Sync after every provider call,
// before the next one is made.
type Ledger struct {
	issuers ports.IssuerStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLedger(issuers ports.IssuerStore, opts ...Option) *Ledger {
	cfg := newServiceConfig(opts...)
	return &Ledger{
		issuers: issuers,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// Sync persists returnedToken if it differs from the issuer's current token
// and updates the in-memory record so the next provider call in this request
// uses it. A persistence failure is fatal for the enclosing request but does
// not undo provider effects already performed upstream.
func (l *Ledger) Sync(ctx context.Context, issuer *models.Issuer, returnedToken string) error {
	if returnedToken == "" || returnedToken == issuer.AuthToken {
		return nil
	}

	if err := l.issuers.PatchAuthToken(ctx, issuer.ID, returnedToken); err != nil {
		l.logger.ErrorContext(ctx, "failed to persist rotated issuer auth token",
			"error", err,
			"issuer_did", issuer.Did,
		)
		return dErrors.Wrap(err, dErrors.CodeUpstream, "failed to persist rotated auth token")
	}

	issuer.AuthToken = returnedToken
	l.metrics.IncrementTokenRotations()
	l.logger.DebugContext(ctx, "issuer auth token rotated", "issuer_did", issuer.Did)
	return nil
}
