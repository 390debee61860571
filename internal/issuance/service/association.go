package service

import (
	"context"
	"log/slog"

	"issuer-gateway/internal/audit"
	"issuer-gateway/internal/issuance/metrics"
	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
	dErrors "issuer-gateway/pkg/domain-errors"
	"issuer-gateway/pkg/platform/sentinel"
)

// Association outcomes recorded in metrics.
const (
	outcomeIdempotent = "idempotent"
	outcomeAssociated = "associated"
	outcomeRotated    = "rotated"
)

// AssociationResult reports the resolved user and whether a new DID was
// bound, which is what triggers default-set issuance downstream.
type AssociationResult struct {
	User             *models.User
	AssociatedNewDid bool
}

// AssociationManager resolves a request to a local user and applies the
// DID-association state machine: idempotent resubmission, first association,
// and rotation with revoke-before-associate ordering.
type AssociationManager struct {
	users     ports.UserStore
	provider  ports.CredentialProvider
	validator *Validator
	ledger    *Ledger
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     *audit.Publisher
}

func NewAssociationManager(
	users ports.UserStore,
	provider ports.CredentialProvider,
	validator *Validator,
	ledger *Ledger,
	opts ...Option,
) *AssociationManager {
	cfg := newServiceConfig(opts...)
	return &AssociationManager{
		users:     users,
		provider:  provider,
		validator: validator,
		ledger:    ledger,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
		audit:     cfg.audit,
	}
}

// ResolveAndAssociate applies the state machine of the association workflow.
// The caller must already hold the per-issuer and per-user locks and must
// have run Validator.Validate on the request.
func (m *AssociationManager) ResolveAndAssociate(ctx context.Context, req *models.CredentialsRequest, issuer *models.Issuer) (AssociationResult, error) {
	if req.UserDidAssociation == nil {
		return m.resolveExisting(ctx, req)
	}
	return m.associate(ctx, req.UserDidAssociation, issuer)
}

// resolveExisting handles requests without an association payload: the issuer
// is assumed to already hold an association, so the user is looked up
// strictly by the subject DID. A miss is a protocol violation.
func (m *AssociationManager) resolveExisting(ctx context.Context, req *models.CredentialsRequest) (AssociationResult, error) {
	subjectDid := req.CredentialRequestsInfo.SubjectDid

	user, err := m.users.FindByDid(ctx, subjectDid)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			m.logger.WarnContext(ctx, "no user found for subject DID, this should never happen without a prior association",
				"subject_did", subjectDid,
			)
			return AssociationResult{}, dErrors.Newf(dErrors.CodeNotFound, "no user associated with DID %s", subjectDid)
		}
		return AssociationResult{}, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to look up user by DID")
	}

	return AssociationResult{User: user}, nil
}

func (m *AssociationManager) associate(ctx context.Context, assoc *models.UserDidAssociation, issuer *models.Issuer) (AssociationResult, error) {
	user, err := m.users.FindByCode(ctx, assoc.UserCode)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			m.logger.WarnContext(ctx, "no user found for one-time code, cannot associate DID",
				"did", assoc.Did.ID,
			)
			return AssociationResult{}, dErrors.New(dErrors.CodeNotFound, "no user found for the supplied one-time code")
		}
		return AssociationResult{}, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to look up user by one-time code")
	}

	if assoc.IssuerDid != issuer.Did {
		return AssociationResult{}, dErrors.Newf(dErrors.CodeValidation,
			"persisted issuer DID %s does not match association issuer DID %s", issuer.Did, assoc.IssuerDid)
	}

	if err := m.validator.VerifyDidDocument(ctx, issuer, assoc.Did); err != nil {
		return AssociationResult{}, err
	}

	newDid := assoc.Did.ID

	// Idempotent resubmission: same DID already stored. Only the one-time
	// code is cleared; no revocation, no issuance.
	if newDid == user.Did {
		m.logger.DebugContext(ctx, "association resubmitted with identical DID", "did", newDid)
		patched, err := m.clearCode(ctx, user)
		if err != nil {
			return AssociationResult{}, err
		}
		m.metrics.IncrementAssociation(outcomeIdempotent)
		return AssociationResult{User: patched}, nil
	}

	outcome := outcomeAssociated
	if user.Did != "" {
		// DID rotation. Credentials tied to the old DID must be revoked
		// before the new DID is persisted, otherwise both DIDs hold valid
		// credentials for a window.
		result, err := m.provider.RevokeAllCredentials(ctx, issuer.AuthToken, issuer.Did, issuer.SigningPrivateKey, user.Did)
		if err != nil {
			return AssociationResult{}, providerCallError(err, "failed to revoke credentials for previous DID")
		}
		if err := m.ledger.Sync(ctx, issuer, result.AuthToken); err != nil {
			return AssociationResult{}, err
		}

		m.metrics.IncrementRevocations()
		m.audit.Emit(ctx, audit.Event{
			Type:      audit.EventCredentialsRevoked,
			IssuerDid: issuer.Did,
			UserID:    user.ID.String(),
			Did:       user.Did,
		})
		outcome = outcomeRotated
	}

	cleared := ""
	patched, err := m.patchUser(ctx, user, models.UserPatch{Did: &newDid, UserCode: &cleared})
	if err != nil {
		return AssociationResult{}, err
	}

	m.metrics.IncrementAssociation(outcome)
	m.audit.Emit(ctx, audit.Event{
		Type:      audit.EventDidAssociated,
		IssuerDid: issuer.Did,
		UserID:    patched.ID.String(),
		Did:       newDid,
	})

	return AssociationResult{User: patched, AssociatedNewDid: true}, nil
}

func (m *AssociationManager) clearCode(ctx context.Context, user *models.User) (*models.User, error) {
	cleared := ""
	return m.patchUser(ctx, user, models.UserPatch{UserCode: &cleared})
}

func (m *AssociationManager) patchUser(ctx context.Context, user *models.User, patch models.UserPatch) (*models.User, error) {
	patched, err := m.users.Patch(ctx, user.ID, patch)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to patch user record")
	}
	return patched, nil
}
