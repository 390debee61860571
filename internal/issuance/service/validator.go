package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
	"issuer-gateway/pkg/didkey"
	dErrors "issuer-gateway/pkg/domain-errors"
)

// Validator checks an inbound envelope's structural and cross-field
// correctness before any state mutation, and fronts the provider's signature
// verification capability. Verification failures never mutate entities, but a
// token the provider rotated alongside the failure is still persisted: the
// provider rotates tokens independent of verification outcome.
type Validator struct {
	provider ports.CredentialProvider
	ledger   *Ledger
	logger   *slog.Logger
}

func NewValidator(provider ports.CredentialProvider, ledger *Ledger, opts ...Option) *Validator {
	cfg := newServiceConfig(opts...)
	return &Validator{
		provider: provider,
		ledger:   ledger,
		logger:   cfg.logger,
	}
}

// Validate performs the structural and issuer-identity checks. It makes no
// external call and no store mutation, so a rejection here is guaranteed
// side-effect free.
func (v *Validator) Validate(req *models.CredentialsRequest, issuer *models.Issuer) error {
	if req == nil || (req.CredentialRequestsInfo == nil && req.UserDidAssociation == nil) {
		return dErrors.New(dErrors.CodeBadRequest, "request carries neither credential requests nor a DID association")
	}

	if info := req.CredentialRequestsInfo; info != nil {
		if info.IssuerDid != issuer.Did {
			return dErrors.Newf(dErrors.CodeValidation,
				"persisted issuer DID %s does not match credential requests issuer DID %s", issuer.Did, info.IssuerDid)
		}
		if info.SubjectDid == "" {
			return dErrors.New(dErrors.CodeValidation, "credential requests missing subject DID")
		}
	}

	if assoc := req.UserDidAssociation; assoc != nil {
		if assoc.IssuerDid != issuer.Did {
			return dErrors.Newf(dErrors.CodeValidation,
				"persisted issuer DID %s does not match association issuer DID %s", issuer.Did, assoc.IssuerDid)
		}
		if assoc.UserCode == "" {
			return dErrors.New(dErrors.CodeValidation, "association missing one-time user code")
		}
		if assoc.Did.ID == "" {
			return dErrors.New(dErrors.CodeValidation, "association missing DID document id")
		}
		// did:key identifiers are self-describing, so a malformed one can be
		// rejected locally without spending a provider round trip. Other DID
		// methods pass through untouched.
		if strings.HasPrefix(assoc.Did.ID, "did:key:") {
			if _, err := didkey.PublicKey(assoc.Did.ID); err != nil {
				return dErrors.Newf(dErrors.CodeValidation, "malformed did:key identifier: %v", err)
			}
		}
	}

	return nil
}

// VerifyDidDocument checks the subject's signed DID document through the
// provider and syncs any rotated token before reporting the outcome.
func (v *Validator) VerifyDidDocument(ctx context.Context, issuer *models.Issuer, did models.SignedDid) error {
	result, err := v.provider.VerifyDidDocument(ctx, issuer.AuthToken, issuer.Did, did)
	if err != nil {
		return providerCallError(err, "DID document verification failed upstream")
	}

	if err := v.ledger.Sync(ctx, issuer, result.AuthToken); err != nil {
		return err
	}

	if !result.IsVerified {
		v.logger.WarnContext(ctx, "subject DID document not verified",
			"did", did.ID,
			"provider_message", result.Message,
		)
		return dErrors.Newf(dErrors.CodeVerification, "subject DID document %s is not verified: %s", did.ID, result.Message)
	}
	return nil
}

// VerifyCredentialRequests checks the signed credential request bundle
// through the provider and syncs any rotated token before reporting the
// outcome.
func (v *Validator) VerifyCredentialRequests(ctx context.Context, issuer *models.Issuer, info *models.CredentialRequestsInfo) error {
	result, err := v.provider.VerifyCredentialRequests(ctx, issuer.AuthToken, issuer.Did, info.SubjectDid, info.CredentialRequests)
	if err != nil {
		return providerCallError(err, "credential request verification failed upstream")
	}

	if err := v.ledger.Sync(ctx, issuer, result.AuthToken); err != nil {
		return err
	}

	if !result.IsVerified {
		v.logger.WarnContext(ctx, "credential requests not verified, not issuing",
			"subject_did", info.SubjectDid,
			"provider_message", result.Message,
		)
		return dErrors.Newf(dErrors.CodeVerification, "credential requests could not be validated: %s", result.Message)
	}
	return nil
}

// providerCallError classifies a failed provider round trip. Timeouts are
// transient: nothing is assumed changed beyond what was durably persisted
// before the deadline hit.
func providerCallError(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, message)
	}
	return dErrors.Wrap(err, dErrors.CodeUpstream, message)
}
