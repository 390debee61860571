// Package ports defines the collaborator interfaces the issuance workflow is
// built against. Concrete implementations are injected at construction:
// internal/provider/saas for the provider, internal/issuance/store for the
// stores.
package ports

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"issuer-gateway/internal/issuance/models"
)

// VerificationResult is the provider's answer to a signature check. AuthToken
// is the rotated issuer token when the provider reissued it, and must be
// persisted regardless of the verification outcome.
type VerificationResult struct {
	IsVerified bool
	Message    string
	AuthToken  string
}

// RevocationResult acknowledges a revoke-all call.
type RevocationResult struct {
	AuthToken string
}

// IssueResult carries the issued credentials and any rotated token.
type IssueResult struct {
	Credentials []json.RawMessage
	AuthToken   string
}

// CredentialProvider is the external verification/revocation/issuance
// capability. Every call is a network round trip and must be bounded by the
// context deadline.
type CredentialProvider interface {
	VerifyDidDocument(ctx context.Context, authToken, issuerDid string, did models.SignedDid) (VerificationResult, error)
	VerifyCredentialRequests(ctx context.Context, authToken, issuerDid, subjectDid string, requests []models.CredentialRequest) (VerificationResult, error)
	RevokeAllCredentials(ctx context.Context, authToken, issuerDid, signingKey, did string) (RevocationResult, error)
	IssueCredentials(ctx context.Context, authToken, issuerDid, signingKey, subjectDid string, subjects []models.CredentialSubject) (IssueResult, error)
}

// UserStore persists user records. Lookup misses return sentinel.ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByDid(ctx context.Context, did string) (*models.User, error)
	FindByCode(ctx context.Context, code string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Patch(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
}

// IssuerStore persists issuer records. Only the auth token field is mutated
// by this service.
type IssuerStore interface {
	Create(ctx context.Context, issuer *models.Issuer) error
	FindByDid(ctx context.Context, did string) (*models.Issuer, error)
	PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error
}
