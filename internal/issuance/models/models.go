package models

import (
	"time"

	"github.com/google/uuid"
)

// Issuer is the credential-issuing party. The record is provisioned
// out-of-band; this service only mutates the rotating auth token. At any
// instant exactly one auth token is current, and it must reflect the value
// returned by the most recent successful provider call.
type Issuer struct {
	ID                uuid.UUID
	Did               string
	Name              string
	AuthToken         string
	SigningPrivateKey string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// User is a local account bound to at most one DID at a time. Did and
// UserCode are empty when unset; UserCode is single-use and cleared the first
// time an association request consumes it. The remaining fields are verified
// personal attributes used to build credential subjects.
type User struct {
	ID        uuid.UUID
	Did       string
	UserCode  string
	Phone     string
	Ssn       string
	Dob       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPatch is a partial update of the association-managed fields. A nil
// pointer leaves the field untouched; a pointer to the empty string clears it.
type UserPatch struct {
	Did      *string
	UserCode *string
}

// CredentialRequest names one credential type the subject asks for.
type CredentialRequest struct {
	Type string `json:"type"`
}

// CredentialRequestsInfo carries the signed bundle of credential requests.
type CredentialRequestsInfo struct {
	IssuerDid          string              `json:"issuerDid"`
	SubjectDid         string              `json:"subjectDid"`
	CredentialRequests []CredentialRequest `json:"credentialRequests"`
	Signature          string              `json:"signature"`
}

// SignedDid is a subject's signed DID document. Only the identifier is
// interpreted here; proof verification is the provider's concern, so the
// document travels opaque beyond its id.
type SignedDid struct {
	ID    string         `json:"id"`
	Proof map[string]any `json:"proof,omitempty"`
}

// UserDidAssociation asks to bind the user identified by the one-time code to
// the DID in the signed document.
type UserDidAssociation struct {
	UserCode  string    `json:"userCode"`
	Did       SignedDid `json:"did"`
	IssuerDid string    `json:"issuerDid"`
}

// CredentialsRequest is the inbound envelope. Both sub-payloads are optional;
// at least one must be present.
type CredentialsRequest struct {
	CredentialRequestsInfo *CredentialRequestsInfo `json:"credentialRequestsInfo,omitempty"`
	UserDidAssociation     *UserDidAssociation     `json:"userDidAssociation,omitempty"`
}

// CredentialsResponse is the response summary assembled by the orchestrator.
type CredentialsResponse struct {
	CredentialTypesIssued []string `json:"credentialTypesIssued"`
}
