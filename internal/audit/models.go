package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the issuance workflow. Every external effect gets an
// event so partial failures can be reconciled offline.
const (
	EventDidAssociated      = "did_associated"
	EventCredentialsRevoked = "credentials_revoked"
	EventCredentialsIssued  = "credentials_issued"
	EventUserEnrolled       = "user_enrolled"
)

// Event is one append-only audit record.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	IssuerDid string         `json:"issuerDid"`
	UserID    string         `json:"userId,omitempty"`
	Did       string         `json:"did,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
