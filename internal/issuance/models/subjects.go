package models

import "encoding/json"

// Credential type names this issuer can fulfill.
const (
	TypeDobCredential   = "DobCredential"
	TypeSsnCredential   = "SsnCredential"
	TypePhoneCredential = "PhoneCredential"
)

// CredentialSubject is one tagged variant per credential type. Variants carry
// the subject DID and the single attribute value the credential attests to.
type CredentialSubject interface {
	SubjectDid() string
	CredentialType() string
}

type DobSubject struct {
	ID  string `json:"id"`
	Dob string `json:"dob"`
}

func (s DobSubject) SubjectDid() string     { return s.ID }
func (s DobSubject) CredentialType() string { return TypeDobCredential }

type SsnSubject struct {
	ID  string `json:"id"`
	Ssn string `json:"ssn"`
}

func (s SsnSubject) SubjectDid() string     { return s.ID }
func (s SsnSubject) CredentialType() string { return TypeSsnCredential }

type PhoneSubject struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}

func (s PhoneSubject) SubjectDid() string     { return s.ID }
func (s PhoneSubject) CredentialType() string { return TypePhoneCredential }

// SubjectPayload returns the wire form of a subject with its type tag, the
// shape the issuance provider expects.
func SubjectPayload(s CredentialSubject) (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	payload["type"] = s.CredentialType()
	return payload, nil
}
