package service

import (
	"context"
	"log/slog"

	"issuer-gateway/internal/audit"
	"issuer-gateway/internal/issuance/metrics"
	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
)

// Pipeline builds credential-subject payloads from user attributes and issues
// them through the provider in a single batched call. Requested types this
// issuer does not recognize are skipped, not rejected: partial fulfillment is
// policy.
type Pipeline struct {
	provider ports.CredentialProvider
	ledger   *Ledger
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Publisher
}

func NewPipeline(provider ports.CredentialProvider, ledger *Ledger, opts ...Option) *Pipeline {
	cfg := newServiceConfig(opts...)
	return &Pipeline{
		provider: provider,
		ledger:   ledger,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		audit:    cfg.audit,
	}
}

// Issue fulfills the requested types for subjectDid from the user's verified
// attributes. An empty resulting batch short-circuits with no provider call.
// Returns the credential type names actually issued.
func (p *Pipeline) Issue(ctx context.Context, issuer *models.Issuer, subjectDid string, requestedTypes []string, user *models.User) ([]string, error) {
	subjects := p.buildSubjects(ctx, subjectDid, requestedTypes, user)
	if len(subjects) == 0 {
		p.logger.DebugContext(ctx, "no fulfillable credential types, skipping issuance call",
			"subject_did", subjectDid,
			"requested", requestedTypes,
		)
		return nil, nil
	}

	result, err := p.provider.IssueCredentials(ctx, issuer.AuthToken, issuer.Did, issuer.SigningPrivateKey, subjectDid, subjects)
	if err != nil {
		return nil, providerCallError(err, "credential issuance failed upstream")
	}

	if err := p.ledger.Sync(ctx, issuer, result.AuthToken); err != nil {
		return nil, err
	}

	issued := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		issued = append(issued, subject.CredentialType())
		p.metrics.IncrementIssued(subject.CredentialType())
	}

	p.audit.Emit(ctx, audit.Event{
		Type:      audit.EventCredentialsIssued,
		IssuerDid: issuer.Did,
		UserID:    user.ID.String(),
		Did:       subjectDid,
		Details:   map[string]any{"types": issued},
	})

	return issued, nil
}

// DefaultTypes is the credential set issued right after a new DID
// association: every type the user's verified attributes can back.
func (p *Pipeline) DefaultTypes(user *models.User) []string {
	var types []string
	if user.Dob != "" {
		types = append(types, models.TypeDobCredential)
	}
	if user.Ssn != "" {
		types = append(types, models.TypeSsnCredential)
	}
	if user.Phone != "" {
		types = append(types, models.TypePhoneCredential)
	}
	return types
}

func (p *Pipeline) buildSubjects(ctx context.Context, subjectDid string, requestedTypes []string, user *models.User) []models.CredentialSubject {
	var subjects []models.CredentialSubject
	for _, requested := range requestedTypes {
		switch requested {
		case models.TypeDobCredential:
			if user.Dob == "" {
				p.skip(ctx, requested, "user has no verified date of birth")
				continue
			}
			subjects = append(subjects, models.DobSubject{ID: subjectDid, Dob: user.Dob})
		case models.TypeSsnCredential:
			if user.Ssn == "" {
				p.skip(ctx, requested, "user has no verified ssn")
				continue
			}
			subjects = append(subjects, models.SsnSubject{ID: subjectDid, Ssn: user.Ssn})
		case models.TypePhoneCredential:
			if user.Phone == "" {
				p.skip(ctx, requested, "user has no verified phone")
				continue
			}
			subjects = append(subjects, models.PhoneSubject{ID: subjectDid, Phone: user.Phone})
		default:
			p.skip(ctx, requested, "type not recognized by this issuer")
		}
	}
	return subjects
}

func (p *Pipeline) skip(ctx context.Context, credentialType, reason string) {
	p.logger.DebugContext(ctx, "skipping requested credential type",
		"type", credentialType,
		"reason", reason,
	)
}
