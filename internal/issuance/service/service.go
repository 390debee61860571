package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"issuer-gateway/internal/issuance/metrics"
	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
	dErrors "issuer-gateway/pkg/domain-errors"
	"issuer-gateway/pkg/platform/lock"
	"issuer-gateway/pkg/platform/sentinel"
)

// Service orchestrates one credential request end to end: validate, resolve
// and associate, issue, and assemble the response summary.
//
// The store offers no transaction spanning the issuer and user records, so
// requests are serialized per issuer (rotating auth token is read-modify-
// write) and per user (one-time code and DID). Locks are always taken issuer
// first, then user. Within a request every external call completes before the
// next step begins; there is no internal fan-out.
type Service struct {
	issuers      ports.IssuerStore
	validator    *Validator
	associations *AssociationManager
	pipeline     *Pipeline
	locks        lock.Locker
	tracer       trace.Tracer
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func NewService(
	issuers ports.IssuerStore,
	validator *Validator,
	associations *AssociationManager,
	pipeline *Pipeline,
	locks lock.Locker,
	opts ...Option,
) *Service {
	cfg := newServiceConfig(opts...)
	if locks == nil {
		locks = lock.NewKeyedMutex()
	}
	return &Service{
		issuers:      issuers,
		validator:    validator,
		associations: associations,
		pipeline:     pipeline,
		locks:        locks,
		tracer:       otel.Tracer("issuer-gateway/issuance"),
		logger:       cfg.logger,
		metrics:      cfg.metrics,
	}
}

// HandleCredentialsRequest runs the full workflow for the issuer identified
// by issuerDid and returns the list of credential types issued.
//
// Failure semantics: validation, not-found and verification failures leave no
// mutation behind. Association mutations committed before a later issuance
// failure are not rolled back; retrying the whole request is safe only for
// the association step, which is idempotent on an identical DID.
func (s *Service) HandleCredentialsRequest(ctx context.Context, issuerDid string, req *models.CredentialsRequest) (*models.CredentialsResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "issuance.HandleCredentialsRequest",
		trace.WithAttributes(attribute.String("issuer.did", issuerDid)))
	defer span.End()
	defer func() { s.metrics.ObserveRequestLatency(time.Since(start)) }()

	releaseIssuer, err := s.locks.Acquire(ctx, "issuer:"+issuerDid)
	if err != nil {
		return nil, err
	}
	defer releaseIssuer()

	issuer, err := s.issuers.FindByDid(ctx, issuerDid)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "issuer %s is not provisioned", issuerDid)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to load issuer")
	}

	if err := s.validator.Validate(req, issuer); err != nil {
		return nil, err
	}

	releaseUser, err := s.locks.Acquire(ctx, userLockKey(req))
	if err != nil {
		return nil, err
	}
	defer releaseUser()

	result, err := s.associations.ResolveAndAssociate(ctx, req, issuer)
	if err != nil {
		return nil, err
	}
	user := result.User

	var issued []string

	// A fresh association gets the default credential set immediately, so the
	// wallet holds usable credentials without a second round trip.
	if result.AssociatedNewDid {
		defaultIssued, err := s.pipeline.Issue(ctx, issuer, user.Did, s.pipeline.DefaultTypes(user), user)
		if err != nil {
			return nil, err
		}
		issued = append(issued, defaultIssued...)
	}

	if info := req.CredentialRequestsInfo; info != nil {
		if err := s.validator.VerifyCredentialRequests(ctx, issuer, info); err != nil {
			return nil, err
		}

		requested := make([]string, 0, len(info.CredentialRequests))
		for _, cr := range info.CredentialRequests {
			requested = append(requested, cr.Type)
		}

		requestIssued, err := s.pipeline.Issue(ctx, issuer, user.Did, requested, user)
		if err != nil {
			return nil, err
		}
		issued = append(issued, requestIssued...)
	}

	s.logger.InfoContext(ctx, "credential request handled",
		"issuer_did", issuer.Did,
		"user_id", user.ID,
		"types_issued", issued,
		"new_association", result.AssociatedNewDid,
	)

	return &models.CredentialsResponse{CredentialTypesIssued: dedupe(issued)}, nil
}

// userLockKey serializes on the one-time code when an association is being
// consumed, otherwise on the subject DID.
func userLockKey(req *models.CredentialsRequest) string {
	if req.UserDidAssociation != nil {
		return "user:code:" + req.UserDidAssociation.UserCode
	}
	return "user:did:" + req.CredentialRequestsInfo.SubjectDid
}

func dedupe(types []string) []string {
	out := make([]string, 0, len(types))
	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
