package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"log/slog"

	"github.com/google/uuid"

	"issuer-gateway/internal/audit"
	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
	dErrors "issuer-gateway/pkg/domain-errors"
	"issuer-gateway/pkg/platform/sentinel"
	"issuer-gateway/pkg/requestcontext"
)

// Enrollment creates user records ahead of DID association. Enrollment is
// keyed by verified phone number: enrolling an already-known phone returns
// the existing record instead of failing, so upstream identity flows can
// repost without coordination.
type Enrollment struct {
	users  ports.UserStore
	logger *slog.Logger
	audit  *audit.Publisher
}

func NewEnrollment(users ports.UserStore, opts ...Option) *Enrollment {
	cfg := newServiceConfig(opts...)
	return &Enrollment{
		users:  users,
		logger: cfg.logger,
		audit:  cfg.audit,
	}
}

// EnrollUserInput carries the verified attributes collected upstream.
type EnrollUserInput struct {
	Phone string `json:"phone"`
	Ssn   string `json:"ssn,omitempty"`
	Dob   string `json:"dob,omitempty"`
}

// EnrollUser returns the existing user for the phone if present, otherwise
// creates one with a fresh one-time association code.
func (e *Enrollment) EnrollUser(ctx context.Context, input EnrollUserInput) (*models.User, error) {
	if input.Phone == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "phone is required")
	}

	existing, err := e.users.FindByPhone(ctx, input.Phone)
	if err == nil {
		e.logger.InfoContext(ctx, "user already enrolled for phone", "user_id", existing.ID)
		return existing, nil
	}
	if !dErrors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to look up user by phone")
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:        uuid.New(),
		UserCode:  newUserCode(),
		Phone:     input.Phone,
		Ssn:       input.Ssn,
		Dob:       input.Dob,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.users.Create(ctx, user); err != nil {
		if dErrors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to create user")
	}

	e.audit.Emit(ctx, audit.Event{
		Type:   audit.EventUserEnrolled,
		UserID: user.ID.String(),
	})

	return user, nil
}

// newUserCode mints a short single-use association code.
func newUserCode() string {
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
}
