package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/service"
	"issuer-gateway/internal/platform/middleware"
	dErrors "issuer-gateway/pkg/domain-errors"
	"issuer-gateway/pkg/requestcontext"
)

// CredentialsService handles one inbound credentials request end to end.
type CredentialsService interface {
	HandleCredentialsRequest(ctx context.Context, issuerDid string, req *models.CredentialsRequest) (*models.CredentialsResponse, error)
}

// EnrollmentService creates user records ahead of association.
type EnrollmentService interface {
	EnrollUser(ctx context.Context, input service.EnrollUserInput) (*models.User, error)
}

// Handler exposes the issuance workflow over HTTP.
type Handler struct {
	credentials  CredentialsService
	enrollment   EnrollmentService
	issuerDid    string
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(
	credentials CredentialsService,
	enrollment EnrollmentService,
	issuerDid string,
	logger *slog.Logger,
	jwtValidator middleware.JWTValidator,
) *Handler {
	return &Handler{
		credentials:  credentials,
		enrollment:   enrollment,
		issuerDid:    issuerDid,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the issuance routes with their middleware chain.
// Credential requests authenticate themselves through their signatures;
// enrollment is an operator surface and requires a bearer token.
func (h *Handler) Register(r chi.Router, logger *slog.Logger) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Post("/userCredentialRequests", h.handleCredentialRequests)
	router.With(middleware.RequireAuth(h.jwtValidator, logger)).Post("/user", h.handleEnrollUser)

	r.Mount("/", router)
}

func (h *Handler) handleCredentialRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.credentials.HandleCredentialsRequest(ctx, h.issuerDid, &req)
	if err != nil {
		h.logError(ctx, "credential request failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleEnrollUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input service.EnrollUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.enrollment.EnrollUser(ctx, input)
	if err != nil {
		h.logError(ctx, "user enrollment failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, enrolledUserResponse{
		ID:       user.ID.String(),
		UserCode: user.UserCode,
	})
}

// enrolledUserResponse deliberately omits the verified attributes; the
// one-time code is the only secret the enrolling party needs back.
type enrolledUserResponse struct {
	ID       string `json:"id"`
	UserCode string `json:"userCode"`
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	code := dErrors.CodeOf(err)
	attrs := []any{
		"error", err,
		"code", code,
		"request_id", requestcontext.RequestID(ctx),
	}
	if code == dErrors.CodeInternal || code == dErrors.CodeUpstream {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates coded domain errors into the JSON error envelope.
// Only client-facing statuses expose the error message; 5xx bodies stay
// generic so upstream details never leak.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	message := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) && status < http.StatusInternalServerError {
		message = de.Message
	}

	writeJSON(w, status, map[string]string{
		"error":   string(code),
		"message": message,
	})
}
