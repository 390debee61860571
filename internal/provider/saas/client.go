// Package saas is the HTTP adapter for the external verification, revocation
// and issuance provider. Only the call contract lives here; proof algorithm
// internals are the provider's.
//
// Every response may carry a rotated issuer auth token in the X-Auth-Token
// header, independent of the call's outcome. Callers must hand that token to
// the auth token ledger before making the next call.
package saas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
)

const authTokenHeader = "X-Auth-Token"

// Client implements ports.CredentialProvider against the provider's REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type verifyResponse struct {
	IsVerified bool   `json:"isVerified"`
	Message    string `json:"message"`
}

type issueResponse struct {
	Credentials []json.RawMessage `json:"credentials"`
}

func (c *Client) VerifyDidDocument(ctx context.Context, authToken, issuerDid string, did models.SignedDid) (ports.VerificationResult, error) {
	payload := map[string]any{
		"issuerDid": issuerDid,
		"did":       did,
	}

	var body verifyResponse
	rotated, err := c.post(ctx, "/didDocument/verify", authToken, payload, &body)
	if err != nil {
		return ports.VerificationResult{}, err
	}
	return ports.VerificationResult{
		IsVerified: body.IsVerified,
		Message:    body.Message,
		AuthToken:  rotated,
	}, nil
}

func (c *Client) VerifyCredentialRequests(ctx context.Context, authToken, issuerDid, subjectDid string, requests []models.CredentialRequest) (ports.VerificationResult, error) {
	payload := map[string]any{
		"issuerDid":          issuerDid,
		"subjectDid":         subjectDid,
		"credentialRequests": requests,
	}

	var body verifyResponse
	rotated, err := c.post(ctx, "/credentialRequests/verify", authToken, payload, &body)
	if err != nil {
		return ports.VerificationResult{}, err
	}
	return ports.VerificationResult{
		IsVerified: body.IsVerified,
		Message:    body.Message,
		AuthToken:  rotated,
	}, nil
}

func (c *Client) RevokeAllCredentials(ctx context.Context, authToken, issuerDid, signingKey, did string) (ports.RevocationResult, error) {
	payload := map[string]any{
		"issuerDid":         issuerDid,
		"signingPrivateKey": signingKey,
		"did":               did,
	}

	rotated, err := c.post(ctx, "/credentials/revokeAll", authToken, payload, nil)
	if err != nil {
		return ports.RevocationResult{}, err
	}
	return ports.RevocationResult{AuthToken: rotated}, nil
}

func (c *Client) IssueCredentials(ctx context.Context, authToken, issuerDid, signingKey, subjectDid string, subjects []models.CredentialSubject) (ports.IssueResult, error) {
	wireSubjects := make([]map[string]any, 0, len(subjects))
	for _, subject := range subjects {
		ws, err := models.SubjectPayload(subject)
		if err != nil {
			return ports.IssueResult{}, fmt.Errorf("encode credential subject: %w", err)
		}
		wireSubjects = append(wireSubjects, ws)
	}

	payload := map[string]any{
		"issuerDid":          issuerDid,
		"signingPrivateKey":  signingKey,
		"subjectDid":         subjectDid,
		"credentialSubjects": wireSubjects,
	}

	var body issueResponse
	rotated, err := c.post(ctx, "/credentials/issue", authToken, payload, &body)
	if err != nil {
		return ports.IssueResult{}, err
	}
	return ports.IssueResult{
		Credentials: body.Credentials,
		AuthToken:   rotated,
	}, nil
}

// post sends one provider call and returns the rotated auth token from the
// response header, empty when the provider kept the token unchanged.
func (c *Client) post(ctx context.Context, path, authToken string, payload any, out any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal provider payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("provider call failed",
			"path", path,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return "", fmt.Errorf("provider call %s: unexpected status %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return "", fmt.Errorf("decode provider response %s: %w", path, err)
		}
	}

	return resp.Header.Get(authTokenHeader), nil
}
