package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
)

// callLog records the order of provider and store calls across a request so
// tests can assert ordering guarantees, not just call counts.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, name)
}

func (l *callLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// providerCall captures the arguments of one provider round trip.
type providerCall struct {
	method    string
	authToken string
	did       string
	types     []string
}

// fakeProvider is a scriptable ports.CredentialProvider. Each call consumes
// the next entry of nextTokens as the rotated auth token, mirroring a provider
// that rotates on every response.
type fakeProvider struct {
	mu         sync.Mutex
	log        *callLog
	calls      []providerCall
	nextTokens []string

	verifyDidResult  ports.VerificationResult
	verifyDidErr     error
	verifyReqsResult ports.VerificationResult
	verifyReqsErr    error
	revokeErr        error
	issueErr         error
}

func newFakeProvider(log *callLog) *fakeProvider {
	return &fakeProvider{
		log:              log,
		verifyDidResult:  ports.VerificationResult{IsVerified: true},
		verifyReqsResult: ports.VerificationResult{IsVerified: true},
	}
}

func (f *fakeProvider) popToken() string {
	if len(f.nextTokens) == 0 {
		return ""
	}
	token := f.nextTokens[0]
	f.nextTokens = f.nextTokens[1:]
	return token
}

func (f *fakeProvider) record(call providerCall) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.log.add("provider." + call.method)
	return f.popToken()
}

func (f *fakeProvider) callsTo(method string) []providerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []providerCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeProvider) VerifyDidDocument(_ context.Context, authToken, _ string, did models.SignedDid) (ports.VerificationResult, error) {
	rotated := f.record(providerCall{method: "VerifyDidDocument", authToken: authToken, did: did.ID})
	if f.verifyDidErr != nil {
		return ports.VerificationResult{}, f.verifyDidErr
	}
	result := f.verifyDidResult
	if result.AuthToken == "" {
		result.AuthToken = rotated
	}
	return result, nil
}

func (f *fakeProvider) VerifyCredentialRequests(_ context.Context, authToken, _, subjectDid string, requests []models.CredentialRequest) (ports.VerificationResult, error) {
	types := make([]string, 0, len(requests))
	for _, r := range requests {
		types = append(types, r.Type)
	}
	rotated := f.record(providerCall{method: "VerifyCredentialRequests", authToken: authToken, did: subjectDid, types: types})
	if f.verifyReqsErr != nil {
		return ports.VerificationResult{}, f.verifyReqsErr
	}
	result := f.verifyReqsResult
	if result.AuthToken == "" {
		result.AuthToken = rotated
	}
	return result, nil
}

func (f *fakeProvider) RevokeAllCredentials(_ context.Context, authToken, _, _, did string) (ports.RevocationResult, error) {
	rotated := f.record(providerCall{method: "RevokeAllCredentials", authToken: authToken, did: did})
	if f.revokeErr != nil {
		return ports.RevocationResult{}, f.revokeErr
	}
	return ports.RevocationResult{AuthToken: rotated}, nil
}

func (f *fakeProvider) IssueCredentials(_ context.Context, authToken, _, _, subjectDid string, subjects []models.CredentialSubject) (ports.IssueResult, error) {
	types := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		types = append(types, subject.CredentialType())
	}
	rotated := f.record(providerCall{method: "IssueCredentials", authToken: authToken, did: subjectDid, types: types})
	if f.issueErr != nil {
		return ports.IssueResult{}, f.issueErr
	}
	return ports.IssueResult{AuthToken: rotated}, nil
}

// recordingUserStore wraps a UserStore and logs mutations into the shared
// call log so their position relative to provider calls can be asserted.
type recordingUserStore struct {
	ports.UserStore
	log *callLog
}

func (s *recordingUserStore) Create(ctx context.Context, user *models.User) error {
	s.log.add("users.Create")
	return s.UserStore.Create(ctx, user)
}

func (s *recordingUserStore) Patch(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	s.log.add("users.Patch")
	return s.UserStore.Patch(ctx, id, patch)
}
