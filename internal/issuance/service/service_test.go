package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"issuer-gateway/internal/issuance/models"
	issuerstore "issuer-gateway/internal/issuance/store/issuer"
	userstore "issuer-gateway/internal/issuance/store/user"
	dErrors "issuer-gateway/pkg/domain-errors"
)

const (
	testIssuerDid  = "did:example:issuer"
	testSubjectDid = "did:example:subject-1"
	testUserCode   = "WXYZ23"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	log      *callLog
	provider *fakeProvider
	users    *recordingUserStore
	issuers  *issuerstore.MemoryStore
	svc      *Service
	issuer   *models.Issuer
	user     *models.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.log = &callLog{}
	s.provider = newFakeProvider(s.log)
	s.users = &recordingUserStore{UserStore: userstore.NewMemoryStore(), log: s.log}
	s.issuers = issuerstore.NewMemoryStore()

	s.issuer = &models.Issuer{
		ID:                uuid.New(),
		Did:               testIssuerDid,
		Name:              "Test Issuer",
		AuthToken:         "token-0",
		SigningPrivateKey: "issuer-signing-key",
	}
	s.Require().NoError(s.issuers.Create(s.ctx, s.issuer))

	s.user = &models.User{
		ID:       uuid.New(),
		UserCode: testUserCode,
		Phone:    "+15550100",
		Ssn:      "123-45-6789",
		Dob:      "1990-01-15",
	}
	s.Require().NoError(s.users.Create(s.ctx, s.user))

	ledger := NewLedger(s.issuers)
	validator := NewValidator(s.provider, ledger)
	associations := NewAssociationManager(s.users, s.provider, validator, ledger)
	pipeline := NewPipeline(s.provider, ledger)
	s.svc = NewService(s.issuers, validator, associations, pipeline, nil)
	s.log.reset()
}

func (s *ServiceSuite) associationRequest(did string) *models.CredentialsRequest {
	return &models.CredentialsRequest{
		UserDidAssociation: &models.UserDidAssociation{
			UserCode:  testUserCode,
			Did:       models.SignedDid{ID: did, Proof: map[string]any{"type": "Ed25519Signature2020"}},
			IssuerDid: testIssuerDid,
		},
	}
}

func (s *ServiceSuite) requestsInfo(subjectDid string, types ...string) *models.CredentialRequestsInfo {
	requests := make([]models.CredentialRequest, 0, len(types))
	for _, t := range types {
		requests = append(requests, models.CredentialRequest{Type: t})
	}
	return &models.CredentialRequestsInfo{
		IssuerDid:          testIssuerDid,
		SubjectDid:         subjectDid,
		CredentialRequests: requests,
		Signature:          "sig",
	}
}

// setUserDid simulates a prior association and discards the setup calls from
// the log so tests only observe the request under test.
func (s *ServiceSuite) setUserDid(did string) {
	_, err := s.users.Patch(s.ctx, s.user.ID, models.UserPatch{Did: &did})
	s.Require().NoError(err)
	s.log.reset()
}

func (s *ServiceSuite) storedUser() *models.User {
	user, err := s.users.FindByPhone(s.ctx, s.user.Phone)
	s.Require().NoError(err)
	return user
}

func (s *ServiceSuite) storedIssuerToken() string {
	issuer, err := s.issuers.FindByDid(s.ctx, testIssuerDid)
	s.Require().NoError(err)
	return issuer.AuthToken
}

func (s *ServiceSuite) TestFirstAssociationIssuesDefaultSet() {
	resp, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, s.associationRequest(testSubjectDid))
	s.Require().NoError(err)

	s.Equal([]string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential}, resp.CredentialTypesIssued)

	user := s.storedUser()
	s.Equal(testSubjectDid, user.Did)
	s.Empty(user.UserCode, "one-time code must be consumed")

	verifies := s.provider.callsTo("VerifyDidDocument")
	s.Require().Len(verifies, 1)
	s.Equal(testSubjectDid, verifies[0].did)

	issues := s.provider.callsTo("IssueCredentials")
	s.Require().Len(issues, 1, "default set goes out in one batched call")
	s.Equal([]string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential}, issues[0].types)

	s.Empty(s.provider.callsTo("RevokeAllCredentials"))
}

func (s *ServiceSuite) TestIdenticalDidResubmissionIsIdempotent() {
	s.setUserDid(testSubjectDid)

	resp, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, s.associationRequest(testSubjectDid))
	s.Require().NoError(err)

	s.Empty(resp.CredentialTypesIssued)
	s.NotNil(resp.CredentialTypesIssued, "issued list is empty, never null")

	user := s.storedUser()
	s.Equal(testSubjectDid, user.Did)
	s.Empty(user.UserCode)

	s.Empty(s.provider.callsTo("RevokeAllCredentials"), "resubmission must not revoke")
	s.Empty(s.provider.callsTo("IssueCredentials"), "resubmission must not re-issue")
}

func (s *ServiceSuite) TestDidRotationRevokesBeforeAssociating() {
	const oldDid = "did:example:old"
	s.setUserDid(oldDid)

	resp, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, s.associationRequest(testSubjectDid))
	s.Require().NoError(err)
	s.Equal([]string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential}, resp.CredentialTypesIssued)

	revokes := s.provider.callsTo("RevokeAllCredentials")
	s.Require().Len(revokes, 1, "exactly one revocation for the previous DID")
	s.Equal(oldDid, revokes[0].did)

	s.Equal([]string{
		"provider.VerifyDidDocument",
		"provider.RevokeAllCredentials",
		"users.Patch",
		"provider.IssueCredentials",
	}, s.log.all(), "revocation must complete before the new DID is persisted")

	user := s.storedUser()
	s.Equal(testSubjectDid, user.Did)
	s.Empty(user.UserCode)
}

func (s *ServiceSuite) TestIssuerDidMismatchRejectsWithoutSideEffects() {
	req := &models.CredentialsRequest{
		CredentialRequestsInfo: &models.CredentialRequestsInfo{
			IssuerDid:          "did:example:other-issuer",
			SubjectDid:         testSubjectDid,
			CredentialRequests: []models.CredentialRequest{{Type: models.TypeDobCredential}},
			Signature:          "sig",
		},
		UserDidAssociation: s.associationRequest(testSubjectDid).UserDidAssociation,
	}

	_, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Zero(s.provider.callCount(), "mismatch must be rejected before any external call")
	s.Empty(s.log.all())

	user := s.storedUser()
	s.Empty(user.Did)
	s.Equal(testUserCode, user.UserCode)
}

func (s *ServiceSuite) TestEmptyEnvelopeRejected() {
	_, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, &models.CredentialsRequest{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Zero(s.provider.callCount())
}

func (s *ServiceSuite) TestUnknownIssuerRejected() {
	_, err := s.svc.HandleCredentialsRequest(s.ctx, "did:example:ghost", s.associationRequest(testSubjectDid))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Zero(s.provider.callCount())
}

func (s *ServiceSuite) TestUnknownUserCodeRejected() {
	req := s.associationRequest(testSubjectDid)
	req.UserDidAssociation.UserCode = "NOSUCH"

	_, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Zero(s.provider.callCount())
}

func (s *ServiceSuite) TestRequestsWithoutPriorAssociationRejected() {
	req := &models.CredentialsRequest{
		CredentialRequestsInfo: s.requestsInfo("did:example:never-associated", models.TypeDobCredential),
	}

	_, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Zero(s.provider.callCount())
}

func (s *ServiceSuite) TestVerificationFailureStillSyncsRotatedToken() {
	s.provider.verifyDidResult.IsVerified = false
	s.provider.verifyDidResult.Message = "proof invalid"
	s.provider.verifyDidResult.AuthToken = "token-9"

	_, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, s.associationRequest(testSubjectDid))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVerification))

	s.Equal("token-9", s.storedIssuerToken(), "token rotated alongside a failed verification must still be persisted")

	user := s.storedUser()
	s.Empty(user.Did)
	s.Equal(testUserCode, user.UserCode, "failed verification must not consume the code")
}

func (s *ServiceSuite) TestEveryCallUsesTheFreshestToken() {
	const oldDid = "did:example:old"
	s.setUserDid(oldDid)
	s.provider.nextTokens = []string{"token-1", "token-2", "token-3", "token-4", "token-5"}

	req := s.associationRequest(testSubjectDid)
	req.CredentialRequestsInfo = s.requestsInfo(testSubjectDid, models.TypeDobCredential)

	resp, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, req)
	s.Require().NoError(err)
	s.Equal([]string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential}, resp.CredentialTypesIssued)

	tokens := make([]string, 0, len(s.provider.calls))
	for _, call := range s.provider.calls {
		tokens = append(tokens, call.authToken)
	}
	s.Equal([]string{"token-0", "token-1", "token-2", "token-3", "token-4"}, tokens,
		"each provider call must carry the token returned by the previous one")
	s.Equal("token-5", s.storedIssuerToken())
}

func (s *ServiceSuite) TestUnfulfillableTypesAreSkippedNotRejected() {
	lean := &models.User{ID: uuid.New(), UserCode: "LEAN42", Phone: "+15550199"}
	s.Require().NoError(s.users.Create(s.ctx, lean))

	req := &models.CredentialsRequest{
		UserDidAssociation: &models.UserDidAssociation{
			UserCode:  "LEAN42",
			Did:       models.SignedDid{ID: "did:example:lean"},
			IssuerDid: testIssuerDid,
		},
		CredentialRequestsInfo: s.requestsInfo("did:example:lean",
			models.TypePhoneCredential, models.TypeDobCredential, "PassportCredential"),
	}

	resp, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, req)
	s.Require().NoError(err)
	s.Equal([]string{models.TypePhoneCredential}, resp.CredentialTypesIssued,
		"unknown types and types without backing attributes are dropped silently")
}

func (s *ServiceSuite) TestDuplicateTypesCollapseInResponse() {
	req := s.associationRequest(testSubjectDid)
	req.CredentialRequestsInfo = s.requestsInfo(testSubjectDid,
		models.TypeDobCredential, models.TypeDobCredential)

	resp, err := s.svc.HandleCredentialsRequest(s.ctx, testIssuerDid, req)
	s.Require().NoError(err)
	s.Equal([]string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential}, resp.CredentialTypesIssued)
}
