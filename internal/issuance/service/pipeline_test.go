package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/internal/issuance/ports"
	"issuer-gateway/internal/issuance/service/mocks"
	issuerstore "issuer-gateway/internal/issuance/store/issuer"
	dErrors "issuer-gateway/pkg/domain-errors"
)

type PipelineSuite struct {
	suite.Suite
	ctx      context.Context
	provider *mocks.MockCredentialProvider
	issuers  *issuerstore.MemoryStore
	pipeline *Pipeline
	issuer   *models.Issuer
	user     *models.User
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = mocks.NewMockCredentialProvider(gomock.NewController(s.T()))
	s.issuers = issuerstore.NewMemoryStore()
	s.issuer = &models.Issuer{ID: uuid.New(), Did: testIssuerDid, AuthToken: "token-0", SigningPrivateKey: "key"}
	s.Require().NoError(s.issuers.Create(s.ctx, s.issuer))
	s.pipeline = NewPipeline(s.provider, NewLedger(s.issuers))
	s.user = &models.User{
		ID:    uuid.New(),
		Did:   testSubjectDid,
		Phone: "+15550100",
		Ssn:   "123-45-6789",
		Dob:   "1990-01-15",
	}
}

func (s *PipelineSuite) TestIssueBatchesAllFulfillableTypes() {
	var captured []models.CredentialSubject
	s.provider.EXPECT().
		IssueCredentials(gomock.Any(), "token-0", testIssuerDid, "key", testSubjectDid, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _, _ string, subjects []models.CredentialSubject) (ports.IssueResult, error) {
			captured = subjects
			return ports.IssueResult{AuthToken: "token-1"}, nil
		})

	issued, err := s.pipeline.Issue(s.ctx, s.issuer, testSubjectDid,
		[]string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential}, s.user)
	s.Require().NoError(err)
	s.Equal([]string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential}, issued)

	s.Require().Len(captured, 3)
	s.Equal(models.DobSubject{ID: testSubjectDid, Dob: s.user.Dob}, captured[0])
	s.Equal(models.SsnSubject{ID: testSubjectDid, Ssn: s.user.Ssn}, captured[1])
	s.Equal(models.PhoneSubject{ID: testSubjectDid, Phone: s.user.Phone}, captured[2])

	s.Equal("token-1", s.issuer.AuthToken)
}

func (s *PipelineSuite) TestIssueSkipsUnknownAndUnbackedTypes() {
	s.user.Ssn = ""

	s.provider.EXPECT().
		IssueCredentials(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _, _ string, subjects []models.CredentialSubject) (ports.IssueResult, error) {
			s.Require().Len(subjects, 1)
			return ports.IssueResult{}, nil
		})

	issued, err := s.pipeline.Issue(s.ctx, s.issuer, testSubjectDid,
		[]string{models.TypeSsnCredential, "PassportCredential", models.TypeDobCredential}, s.user)
	s.Require().NoError(err)
	s.Equal([]string{models.TypeDobCredential}, issued)
}

func (s *PipelineSuite) TestIssueEmptyBatchSkipsProviderCall() {
	issued, err := s.pipeline.Issue(s.ctx, s.issuer, testSubjectDid, []string{"PassportCredential"}, s.user)
	s.Require().NoError(err)
	s.Empty(issued)
}

func (s *PipelineSuite) TestIssueProviderFailure() {
	s.provider.EXPECT().
		IssueCredentials(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.IssueResult{}, errors.New("boom"))

	_, err := s.pipeline.Issue(s.ctx, s.issuer, testSubjectDid, []string{models.TypeDobCredential}, s.user)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
}

func (s *PipelineSuite) TestDefaultTypes() {
	tests := []struct {
		name string
		user models.User
		want []string
	}{
		{
			name: "all attributes",
			user: models.User{Dob: "1990-01-15", Ssn: "123-45-6789", Phone: "+15550100"},
			want: []string{models.TypeDobCredential, models.TypeSsnCredential, models.TypePhoneCredential},
		},
		{
			name: "phone only",
			user: models.User{Phone: "+15550100"},
			want: []string{models.TypePhoneCredential},
		},
		{
			name: "no attributes",
			user: models.User{},
			want: nil,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, s.pipeline.DefaultTypes(&tt.user))
		})
	}
}
