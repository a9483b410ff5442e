package service_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/internal/service"
)

// fixedSource hands out one contract handle, or an error.
type fixedSource struct {
	contract domain.CertificateContract
	err      error
}

func (f fixedSource) Contract() (domain.CertificateContract, error) {
	return f.contract, f.err
}

type CredentialServiceTestSuite struct {
	suite.Suite
	contract *MockContract
	resume   *MockResume
	service  *service.CredentialService
}

func (s *CredentialServiceTestSuite) SetupTest() {
	s.contract = new(MockContract)
	s.resume = new(MockResume)
	s.service = service.NewCredentialService(
		fixedSource{contract: s.contract}, s.resume, testLogger())
}

func credentialFixture(name string) *domain.Credential {
	return &domain.Credential{
		StudentName: name,
		Degree:      "BSc Computer Science",
		University:  "Example University",
		IPFSHash:    "QmExample",
	}
}

func (s *CredentialServiceTestSuite) TestOwnedBySkipsFailingToken() {
	ctx := context.Background()
	owner := domain.Address(testAccount)

	s.contract.On("BalanceOf", ctx, owner).Return(big.NewInt(3), nil)
	s.contract.On("TokenOfOwnerByIndex", ctx, owner, int64(0)).Return(big.NewInt(10), nil)
	s.contract.On("TokenOfOwnerByIndex", ctx, owner, int64(1)).Return(big.NewInt(11), nil)
	s.contract.On("TokenOfOwnerByIndex", ctx, owner, int64(2)).Return(big.NewInt(12), nil)
	s.contract.On("Verify", ctx, big.NewInt(10)).Return(credentialFixture("Ada"), nil)
	s.contract.On("Verify", ctx, big.NewInt(11)).
		Return(nil, errors.New("execution reverted"))
	s.contract.On("Verify", ctx, big.NewInt(12)).Return(credentialFixture("Grace"), nil)

	credentials, err := s.service.OwnedBy(ctx, owner)
	s.Require().NoError(err)

	// The failing middle token is skipped, the rest keep their order.
	s.Require().Len(credentials, 2)
	s.Equal("Ada", credentials[0].StudentName)
	s.Equal(int64(10), credentials[0].TokenID.Int64())
	s.Equal("Grace", credentials[1].StudentName)
	s.Equal(int64(12), credentials[1].TokenID.Int64())
	s.Equal(owner, credentials[0].Recipient)
}

func (s *CredentialServiceTestSuite) TestOwnedByEmptyBalance() {
	ctx := context.Background()
	s.contract.On("BalanceOf", ctx, mock.Anything).Return(big.NewInt(0), nil)

	credentials, err := s.service.OwnedBy(ctx, testAccount)
	s.Require().NoError(err)
	s.Empty(credentials)
}

func (s *CredentialServiceTestSuite) TestOwnedByWithoutContract() {
	unbound := service.NewCredentialService(
		fixedSource{err: domain.ErrContractNotBound}, s.resume, testLogger())

	_, err := unbound.OwnedBy(context.Background(), testAccount)
	s.ErrorIs(err, domain.ErrContractNotBound)
}

func (s *CredentialServiceTestSuite) TestIssuedByResolvesOwners() {
	ctx := context.Background()
	issuer := domain.Address(testAccount)

	s.contract.On("ListIssued", ctx, issuer).
		Return([]*big.Int{big.NewInt(5), big.NewInt(6)}, nil)
	s.contract.On("Verify", ctx, big.NewInt(5)).Return(credentialFixture("Ada"), nil)
	s.contract.On("Verify", ctx, big.NewInt(6)).Return(credentialFixture("Grace"), nil)
	s.contract.On("OwnerOf", ctx, big.NewInt(5)).Return(domain.Address(otherAccount), nil)
	s.contract.On("OwnerOf", ctx, big.NewInt(6)).Return(domain.Address(""), errors.New("burned"))

	credentials, err := s.service.IssuedBy(ctx, issuer)
	s.Require().NoError(err)

	s.Require().Len(credentials, 2)
	s.Equal(otherAccount, credentials[0].Recipient)
	s.Empty(credentials[1].Recipient)
}

func (s *CredentialServiceTestSuite) TestVerify() {
	ctx := context.Background()
	s.contract.On("Verify", ctx, big.NewInt(7)).Return(credentialFixture("Ada"), nil)

	credential, err := s.service.Verify(ctx, big.NewInt(7))
	s.Require().NoError(err)
	s.Equal("Ada", credential.StudentName)
	s.Equal(int64(7), credential.TokenID.Int64())
}

func (s *CredentialServiceTestSuite) TestIssue() {
	ctx := context.Background()
	s.contract.On("Mint", ctx, domain.Address(otherAccount), "Ada", "BSc", "Example University", "ipfs://QmExample").
		Return(domain.TransactionHandle{Hash: "0xdead"}, nil)

	handle, err := s.service.Issue(ctx, otherAccount, "Ada", "BSc", "Example University", "ipfs://QmExample")
	s.Require().NoError(err)
	s.Equal("0xdead", handle.Hash)
}

func (s *CredentialServiceTestSuite) TestGenerateResume() {
	ctx := context.Background()
	identity := &domain.UserIdentity{
		ID:            "wallet-" + testAccount,
		Name:          "Ada",
		AccountType:   domain.AccountTypeStudent,
		WalletAddress: testAccount,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	s.contract.On("BalanceOf", ctx, domain.Address(testAccount)).Return(big.NewInt(1), nil)
	s.contract.On("TokenOfOwnerByIndex", ctx, domain.Address(testAccount), int64(0)).
		Return(big.NewInt(10), nil)
	s.contract.On("Verify", ctx, big.NewInt(10)).Return(credentialFixture("Ada"), nil)
	s.resume.On("Generate", ctx, identity, mock.Anything).Return("generated resume", nil)

	text, err := s.service.GenerateResume(ctx, identity)
	s.Require().NoError(err)
	s.Equal("generated resume", text)
}

func (s *CredentialServiceTestSuite) TestGenerateResumeWithoutCredentials() {
	ctx := context.Background()
	identity := &domain.UserIdentity{
		ID:            "wallet-" + testAccount,
		WalletAddress: testAccount,
	}

	s.contract.On("BalanceOf", ctx, domain.Address(testAccount)).Return(big.NewInt(0), nil)

	_, err := s.service.GenerateResume(ctx, identity)
	s.ErrorIs(err, domain.ErrEmptyCredentials)
	s.resume.AssertNotCalled(s.T(), "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CredentialServiceTestSuite) TestGenerateResumeWithoutWallet() {
	_, err := s.service.GenerateResume(context.Background(), &domain.UserIdentity{ID: "u1"})
	s.ErrorIs(err, domain.ErrNoActiveSession)

	_, err = s.service.GenerateResume(context.Background(), nil)
	s.ErrorIs(err, domain.ErrNoActiveSession)
}

func TestCredentialServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CredentialServiceTestSuite))
}
