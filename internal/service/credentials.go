package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/shared/logging"
)

// ContractSource hands out the currently bound contract handle.
type ContractSource interface {
	Contract() (domain.CertificateContract, error)
}

// CredentialService serves read-only views over on-chain certificate state
// and the resume hand-off. Nothing is cached; every call re-reads the chain
// through the current contract handle.
type CredentialService struct {
	contracts ContractSource
	resume    domain.ResumeGenerator
	logger    *logging.Logger
}

// NewCredentialService creates the credential view service.
func NewCredentialService(contracts ContractSource, resume domain.ResumeGenerator, logger *logging.Logger) *CredentialService {
	return &CredentialService{
		contracts: contracts,
		resume:    resume,
		logger:    logger,
	}
}

// OwnedBy lists the certificates held by owner, enumerated in token index
// order. A certificate that fails to load is logged and skipped; the rest
// of the list is still returned in order.
func (s *CredentialService) OwnedBy(ctx context.Context, owner domain.Address) ([]domain.Credential, error) {
	contract, err := s.contracts.Contract()
	if err != nil {
		return nil, err
	}

	balance, err := contract.BalanceOf(ctx, owner)
	if err != nil {
		return nil, err
	}

	count := balance.Int64()
	credentials := make([]domain.Credential, 0, count)
	for i := int64(0); i < count; i++ {
		tokenID, err := contract.TokenOfOwnerByIndex(ctx, owner, i)
		if err != nil {
			s.logger.WithError(err).WithField("index", i).Warn("token enumeration failed, skipping")
			continue
		}
		credential, err := contract.Verify(ctx, tokenID)
		if err != nil {
			s.logger.WithError(err).WithField("token_id", tokenID.String()).Warn("certificate load failed, skipping")
			continue
		}
		credential.TokenID = tokenID
		credential.Recipient = owner
		credentials = append(credentials, *credential)
	}
	return credentials, nil
}

// IssuedBy lists the certificates issued by issuer, each resolved to its
// current owner. Per-token failures are logged and skipped.
func (s *CredentialService) IssuedBy(ctx context.Context, issuer domain.Address) ([]domain.Credential, error) {
	contract, err := s.contracts.Contract()
	if err != nil {
		return nil, err
	}

	tokenIDs, err := contract.ListIssued(ctx, issuer)
	if err != nil {
		return nil, err
	}

	credentials := make([]domain.Credential, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		credential, err := contract.Verify(ctx, tokenID)
		if err != nil {
			s.logger.WithError(err).WithField("token_id", tokenID.String()).Warn("certificate load failed, skipping")
			continue
		}
		credential.TokenID = tokenID
		if owner, err := contract.OwnerOf(ctx, tokenID); err == nil {
			credential.Recipient = owner
		}
		credentials = append(credentials, *credential)
	}
	return credentials, nil
}

// Verify loads a single certificate by token id.
func (s *CredentialService) Verify(ctx context.Context, tokenID *big.Int) (*domain.Credential, error) {
	contract, err := s.contracts.Contract()
	if err != nil {
		return nil, err
	}

	credential, err := contract.Verify(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	credential.TokenID = tokenID
	return credential, nil
}

// Issue mints a new certificate to recipient through the bound contract.
func (s *CredentialService) Issue(ctx context.Context, recipient domain.Address, studentName, degree, university, uri string) (domain.TransactionHandle, error) {
	contract, err := s.contracts.Contract()
	if err != nil {
		return domain.TransactionHandle{}, err
	}
	return contract.Mint(ctx, recipient, studentName, degree, university, uri)
}

// GenerateResume forwards the identity's certificates to the external
// resume service. An empty certificate list is rejected before any call
// leaves the process.
func (s *CredentialService) GenerateResume(ctx context.Context, identity *domain.UserIdentity) (string, error) {
	if identity == nil || identity.WalletAddress == "" {
		return "", domain.ErrNoActiveSession
	}

	credentials, err := s.OwnedBy(ctx, identity.WalletAddress)
	if err != nil {
		return "", err
	}
	if len(credentials) == 0 {
		return "", domain.ErrEmptyCredentials
	}

	text, err := s.resume.Generate(ctx, identity, credentials)
	if err != nil {
		return "", fmt.Errorf("generate resume: %w", err)
	}
	return text, nil
}
