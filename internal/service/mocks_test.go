package service_test

import (
	"context"
	"math/big"

	"github.com/stretchr/testify/mock"

	"github.com/credverse/credential-portal/internal/domain"
)

// MockProvider is a mock implementation of domain.WalletProvider. The
// event channel is owned by the test and handed out as-is.
type MockProvider struct {
	mock.Mock
	events chan domain.ProviderEvent
}

func NewMockProvider() *MockProvider {
	return &MockProvider{events: make(chan domain.ProviderEvent, 8)}
}

func (m *MockProvider) Accounts(ctx context.Context) ([]domain.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *MockProvider) RequestAccounts(ctx context.Context) ([]domain.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *MockProvider) ChainID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProvider) SwitchChain(ctx context.Context, chainID int64) error {
	args := m.Called(ctx, chainID)
	return args.Error(0)
}

func (m *MockProvider) AddChain(ctx context.Context, descriptor domain.ChainDescriptor) error {
	args := m.Called(ctx, descriptor)
	return args.Error(0)
}

func (m *MockProvider) Signer(address domain.Address) (domain.Signer, error) {
	args := m.Called(address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Signer), args.Error(1)
}

func (m *MockProvider) Events() <-chan domain.ProviderEvent {
	m.Called()
	return m.events
}

func (m *MockProvider) Close() {
	m.Called()
}

// fakeSigner satisfies domain.Signer for wiring through the session.
type fakeSigner struct {
	address domain.Address
}

func (s fakeSigner) Address() domain.Address { return s.address }

// MockBinder is a mock implementation of domain.ContractBinder
type MockBinder struct {
	mock.Mock
}

func (m *MockBinder) Bind(signer domain.Signer) (domain.CertificateContract, error) {
	args := m.Called(signer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CertificateContract), args.Error(1)
}

// MockContract is a mock implementation of domain.CertificateContract
type MockContract struct {
	mock.Mock
}

func (m *MockContract) Mint(ctx context.Context, recipient domain.Address, studentName, degree, university, uri string) (domain.TransactionHandle, error) {
	args := m.Called(ctx, recipient, studentName, degree, university, uri)
	return args.Get(0).(domain.TransactionHandle), args.Error(1)
}

func (m *MockContract) Verify(ctx context.Context, tokenID *big.Int) (*domain.Credential, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *MockContract) BalanceOf(ctx context.Context, owner domain.Address) (*big.Int, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockContract) TokenOfOwnerByIndex(ctx context.Context, owner domain.Address, index int64) (*big.Int, error) {
	args := m.Called(ctx, owner, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockContract) OwnerOf(ctx context.Context, tokenID *big.Int) (domain.Address, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(domain.Address), args.Error(1)
}

func (m *MockContract) ListIssued(ctx context.Context, issuer domain.Address) ([]*big.Int, error) {
	args := m.Called(ctx, issuer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*big.Int), args.Error(1)
}

// MockNotifier is a mock implementation of domain.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SessionConnected(ctx context.Context, address domain.Address, chainID int64) error {
	args := m.Called(ctx, address, chainID)
	return args.Error(0)
}

func (m *MockNotifier) SessionDisconnected(ctx context.Context, reason string) error {
	args := m.Called(ctx, reason)
	return args.Error(0)
}

func (m *MockNotifier) ReloadRequested(ctx context.Context, chainID int64) error {
	args := m.Called(ctx, chainID)
	return args.Error(0)
}

func (m *MockNotifier) NetworkSwitched(ctx context.Context, chainID int64) error {
	args := m.Called(ctx, chainID)
	return args.Error(0)
}

func (m *MockNotifier) IdentityCreated(ctx context.Context, identity *domain.UserIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockNotifier) IdentityLinked(ctx context.Context, identity *domain.UserIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockNotifier) IdentityUnlinked(ctx context.Context, identity *domain.UserIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockNotifier) IdentityCleared(ctx context.Context, identityID string) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

// relaxNotifier appends catch-all expectations so notifications the test
// does not assert on are accepted. Must be called after any specific
// expectation, since testify matches in registration order.
func relaxNotifier(n *MockNotifier) {
	n.On("SessionConnected", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("SessionDisconnected", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("ReloadRequested", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("NetworkSwitched", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("IdentityCreated", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("IdentityLinked", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("IdentityUnlinked", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("IdentityCleared", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// MockObserver is a mock implementation of the wallet observer
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) SyncWallet(ctx context.Context, address domain.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

// MockResume is a mock implementation of domain.ResumeGenerator
type MockResume struct {
	mock.Mock
}

func (m *MockResume) Generate(ctx context.Context, identity *domain.UserIdentity, credentials []domain.Credential) (string, error) {
	args := m.Called(ctx, identity, credentials)
	return args.String(0), args.Error(1)
}
