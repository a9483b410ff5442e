package domain

import (
	"context"
	"math/big"
	"time"
)

// Address is a lowercase 0x-prefixed hex string; normalization happens at
// the provider boundary.
type Address = string

// AccountType enumerates the two portal account kinds.
type AccountType string

const (
	AccountTypeStudent     AccountType = "student"
	AccountTypeInstitution AccountType = "institution"
)

// ValidAccountType reports whether t is one of the known account kinds.
func ValidAccountType(t AccountType) bool {
	return t == AccountTypeStudent || t == AccountTypeInstitution
}

// UserIdentity is the application-level account record, independent of any
// wallet. It is persisted as a single serialized record; every write is a
// full-record overwrite.
type UserIdentity struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email,omitempty"`
	AccountType   AccountType `json:"account_type"`
	WalletAddress Address     `json:"wallet_address,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Credential is a read-only projection of on-chain certificate state.
// It is fetched fresh on each use and never cached.
type Credential struct {
	TokenID     *big.Int `json:"token_id"`
	StudentName string   `json:"student_name"`
	Degree      string   `json:"degree"`
	University  string   `json:"university"`
	IPFSHash    string   `json:"ipfs_hash"`
	Recipient   Address  `json:"recipient,omitempty"`
}

// TransactionHandle identifies a submitted transaction. Callers await
// finality separately.
type TransactionHandle struct {
	Hash string `json:"hash"`
}

// SessionState is an immutable snapshot of the chain session for screens.
// IsCorrectNetwork is derived from its inputs at snapshot time and never
// stored independently.
type SessionState struct {
	Address          Address
	ChainID          int64
	HasChain         bool
	NetworkName      string
	Connected        bool
	ContractBound    bool
	IsCorrectNetwork bool
}

// Currency describes the native currency of a chain for the add-chain
// request descriptor.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainDescriptor is the fixed descriptor handed to the wallet provider
// when the required chain is unknown to it.
type ChainDescriptor struct {
	ChainID        int64    `json:"chain_id"`
	Name           string   `json:"name"`
	NativeCurrency Currency `json:"native_currency"`
	RPCURLs        []string `json:"rpc_urls"`
	ExplorerURLs   []string `json:"explorer_urls"`
}

// ProviderEvent is a typed event pushed by the wallet provider boundary.
type ProviderEvent interface {
	providerEvent()
}

// AccountsChanged reports the current authorized account set. An empty
// set means the wallet revoked access.
type AccountsChanged struct {
	Accounts []Address
}

// ChainChanged reports the active chain switching.
type ChainChanged struct {
	ChainID int64
}

func (AccountsChanged) providerEvent() {}
func (ChainChanged) providerEvent()    {}

// Signer authorizes transaction submission for exactly one wallet account.
// Concrete signers come from the wallet provider boundary; the portal never
// holds key material itself.
type Signer interface {
	Address() Address
}

// WalletProvider is the boundary to the external wallet. Request and
// response shapes follow the wallet's JSON-RPC surface, not this core.
type WalletProvider interface {
	// Accounts lists already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]Address, error)

	// RequestAccounts asks the wallet for account access. The user may
	// reject, in which case the error wraps ErrUserRejected.
	RequestAccounts(ctx context.Context) ([]Address, error)

	// ChainID returns the active chain id.
	ChainID(ctx context.Context) (int64, error)

	// SwitchChain asks the wallet to switch the active chain. An
	// unregistered chain yields an error wrapping ErrUnknownChain.
	SwitchChain(ctx context.Context, chainID int64) error

	// AddChain registers a chain descriptor with the wallet.
	AddChain(ctx context.Context, descriptor ChainDescriptor) error

	// Signer returns a signer bound to the given authorized account.
	Signer(address Address) (Signer, error)

	// Events returns the provider's event stream. The channel is owned by
	// the provider and closed on Close.
	Events() <-chan ProviderEvent

	// Close tears the provider connection down.
	Close()
}

// CertificateContract is the fixed, versioned method surface of the
// deployed certificate contract. None of these may be invoked without a
// bound contract handle; callers check first.
type CertificateContract interface {
	// Mint issues a certificate to recipient. Write operation; the caller
	// awaits finality separately via the returned handle.
	Mint(ctx context.Context, recipient Address, studentName, degree, university, uri string) (TransactionHandle, error)

	// Verify returns the certificate fields for a token id.
	Verify(ctx context.Context, tokenID *big.Int) (*Credential, error)

	// BalanceOf returns the number of certificates held by owner.
	BalanceOf(ctx context.Context, owner Address) (*big.Int, error)

	// TokenOfOwnerByIndex returns the 0-based enumeration of owner's tokens.
	TokenOfOwnerByIndex(ctx context.Context, owner Address, index int64) (*big.Int, error)

	// OwnerOf returns the current owner of a token.
	OwnerOf(ctx context.Context, tokenID *big.Int) (Address, error)

	// ListIssued returns the token ids issued by issuer.
	ListIssued(ctx context.Context, issuer Address) ([]*big.Int, error)
}

// ContractBinder binds the certificate contract to a session signer.
type ContractBinder interface {
	Bind(signer Signer) (CertificateContract, error)
}

// IdentityStore is the persistence port for the single identity slot.
// Writes are full-record overwrites; read-modify-write is not part of the
// port because another task could interleave across a suspension point.
type IdentityStore interface {
	// Get returns the stored identity or ErrIdentityNotFound.
	Get(ctx context.Context) (*UserIdentity, error)

	// Put overwrites the slot with the complete record.
	Put(ctx context.Context, identity *UserIdentity) error

	// Clear removes the slot.
	Clear(ctx context.Context) error
}

// Registration is the tagged union of supported sign-up payloads.
type Registration interface {
	registration()
}

// EmailRegistration signs a user up with portal credentials.
type EmailRegistration struct {
	Name        string
	Email       string
	Password    string
	AccountType AccountType
}

// WalletRegistration signs a user up from a connected wallet.
type WalletRegistration struct {
	Name          string
	AccountType   AccountType
	WalletAddress Address
}

func (EmailRegistration) registration()  {}
func (WalletRegistration) registration() {}

// Notifier surfaces session and identity lifecycle events to the outside
// world. Publishing failures are reported, never fatal.
type Notifier interface {
	SessionConnected(ctx context.Context, address Address, chainID int64) error
	SessionDisconnected(ctx context.Context, reason string) error
	ReloadRequested(ctx context.Context, chainID int64) error
	NetworkSwitched(ctx context.Context, chainID int64) error
	IdentityCreated(ctx context.Context, identity *UserIdentity) error
	IdentityLinked(ctx context.Context, identity *UserIdentity) error
	IdentityUnlinked(ctx context.Context, identity *UserIdentity) error
	IdentityCleared(ctx context.Context, identityID string) error
}

// ResumeGenerator is the external resume-generation collaborator. The core
// only forwards data to it.
type ResumeGenerator interface {
	Generate(ctx context.Context, identity *UserIdentity, credentials []Credential) (string, error)
}
