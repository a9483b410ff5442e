package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/internal/metrics"
)

// transactor is the surface a wallet signer must expose for write
// operations. The provider's signer implements it.
type transactor interface {
	domain.Signer
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}

// Binder binds the certificate contract at a fixed address to session
// signers.
type Binder struct {
	backend *ethclient.Client
	address common.Address
	abi     abi.ABI
}

var _ domain.ContractBinder = (*Binder)(nil)

// NewBinder parses the fixed ABI and prepares a binder for the deployed
// contract address.
func NewBinder(backend *ethclient.Client, address string) (*Binder, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(certificateABI))
	if err != nil {
		return nil, fmt.Errorf("parse certificate ABI: %w", err)
	}
	return &Binder{
		backend: backend,
		address: common.HexToAddress(address),
		abi:     parsed,
	}, nil
}

// Bind wraps the contract around the given signer.
func (b *Binder) Bind(signer domain.Signer) (domain.CertificateContract, error) {
	tr, ok := signer.(transactor)
	if !ok {
		return nil, fmt.Errorf("%w: signer cannot submit transactions", domain.ErrContractCall)
	}
	return &Certificate{
		bound:  bind.NewBoundContract(b.address, b.abi, b.backend, b.backend, b.backend),
		signer: tr,
	}, nil
}

// Certificate is the typed handle over the deployed certificate contract,
// bound to one session signer.
type Certificate struct {
	bound  *bind.BoundContract
	signer transactor
}

var _ domain.CertificateContract = (*Certificate)(nil)

// Mint issues a certificate. The caller awaits finality separately.
func (c *Certificate) Mint(ctx context.Context, recipient domain.Address, studentName, degree, university, uri string) (domain.TransactionHandle, error) {
	if !common.IsHexAddress(recipient) {
		return domain.TransactionHandle{}, fmt.Errorf("%w: invalid recipient address", domain.ErrContractCall)
	}

	opts, err := c.signer.TransactOpts(ctx)
	if err != nil {
		metrics.ObserveContractCall("mintCertificate", err)
		return domain.TransactionHandle{}, normalize(err)
	}

	tx, err := c.bound.Transact(opts, "mintCertificate",
		common.HexToAddress(recipient), studentName, degree, university, uri)
	metrics.ObserveContractCall("mintCertificate", err)
	if err != nil {
		return domain.TransactionHandle{}, normalize(err)
	}
	return domain.TransactionHandle{Hash: tx.Hash().Hex()}, nil
}

// Verify returns the certificate fields for a token id.
func (c *Certificate) Verify(ctx context.Context, tokenID *big.Int) (*domain.Credential, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "verifyCertificate", tokenID)
	metrics.ObserveContractCall("verifyCertificate", err)
	if err != nil {
		return nil, normalize(err)
	}

	return &domain.Credential{
		TokenID:     new(big.Int).Set(tokenID),
		StudentName: *abi.ConvertType(out[0], new(string)).(*string),
		Degree:      *abi.ConvertType(out[1], new(string)).(*string),
		University:  *abi.ConvertType(out[2], new(string)).(*string),
		IPFSHash:    *abi.ConvertType(out[3], new(string)).(*string),
	}, nil
}

// BalanceOf returns the number of certificates held by owner.
func (c *Certificate) BalanceOf(ctx context.Context, owner domain.Address) (*big.Int, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(owner))
	metrics.ObserveContractCall("balanceOf", err)
	if err != nil {
		return nil, normalize(err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// TokenOfOwnerByIndex returns the 0-based enumeration of owner's tokens.
func (c *Certificate) TokenOfOwnerByIndex(ctx context.Context, owner domain.Address, index int64) (*big.Int, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "tokenOfOwnerByIndex",
		common.HexToAddress(owner), big.NewInt(index))
	metrics.ObserveContractCall("tokenOfOwnerByIndex", err)
	if err != nil {
		return nil, normalize(err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// OwnerOf returns the current owner of a token.
func (c *Certificate) OwnerOf(ctx context.Context, tokenID *big.Int) (domain.Address, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenID)
	metrics.ObserveContractCall("ownerOf", err)
	if err != nil {
		return "", normalize(err)
	}
	owner := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return strings.ToLower(owner.Hex()), nil
}

// ListIssued returns the token ids issued by issuer.
func (c *Certificate) ListIssued(ctx context.Context, issuer domain.Address) ([]*big.Int, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getCertificatesByIssuer", common.HexToAddress(issuer))
	metrics.ObserveContractCall("getCertificatesByIssuer", err)
	if err != nil {
		return nil, normalize(err)
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// normalize converts an external failure into ErrContractCall with the
// extracted reason.
func normalize(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrContractCall, ExtractReason(err))
}
