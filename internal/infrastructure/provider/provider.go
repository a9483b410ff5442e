package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/internal/metrics"
	"github.com/credverse/credential-portal/shared/logging"
)

// EIP-1193 / EIP-3085 provider error codes
const (
	codeUserRejected = 4001
	codeUnknownChain = 4902
)

// Provider implements domain.WalletProvider over the wallet's JSON-RPC
// surface. Because plain RPC has no push notifications for account or
// chain changes, the provider polls and converts observed differences
// into typed events.
type Provider struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	logger    *logging.Logger

	pollInterval time.Duration
	events       chan domain.ProviderEvent
	stop         chan struct{}
	startPoll    sync.Once
	closeOnce    sync.Once
}

// Dial connects to the wallet provider RPC endpoint.
func Dial(ctx context.Context, url string, pollInterval time.Duration, logger *logging.Logger) (*Provider, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: no provider RPC URL configured", domain.ErrProviderUnavailable)
	}

	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	if pollInterval <= 0 {
		pollInterval = 4 * time.Second
	}

	return &Provider{
		rpcClient:    rpcClient,
		ethClient:    ethclient.NewClient(rpcClient),
		logger:       logger,
		pollInterval: pollInterval,
		events:       make(chan domain.ProviderEvent, 8),
		stop:         make(chan struct{}),
	}, nil
}

// Backend returns the eth client used for contract reads and transaction
// submission.
func (p *Provider) Backend() *ethclient.Client {
	return p.ethClient
}

// Accounts lists already-authorized accounts without prompting.
func (p *Provider) Accounts(ctx context.Context) ([]domain.Address, error) {
	var accounts []common.Address
	if err := p.rpcClient.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	return normalizeAddresses(accounts), nil
}

// RequestAccounts asks the wallet for account access; the user may reject.
func (p *Provider) RequestAccounts(ctx context.Context) ([]domain.Address, error) {
	var accounts []common.Address
	if err := p.rpcClient.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		if providerErrorCode(err) == codeUserRejected {
			return nil, fmt.Errorf("%w: %v", domain.ErrUserRejected, err)
		}
		return nil, fmt.Errorf("account access request failed: %w", err)
	}
	return normalizeAddresses(accounts), nil
}

// ChainID returns the active chain id.
func (p *Provider) ChainID(ctx context.Context) (int64, error) {
	chainID, err := p.ethClient.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	return chainID.Int64(), nil
}

// SwitchChain asks the wallet to switch the active chain.
func (p *Provider) SwitchChain(ctx context.Context, chainID int64) error {
	param := map[string]any{
		"chainId": hexutil.EncodeUint64(uint64(chainID)),
	}
	if err := p.rpcClient.CallContext(ctx, nil, "wallet_switchEthereumChain", param); err != nil {
		if providerErrorCode(err) == codeUnknownChain {
			return fmt.Errorf("%w: chain %d", domain.ErrUnknownChain, chainID)
		}
		return fmt.Errorf("chain switch rejected: %w", err)
	}
	return nil
}

// AddChain registers a chain descriptor with the wallet.
func (p *Provider) AddChain(ctx context.Context, descriptor domain.ChainDescriptor) error {
	param := map[string]any{
		"chainId":   hexutil.EncodeUint64(uint64(descriptor.ChainID)),
		"chainName": descriptor.Name,
		"nativeCurrency": map[string]any{
			"name":     descriptor.NativeCurrency.Name,
			"symbol":   descriptor.NativeCurrency.Symbol,
			"decimals": descriptor.NativeCurrency.Decimals,
		},
		"rpcUrls":           descriptor.RPCURLs,
		"blockExplorerUrls": descriptor.ExplorerURLs,
	}
	if err := p.rpcClient.CallContext(ctx, nil, "wallet_addEthereumChain", param); err != nil {
		return fmt.Errorf("add chain rejected: %w", err)
	}
	return nil
}

// Signer returns a signer bound to the given authorized account. Signing
// is delegated to the wallet via eth_signTransaction; the portal never
// sees key material.
func (p *Provider) Signer(address domain.Address) (domain.Signer, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid account address %q", address)
	}
	return &Signer{
		rpcClient: p.rpcClient,
		account:   common.HexToAddress(address),
	}, nil
}

// Events returns the provider event stream and starts the poller on first
// use. The channel is closed on Close.
func (p *Provider) Events() <-chan domain.ProviderEvent {
	p.startPoll.Do(func() {
		go p.poll()
	})
	return p.events
}

// Close stops the poller and tears the RPC connection down.
func (p *Provider) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		p.rpcClient.Close()
	})
}

func (p *Provider) poll() {
	defer close(p.events)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	var (
		primed       bool
		lastAccounts string
		lastChain    int64
	)

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.pollInterval)
		accounts, accErr := p.Accounts(ctx)
		chainID, chainErr := p.ChainID(ctx)
		cancel()
		if accErr != nil || chainErr != nil {
			// Transient provider outage; keep the last observed state so a
			// recovery does not manufacture spurious change events.
			continue
		}

		accountsKey := strings.Join(accounts, ",")
		if !primed {
			primed = true
			lastAccounts = accountsKey
			lastChain = chainID
			continue
		}

		if chainID != lastChain {
			lastChain = chainID
			metrics.ProviderEvents.WithLabelValues("chain_changed").Inc()
			p.emit(domain.ChainChanged{ChainID: chainID})
		}
		if accountsKey != lastAccounts {
			lastAccounts = accountsKey
			metrics.ProviderEvents.WithLabelValues("accounts_changed").Inc()
			p.emit(domain.AccountsChanged{Accounts: accounts})
		}
	}
}

// emit delivers an event without blocking the poller. The session loop
// reconciles from latest observed truth, so dropping a stale event when
// the buffer is full is safe: the next poll re-derives the same state.
func (p *Provider) emit(event domain.ProviderEvent) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("provider event buffer full, dropping event")
	}
}

func normalizeAddresses(accounts []common.Address) []domain.Address {
	normalized := make([]domain.Address, len(accounts))
	for i, account := range accounts {
		normalized[i] = strings.ToLower(account.Hex())
	}
	return normalized
}

// providerErrorCode extracts the JSON-RPC error code, or 0.
func providerErrorCode(err error) int {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}
