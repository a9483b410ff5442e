package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/internal/metrics"
	"github.com/credverse/credential-portal/shared/logging"
)

// WalletObserver is told about wallet address adoption so the identity
// layer can reconcile its persisted record.
type WalletObserver interface {
	SyncWallet(ctx context.Context, address domain.Address) error
}

// ChainSession owns the lifecycle of one wallet connection: provider
// handle, authorized account, active chain and the signer-bound contract
// handle. One session exists per portal instance; it is created at
// startup and torn down only when the process exits.
//
// Every state mutation is a full overwrite from the latest observed
// provider truth, so a stale resumption racing an external event simply
// rewrites fields consistently with whichever observation lands last.
type ChainSession struct {
	provider domain.WalletProvider
	binder   domain.ContractBinder
	policy   *NetworkPolicy
	notifier domain.Notifier
	logger   *logging.Logger

	observer WalletObserver

	mu          sync.RWMutex
	signer      domain.Signer
	address     domain.Address
	chainID     int64
	hasChain    bool
	networkName string
	contract    domain.CertificateContract
}

// NewChainSession creates an empty session. A nil provider means no wallet
// is reachable; the session stays disconnected and screens treat the empty
// address as "not connected".
func NewChainSession(provider domain.WalletProvider, binder domain.ContractBinder, policy *NetworkPolicy, notifier domain.Notifier, logger *logging.Logger) *ChainSession {
	return &ChainSession{
		provider: provider,
		binder:   binder,
		policy:   policy,
		notifier: notifier,
		logger:   logger,
	}
}

// SetWalletObserver registers the identity layer. Set once during wiring,
// before Initialize.
func (s *ChainSession) SetWalletObserver(observer WalletObserver) {
	s.observer = observer
}

// Initialize reads the current provider state. Provider absence is not an
// error: all fields stay empty. When accounts are already authorized the
// session silently acquires a signer without prompting and attempts the
// contract binding under the network policy.
func (s *ChainSession) Initialize(ctx context.Context) error {
	if s.provider == nil {
		s.logger.Info("no wallet provider available, starting disconnected")
		return nil
	}

	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("wallet provider unreachable, starting disconnected")
		return nil
	}

	s.mu.Lock()
	s.chainID = chainID
	s.hasChain = true
	s.networkName = s.policy.NetworkName(chainID)
	s.mu.Unlock()

	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("account discovery failed")
		return nil
	}
	if len(accounts) == 0 {
		return nil
	}

	return s.adopt(ctx, accounts[0])
}

// Connect requests explicit account access from the wallet; the user may
// reject. On success the session state is rewritten from the provider's
// answers and the new address returned. On failure prior state is left
// unchanged. Connect is re-entrant: connecting while already connected
// re-validates instead of duplicating state, and never re-subscribes.
func (s *ChainSession) Connect(ctx context.Context) (domain.Address, error) {
	if s.provider == nil {
		return "", fmt.Errorf("%w: no wallet provider detected", domain.ErrConnection)
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("%w: wallet returned no accounts", domain.ErrConnection)
	}

	address := strings.ToLower(accounts[0])
	if err := s.adopt(ctx, address); err != nil {
		return "", err
	}
	return address, nil
}

// Disconnect clears the signer, address and contract handle locally. The
// chain identity is retained. This is a local-state-only operation: no
// provider API exists to revoke the wallet's own authorization, so the
// wallet will keep reporting the account as authorized.
func (s *ChainSession) Disconnect() {
	s.mu.Lock()
	s.signer = nil
	s.address = ""
	s.contract = nil
	s.mu.Unlock()

	metrics.SessionConnected.Set(0)
	metrics.SessionTransitions.WithLabelValues("disconnected").Inc()
	s.logger.Info("wallet session disconnected")
}

// Run consumes provider events until ctx is cancelled or the provider
// closes its stream. It is the single consumer of the event channel;
// resolution is last-event-wins.
func (s *ChainSession) Run(ctx context.Context) {
	if s.provider == nil {
		return
	}

	events := s.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(ctx, event)
		}
	}
}

func (s *ChainSession) handleEvent(ctx context.Context, event domain.ProviderEvent) {
	switch e := event.(type) {
	case domain.AccountsChanged:
		if len(e.Accounts) == 0 {
			s.handleAccountsRemoved(ctx)
		} else {
			// Same path as Connect, without prompting.
			if err := s.adopt(ctx, e.Accounts[0]); err != nil {
				s.logger.WithError(err).Error("failed to adopt switched account")
			}
		}
	case domain.ChainChanged:
		s.handleChainChanged(ctx, e.ChainID)
	}
}

func (s *ChainSession) handleAccountsRemoved(ctx context.Context) {
	s.Disconnect()
	if err := s.notifier.SessionDisconnected(ctx, "wallet revoked account access"); err != nil {
		s.logger.WithError(err).Warn("failed to publish disconnect notification")
	}
}

// handleChainChanged resets the whole session and triggers a reload. A
// chain switch invalidates the execution context behind the contract
// binding, so the handle is dropped synchronously here rather than
// patched in place; re-initialization then rebuilds state from scratch.
func (s *ChainSession) handleChainChanged(ctx context.Context, chainID int64) {
	s.mu.Lock()
	s.chainID = chainID
	s.hasChain = true
	s.networkName = s.policy.NetworkName(chainID)
	s.signer = nil
	s.address = ""
	s.contract = nil
	s.mu.Unlock()

	metrics.SessionConnected.Set(0)
	metrics.SessionTransitions.WithLabelValues("chain_changed").Inc()

	if err := s.notifier.ReloadRequested(ctx, chainID); err != nil {
		s.logger.WithError(err).Warn("failed to publish reload notification")
	}

	if err := s.Initialize(ctx); err != nil {
		s.logger.WithError(err).Error("session reload failed")
	}
}

// adopt rewrites session state from the provider's current answers for
// the given account. It acquires a signer, re-reads the chain, binds the
// contract when the network policy allows, and tells the identity layer.
func (s *ChainSession) adopt(ctx context.Context, address domain.Address) error {
	address = strings.ToLower(address)

	signer, err := s.provider.Signer(address)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}

	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}

	var handle domain.CertificateContract
	if s.binder != nil && s.policy.IsRequired(chainID) {
		handle, err = s.binder.Bind(signer)
		if err != nil {
			// The session still connects; screens see the missing handle
			// through Snapshot and steer the user to the network screen.
			s.logger.WithError(err).Error("contract binding failed")
			handle = nil
		}
	}

	s.mu.Lock()
	s.signer = signer
	s.address = address
	s.chainID = chainID
	s.hasChain = true
	s.networkName = s.policy.NetworkName(chainID)
	s.contract = handle
	s.mu.Unlock()

	metrics.SessionConnected.Set(1)
	metrics.SessionTransitions.WithLabelValues("connected").Inc()

	if s.observer != nil {
		if err := s.observer.SyncWallet(ctx, address); err != nil {
			s.logger.WithError(err).Error("identity reconciliation failed")
		}
	}
	if err := s.notifier.SessionConnected(ctx, address, chainID); err != nil {
		s.logger.WithError(err).Warn("failed to publish connect notification")
	}

	s.logger.WithFields(map[string]interface{}{
		"address":  address,
		"chain_id": chainID,
	}).Info("wallet session established")
	return nil
}

// Snapshot returns an immutable copy of the session state for screens.
// IsCorrectNetwork is recomputed from its inputs on every call.
func (s *ChainSession) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SessionState{
		Address:          s.address,
		ChainID:          s.chainID,
		HasChain:         s.hasChain,
		NetworkName:      s.networkName,
		Connected:        s.address != "",
		ContractBound:    s.contract != nil,
		IsCorrectNetwork: s.hasChain && s.policy.IsRequired(s.chainID),
	}
}

// Contract returns the bound contract handle, or ErrContractNotBound when
// no wallet is connected or the active chain is not the required one.
func (s *ChainSession) Contract() (domain.CertificateContract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.contract == nil {
		return nil, domain.ErrContractNotBound
	}
	return s.contract, nil
}
