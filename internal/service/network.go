package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/shared/logging"
)

// knownNetworks maps chain ids to display names for chains the portal may
// observe a wallet sitting on. The required chain's name always comes from
// the configured descriptor.
var knownNetworks = map[int64]string{
	1:        "Ethereum Mainnet",
	56:       "BNB Smart Chain",
	137:      "Polygon",
	8453:     "Base",
	11155111: "Sepolia",
}

// NetworkPolicy decides whether the connected chain is the single required
// chain and encapsulates the switch/register request. Multi-chain support
// is a non-goal; the required chain id is fixed for the whole application.
type NetworkPolicy struct {
	provider   domain.WalletProvider
	descriptor domain.ChainDescriptor
	notifier   domain.Notifier
	logger     *logging.Logger
}

// NewNetworkPolicy creates the policy for one required chain.
func NewNetworkPolicy(provider domain.WalletProvider, descriptor domain.ChainDescriptor, notifier domain.Notifier, logger *logging.Logger) *NetworkPolicy {
	return &NetworkPolicy{
		provider:   provider,
		descriptor: descriptor,
		notifier:   notifier,
		logger:     logger,
	}
}

// RequiredChainID returns the single chain the contract is deployed on.
func (p *NetworkPolicy) RequiredChainID() int64 {
	return p.descriptor.ChainID
}

// IsRequired reports whether chainID is the required chain.
func (p *NetworkPolicy) IsRequired(chainID int64) bool {
	return chainID == p.descriptor.ChainID
}

// NetworkName returns a display name for a chain id.
func (p *NetworkPolicy) NetworkName(chainID int64) string {
	if chainID == p.descriptor.ChainID {
		return p.descriptor.Name
	}
	if name, ok := knownNetworks[chainID]; ok {
		return name
	}
	return fmt.Sprintf("chain %d", chainID)
}

// SwitchNetwork asks the wallet to switch to the required chain. When the
// wallet does not know the chain it first registers the fixed descriptor,
// then retries the switch once. There is no automatic retry beyond that.
func (p *NetworkPolicy) SwitchNetwork(ctx context.Context) error {
	if p.provider == nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkSwitch, domain.ErrProviderUnavailable)
	}

	err := p.provider.SwitchChain(ctx, p.descriptor.ChainID)
	if errors.Is(err, domain.ErrUnknownChain) {
		p.logger.WithField("chain_id", p.descriptor.ChainID).
			Info("required chain unknown to wallet, registering it")
		if addErr := p.provider.AddChain(ctx, p.descriptor); addErr != nil {
			return fmt.Errorf("%w: %v", domain.ErrNetworkSwitch, addErr)
		}
		err = p.provider.SwitchChain(ctx, p.descriptor.ChainID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkSwitch, err)
	}

	if p.notifier != nil {
		if err := p.notifier.NetworkSwitched(ctx, p.descriptor.ChainID); err != nil {
			p.logger.WithError(err).Warn("failed to publish network switch notification")
		}
	}
	return nil
}
