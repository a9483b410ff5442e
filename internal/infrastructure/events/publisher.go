package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/shared/contracts"
	"github.com/credverse/credential-portal/shared/logging"
)

// Publisher surfaces session and identity notifications on the portal
// events exchange. A nil AMQP client downgrades publishing to log-only so
// the portal keeps working without a broker.
type Publisher struct {
	amqp   contracts.AMQPClient
	logger *logging.Logger
}

var _ domain.Notifier = (*Publisher)(nil)

// NewPublisher creates the portal event publisher.
func NewPublisher(amqp contracts.AMQPClient, logger *logging.Logger) *Publisher {
	return &Publisher{
		amqp:   amqp,
		logger: logger,
	}
}

type sessionEvent struct {
	Address string    `json:"address,omitempty"`
	ChainID int64     `json:"chain_id,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

type identityEvent struct {
	IdentityID    string    `json:"identity_id"`
	AccountType   string    `json:"account_type,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	At            time.Time `json:"at"`
}

// SessionConnected publishes a wallet connection notification.
func (p *Publisher) SessionConnected(ctx context.Context, address domain.Address, chainID int64) error {
	return p.publish(ctx, contracts.SessionConnectedKey, sessionEvent{
		Address: address,
		ChainID: chainID,
		At:      time.Now(),
	})
}

// SessionDisconnected publishes a wallet disconnection notification.
func (p *Publisher) SessionDisconnected(ctx context.Context, reason string) error {
	return p.publish(ctx, contracts.SessionDisconnectedKey, sessionEvent{
		Reason: reason,
		At:     time.Now(),
	})
}

// ReloadRequested publishes the chain-changed reload notification.
func (p *Publisher) ReloadRequested(ctx context.Context, chainID int64) error {
	return p.publish(ctx, contracts.SessionReloadKey, sessionEvent{
		ChainID: chainID,
		At:      time.Now(),
	})
}

// NetworkSwitched publishes a successful chain switch notification.
func (p *Publisher) NetworkSwitched(ctx context.Context, chainID int64) error {
	return p.publish(ctx, contracts.NetworkSwitchedKey, sessionEvent{
		ChainID: chainID,
		At:      time.Now(),
	})
}

// IdentityCreated publishes an identity creation notification.
func (p *Publisher) IdentityCreated(ctx context.Context, identity *domain.UserIdentity) error {
	return p.publish(ctx, contracts.IdentityCreatedKey, identityEventOf(identity))
}

// IdentityLinked publishes a wallet link notification.
func (p *Publisher) IdentityLinked(ctx context.Context, identity *domain.UserIdentity) error {
	return p.publish(ctx, contracts.IdentityLinkedKey, identityEventOf(identity))
}

// IdentityUnlinked publishes a wallet unlink notification.
func (p *Publisher) IdentityUnlinked(ctx context.Context, identity *domain.UserIdentity) error {
	return p.publish(ctx, contracts.IdentityUnlinkedKey, identityEventOf(identity))
}

// IdentityCleared publishes a logout notification.
func (p *Publisher) IdentityCleared(ctx context.Context, identityID string) error {
	return p.publish(ctx, contracts.IdentityClearedKey, identityEvent{
		IdentityID: identityID,
		At:         time.Now(),
	})
}

func identityEventOf(identity *domain.UserIdentity) identityEvent {
	return identityEvent{
		IdentityID:    identity.ID,
		AccountType:   string(identity.AccountType),
		WalletAddress: identity.WalletAddress,
		At:            time.Now(),
	}
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	if p.amqp == nil {
		p.logger.WithField("routing_key", routingKey).Debug("AMQP not available, skipping notification")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}

	if err := p.amqp.Publish(ctx, contracts.AMQPMessage{
		Exchange:   contracts.PortalExchange,
		RoutingKey: routingKey,
		Body:       body,
		Headers: map[string]interface{}{
			"event_type":     routingKey,
			"schema":         routingKey + ".v1",
			"correlation_id": uuid.New().String(),
			"published_at":   time.Now().Format(time.RFC3339),
			"service":        "credential-portal",
		},
	}); err != nil {
		return fmt.Errorf("publish %s event: %w", routingKey, err)
	}
	return nil
}
