package contracts

import (
	"context"
)

// AMQPMessage represents a message to be published to AMQP
type AMQPMessage struct {
	Exchange   string                 `json:"exchange"`
	RoutingKey string                 `json:"routing_key"`
	Body       []byte                 `json:"body"`
	Headers    map[string]interface{} `json:"headers,omitempty"`
}

// AMQPClient defines the interface for AMQP operations
type AMQPClient interface {
	// Publish publishes a message to the specified exchange
	Publish(ctx context.Context, message AMQPMessage) error

	// Close closes the AMQP connection
	Close() error
}

// Exchange names
const (
	PortalExchange = "portal.events"
)

// Routing keys for session lifecycle notifications
const (
	SessionConnectedKey    = "session.connected"
	SessionDisconnectedKey = "session.disconnected"
	SessionReloadKey       = "session.reload"
	NetworkSwitchedKey     = "network.switched"
)

// Routing keys for identity lifecycle notifications
const (
	IdentityCreatedKey  = "identity.created"
	IdentityLinkedKey   = "identity.linked"
	IdentityUnlinkedKey = "identity.unlinked"
	IdentityClearedKey  = "identity.cleared"
)
