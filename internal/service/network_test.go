package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/internal/service"
)

func allowAllNotifier() *MockNotifier {
	n := new(MockNotifier)
	relaxNotifier(n)
	return n
}

func TestNetworkPolicyNames(t *testing.T) {
	policy := service.NewNetworkPolicy(nil, testDescriptor(), nil, testLogger())

	assert.Equal(t, requiredChain, policy.RequiredChainID())
	assert.True(t, policy.IsRequired(requiredChain))
	assert.False(t, policy.IsRequired(otherChain))

	assert.Equal(t, "Sepolia", policy.NetworkName(requiredChain))
	assert.Equal(t, "Ethereum Mainnet", policy.NetworkName(otherChain))
	assert.Equal(t, "chain 424242", policy.NetworkName(424242))
}

func TestSwitchNetworkDirect(t *testing.T) {
	provider := NewMockProvider()
	provider.On("SwitchChain", mock.Anything, requiredChain).Return(nil)

	notifier := new(MockNotifier)
	notifier.On("NetworkSwitched", mock.Anything, requiredChain).Return(nil).Once()

	policy := service.NewNetworkPolicy(provider, testDescriptor(), notifier, testLogger())
	require.NoError(t, policy.SwitchNetwork(context.Background()))
	provider.AssertNotCalled(t, "AddChain", mock.Anything, mock.Anything)
	notifier.AssertExpectations(t)
}

func TestSwitchNetworkRegistersUnknownChain(t *testing.T) {
	descriptor := testDescriptor()
	provider := NewMockProvider()
	provider.On("SwitchChain", mock.Anything, requiredChain).
		Return(fmt.Errorf("%w: chain %d", domain.ErrUnknownChain, requiredChain)).Once()
	provider.On("AddChain", mock.Anything, descriptor).Return(nil).Once()
	provider.On("SwitchChain", mock.Anything, requiredChain).Return(nil).Once()

	policy := service.NewNetworkPolicy(provider, descriptor, allowAllNotifier(), testLogger())
	require.NoError(t, policy.SwitchNetwork(context.Background()))
	provider.AssertExpectations(t)
}

func TestSwitchNetworkAddChainRejected(t *testing.T) {
	provider := NewMockProvider()
	provider.On("SwitchChain", mock.Anything, requiredChain).
		Return(fmt.Errorf("%w: chain %d", domain.ErrUnknownChain, requiredChain)).Once()
	provider.On("AddChain", mock.Anything, mock.Anything).
		Return(errors.New("user declined"))

	notifier := new(MockNotifier)
	policy := service.NewNetworkPolicy(provider, testDescriptor(), notifier, testLogger())
	err := policy.SwitchNetwork(context.Background())
	require.ErrorIs(t, err, domain.ErrNetworkSwitch)
	notifier.AssertNotCalled(t, "NetworkSwitched", mock.Anything, mock.Anything)
}

func TestSwitchNetworkUserRejected(t *testing.T) {
	provider := NewMockProvider()
	provider.On("SwitchChain", mock.Anything, requiredChain).
		Return(errors.New("chain switch rejected: user declined"))

	policy := service.NewNetworkPolicy(provider, testDescriptor(), allowAllNotifier(), testLogger())
	err := policy.SwitchNetwork(context.Background())
	require.ErrorIs(t, err, domain.ErrNetworkSwitch)
	provider.AssertNotCalled(t, "AddChain", mock.Anything, mock.Anything)
}

func TestSwitchNetworkWithoutProvider(t *testing.T) {
	policy := service.NewNetworkPolicy(nil, testDescriptor(), allowAllNotifier(), testLogger())

	err := policy.SwitchNetwork(context.Background())
	require.ErrorIs(t, err, domain.ErrNetworkSwitch)
}
