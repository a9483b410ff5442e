package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session metrics
var (
	SessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_session_transitions_total",
		Help: "Chain session state transitions by kind",
	}, []string{"transition"})

	SessionConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_session_connected",
		Help: "1 when a wallet is connected, 0 otherwise",
	})

	ProviderEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_provider_events_total",
		Help: "Wallet provider events by type",
	}, []string{"event"})
)

// Contract metrics
var (
	ContractCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_contract_calls_total",
		Help: "Certificate contract calls by method and outcome",
	}, []string{"method", "outcome"})
)

// Identity metrics
var (
	IdentityOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_identity_operations_total",
		Help: "Identity operations by kind",
	}, []string{"operation"})
)

// ObserveContractCall records one contract call outcome.
func ObserveContractCall(method string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ContractCalls.WithLabelValues(method, outcome).Inc()
}
