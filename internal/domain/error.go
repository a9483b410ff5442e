package domain

import "errors"

// Error definitions. All failures surface as notifications to the screen
// layer; none are fatal to the process, and every failing operation leaves
// prior state intact.
var (
	// ErrConnection covers provider absence, user rejection and denied
	// account access during connect.
	ErrConnection = errors.New("wallet_connection_failed")

	// ErrProviderUnavailable means no wallet provider could be reached.
	ErrProviderUnavailable = errors.New("wallet_provider_unavailable")

	// ErrUserRejected means the wallet user declined a request (EIP-1193
	// code 4001).
	ErrUserRejected = errors.New("request_rejected_by_user")

	// ErrNetworkSwitch covers a rejected chain switch or add-chain request.
	ErrNetworkSwitch = errors.New("network_switch_failed")

	// ErrUnknownChain means the wallet does not know the requested chain
	// (EIP-3085 code 4902); callers fall back to registering it.
	ErrUnknownChain = errors.New("chain_not_registered")

	// ErrContractCall covers any failed read or write through the bound
	// contract; the wrapping error carries the extracted reason.
	ErrContractCall = errors.New("contract_call_failed")

	// ErrContractNotBound means the session has no contract handle, either
	// because no wallet is connected or the active chain is not the
	// required one.
	ErrContractNotBound = errors.New("contract_not_bound")

	// ErrNoActiveSession means an identity mutation was attempted with no
	// stored identity.
	ErrNoActiveSession = errors.New("no_active_session")

	// ErrIdentityNotFound means the identity slot is empty.
	ErrIdentityNotFound = errors.New("identity_not_found")

	// ErrInvalidAccountType means the account type is outside the
	// student/institution enumeration.
	ErrInvalidAccountType = errors.New("invalid_account_type")

	// ErrEmptyCredentials means a resume was requested with no credentials.
	ErrEmptyCredentials = errors.New("empty_credential_list")
)
