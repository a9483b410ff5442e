package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/credverse/credential-portal/internal/domain"
)

// Signer delegates transaction signing to the wallet over
// eth_signTransaction. It is bound to exactly one account.
type Signer struct {
	rpcClient *rpc.Client
	account   common.Address
}

var _ domain.Signer = (*Signer)(nil)

// Address returns the signer's account as a lowercase hex string.
func (s *Signer) Address() domain.Address {
	return strings.ToLower(s.account.Hex())
}

// TransactOpts builds bind options whose signer round-trips the prepared
// transaction through the wallet for signing.
func (s *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{
		From:    s.account,
		Context: ctx,
		Signer:  s.signTransaction,
	}, nil
}

func (s *Signer) signTransaction(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
	if address != s.account {
		return nil, bind.ErrNotAuthorized
	}

	args := map[string]any{
		"from":  s.account,
		"nonce": hexutil.Uint64(tx.Nonce()),
		"gas":   hexutil.Uint64(tx.Gas()),
		"value": (*hexutil.Big)(tx.Value()),
		"input": hexutil.Bytes(tx.Data()),
	}
	if to := tx.To(); to != nil {
		args["to"] = to
	}
	if tx.Type() == types.DynamicFeeTxType {
		args["maxFeePerGas"] = (*hexutil.Big)(tx.GasFeeCap())
		args["maxPriorityFeePerGas"] = (*hexutil.Big)(tx.GasTipCap())
	} else {
		args["gasPrice"] = (*hexutil.Big)(tx.GasPrice())
	}

	var signed struct {
		Raw hexutil.Bytes `json:"raw"`
	}
	if err := s.rpcClient.CallContext(context.Background(), &signed, "eth_signTransaction", args); err != nil {
		return nil, fmt.Errorf("wallet refused to sign: %w", err)
	}

	signedTx := new(types.Transaction)
	if err := signedTx.UnmarshalBinary(signed.Raw); err != nil {
		return nil, fmt.Errorf("decode signed transaction: %w", err)
	}
	return signedTx, nil
}
