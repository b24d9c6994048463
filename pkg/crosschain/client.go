package crosschain

import (
	"context"

	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

const (
	MethodTransfer               = "Transfer"
	MethodCrossChainTransfer     = "CrossChainTransfer"
	MethodCrossChainReceiveToken = "CrossChainReceiveToken"
)

// ChainClient is the narrow view of both chains the protocol needs. Chains are
// addressed by alias; implementations own transport, signing and serialization.
type ChainClient interface {
	GetChainStatus(ctx context.Context, alias string) (*types.ChainStatus, error)
	GetTokenInfo(ctx context.Context, symbol string) (*types.TokenInfo, error)
	SubmitTransaction(ctx context.Context, call types.ContractCall, alias string) (*types.TransferRecord, error)
	GetMerklePath(ctx context.Context, txIdHex string, alias string) (*types.MerklePath, error)
}
