package crosschain

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

// Receiver submits the proof-carrying receive transaction on the destination chain.
type Receiver struct {
	client ChainClient
}

func NewReceiver(client ChainClient) *Receiver {
	return &Receiver{client: client}
}

// Submit sends the request exactly once. A record that is not mined is returned
// as is; nothing is retried or compensated.
func (r *Receiver) Submit(ctx context.Context, req *types.CrossChainReceiveRequest, alias string) (*types.TransferRecord, error) {
	call := types.ContractCall{
		Contract: types.ContractToken,
		Method:   MethodCrossChainReceiveToken,
		Params:   codec.EncodeCrossChainReceiveTokenInput(req),
	}
	record, err := r.client.SubmitTransaction(ctx, call, alias)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %w", ErrSubmissionFailed, call.Method, alias, err)
	}
	log.Info().Str("chain", alias).Str("txId", record.TxIdHex()).
		Str("status", record.Status.String()).Int32("fromChainId", req.FromChainID).
		Int64("parentChainHeight", req.ParentChainHeight).
		Msg("[ReceiveSubmitter] [Submit] cross chain receive token submitted")
	return record, nil
}
