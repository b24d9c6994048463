package crosschain

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

// Submitter sends the initiating transaction on the source chain.
type Submitter struct {
	client ChainClient
	probe  *Probe
}

func NewSubmitter(client ChainClient, probe *Probe) *Submitter {
	return &Submitter{client: client, probe: probe}
}

func ValidateTransferInput(in types.TransferInput) error {
	switch {
	case in.To.IsZero():
		return fmt.Errorf("%w: missing recipient", ErrInvalidTransfer)
	case in.Symbol == "":
		return fmt.Errorf("%w: missing symbol", ErrInvalidTransfer)
	case in.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidTransfer, in.Amount)
	case in.FromAlias == "" || in.ToAlias == "":
		return fmt.Errorf("%w: source and destination chains are required", ErrInvalidTransfer)
	case in.FromAlias == in.ToAlias:
		return fmt.Errorf("%w: source and destination chain are both %s", ErrInvalidTransfer, in.FromAlias)
	}
	return nil
}

// CrossChainTransfer submits a direct cross-chain transfer carrying the destination
// chain id and the token's issue chain id.
func (s *Submitter) CrossChainTransfer(ctx context.Context, in types.TransferInput) (*types.TransferRecord, error) {
	if err := ValidateTransferInput(in); err != nil {
		return nil, err
	}
	toChainID, err := s.probe.ChainID(ctx, in.ToAlias)
	if err != nil {
		return nil, err
	}
	tokenInfo, err := s.client.GetTokenInfo(ctx, in.Symbol)
	if err != nil {
		return nil, fmt.Errorf("get token info of %s: %w", in.Symbol, err)
	}
	params := codec.EncodeCrossChainTransferInput(codec.CrossChainTransferParams{
		To:           in.To,
		Symbol:       in.Symbol,
		Amount:       in.Amount,
		Memo:         in.Memo,
		ToChainID:    toChainID,
		IssueChainID: tokenInfo.IssueChainID,
	})
	return s.submit(ctx, types.ContractCall{Contract: types.ContractToken, Method: MethodCrossChainTransfer, Params: params}, in.FromAlias)
}

// Transfer submits a plain transfer whose side effects carry the derived transactions.
func (s *Submitter) Transfer(ctx context.Context, in types.TransferInput) (*types.TransferRecord, error) {
	if err := ValidateTransferInput(in); err != nil {
		return nil, err
	}
	params := codec.EncodeTransferInput(codec.TransferParams{
		To:     in.To,
		Symbol: in.Symbol,
		Amount: in.Amount,
		Memo:   in.Memo,
	})
	return s.submit(ctx, types.ContractCall{Contract: types.ContractToken, Method: MethodTransfer, Params: params}, in.FromAlias)
}

func (s *Submitter) submit(ctx context.Context, call types.ContractCall, alias string) (*types.TransferRecord, error) {
	record, err := s.client.SubmitTransaction(ctx, call, alias)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %w", ErrSubmissionFailed, call.Method, alias, err)
	}
	log.Info().Str("chain", alias).Str("txId", record.TxIdHex()).
		Str("status", record.Status.String()).Int64("height", record.InclusionHeight).
		Msgf("[TransferSubmitter] [%s] transaction submitted", call.Method)
	return record, nil
}
