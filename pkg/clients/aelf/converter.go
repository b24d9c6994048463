package aelf

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

func (r *chainStatusResponse) toChainStatus() *types.ChainStatus {
	return &types.ChainStatus{
		ChainID:    r.ChainId,
		LibHeight:  r.LastIrreversibleBlockHeight,
		HeadHeight: r.BestChainHeight,
		HeadHash:   common.HexToHash(r.BestChainHash),
	}
}

func (r *transactionResultResponse) toTransferRecord(raw []byte) *types.TransferRecord {
	record := &types.TransferRecord{
		ID:              common.HexToHash(r.TransactionId),
		Status:          types.ParseTxStatus(r.Status),
		InclusionHeight: r.BlockNumber,
		RawTransaction:  raw,
		Error:           r.Error,
	}
	for _, l := range r.Logs {
		event := types.EventRecord{Name: l.Name, Indexed: l.Indexed}
		if len(l.NonIndexed) > 0 {
			event.NonIndexed = [][]byte{l.NonIndexed}
		}
		if l.Address != "" {
			addr, err := types.AddressFromBase58(l.Address)
			if err != nil {
				log.Warn().Err(err).Str("event", l.Name).Msgf("[%s] [toTransferRecord] cannot parse log address", COMPONENT_NAME)
			}
			event.Address = addr
		}
		record.Events = append(record.Events, event)
	}
	return record
}

func (r *merklePathResponse) toMerklePath() (*types.MerklePath, error) {
	path := &types.MerklePath{Nodes: make([]types.MerklePathNode, 0, len(r.MerklePathNodes))}
	for i, node := range r.MerklePathNodes {
		raw := common.FromHex(node.Hash)
		if len(raw) != common.HashLength {
			return nil, fmt.Errorf("merkle path node %d: invalid hash %q", i, node.Hash)
		}
		path.Nodes = append(path.Nodes, types.MerklePathNode{
			Hash:            common.BytesToHash(raw),
			IsLeftChildNode: node.IsLeftChildNode,
		})
	}
	return path, nil
}
