package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	receiveFieldFromChainID       protowire.Number = 1
	receiveFieldParentChainHeight protowire.Number = 2
	receiveFieldTransferTxBytes   protowire.Number = 3
	receiveFieldMerklePath        protowire.Number = 4
	receiveFieldInlineFactor      protowire.Number = 5
)

func EncodeMerklePath(path *types.MerklePath) []byte {
	var b []byte
	if path == nil {
		return b
	}
	for _, node := range path.Nodes {
		var n []byte
		n = appendMessage(n, 1, encodeValueMessage(node.Hash[:]), true)
		n = appendBool(n, 2, node.IsLeftChildNode)
		b = appendMessage(b, 1, n, true)
	}
	return b
}

func DecodeMerklePath(raw []byte) (*types.MerklePath, error) {
	path := &types.MerklePath{}
	err := forEachField(raw, func(num protowire.Number, typ protowire.Type, value []byte) error {
		if num != 1 {
			return nil
		}
		msg, err := bytesValue(num, typ, value)
		if err != nil {
			return err
		}
		node, err := decodeMerklePathNode(msg)
		if err != nil {
			return err
		}
		path.Nodes = append(path.Nodes, node)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return path, nil
}

func decodeMerklePathNode(raw []byte) (types.MerklePathNode, error) {
	var node types.MerklePathNode
	err := forEachField(raw, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case 1:
			msg, err := bytesValue(num, typ, value)
			if err != nil {
				return err
			}
			hash, err := decodeValueMessage(msg)
			if err != nil {
				return err
			}
			if len(hash) != common.HashLength {
				return fmt.Errorf("%w: merkle node hash length %d", ErrMalformed, len(hash))
			}
			node.Hash = common.BytesToHash(hash)
		case 2:
			v, err := varintValue(num, typ, value)
			if err != nil {
				return err
			}
			node.IsLeftChildNode = protowire.DecodeBool(v)
		}
		return nil
	})
	return node, err
}

// EncodeCrossChainReceiveTokenInput serializes the receive request. The merkle path is always
// written, even when empty, because the contract requires the field to be set.
func EncodeCrossChainReceiveTokenInput(req *types.CrossChainReceiveRequest) []byte {
	var b []byte
	b = appendInt32(b, receiveFieldFromChainID, req.FromChainID)
	b = appendInt64(b, receiveFieldParentChainHeight, req.ParentChainHeight)
	b = appendBytes(b, receiveFieldTransferTxBytes, req.TransferTransactionBytes)
	b = appendMessage(b, receiveFieldMerklePath, EncodeMerklePath(req.MerklePath), true)
	if req.InlineFactor != nil {
		b = protowire.AppendTag(b, receiveFieldInlineFactor, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*req.InlineFactor))
	}
	return b
}

func DecodeCrossChainReceiveTokenInput(raw []byte) (*types.CrossChainReceiveRequest, error) {
	req := &types.CrossChainReceiveRequest{}
	err := forEachField(raw, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		var v uint64
		switch num {
		case receiveFieldFromChainID:
			v, err = varintValue(num, typ, value)
			req.FromChainID = int32(v)
		case receiveFieldParentChainHeight:
			v, err = varintValue(num, typ, value)
			req.ParentChainHeight = int64(v)
		case receiveFieldTransferTxBytes:
			req.TransferTransactionBytes, err = bytesValue(num, typ, value)
		case receiveFieldMerklePath:
			var msg []byte
			if msg, err = bytesValue(num, typ, value); err == nil {
				req.MerklePath, err = DecodeMerklePath(msg)
			}
		case receiveFieldInlineFactor:
			v, err = varintValue(num, typ, value)
			factor := int64(v)
			req.InlineFactor = &factor
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
