package codec

import (
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

type TransferParams struct {
	To     types.Address
	Symbol string
	Amount int64
	Memo   string
}

// CrossChainTransferParams mirrors CrossChainTransferInput of the token contract.
type CrossChainTransferParams struct {
	To           types.Address
	Symbol       string
	Amount       int64
	Memo         string
	ToChainID    int32
	IssueChainID int32
}

func EncodeTransferInput(p TransferParams) []byte {
	var b []byte
	b = appendAddress(b, 1, p.To)
	b = appendString(b, 2, p.Symbol)
	b = appendInt64(b, 3, p.Amount)
	b = appendString(b, 4, p.Memo)
	return b
}

func EncodeCrossChainTransferInput(p CrossChainTransferParams) []byte {
	var b []byte
	b = appendAddress(b, 1, p.To)
	b = appendString(b, 2, p.Symbol)
	b = appendInt64(b, 3, p.Amount)
	b = appendString(b, 4, p.Memo)
	b = appendInt32(b, 5, p.ToChainID)
	b = appendInt32(b, 6, p.IssueChainID)
	return b
}

func DecodeCrossChainTransferInput(raw []byte) (*CrossChainTransferParams, error) {
	p := &CrossChainTransferParams{}
	err := forEachField(raw, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		var v uint64
		var s []byte
		switch num {
		case 1:
			p.To, err = addressValue(num, typ, value)
		case 2:
			s, err = bytesValue(num, typ, value)
			p.Symbol = string(s)
		case 3:
			v, err = varintValue(num, typ, value)
			p.Amount = int64(v)
		case 4:
			s, err = bytesValue(num, typ, value)
			p.Memo = string(s)
		case 5:
			v, err = varintValue(num, typ, value)
			p.ToChainID = int32(v)
		case 6:
			v, err = varintValue(num, typ, value)
			p.IssueChainID = int32(v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func EncodeGetTokenInfoInput(symbol string) []byte {
	return appendString(nil, 1, symbol)
}

func EncodeTokenInfo(info *types.TokenInfo) []byte {
	var b []byte
	b = appendString(b, 1, info.Symbol)
	b = appendInt32(b, 8, info.IssueChainID)
	return b
}

// DecodeTokenInfo reads the fields the relayer needs from TokenInfo: symbol (1) and issue_chain_id (8).
func DecodeTokenInfo(raw []byte) (*types.TokenInfo, error) {
	info := &types.TokenInfo{}
	err := forEachField(raw, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case 1:
			s, err := bytesValue(num, typ, value)
			if err != nil {
				return err
			}
			info.Symbol = string(s)
		case 8:
			v, err := varintValue(num, typ, value)
			if err != nil {
				return err
			}
			info.IssueChainID = int32(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}
