package codec

import (
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// DerivedPayload is the message carried by virtual transaction marker events.
//
//	from = 1, to = 2, method_name = 3, symbol = 4, amount = 5, memo = 6,
//	issue_chain_id = 7, to_chain_id = 8, inline_factor = 9
type DerivedPayload struct {
	From         types.Address
	To           types.Address
	MethodName   string
	Symbol       string
	Amount       int64
	Memo         string
	IssueChainID int32
	ToChainID    int32
	InlineFactor *int64
}

func EncodeDerivedPayload(p *DerivedPayload) []byte {
	var b []byte
	b = appendAddress(b, 1, p.From)
	b = appendAddress(b, 2, p.To)
	b = appendString(b, 3, p.MethodName)
	b = appendString(b, 4, p.Symbol)
	b = appendInt64(b, 5, p.Amount)
	b = appendString(b, 6, p.Memo)
	b = appendInt32(b, 7, p.IssueChainID)
	b = appendInt32(b, 8, p.ToChainID)
	if p.InlineFactor != nil {
		b = protowire.AppendTag(b, 9, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*p.InlineFactor))
	}
	return b
}

// MergeDerivedPayload decodes a payload split across several encoded parts.
// Parts are merged in order with protobuf semantics: later scalar values win.
func MergeDerivedPayload(parts ...[]byte) (*DerivedPayload, error) {
	p := &DerivedPayload{}
	for _, part := range parts {
		if err := mergeDerivedPayload(p, part); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func mergeDerivedPayload(p *DerivedPayload, raw []byte) error {
	return forEachField(raw, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		var v uint64
		var s []byte
		switch num {
		case 1:
			p.From, err = addressValue(num, typ, value)
		case 2:
			p.To, err = addressValue(num, typ, value)
		case 3:
			s, err = bytesValue(num, typ, value)
			p.MethodName = string(s)
		case 4:
			s, err = bytesValue(num, typ, value)
			p.Symbol = string(s)
		case 5:
			v, err = varintValue(num, typ, value)
			p.Amount = int64(v)
		case 6:
			s, err = bytesValue(num, typ, value)
			p.Memo = string(s)
		case 7:
			v, err = varintValue(num, typ, value)
			p.IssueChainID = int32(v)
		case 8:
			v, err = varintValue(num, typ, value)
			p.ToChainID = int32(v)
		case 9:
			v, err = varintValue(num, typ, value)
			factor := int64(v)
			p.InlineFactor = &factor
		}
		return err
	})
}
