package codec

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	txFieldFrom           protowire.Number = 1
	txFieldTo             protowire.Number = 2
	txFieldRefBlockNumber protowire.Number = 3
	txFieldRefBlockPrefix protowire.Number = 4
	txFieldMethodName     protowire.Number = 5
	txFieldParams         protowire.Number = 6
	txFieldSignature      protowire.Number = 10000
)

// EncodeTransaction serializes a transaction. The id is computed over the
// unsigned form, the wire form carries the signature.
func EncodeTransaction(tx *types.CanonicalTransaction, withSignature bool) []byte {
	var b []byte
	b = appendAddress(b, txFieldFrom, tx.From)
	b = appendAddress(b, txFieldTo, tx.To)
	b = appendInt64(b, txFieldRefBlockNumber, tx.RefBlockNumber)
	b = appendBytes(b, txFieldRefBlockPrefix, tx.RefBlockPrefix)
	b = appendString(b, txFieldMethodName, tx.MethodIdentifier)
	b = appendBytes(b, txFieldParams, tx.SerializedParams)
	if withSignature {
		b = appendBytes(b, txFieldSignature, tx.Signature)
	}
	return b
}

func TransactionID(tx *types.CanonicalTransaction) common.Hash {
	return sha256.Sum256(EncodeTransaction(tx, false))
}

// Seal fills the id and serialized form of a transaction built in memory.
func Seal(tx *types.CanonicalTransaction) {
	tx.ID = TransactionID(tx)
	tx.Serialized = EncodeTransaction(tx, true)
}

// DecodeTransaction parses a serialized transaction. Serialized keeps a copy of
// the input bytes so that the proof refers to exactly what the chain included.
func DecodeTransaction(raw []byte) (*types.CanonicalTransaction, error) {
	tx := &types.CanonicalTransaction{}
	err := forEachField(raw, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		switch num {
		case txFieldFrom:
			tx.From, err = addressValue(num, typ, value)
		case txFieldTo:
			tx.To, err = addressValue(num, typ, value)
		case txFieldRefBlockNumber:
			var v uint64
			v, err = varintValue(num, typ, value)
			tx.RefBlockNumber = int64(v)
		case txFieldRefBlockPrefix:
			tx.RefBlockPrefix, err = bytesValue(num, typ, value)
		case txFieldMethodName:
			var v []byte
			v, err = bytesValue(num, typ, value)
			tx.MethodIdentifier = string(v)
		case txFieldParams:
			tx.SerializedParams, err = bytesValue(num, typ, value)
		case txFieldSignature:
			tx.Signature, err = bytesValue(num, typ, value)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	tx.ID = TransactionID(tx)
	tx.Serialized = append([]byte(nil), raw...)
	return tx, nil
}
