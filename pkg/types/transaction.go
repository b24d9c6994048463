package types

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CanonicalTransaction is the unit proven on the source chain and redeemed on the
// destination chain: either the initiating transaction or one derived from a marker event.
// Values never share byte slices with the TransferRecord they come from.
type CanonicalTransaction struct {
	From             Address
	To               Address
	MethodIdentifier string
	SerializedParams []byte
	RefBlockNumber   int64
	RefBlockPrefix   []byte
	Signature        []byte

	Marker       MarkerKind
	Sequence     int
	InlineFactor *int64

	// ID is the hash the source chain indexes the transaction under.
	ID common.Hash
	// Serialized is the exact byte form carried by the receive request.
	Serialized []byte
}

func (t *CanonicalTransaction) IdHex() string {
	return strings.TrimPrefix(t.ID.Hex(), "0x")
}

// DerivedMethodIdentifier builds {initiatingTxHash}.{initiatingMethod}.{markerToken}.{sequence}.
func DerivedMethodIdentifier(initiatingTxHash common.Hash, initiatingMethod, markerToken string, sequence int) string {
	return fmt.Sprintf("%s.%s.%s.%d",
		strings.TrimPrefix(initiatingTxHash.Hex(), "0x"), initiatingMethod, markerToken, sequence)
}
