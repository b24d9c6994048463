package aelf

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

type signer struct {
	key     *ecdsa.PrivateKey
	address types.Address
}

func newSigner(privateKey string) (*signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &signer{
		key:     key,
		address: types.AddressFromPublicKey(crypto.FromECDSAPub(&key.PublicKey)),
	}, nil
}

// sign sets the recoverable signature over the transaction id and seals the transaction.
func (s *signer) sign(tx *types.CanonicalTransaction) error {
	tx.From = s.address
	id := codec.TransactionID(tx)
	signature, err := crypto.Sign(id[:], s.key)
	if err != nil {
		return fmt.Errorf("sign transaction %x: %w", id, err)
	}
	tx.Signature = signature
	codec.Seal(tx)
	return nil
}
