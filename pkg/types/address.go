package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	AddressLength  = 32
	checksumLength = 4
)

// Address is a 32 byte account or contract address. Its text form is base58check.
type Address [AddressLength]byte

func AddressFromBytes(b []byte) (Address, error) {
	var addr Address
	if len(b) != AddressLength {
		return addr, fmt.Errorf("invalid address length %d", len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

func AddressFromBase58(encoded string) (Address, error) {
	var addr Address
	raw, err := base58.Decode(encoded)
	if err != nil {
		return addr, fmt.Errorf("invalid base58 address %q: %w", encoded, err)
	}
	if len(raw) != AddressLength+checksumLength {
		return addr, fmt.Errorf("invalid address %q: decoded length %d", encoded, len(raw))
	}
	payload, sum := raw[:AddressLength], raw[AddressLength:]
	if !bytes.Equal(checksum(payload), sum) {
		return addr, fmt.Errorf("invalid address %q: checksum mismatch", encoded)
	}
	copy(addr[:], payload)
	return addr, nil
}

func MustAddressFromBase58(encoded string) Address {
	addr, err := AddressFromBase58(encoded)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return base58.Encode(append(a.Bytes(), checksum(a[:])...))
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := AddressFromBase58(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

// AddressFromPublicKey derives an account address from an uncompressed secp256k1 public key.
func AddressFromPublicKey(pub []byte) Address {
	first := sha256.Sum256(pub)
	return Address(sha256.Sum256(first[:]))
}
