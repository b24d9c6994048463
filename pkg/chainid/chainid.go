package chainid

import (
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

// Chain ids are 4 base58 chars on the wire, 3 little-endian bytes of an int32 internally.
const (
	encodedSize = 3
	maxID       = 1<<(8*encodedSize) - 1
)

// ToInt32 converts a base58 chain id (e.g. "AELF") into its numeric form.
func ToInt32(encoded string) (int32, error) {
	if encoded == "" {
		return 0, fmt.Errorf("empty chain id")
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return 0, fmt.Errorf("invalid base58 chain id %q: %w", encoded, err)
	}
	if len(raw) > encodedSize {
		return 0, fmt.Errorf("chain id %q decodes to %d bytes, want at most %d", encoded, len(raw), encodedSize)
	}
	buf := make([]byte, 4)
	copy(buf, raw)
	return int32(binary.LittleEndian.Uint32(buf)), nil
}

// ToBase58 is the inverse of ToInt32. Ids outside [0, 2^24) have no base58 form.
func ToBase58(id int32) (string, error) {
	if id < 0 || id > maxID {
		return "", fmt.Errorf("chain id %d out of range [0, %d]", id, maxID)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(id))
	return base58.Encode(buf[:encodedSize]), nil
}
