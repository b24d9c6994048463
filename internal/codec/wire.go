package codec

import (
	"errors"
	"fmt"

	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

var ErrMalformed = errors.New("malformed protobuf message")

// Proto3 omits default values; hashes must match what the chain computes, so
// every append helper skips zero values.

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	return appendInt64(b, num, int64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// appendMessage writes an embedded message. Empty messages are still written
// when force is set, matching a set-but-empty field.
func appendMessage(b []byte, num protowire.Number, msg []byte, force bool) []byte {
	if len(msg) == 0 && !force {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// Address and Hash are both `message { bytes value = 1; }`.
func encodeValueMessage(v []byte) []byte {
	return appendBytes(nil, 1, v)
}

func appendAddress(b []byte, num protowire.Number, addr types.Address) []byte {
	if addr.IsZero() {
		return b
	}
	return appendMessage(b, num, encodeValueMessage(addr[:]), false)
}

func forEachField(b []byte, visit func(num protowire.Number, typ protowire.Type, value []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
		}
		if err := visit(num, typ, b[:m]); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func bytesValue(num protowire.Number, typ protowire.Type, value []byte) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("%w: field %d has wire type %d, want bytes", ErrMalformed, num, typ)
	}
	v, n := protowire.ConsumeBytes(value)
	if n < 0 {
		return nil, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
	}
	return append([]byte(nil), v...), nil
}

func varintValue(num protowire.Number, typ protowire.Type, value []byte) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("%w: field %d has wire type %d, want varint", ErrMalformed, num, typ)
	}
	v, n := protowire.ConsumeVarint(value)
	if n < 0 {
		return 0, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
	}
	return v, nil
}

func decodeValueMessage(msg []byte) ([]byte, error) {
	var value []byte
	err := forEachField(msg, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		if num != 1 {
			return nil
		}
		v, err := bytesValue(num, typ, raw)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}

func addressValue(num protowire.Number, typ protowire.Type, value []byte) (types.Address, error) {
	msg, err := bytesValue(num, typ, value)
	if err != nil {
		return types.Address{}, err
	}
	raw, err := decodeValueMessage(msg)
	if err != nil {
		return types.Address{}, err
	}
	if len(raw) == 0 {
		return types.Address{}, nil
	}
	addr, err := types.AddressFromBytes(raw)
	if err != nil {
		return types.Address{}, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, err)
	}
	return addr, nil
}
