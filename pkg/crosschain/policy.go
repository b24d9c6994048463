package crosschain

import "github.com/scalarorg/crosschain-relayer/pkg/types"

// Policy maps a transfer mode to the number of blocks the LIB must pass the
// inclusion height by before a proof is requested.
type Policy map[types.MarkerKind]int64

const (
	DefaultDirectDepth       int64 = 300
	DefaultSingleInlineDepth int64 = 100
	DefaultMultiInlineDepth  int64 = 150
)

func DefaultPolicy() Policy {
	return Policy{
		types.MarkerDirectTransfer: DefaultDirectDepth,
		types.MarkerSingleInline:   DefaultSingleInlineDepth,
		types.MarkerMultiInline:    DefaultMultiInlineDepth,
	}
}

func (p Policy) Depth(kind types.MarkerKind) int64 {
	if depth, ok := p[kind]; ok {
		return depth
	}
	return DefaultPolicy()[kind]
}
