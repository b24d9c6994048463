package types

import "fmt"

// MarkerKind is the closed set of transfer shapes the relayer knows how to prove.
type MarkerKind uint8

const (
	// The initiating transaction is itself a cross-chain transfer.
	MarkerDirectTransfer MarkerKind = iota
	// The initiating transaction emits one virtual transaction marker.
	MarkerSingleInline
	// The initiating transaction may emit several markers; payload fields are split
	// between indexed and non-indexed parts.
	MarkerMultiInline
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerDirectTransfer:
		return "direct"
	case MarkerSingleInline:
		return "inline"
	case MarkerMultiInline:
		return "virtual"
	default:
		return fmt.Sprintf("marker(%d)", uint8(k))
	}
}

func ParseMarkerKind(s string) (MarkerKind, error) {
	switch s {
	case "direct":
		return MarkerDirectTransfer, nil
	case "inline":
		return MarkerSingleInline, nil
	case "virtual":
		return MarkerMultiInline, nil
	}
	return 0, fmt.Errorf("unknown transfer mode %q", s)
}

func (k MarkerKind) IsDerived() bool {
	return k == MarkerSingleInline || k == MarkerMultiInline
}
