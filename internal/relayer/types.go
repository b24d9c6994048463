package relayer

import (
	"time"

	"github.com/scalarorg/crosschain-relayer/pkg/crosschain"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"go.opentelemetry.io/otel/trace"
)

type Outcome int

const (
	// OutcomeNotMined: the initiating transfer did not reach Mined. Nothing was relayed.
	OutcomeNotMined Outcome = iota
	// OutcomeNoDerivedTransaction: the transfer was mined but announced nothing to relay.
	OutcomeNoDerivedTransaction
	OutcomeReceiveSubmitted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotMined:
		return "NotMined"
	case OutcomeNoDerivedTransaction:
		return "NoDerivedTransaction"
	case OutcomeReceiveSubmitted:
		return "ReceiveSubmitted"
	default:
		return "Unknown"
	}
}

// Receipt pairs a proven transaction with the receive request built for it and
// the destination chain's answer.
type Receipt struct {
	Canonical types.CanonicalTransaction
	Request   *types.CrossChainReceiveRequest
	Record    *types.TransferRecord
}

type Result struct {
	Initiating *types.TransferRecord
	Outcome    Outcome
	Receipts   []Receipt
}

type Options struct {
	Policy    crosschain.Policy
	Extractor crosschain.ExtractorConfig
	// PollInterval between two chain status queries while waiting for finality.
	PollInterval time.Duration
	// FinalityTimeout bounds each finality wait. Zero leaves the caller's context as the only bound.
	FinalityTimeout time.Duration
	Clock           crosschain.Clock
	Sink            events.Sink
	Tracer          trace.Tracer
}
