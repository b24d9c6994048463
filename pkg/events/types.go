package events

import (
	"context"
	"time"
)

type Stage string

const (
	StageSubmitted        Stage = "Submitted"
	StageMined            Stage = "Mined"
	StageRejected         Stage = "Rejected"
	StageAwaitingFinality Stage = "AwaitingFinality"
	StageProofReady       Stage = "ProofReady"
	StageReceiveSubmitted Stage = "ReceiveSubmitted"
	StageFailed           Stage = "Failed"
)

// Terminal reports whether no further transition follows for the canonical transaction.
func (s Stage) Terminal() bool {
	return s == StageRejected || s == StageReceiveSubmitted || s == StageFailed
}

// StageEvent is one pipeline transition. TransferID is the initiating transaction id,
// CanonicalID the proven transaction (empty until derivation).
type StageEvent struct {
	TransferID       string    `json:"transferId"`
	CanonicalID      string    `json:"canonicalId,omitempty"`
	MethodIdentifier string    `json:"methodIdentifier,omitempty"`
	Mode             string    `json:"mode"`
	Stage            Stage     `json:"stage"`
	SourceChain      string    `json:"sourceChain"`
	DestinationChain string    `json:"destinationChain"`
	Height           int64     `json:"height,omitempty"`
	LibHeight        int64     `json:"libHeight,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Sink consumes stage events. Implementations handle their own failures;
// publishing never blocks the pipeline on a sink error.
type Sink interface {
	Publish(ctx context.Context, event StageEvent)
}

type SinkFunc func(ctx context.Context, event StageEvent)

func (f SinkFunc) Publish(ctx context.Context, event StageEvent) {
	f(ctx, event)
}

type nopSink struct{}

func (nopSink) Publish(context.Context, StageEvent) {}

// Nop discards every event.
var Nop Sink = nopSink{}
