package events

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogSink writes one structured log line per stage transition.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, event StageEvent) {
	var entry *zerolog.Event
	switch event.Stage {
	case StageFailed:
		entry = log.Error()
	case StageRejected:
		entry = log.Warn()
	case StageAwaitingFinality:
		entry = log.Debug()
	default:
		entry = log.Info()
	}
	entry.Str("transferId", event.TransferID).
		Str("canonicalId", event.CanonicalID).
		Str("methodIdentifier", event.MethodIdentifier).
		Str("mode", event.Mode).
		Str("from", event.SourceChain).
		Str("to", event.DestinationChain).
		Int64("height", event.Height).
		Int64("libHeight", event.LibHeight).
		Str("reason", event.Reason).
		Msgf("[Relayer] [Stage] %s", event.Stage)
}
