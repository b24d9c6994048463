package models

import (
	"github.com/scalarorg/crosschain-relayer/pkg/events"
)

func NewStageEvent(event events.StageEvent) *StageEvent {
	return &StageEvent{
		TransferID:       event.TransferID,
		CanonicalID:      event.CanonicalID,
		MethodIdentifier: event.MethodIdentifier,
		Mode:             event.Mode,
		Stage:            string(event.Stage),
		SourceChain:      event.SourceChain,
		DestinationChain: event.DestinationChain,
		Height:           event.Height,
		LibHeight:        event.LibHeight,
		Reason:           event.Reason,
		OccurredAt:       event.Timestamp,
	}
}

func (m *StageEvent) ToStageEvent() events.StageEvent {
	return events.StageEvent{
		TransferID:       m.TransferID,
		CanonicalID:      m.CanonicalID,
		MethodIdentifier: m.MethodIdentifier,
		Mode:             m.Mode,
		Stage:            events.Stage(m.Stage),
		SourceChain:      m.SourceChain,
		DestinationChain: m.DestinationChain,
		Height:           m.Height,
		LibHeight:        m.LibHeight,
		Reason:           m.Reason,
		Timestamp:        m.OccurredAt,
	}
}

func NewTransfer(event events.StageEvent) *Transfer {
	return &Transfer{
		ID:               event.TransferID,
		Mode:             event.Mode,
		SourceChain:      event.SourceChain,
		DestinationChain: event.DestinationChain,
		Stage:            string(event.Stage),
		Reason:           event.Reason,
		CreatedAt:        event.Timestamp,
		UpdatedAt:        event.Timestamp,
	}
}

func NewStageDocument(event events.StageEvent) *StageDocument {
	return &StageDocument{
		TransferID:       event.TransferID,
		CanonicalID:      event.CanonicalID,
		MethodIdentifier: event.MethodIdentifier,
		Mode:             event.Mode,
		Stage:            string(event.Stage),
		SourceChain:      event.SourceChain,
		DestinationChain: event.DestinationChain,
		Height:           event.Height,
		LibHeight:        event.LibHeight,
		Reason:           event.Reason,
		OccurredAt:       event.Timestamp,
	}
}
