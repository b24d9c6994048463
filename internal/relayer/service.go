package relayer

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/pkg/crosschain"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/scalarorg/crosschain-relayer/internal/relayer"

// Service runs the transfer pipeline: submit, derive, wait for finality, fetch
// the proof and submit the receive transaction. It keeps no state between runs.
type Service struct {
	probe           *crosschain.Probe
	submitter       *crosschain.Submitter
	extractor       *crosschain.Extractor
	waiter          *crosschain.Waiter
	fetcher         *crosschain.Fetcher
	receiver        *crosschain.Receiver
	policy          crosschain.Policy
	finalityTimeout time.Duration
	sink            events.Sink
	tracer          trace.Tracer
}

func NewService(client crosschain.ChainClient, opts Options) *Service {
	if opts.Policy == nil {
		opts.Policy = crosschain.DefaultPolicy()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Sink == nil {
		opts.Sink = events.Nop
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	probe := crosschain.NewProbe(client)
	return &Service{
		probe:           probe,
		submitter:       crosschain.NewSubmitter(client, probe),
		extractor:       crosschain.NewExtractor(opts.Extractor),
		waiter:          crosschain.NewWaiter(probe, opts.Clock, opts.PollInterval),
		fetcher:         crosschain.NewFetcher(client),
		receiver:        crosschain.NewReceiver(client),
		policy:          opts.Policy,
		finalityTimeout: opts.FinalityTimeout,
		sink:            opts.Sink,
		tracer:          opts.Tracer,
	}
}

func (s *Service) CrossChainTransfer(ctx context.Context, in types.TransferInput) (*Result, error) {
	return s.Run(ctx, types.MarkerDirectTransfer, in)
}

func (s *Service) CrossChainTransferWithInline(ctx context.Context, in types.TransferInput) (*Result, error) {
	return s.Run(ctx, types.MarkerSingleInline, in)
}

func (s *Service) CrossChainTransferWithVirtualInline(ctx context.Context, in types.TransferInput) (*Result, error) {
	return s.Run(ctx, types.MarkerMultiInline, in)
}

// Run executes one pipeline instance. Derived transactions are relayed one after
// another in emission order; the first failure stops the run and the receipts
// collected so far are returned with the error.
func (s *Service) Run(ctx context.Context, mode types.MarkerKind, in types.TransferInput) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "relayer.Run", trace.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.String("source", in.FromAlias),
		attribute.String("destination", in.ToAlias),
		attribute.String("symbol", in.Symbol),
		attribute.Int64("amount", in.Amount),
	))
	defer span.End()

	run := &pipeline{service: s, span: span, mode: mode, input: in}
	result, err := run.execute(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Str("mode", mode.String()).
			Str("source", in.FromAlias).Str("destination", in.ToAlias).
			Msg("[Relayer] [Run] transfer pipeline failed")
		return result, err
	}
	span.SetAttributes(attribute.String("outcome", result.Outcome.String()))
	return result, nil
}

// pipeline carries the per-run values shared by the stages.
type pipeline struct {
	service *Service
	span    trace.Span
	mode    types.MarkerKind
	input   types.TransferInput
	record  *types.TransferRecord
}

func (p *pipeline) execute(ctx context.Context) (*Result, error) {
	s := p.service
	if !p.mode.IsDerived() && p.mode != types.MarkerDirectTransfer {
		return nil, fmt.Errorf("%w: %s", crosschain.ErrUnsupportedMode, p.mode)
	}
	var err error
	if p.mode == types.MarkerDirectTransfer {
		p.record, err = s.submitter.CrossChainTransfer(ctx, p.input)
	} else {
		p.record, err = s.submitter.Transfer(ctx, p.input)
	}
	if err != nil {
		p.publish(ctx, events.StageEvent{Stage: events.StageFailed, Reason: err.Error()})
		return nil, err
	}
	result := &Result{Initiating: p.record, Outcome: OutcomeNotMined}
	p.publish(ctx, events.StageEvent{Stage: events.StageSubmitted})

	if !p.record.IsMined() {
		p.publish(ctx, events.StageEvent{
			Stage:  events.StageRejected,
			Reason: fmt.Sprintf("initiating transaction %s: %s", p.record.Status, p.record.Error),
		})
		log.Warn().Str("txId", p.record.TxIdHex()).Str("status", p.record.Status.String()).
			Str("error", p.record.Error).Msg("[Relayer] [Run] transfer not mined, nothing to relay")
		return result, nil
	}
	p.publish(ctx, events.StageEvent{Stage: events.StageMined, Height: p.record.InclusionHeight})

	canonicals, skipped, err := p.canonicals()
	if err != nil {
		p.publish(ctx, events.StageEvent{Stage: events.StageFailed, Reason: err.Error()})
		return result, err
	}
	for _, marker := range skipped {
		p.publish(ctx, events.StageEvent{
			Stage:            events.StageRejected,
			MethodIdentifier: marker.MethodIdentifier,
			Reason:           marker.Reason,
		})
	}
	if len(canonicals) == 0 {
		result.Outcome = OutcomeNoDerivedTransaction
		if len(skipped) == 0 {
			p.publish(ctx, events.StageEvent{Stage: events.StageRejected, Reason: "no derived transaction announced"})
		}
		return result, nil
	}

	fromChainID, err := s.probe.ChainID(ctx, p.input.FromAlias)
	if err != nil {
		p.publish(ctx, events.StageEvent{Stage: events.StageFailed, Reason: err.Error()})
		return result, err
	}
	for _, canonical := range canonicals {
		receipt, err := p.relay(ctx, canonical, fromChainID)
		if err != nil {
			return result, err
		}
		result.Receipts = append(result.Receipts, *receipt)
	}
	result.Outcome = OutcomeReceiveSubmitted
	return result, nil
}

func (p *pipeline) canonicals() ([]types.CanonicalTransaction, []crosschain.SkippedMarker, error) {
	if p.mode == types.MarkerDirectTransfer {
		tx, err := p.service.extractor.Direct(p.record)
		if err != nil {
			return nil, nil, err
		}
		return []types.CanonicalTransaction{*tx}, nil, nil
	}
	return p.service.extractor.Extract(p.record, p.mode)
}

func (p *pipeline) relay(ctx context.Context, canonical types.CanonicalTransaction, fromChainID int32) (*Receipt, error) {
	s := p.service
	stage := func(stage events.Stage) events.StageEvent {
		return events.StageEvent{
			Stage:            stage,
			CanonicalID:      canonical.IdHex(),
			MethodIdentifier: canonical.MethodIdentifier,
			Height:           p.record.InclusionHeight,
		}
	}
	fail := func(err error) (*Receipt, error) {
		event := stage(events.StageFailed)
		event.Reason = err.Error()
		p.publish(ctx, event)
		return nil, err
	}

	depth := s.policy.Depth(p.mode)
	p.publish(ctx, stage(events.StageAwaitingFinality))
	status, err := p.waitFinality(ctx, depth)
	if err != nil {
		return fail(err)
	}

	path, err := s.fetcher.Fetch(ctx, canonical.IdHex(), p.input.FromAlias)
	if err != nil {
		return fail(err)
	}
	ready := stage(events.StageProofReady)
	ready.LibHeight = status.LibHeight
	p.publish(ctx, ready)

	req := &types.CrossChainReceiveRequest{
		FromChainID:              fromChainID,
		MerklePath:               path,
		ParentChainHeight:        p.record.InclusionHeight,
		TransferTransactionBytes: canonical.Serialized,
		InlineFactor:             canonical.InlineFactor,
	}
	record, err := s.receiver.Submit(ctx, req, p.input.ToAlias)
	if err != nil {
		return fail(err)
	}
	submitted := stage(events.StageReceiveSubmitted)
	submitted.LibHeight = status.LibHeight
	if !record.IsMined() {
		submitted.Reason = fmt.Sprintf("receive transaction %s %s: %s", record.TxIdHex(), record.Status, record.Error)
	}
	p.publish(ctx, submitted)
	return &Receipt{Canonical: canonical, Request: req, Record: record}, nil
}

func (p *pipeline) waitFinality(ctx context.Context, depth int64) (*types.ChainStatus, error) {
	if p.service.finalityTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.service.finalityTimeout)
		defer cancel()
	}
	return p.service.waiter.Wait(ctx, p.input.FromAlias, p.record.InclusionHeight, depth)
}

// publish completes the event with the run's identity, forwards it to the sink
// and records it on the span.
func (p *pipeline) publish(ctx context.Context, event events.StageEvent) {
	event.Mode = p.mode.String()
	event.SourceChain = p.input.FromAlias
	event.DestinationChain = p.input.ToAlias
	if p.record != nil {
		event.TransferID = p.record.TxIdHex()
	}
	attrs := []attribute.KeyValue{attribute.String("transferId", event.TransferID)}
	if event.MethodIdentifier != "" {
		attrs = append(attrs, attribute.String("methodIdentifier", event.MethodIdentifier))
	}
	if event.Reason != "" {
		attrs = append(attrs, attribute.String("reason", event.Reason))
	}
	p.span.AddEvent(string(event.Stage), trace.WithAttributes(attrs...))
	p.service.sink.Publish(ctx, event)
}
