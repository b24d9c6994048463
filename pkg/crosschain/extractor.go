package crosschain

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

// MarkerRule describes how a derived-transaction marker is recognized and named.
type MarkerRule struct {
	EventNames []string
	Token      string
}

func (m MarkerRule) matches(name string) bool {
	for _, candidate := range m.EventNames {
		if candidate == name {
			return true
		}
	}
	return false
}

type ExtractorConfig struct {
	// Derived transactions are re-addressed to this contract.
	ReceivingAddress types.Address
	// Method name of the initiating transaction, used in derived method identifiers.
	InitiatingMethod string
	// Payloads already calling this method are direct transfers and are skipped.
	CrossChainTransferMethod string
	Markers                  map[types.MarkerKind]MarkerRule
}

func DefaultMarkers() map[types.MarkerKind]MarkerRule {
	return map[types.MarkerKind]MarkerRule{
		types.MarkerSingleInline: {EventNames: []string{"VirtualTransactionCreated"}, Token: "inline"},
		types.MarkerMultiInline:  {EventNames: []string{"VirtualTransactionsCreated"}, Token: "virtual"},
	}
}

type Extractor struct {
	cfg ExtractorConfig
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.InitiatingMethod == "" {
		cfg.InitiatingMethod = MethodTransfer
	}
	if cfg.CrossChainTransferMethod == "" {
		cfg.CrossChainTransferMethod = MethodCrossChainTransfer
	}
	if cfg.Markers == nil {
		cfg.Markers = DefaultMarkers()
	}
	return &Extractor{cfg: cfg}
}

// Direct returns the initiating transaction itself as the canonical transaction.
func (e *Extractor) Direct(record *types.TransferRecord) (*types.CanonicalTransaction, error) {
	if len(record.RawTransaction) == 0 {
		return nil, fmt.Errorf("transfer %s carries no raw transaction", record.TxIdHex())
	}
	tx, err := codec.DecodeTransaction(record.RawTransaction)
	if err != nil {
		return nil, fmt.Errorf("decode transfer %s: %w", record.TxIdHex(), err)
	}
	// The chain indexes the transaction under the id it reported.
	tx.ID = record.ID
	tx.Marker = types.MarkerDirectTransfer
	return tx, nil
}

// SkippedMarker is a recognized marker event that yields nothing to relay.
type SkippedMarker struct {
	MethodIdentifier string
	Sequence         int
	Reason           string
}

// Extract recovers the derived transactions announced by marker events, in emission order,
// along with the recognized markers it skipped. No transactions means there is nothing to relay.
func (e *Extractor) Extract(record *types.TransferRecord, kind types.MarkerKind) ([]types.CanonicalTransaction, []SkippedMarker, error) {
	if !kind.IsDerived() {
		return nil, nil, fmt.Errorf("%w: %s has no marker events", ErrUnsupportedMode, kind)
	}
	rule, ok := e.cfg.Markers[kind]
	if !ok || len(rule.EventNames) == 0 {
		return nil, nil, fmt.Errorf("%w: no marker events configured for %s", ErrUnsupportedMode, kind)
	}
	var txs []types.CanonicalTransaction
	var skipped []SkippedMarker
	sequence := 0
	for _, event := range record.Events {
		if !rule.matches(event.Name) {
			continue
		}
		seq := sequence
		sequence++
		payload, err := decodeMarker(event, kind)
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s event #%d of %s: %w", event.Name, seq, record.TxIdHex(), err)
		}
		if payload.MethodName == e.cfg.CrossChainTransferMethod {
			log.Debug().Str("txId", record.TxIdHex()).Int("sequence", seq).
				Msg("[DerivedTransactionExtractor] [Extract] skip marker already calling cross-chain transfer")
			skipped = append(skipped, SkippedMarker{
				MethodIdentifier: types.DerivedMethodIdentifier(record.ID, e.cfg.InitiatingMethod, rule.Token, seq),
				Sequence:         seq,
				Reason:           "derived transaction already calls " + e.cfg.CrossChainTransferMethod,
			})
		} else {
			txs = append(txs, e.canonical(record, kind, rule, seq, payload))
		}
		if kind == types.MarkerSingleInline {
			break
		}
	}
	return txs, skipped, nil
}

func decodeMarker(event types.EventRecord, kind types.MarkerKind) (*codec.DerivedPayload, error) {
	parts := make([][]byte, 0, len(event.Indexed)+len(event.NonIndexed))
	parts = append(parts, event.Indexed...)
	if kind == types.MarkerMultiInline {
		parts = append(parts, event.NonIndexed...)
	}
	return codec.MergeDerivedPayload(parts...)
}

func (e *Extractor) canonical(record *types.TransferRecord, kind types.MarkerKind, rule MarkerRule,
	sequence int, payload *codec.DerivedPayload) types.CanonicalTransaction {
	tx := types.CanonicalTransaction{
		From:             payload.From,
		To:               e.cfg.ReceivingAddress,
		MethodIdentifier: types.DerivedMethodIdentifier(record.ID, e.cfg.InitiatingMethod, rule.Token, sequence),
		SerializedParams: codec.EncodeCrossChainTransferInput(codec.CrossChainTransferParams{
			To:           payload.To,
			Symbol:       payload.Symbol,
			Amount:       payload.Amount,
			Memo:         payload.Memo,
			ToChainID:    payload.ToChainID,
			IssueChainID: payload.IssueChainID,
		}),
		Marker:   kind,
		Sequence: sequence,
	}
	if payload.InlineFactor != nil {
		factor := *payload.InlineFactor
		tx.InlineFactor = &factor
	}
	codec.Seal(&tx)
	return tx
}
