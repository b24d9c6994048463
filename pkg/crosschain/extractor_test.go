package crosschain_test

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/pkg/crosschain"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var initiatingID = common.Hash(sha256.Sum256([]byte("initiating transfer")))

func newExtractor() *crosschain.Extractor {
	return crosschain.NewExtractor(crosschain.ExtractorConfig{ReceivingAddress: tokenAddr})
}

func payload(amount int64, method string) *codec.DerivedPayload {
	return &codec.DerivedPayload{
		From:         sender,
		To:           recipient,
		MethodName:   method,
		Symbol:       "ELF",
		Amount:       amount,
		IssueChainID: 9992731,
		ToChainID:    1866392,
	}
}

func markerEvent(name string, p *codec.DerivedPayload) types.EventRecord {
	return types.EventRecord{Address: tokenAddr, Name: name, Indexed: [][]byte{codec.EncodeDerivedPayload(p)}}
}

func TestExtractMultiInlineKeepsOrder(t *testing.T) {
	first := payload(10, "Transfer")
	second := payload(20, "Transfer")
	// The second payload carries its amount in the non-indexed part.
	secondIndexed := *second
	secondIndexed.Amount = 0
	record := &types.TransferRecord{
		ID:     initiatingID,
		Status: types.TxStatusMined,
		Events: []types.EventRecord{
			markerEvent("VirtualTransactionsCreated", first),
			{Name: "Transferred"},
			{
				Name:       "VirtualTransactionsCreated",
				Indexed:    [][]byte{codec.EncodeDerivedPayload(&secondIndexed)},
				NonIndexed: [][]byte{codec.EncodeDerivedPayload(&codec.DerivedPayload{Amount: 20})},
			},
		},
	}

	txs, _, err := newExtractor().Extract(record, types.MarkerMultiInline)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	hash := strings.TrimPrefix(initiatingID.Hex(), "0x")
	assert.Equal(t, hash+".Transfer.virtual.0", txs[0].MethodIdentifier)
	assert.Equal(t, hash+".Transfer.virtual.1", txs[1].MethodIdentifier)
	assert.NotEqual(t, txs[0].ID, txs[1].ID)

	for i, want := range []int64{10, 20} {
		tx := txs[i]
		assert.Equal(t, sender, tx.From)
		assert.Equal(t, tokenAddr, tx.To)
		assert.Equal(t, i, tx.Sequence)
		assert.Equal(t, types.MarkerMultiInline, tx.Marker)
		assert.Equal(t, codec.TransactionID(&tx), tx.ID)
		params, err := codec.DecodeCrossChainTransferInput(tx.SerializedParams)
		require.NoError(t, err)
		assert.Equal(t, want, params.Amount)
		assert.Equal(t, int32(1866392), params.ToChainID)
	}
}

func TestExtractSingleInlineTakesFirstIndexedOnly(t *testing.T) {
	first := payload(10, "Transfer")
	factor := int64(3)
	first.InlineFactor = &factor
	event := markerEvent("VirtualTransactionCreated", first)
	event.NonIndexed = [][]byte{codec.EncodeDerivedPayload(&codec.DerivedPayload{Amount: 999})}
	record := &types.TransferRecord{
		ID: initiatingID,
		Events: []types.EventRecord{
			event,
			markerEvent("VirtualTransactionCreated", payload(30, "Transfer")),
		},
	}

	txs, _, err := newExtractor().Extract(record, types.MarkerSingleInline)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, strings.HasSuffix(txs[0].MethodIdentifier, ".Transfer.inline.0"))
	require.NotNil(t, txs[0].InlineFactor)
	assert.Equal(t, int64(3), *txs[0].InlineFactor)

	params, err := codec.DecodeCrossChainTransferInput(txs[0].SerializedParams)
	require.NoError(t, err)
	assert.Equal(t, int64(10), params.Amount)
}

func TestExtractSkipsCrossChainTransferPayloads(t *testing.T) {
	record := &types.TransferRecord{
		ID: initiatingID,
		Events: []types.EventRecord{
			markerEvent("VirtualTransactionsCreated", payload(10, crosschain.MethodCrossChainTransfer)),
			markerEvent("VirtualTransactionsCreated", payload(20, "Transfer")),
		},
	}

	txs, skipped, err := newExtractor().Extract(record, types.MarkerMultiInline)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 1, txs[0].Sequence)
	assert.True(t, strings.HasSuffix(txs[0].MethodIdentifier, ".virtual.1"))

	require.Len(t, skipped, 1)
	assert.Equal(t, 0, skipped[0].Sequence)
	assert.Equal(t, types.DerivedMethodIdentifier(initiatingID, "Transfer", "virtual", 0), skipped[0].MethodIdentifier)
	assert.NotEmpty(t, skipped[0].Reason)
}

func TestExtractRequiresExactEventName(t *testing.T) {
	record := &types.TransferRecord{
		ID: initiatingID,
		Events: []types.EventRecord{
			markerEvent("VirtualTransactionCreatedV2", payload(10, "Transfer")),
			markerEvent("virtualtransactioncreated", payload(10, "Transfer")),
		},
	}
	txs, _, err := newExtractor().Extract(record, types.MarkerSingleInline)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestExtractMalformedPayload(t *testing.T) {
	record := &types.TransferRecord{
		ID:     initiatingID,
		Events: []types.EventRecord{{Name: "VirtualTransactionsCreated", Indexed: [][]byte{{0x0a, 0x7f}}}},
	}
	_, _, err := newExtractor().Extract(record, types.MarkerMultiInline)
	require.ErrorIs(t, err, codec.ErrMalformed)
}

func TestExtractRejectsDirectMode(t *testing.T) {
	_, _, err := newExtractor().Extract(&types.TransferRecord{}, types.MarkerDirectTransfer)
	require.ErrorIs(t, err, crosschain.ErrUnsupportedMode)
}

func TestDirectUsesInitiatingTransaction(t *testing.T) {
	tx := &types.CanonicalTransaction{
		From:             sender,
		To:               tokenAddr,
		RefBlockNumber:   77,
		MethodIdentifier: crosschain.MethodCrossChainTransfer,
		SerializedParams: []byte{0x10, 0x01},
		Signature:        []byte{1, 2, 3},
	}
	codec.Seal(tx)
	raw := append([]byte(nil), tx.Serialized...)
	record := &types.TransferRecord{ID: tx.ID, Status: types.TxStatusMined, RawTransaction: raw}

	canonical, err := newExtractor().Direct(record)
	require.NoError(t, err)
	assert.Equal(t, record.ID, canonical.ID)
	assert.Equal(t, tx.Serialized, canonical.Serialized)
	assert.Equal(t, types.MarkerDirectTransfer, canonical.Marker)

	// The canonical copy must not alias the record's bytes.
	raw[0] ^= 0xff
	assert.Equal(t, tx.Serialized[0], canonical.Serialized[0])
}

func TestDirectWithoutRawTransaction(t *testing.T) {
	_, err := newExtractor().Direct(&types.TransferRecord{ID: initiatingID})
	require.Error(t, err)
}
