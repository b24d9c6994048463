package relayer_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/internal/relayer"
	"github.com/scalarorg/crosschain-relayer/pkg/crosschain"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chainA          = "ChainA"
	chainB          = "ChainB"
	inclusionHeight = int64(1000)
)

var (
	recipient = types.MustAddressFromBase58("2XHsq3pgWt6ep4Vx5RZKiowpr7MqXycAcPj26TQ7sEMD3ZFiha")
	sender    = types.MustAddressFromBase58("2nSXrp4iM3A1gB5WKXjkwJQwy56jzcw1ESNpVnWywnyjXFixGc")
	tokenAddr = types.MustAddressFromBase58("QxQpimticpTqXyQuv7WzP1ppDnvAu5cNKAsYY9iA9yFADYSb2")
)

// mockChains simulates a source chain whose LIB advances on every status query
// and a destination chain accepting receive transactions.
type mockChains struct {
	mu sync.Mutex

	libHeights   []int64
	sourceStatus types.TxStatus
	sourceEvents []types.EventRecord
	noProof      bool

	statusCalls int
	proofCalls  []string
	receives    []types.ContractCall
	initiating  *types.CanonicalTransaction
}

func (m *mockChains) GetChainStatus(_ context.Context, alias string) (*types.ChainStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch alias {
	case chainA:
		n := m.statusCalls
		m.statusCalls++
		if n >= len(m.libHeights) {
			n = len(m.libHeights) - 1
		}
		return &types.ChainStatus{ChainID: "AELF", LibHeight: m.libHeights[n], HeadHeight: m.libHeights[n] + 20}, nil
	case chainB:
		return &types.ChainStatus{ChainID: "tDVV", LibHeight: 50, HeadHeight: 60}, nil
	}
	return nil, assert.AnError
}

func (m *mockChains) GetTokenInfo(_ context.Context, symbol string) (*types.TokenInfo, error) {
	return &types.TokenInfo{Symbol: symbol, IssueChainID: 9992731}, nil
}

func (m *mockChains) SubmitTransaction(_ context.Context, call types.ContractCall, alias string) (*types.TransferRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alias == chainB {
		m.receives = append(m.receives, call)
		return &types.TransferRecord{ID: common.BytesToHash([]byte{byte(len(m.receives))}), Status: types.TxStatusMined, InclusionHeight: 61}, nil
	}
	tx := &types.CanonicalTransaction{
		From:             sender,
		To:               tokenAddr,
		RefBlockNumber:   inclusionHeight - 5,
		RefBlockPrefix:   []byte{1, 2, 3, 4},
		MethodIdentifier: call.Method,
		SerializedParams: call.Params,
		Signature:        []byte{7, 7, 7},
	}
	codec.Seal(tx)
	m.initiating = tx
	status := m.sourceStatus
	if status == types.TxStatusPending {
		status = types.TxStatusMined
	}
	return &types.TransferRecord{
		ID:              tx.ID,
		Status:          status,
		InclusionHeight: inclusionHeight,
		RawTransaction:  append([]byte(nil), tx.Serialized...),
		Events:          m.sourceEvents,
	}, nil
}

func (m *mockChains) GetMerklePath(_ context.Context, txIdHex string, alias string) (*types.MerklePath, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proofCalls = append(m.proofCalls, alias+"/"+txIdHex)
	if m.noProof {
		return nil, nil
	}
	return &types.MerklePath{Nodes: []types.MerklePathNode{
		{Hash: common.HexToHash("0xaa"), IsLeftChildNode: true},
		{Hash: common.HexToHash("0xbb")},
	}}, nil
}

type instantClock struct{ waits int }

func (c *instantClock) After(time.Duration) <-chan time.Time {
	c.waits++
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type blockedClock struct{}

func (blockedClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

type stageRecorder struct {
	mu     sync.Mutex
	events []events.StageEvent
}

func (r *stageRecorder) Publish(_ context.Context, event events.StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *stageRecorder) stages() []events.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	stages := make([]events.Stage, 0, len(r.events))
	for _, event := range r.events {
		stages = append(stages, event.Stage)
	}
	return stages
}

func transferInput() types.TransferInput {
	return types.TransferInput{To: recipient, Symbol: "ELF", Amount: 100000, FromAlias: chainA, ToAlias: chainB}
}

func newService(chains *mockChains, clk crosschain.Clock, recorder *stageRecorder) *relayer.Service {
	return relayer.NewService(chains, relayer.Options{
		Extractor: crosschain.ExtractorConfig{ReceivingAddress: tokenAddr},
		Clock:     clk,
		Sink:      recorder,
	})
}

func derivedPayload(amount int64, method string) *codec.DerivedPayload {
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

func markerEvent(name string, payload *codec.DerivedPayload) types.EventRecord {
	return types.EventRecord{Address: tokenAddr, Name: name, Indexed: [][]byte{codec.EncodeDerivedPayload(payload)}}
}

func marker(amount int64) types.EventRecord {
	return markerEvent("VirtualTransactionsCreated", derivedPayload(amount, "Transfer"))
}

func TestDirectTransferEndToEnd(t *testing.T) {
	chains := &mockChains{libHeights: []int64{1100, 1200, 1300, 1301}}
	clk := &instantClock{}
	recorder := &stageRecorder{}

	result, err := newService(chains, clk, recorder).CrossChainTransfer(context.Background(), transferInput())
	require.NoError(t, err)
	require.Equal(t, relayer.OutcomeReceiveSubmitted, result.Outcome)
	require.Len(t, result.Receipts, 1)

	// The proof is keyed on the initiating transaction hash.
	initiatingHex := strings.TrimPrefix(chains.initiating.ID.Hex(), "0x")
	assert.Equal(t, []string{chainA + "/" + initiatingHex}, chains.proofCalls)
	// The first status answers the chain id lookup. 1300 is not past the depth of 300.
	assert.Equal(t, 2, clk.waits)

	require.Len(t, chains.receives, 1)
	assert.Equal(t, crosschain.MethodCrossChainReceiveToken, chains.receives[0].Method)
	req, err := codec.DecodeCrossChainReceiveTokenInput(chains.receives[0].Params)
	require.NoError(t, err)
	assert.Equal(t, int32(9992731), req.FromChainID)
	assert.Equal(t, inclusionHeight, req.ParentChainHeight)
	assert.Equal(t, chains.initiating.Serialized, req.TransferTransactionBytes)
	assert.Equal(t, 2, req.MerklePath.Len())
	assert.Nil(t, req.InlineFactor)

	params, err := codec.DecodeCrossChainTransferInput(chains.initiating.SerializedParams)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), params.Amount)
	assert.Equal(t, "ELF", params.Symbol)
	assert.Equal(t, int32(1866392), params.ToChainID)

	assert.Equal(t, []events.Stage{
		events.StageSubmitted,
		events.StageMined,
		events.StageAwaitingFinality,
		events.StageProofReady,
		events.StageReceiveSubmitted,
	}, recorder.stages())
}

func TestVirtualInlineTransferRelaysEachDerivedTransaction(t *testing.T) {
	chains := &mockChains{
		libHeights:   []int64{1100, 1100, 1151},
		sourceEvents: []types.EventRecord{marker(10), {Name: "Transferred"}, marker(20)},
	}
	clk := &instantClock{}

	result, err := newService(chains, clk, &stageRecorder{}).CrossChainTransferWithVirtualInline(context.Background(), transferInput())
	require.NoError(t, err)
	require.Equal(t, relayer.OutcomeReceiveSubmitted, result.Outcome)
	require.Len(t, result.Receipts, 2)
	require.Len(t, chains.receives, 2)

	// 1151 - 1000 > 150 satisfies the derived depth without reaching the direct one.
	assert.Equal(t, 1, clk.waits)

	for i, suffix := range []string{".0", ".1"} {
		canonical := result.Receipts[i].Canonical
		assert.True(t, strings.HasSuffix(canonical.MethodIdentifier, suffix), canonical.MethodIdentifier)
		assert.Equal(t, chainA+"/"+canonical.IdHex(), chains.proofCalls[i])

		req, err := codec.DecodeCrossChainReceiveTokenInput(chains.receives[i].Params)
		require.NoError(t, err)
		assert.Equal(t, canonical.Serialized, req.TransferTransactionBytes)
	}
	assert.NotEqual(t, result.Receipts[0].Canonical.MethodIdentifier, result.Receipts[1].Canonical.MethodIdentifier)
}

func TestSingleInlineTransferCarriesInlineFactor(t *testing.T) {
	factor := int64(4)
	payload := derivedPayload(30, "Transfer")
	payload.InlineFactor = &factor
	second := derivedPayload(40, "Transfer")
	chains := &mockChains{
		libHeights: []int64{1100, 1100, 1101},
		sourceEvents: []types.EventRecord{
			markerEvent("VirtualTransactionCreated", payload),
			markerEvent("VirtualTransactionCreated", second),
		},
	}
	clk := &instantClock{}

	result, err := newService(chains, clk, &stageRecorder{}).CrossChainTransferWithInline(context.Background(), transferInput())
	require.NoError(t, err)
	require.Equal(t, relayer.OutcomeReceiveSubmitted, result.Outcome)
	// Only the first marker is relayed.
	require.Len(t, result.Receipts, 1)
	require.Len(t, chains.receives, 1)

	// 1100 - 1000 is not past the depth of 100, 1101 is.
	assert.Equal(t, 1, clk.waits)

	canonical := result.Receipts[0].Canonical
	assert.True(t, strings.HasSuffix(canonical.MethodIdentifier, ".Transfer.inline.0"), canonical.MethodIdentifier)
	assert.Equal(t, chainA+"/"+canonical.IdHex(), chains.proofCalls[0])

	req, err := codec.DecodeCrossChainReceiveTokenInput(chains.receives[0].Params)
	require.NoError(t, err)
	require.NotNil(t, req.InlineFactor)
	assert.Equal(t, factor, *req.InlineFactor)
	assert.Equal(t, inclusionHeight, req.ParentChainHeight)
	assert.Equal(t, canonical.Serialized, req.TransferTransactionBytes)

	params, err := codec.DecodeCrossChainTransferInput(canonical.SerializedParams)
	require.NoError(t, err)
	assert.Equal(t, int64(30), params.Amount)
}

func TestSkippedMarkerIsRejected(t *testing.T) {
	chains := &mockChains{
		libHeights: []int64{1100, 1151},
		sourceEvents: []types.EventRecord{
			markerEvent("VirtualTransactionsCreated", derivedPayload(10, crosschain.MethodCrossChainTransfer)),
			marker(20),
		},
	}
	recorder := &stageRecorder{}

	result, err := newService(chains, &instantClock{}, recorder).CrossChainTransferWithVirtualInline(context.Background(), transferInput())
	require.NoError(t, err)
	require.Equal(t, relayer.OutcomeReceiveSubmitted, result.Outcome)
	require.Len(t, result.Receipts, 1)
	assert.True(t, strings.HasSuffix(result.Receipts[0].Canonical.MethodIdentifier, ".virtual.1"))

	assert.Equal(t, []events.Stage{
		events.StageSubmitted,
		events.StageMined,
		events.StageRejected,
		events.StageAwaitingFinality,
		events.StageProofReady,
		events.StageReceiveSubmitted,
	}, recorder.stages())
	rejected := recorder.events[2]
	assert.True(t, strings.HasSuffix(rejected.MethodIdentifier, ".Transfer.virtual.0"), rejected.MethodIdentifier)
	assert.Contains(t, rejected.Reason, crosschain.MethodCrossChainTransfer)
}

func TestAllMarkersSkippedMeansNothingToRelay(t *testing.T) {
	chains := &mockChains{
		libHeights: []int64{5000},
		sourceEvents: []types.EventRecord{
			markerEvent("VirtualTransactionsCreated", derivedPayload(10, crosschain.MethodCrossChainTransfer)),
			markerEvent("VirtualTransactionsCreated", derivedPayload(20, crosschain.MethodCrossChainTransfer)),
		},
	}
	recorder := &stageRecorder{}

	result, err := newService(chains, &instantClock{}, recorder).CrossChainTransferWithVirtualInline(context.Background(), transferInput())
	require.NoError(t, err)
	assert.Equal(t, relayer.OutcomeNoDerivedTransaction, result.Outcome)
	assert.Empty(t, chains.receives)
	assert.Equal(t, []events.Stage{
		events.StageSubmitted,
		events.StageMined,
		events.StageRejected,
		events.StageRejected,
	}, recorder.stages())
}

func TestNotMinedTransferStopsPipeline(t *testing.T) {
	chains := &mockChains{libHeights: []int64{5000}, sourceStatus: types.TxStatusFailed}
	recorder := &stageRecorder{}

	result, err := newService(chains, &instantClock{}, recorder).CrossChainTransfer(context.Background(), transferInput())
	require.NoError(t, err)
	assert.Equal(t, relayer.OutcomeNotMined, result.Outcome)
	assert.Empty(t, chains.proofCalls)
	assert.Empty(t, chains.receives)
	assert.Equal(t, []events.Stage{events.StageSubmitted, events.StageRejected}, recorder.stages())
}

func TestNoMarkerMeansNothingToRelay(t *testing.T) {
	chains := &mockChains{libHeights: []int64{5000}, sourceEvents: []types.EventRecord{{Name: "Transferred"}}}

	result, err := newService(chains, &instantClock{}, &stageRecorder{}).CrossChainTransferWithInline(context.Background(), transferInput())
	require.NoError(t, err)
	assert.Equal(t, relayer.OutcomeNoDerivedTransaction, result.Outcome)
	assert.Empty(t, chains.proofCalls)
	assert.Empty(t, chains.receives)
}

func TestMissingProofFailsWithoutReceive(t *testing.T) {
	chains := &mockChains{libHeights: []int64{5000}, noProof: true}
	recorder := &stageRecorder{}

	_, err := newService(chains, &instantClock{}, recorder).CrossChainTransfer(context.Background(), transferInput())
	require.ErrorIs(t, err, crosschain.ErrProofUnavailable)
	assert.Empty(t, chains.receives)
	stages := recorder.stages()
	assert.Equal(t, events.StageFailed, stages[len(stages)-1])
}

func TestFinalityTimeout(t *testing.T) {
	chains := &mockChains{libHeights: []int64{1000}}
	service := relayer.NewService(chains, relayer.Options{
		Clock:           blockedClock{},
		FinalityTimeout: 20 * time.Millisecond,
	})

	_, err := service.CrossChainTransfer(context.Background(), transferInput())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, chains.proofCalls)
}

func TestInvalidInputIsRejectedBeforeSubmission(t *testing.T) {
	chains := &mockChains{libHeights: []int64{5000}}
	in := transferInput()
	in.Amount = 0

	_, err := newService(chains, &instantClock{}, &stageRecorder{}).Run(context.Background(), types.MarkerDirectTransfer, in)
	require.ErrorIs(t, err, crosschain.ErrInvalidTransfer)
	assert.Nil(t, chains.initiating)
}
