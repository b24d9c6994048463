package crosschain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/pkg/crosschain"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchIsIdempotent(t *testing.T) {
	client := newFakeClient()
	path := &types.MerklePath{Nodes: []types.MerklePathNode{{Hash: common.HexToHash("0x01"), IsLeftChildNode: true}}}
	client.merklePaths["abcd"] = path
	fetcher := crosschain.NewFetcher(client)

	first, err := fetcher.Fetch(context.Background(), "abcd", "AELF")
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), "abcd", "AELF")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"AELF/abcd", "AELF/abcd"}, client.proofCalls)
}

func TestFetchEmptyPathIsValid(t *testing.T) {
	client := newFakeClient()
	client.merklePaths["abcd"] = &types.MerklePath{}
	path, err := crosschain.NewFetcher(client).Fetch(context.Background(), "abcd", "AELF")
	require.NoError(t, err)
	assert.Zero(t, path.Len())
}

func TestFetchMissingPath(t *testing.T) {
	client := newFakeClient()
	_, err := crosschain.NewFetcher(client).Fetch(context.Background(), "missing", "AELF")
	require.ErrorIs(t, err, crosschain.ErrProofUnavailable)
}

func TestReceiverSubmitsOnce(t *testing.T) {
	client := newFakeClient()
	factor := int64(2)
	req := &types.CrossChainReceiveRequest{
		FromChainID:              9992731,
		ParentChainHeight:        1301,
		TransferTransactionBytes: []byte{1, 2, 3},
		MerklePath:               &types.MerklePath{Nodes: []types.MerklePathNode{{Hash: common.HexToHash("0x02")}}},
		InlineFactor:             &factor,
	}

	_, err := crosschain.NewReceiver(client).Submit(context.Background(), req, "tDVV")
	require.NoError(t, err)
	require.Len(t, client.submitted, 1)
	call := client.submitted[0]
	assert.Equal(t, "tDVV", call.Alias)
	assert.Equal(t, crosschain.MethodCrossChainReceiveToken, call.Call.Method)

	decoded, err := codec.DecodeCrossChainReceiveTokenInput(call.Call.Params)
	require.NoError(t, err)
	assert.Equal(t, req.FromChainID, decoded.FromChainID)
	assert.Equal(t, req.ParentChainHeight, decoded.ParentChainHeight)
	assert.Equal(t, req.TransferTransactionBytes, decoded.TransferTransactionBytes)
	assert.Equal(t, req.MerklePath, decoded.MerklePath)
	require.NotNil(t, decoded.InlineFactor)
	assert.Equal(t, factor, *decoded.InlineFactor)
}

func TestReceiverFailureIsNotRetried(t *testing.T) {
	client := newFakeClient()
	client.submitFn = func(types.ContractCall, string) (*types.TransferRecord, error) {
		return nil, errors.New("node unavailable")
	}
	_, err := crosschain.NewReceiver(client).Submit(context.Background(),
		&types.CrossChainReceiveRequest{MerklePath: &types.MerklePath{}}, "tDVV")
	require.ErrorIs(t, err, crosschain.ErrSubmissionFailed)
	assert.Len(t, client.submitted, 1)
}
