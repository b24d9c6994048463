package crosschain

import (
	"context"
	"fmt"

	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

// Fetcher retrieves inclusion proofs. Paths are fetched fresh on every call.
type Fetcher struct {
	client ChainClient
}

func NewFetcher(client ChainClient) *Fetcher {
	return &Fetcher{client: client}
}

func (f *Fetcher) Fetch(ctx context.Context, txIdHex string, alias string) (*types.MerklePath, error) {
	path, err := f.client.GetMerklePath(ctx, txIdHex, alias)
	if err != nil {
		return nil, fmt.Errorf("%w: tx %s on %s: %w", ErrProofUnavailable, txIdHex, alias, err)
	}
	if path == nil {
		return nil, fmt.Errorf("%w: tx %s on %s: empty response", ErrProofUnavailable, txIdHex, alias)
	}
	return path, nil
}
