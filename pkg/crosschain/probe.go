package crosschain

import (
	"context"
	"fmt"

	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

type Probe struct {
	client ChainClient
}

func NewProbe(client ChainClient) *Probe {
	return &Probe{client: client}
}

func (p *Probe) Status(ctx context.Context, alias string) (*types.ChainStatus, error) {
	status, err := p.client.GetChainStatus(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("get chain status of %s: %w", alias, err)
	}
	return status, nil
}

func (p *Probe) ChainID(ctx context.Context, alias string) (int32, error) {
	status, err := p.Status(ctx, alias)
	if err != nil {
		return 0, err
	}
	id, err := status.NumericChainID()
	if err != nil {
		return 0, fmt.Errorf("chain id of %s: %w", alias, err)
	}
	return id, nil
}
