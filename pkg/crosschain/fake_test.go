package crosschain_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

type fakeClient struct {
	mu sync.Mutex

	statuses    map[string][]*types.ChainStatus
	statusErrs  map[string][]error
	tokenInfo   *types.TokenInfo
	submitFn    func(call types.ContractCall, alias string) (*types.TransferRecord, error)
	merklePaths map[string]*types.MerklePath

	statusCalls map[string]int
	proofCalls  []string
	submitted   []submittedCall
}

type submittedCall struct {
	Call  types.ContractCall
	Alias string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		statuses:    map[string][]*types.ChainStatus{},
		statusErrs:  map[string][]error{},
		merklePaths: map[string]*types.MerklePath{},
		statusCalls: map[string]int{},
		tokenInfo:   &types.TokenInfo{Symbol: "ELF", IssueChainID: 9992731},
	}
}

// GetChainStatus replays the configured statuses, repeating the last one.
func (c *fakeClient) GetChainStatus(_ context.Context, alias string) (*types.ChainStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.statusCalls[alias]
	c.statusCalls[alias]++
	if errs := c.statusErrs[alias]; n < len(errs) && errs[n] != nil {
		return nil, errs[n]
	}
	list := c.statuses[alias]
	if len(list) == 0 {
		return nil, errors.New("unknown chain " + alias)
	}
	if n >= len(list) {
		n = len(list) - 1
	}
	status := *list[n]
	return &status, nil
}

func (c *fakeClient) GetTokenInfo(_ context.Context, symbol string) (*types.TokenInfo, error) {
	info := *c.tokenInfo
	info.Symbol = symbol
	return &info, nil
}

func (c *fakeClient) SubmitTransaction(_ context.Context, call types.ContractCall, alias string) (*types.TransferRecord, error) {
	c.mu.Lock()
	c.submitted = append(c.submitted, submittedCall{Call: call, Alias: alias})
	fn := c.submitFn
	c.mu.Unlock()
	if fn == nil {
		return &types.TransferRecord{Status: types.TxStatusMined}, nil
	}
	return fn(call, alias)
}

func (c *fakeClient) GetMerklePath(_ context.Context, txIdHex string, alias string) (*types.MerklePath, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proofCalls = append(c.proofCalls, alias+"/"+txIdHex)
	path, ok := c.merklePaths[txIdHex]
	if !ok {
		return nil, nil
	}
	return path, nil
}

// instantClock fires immediately and counts sleeps.
type instantClock struct {
	mu    sync.Mutex
	waits int
}

func (c *instantClock) After(time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// blockedClock never fires.
type blockedClock struct{}

func (blockedClock) After(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}
