package aelf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/internal/codec"
	"github.com/scalarorg/crosschain-relayer/pkg/crosschain"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"golang.org/x/time/rate"
)

const (
	pathChainStatus        = "/api/blockChain/chainStatus"
	pathSendTransaction    = "/api/blockChain/sendTransaction"
	pathTransactionResult  = "/api/blockChain/transactionResult"
	pathExecuteTransaction = "/api/blockChain/executeTransaction"
	pathMerklePath         = "/api/blockChain/merklePathByTransactionId"

	methodGetTokenInfo = "GetTokenInfo"
)

var _ crosschain.ChainClient = (*Client)(nil)

type chain struct {
	config        ChainConfig
	limiter       *rate.Limiter
	signer        *signer
	tokenContract types.Address
}

// Client talks to the web API of every configured chain. It is safe for concurrent use.
type Client struct {
	chains     map[string]*chain
	tokenChain string
	httpClient *http.Client
	clock      clock.Clock
	tokenInfos *lru.Cache[string, types.TokenInfo]
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// NewClient builds a client for the given chains. Token info lookups go to tokenChain,
// or to the first configured chain when tokenChain is empty.
func NewClient(configs []ChainConfig, tokenChain string, opts ...Option) (*Client, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no chain configured")
	}
	tokenInfos, err := lru.New[string, types.TokenInfo](DefaultTokenCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create token info cache: %w", err)
	}
	client := &Client{
		chains:     make(map[string]*chain, len(configs)),
		tokenChain: tokenChain,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clock:      clock.New(),
		tokenInfos: tokenInfos,
	}
	for _, opt := range opts {
		opt(client)
	}
	for _, cfg := range configs {
		if _, ok := client.chains[cfg.Alias]; ok {
			return nil, fmt.Errorf("duplicate chain alias %s", cfg.Alias)
		}
		ch, err := newChain(cfg)
		if err != nil {
			return nil, fmt.Errorf("chain %s: %w", cfg.Alias, err)
		}
		client.chains[cfg.Alias] = ch
		log.Info().Str("alias", cfg.Alias).Str("endpoint", cfg.Endpoint).
			Msgf("[%s] [NewClient] chain configured", COMPONENT_NAME)
	}
	if client.tokenChain == "" {
		client.tokenChain = configs[0].Alias
	}
	if _, ok := client.chains[client.tokenChain]; !ok {
		return nil, fmt.Errorf("token info chain %s is not configured", client.tokenChain)
	}
	return client, nil
}

func newChain(cfg ChainConfig) (*chain, error) {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = DefaultTxTimeout
	}
	if cfg.ResultPollInterval <= 0 {
		cfg.ResultPollInterval = DefaultResultPollInterval
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}
	tokenContract, err := types.AddressFromBase58(cfg.TokenContract)
	if err != nil {
		return nil, fmt.Errorf("token contract: %w", err)
	}
	ch := &chain{config: cfg, limiter: rate.NewLimiter(limit, burst), tokenContract: tokenContract}
	if cfg.PrivateKey != "" {
		if ch.signer, err = newSigner(cfg.PrivateKey); err != nil {
			return nil, err
		}
	}
	return ch, nil
}

func (c *Client) lookup(alias string) (*chain, error) {
	ch, ok := c.chains[alias]
	if !ok {
		return nil, fmt.Errorf("unknown chain alias %s", alias)
	}
	return ch, nil
}

func (c *Client) GetChainStatus(ctx context.Context, alias string) (*types.ChainStatus, error) {
	ch, err := c.lookup(alias)
	if err != nil {
		return nil, err
	}
	var resp chainStatusResponse
	if err := c.do(ctx, ch, http.MethodGet, pathChainStatus, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toChainStatus(), nil
}

func (c *Client) GetTokenInfo(ctx context.Context, symbol string) (*types.TokenInfo, error) {
	if info, ok := c.tokenInfos.Get(symbol); ok {
		return &info, nil
	}
	ch, err := c.lookup(c.tokenChain)
	if err != nil {
		return nil, err
	}
	tx, err := c.buildTransaction(ctx, ch, types.ContractCall{
		Contract: types.ContractToken,
		Method:   methodGetTokenInfo,
		Params:   codec.EncodeGetTokenInfoInput(symbol),
	})
	if err != nil {
		return nil, err
	}
	var returnValue string
	body := rawTransactionRequest{RawTransaction: common.Bytes2Hex(tx.Serialized)}
	if err := c.do(ctx, ch, http.MethodPost, pathExecuteTransaction, body, &returnValue); err != nil {
		return nil, err
	}
	info, err := codec.DecodeTokenInfo(common.FromHex(returnValue))
	if err != nil {
		return nil, fmt.Errorf("decode token info of %s: %w", symbol, err)
	}
	if info.Symbol == "" {
		return nil, fmt.Errorf("token %s not found on %s", symbol, ch.config.Alias)
	}
	c.tokenInfos.Add(symbol, *info)
	return info, nil
}

// SubmitTransaction signs and sends the call, then waits until the result leaves
// the pending states or the chain's tx timeout elapses.
func (c *Client) SubmitTransaction(ctx context.Context, call types.ContractCall, alias string) (*types.TransferRecord, error) {
	ch, err := c.lookup(alias)
	if err != nil {
		return nil, err
	}
	tx, err := c.buildTransaction(ctx, ch, call)
	if err != nil {
		return nil, err
	}
	var resp sendTransactionResponse
	body := rawTransactionRequest{RawTransaction: common.Bytes2Hex(tx.Serialized)}
	if err := c.do(ctx, ch, http.MethodPost, pathSendTransaction, body, &resp); err != nil {
		return nil, err
	}
	if !strings.EqualFold(resp.TransactionId, tx.IdHex()) {
		log.Warn().Str("expected", tx.IdHex()).Str("actual", resp.TransactionId).
			Msgf("[%s] [SubmitTransaction] node reported a different transaction id", COMPONENT_NAME)
	}
	log.Debug().Str("chain", alias).Str("method", call.Method).Str("txId", resp.TransactionId).
		Msgf("[%s] [SubmitTransaction] transaction sent", COMPONENT_NAME)
	return c.waitForResult(ctx, ch, resp.TransactionId, tx.Serialized)
}

func (c *Client) GetMerklePath(ctx context.Context, txIdHex string, alias string) (*types.MerklePath, error) {
	ch, err := c.lookup(alias)
	if err != nil {
		return nil, err
	}
	var resp *merklePathResponse
	path := pathMerklePath + "?transactionId=" + url.QueryEscape(txIdHex)
	if err := c.do(ctx, ch, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return resp.toMerklePath()
}

func (c *Client) getTransactionResult(ctx context.Context, ch *chain, txId string) (*transactionResultResponse, error) {
	var resp transactionResultResponse
	path := pathTransactionResult + "?transactionId=" + url.QueryEscape(txId)
	if err := c.do(ctx, ch, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// waitForResult polls until the transaction leaves the pending states. When the chain's tx
// timeout elapses first, the last pending record is returned; a done parent ctx is an error.
func (c *Client) waitForResult(parent context.Context, ch *chain, txId string, raw []byte) (*types.TransferRecord, error) {
	ctx, cancel := context.WithTimeout(parent, ch.config.TxTimeout)
	defer cancel()
	var last *transactionResultResponse
	for {
		resp, err := c.getTransactionResult(ctx, ch, txId)
		if err != nil {
			log.Warn().Err(err).Str("txId", txId).Msgf("[%s] [waitForResult] cannot get transaction result", COMPONENT_NAME)
		} else {
			last = resp
			switch types.ParseTxStatus(resp.Status) {
			case types.TxStatusPending, types.TxStatusNotExisted:
			default:
				return resp.toTransferRecord(raw), nil
			}
		}
		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return nil, fmt.Errorf("waiting for transaction %s on %s: %w", txId, ch.config.Alias, err)
			}
			if last == nil {
				return nil, fmt.Errorf("transaction %s on %s: no result: %w", txId, ch.config.Alias, ctx.Err())
			}
			log.Warn().Str("txId", txId).Str("status", last.Status).
				Msgf("[%s] [waitForResult] transaction still pending after timeout", COMPONENT_NAME)
			return last.toTransferRecord(raw), nil
		case <-c.clock.After(ch.config.ResultPollInterval):
		}
	}
}

func (c *Client) buildTransaction(ctx context.Context, ch *chain, call types.ContractCall) (*types.CanonicalTransaction, error) {
	if ch.signer == nil {
		return nil, fmt.Errorf("chain %s has no signing key", ch.config.Alias)
	}
	if call.Contract != types.ContractToken {
		return nil, fmt.Errorf("unknown contract %s", call.Contract)
	}
	status, err := c.GetChainStatus(ctx, ch.config.Alias)
	if err != nil {
		return nil, fmt.Errorf("reference block: %w", err)
	}
	tx := &types.CanonicalTransaction{
		To:               ch.tokenContract,
		RefBlockNumber:   status.HeadHeight,
		RefBlockPrefix:   append([]byte(nil), status.HeadHash[:4]...),
		MethodIdentifier: call.Method,
		SerializedParams: call.Params,
	}
	if err := ch.signer.sign(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *Client) do(ctx context.Context, ch *chain, method, path string, body any, out any) error {
	if err := ch.limiter.Wait(ctx); err != nil {
		return err
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, ch.config.Endpoint+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s on %s: %w", method, path, ch.config.Alias, err)
	}
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode/100 != 2 {
		var apiErr errorResponse
		if json.Unmarshal(buf, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s %s on %s: %s (code %s)", method, path, ch.config.Alias, apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("%s %s on %s: http status %d", method, path, ch.config.Alias, resp.StatusCode)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}
	return nil
}
