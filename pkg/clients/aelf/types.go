package aelf

import (
	"time"
)

const (
	COMPONENT_NAME = "AElfClient"

	DefaultTxTimeout          = 60 * time.Second
	DefaultResultPollInterval = time.Second
	DefaultTokenCacheSize     = 128
)

// ChainConfig describes one chain reachable through a node web API.
type ChainConfig struct {
	Alias              string        `mapstructure:"alias" validate:"required"`
	Endpoint           string        `mapstructure:"endpoint" validate:"required,url"`
	TokenContract      string        `mapstructure:"token_contract" validate:"required"`
	PrivateKey         string        `mapstructure:"private_key"`
	Mnemonic           string        `mapstructure:"mnemonic"`
	WalletIndex        uint32        `mapstructure:"wallet_index"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst              int           `mapstructure:"burst" validate:"gte=0"`
	TxTimeout          time.Duration `mapstructure:"tx_timeout"`
	ResultPollInterval time.Duration `mapstructure:"result_poll_interval"`
}

type chainStatusResponse struct {
	ChainId                     string `json:"ChainId"`
	LongestChainHeight          int64  `json:"LongestChainHeight"`
	BestChainHeight             int64  `json:"BestChainHeight"`
	BestChainHash               string `json:"BestChainHash"`
	LastIrreversibleBlockHeight int64  `json:"LastIrreversibleBlockHeight"`
	LastIrreversibleBlockHash   string `json:"LastIrreversibleBlockHash"`
}

type rawTransactionRequest struct {
	RawTransaction string `json:"RawTransaction"`
}

type sendTransactionResponse struct {
	TransactionId string `json:"TransactionId"`
}

type logEvent struct {
	Address    string   `json:"Address"`
	Name       string   `json:"Name"`
	Indexed    [][]byte `json:"Indexed"`
	NonIndexed []byte   `json:"NonIndexed"`
}

type transactionResultResponse struct {
	TransactionId string     `json:"TransactionId"`
	Status        string     `json:"Status"`
	Logs          []logEvent `json:"Logs"`
	BlockNumber   int64      `json:"BlockNumber"`
	BlockHash     string     `json:"BlockHash"`
	ReturnValue   string     `json:"ReturnValue"`
	Error         string     `json:"Error"`
}

type merklePathNode struct {
	Hash            string `json:"Hash"`
	IsLeftChildNode bool   `json:"IsLeftChildNode"`
}

type merklePathResponse struct {
	MerklePathNodes []merklePathNode `json:"MerklePathNodes"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Error"`
}
