package types

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scalarorg/crosschain-relayer/pkg/chainid"
)

type TxStatus int

const (
	TxStatusPending TxStatus = iota
	TxStatusMined
	TxStatusFailed
	TxStatusNotExisted
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusPending:
		return "PENDING"
	case TxStatusMined:
		return "MINED"
	case TxStatusFailed:
		return "FAILED"
	case TxStatusNotExisted:
		return "NOTEXISTED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ParseTxStatus maps node status strings. Validation failures and conflicts count as failed.
func ParseTxStatus(status string) TxStatus {
	switch strings.ToUpper(status) {
	case "MINED":
		return TxStatusMined
	case "PENDING", "PENDING_VALIDATION":
		return TxStatusPending
	case "NOTEXISTED":
		return TxStatusNotExisted
	default:
		return TxStatusFailed
	}
}

// ChainStatus is a read-only snapshot of a chain head, re-fetched on each poll.
type ChainStatus struct {
	ChainID    string
	LibHeight  int64
	HeadHeight int64
	HeadHash   common.Hash
}

func (s *ChainStatus) NumericChainID() (int32, error) {
	return chainid.ToInt32(s.ChainID)
}

type TokenInfo struct {
	Symbol       string
	IssueChainID int32
}

// EventRecord is a log emitted by a transaction. Each indexed entry is one
// protobuf-encoded field set; merging them yields the event message.
type EventRecord struct {
	Address    Address
	Name       string
	Indexed    [][]byte
	NonIndexed [][]byte
}

type TransferRecord struct {
	ID              common.Hash
	Status          TxStatus
	InclusionHeight int64
	RawTransaction  []byte
	Events          []EventRecord
	Error           string
}

func (r *TransferRecord) IsMined() bool {
	return r != nil && r.Status == TxStatusMined
}

// TxIdHex returns the transaction id as the nodes expect it, without 0x prefix.
func (r *TransferRecord) TxIdHex() string {
	return strings.TrimPrefix(r.ID.Hex(), "0x")
}

// ContractCall is the payload handed to a chain client for signing and submission.
// Contract is a logical contract name resolved by the client per chain.
type ContractCall struct {
	Contract string
	Method   string
	Params   []byte
}

const (
	ContractToken = "token"
)

type TransferInput struct {
	To        Address
	Symbol    string
	Amount    int64
	Memo      string
	FromAlias string
	ToAlias   string
}

type MerklePathNode struct {
	Hash            common.Hash
	IsLeftChildNode bool
}

type MerklePath struct {
	Nodes []MerklePathNode
}

func (p *MerklePath) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}

type CrossChainReceiveRequest struct {
	FromChainID              int32
	MerklePath               *MerklePath
	ParentChainHeight        int64
	TransferTransactionBytes []byte
	InlineFactor             *int64
}
