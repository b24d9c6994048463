package server

import (
	"context"
	"time"

	"github.com/scalarorg/crosschain-relayer/internal/relayer"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

// Runner executes one transfer pipeline.
type Runner interface {
	Run(ctx context.Context, mode types.MarkerKind, in types.TransferInput) (*relayer.Result, error)
}

// History serves stored stage transitions.
type History interface {
	FindStageEvents(ctx context.Context, transferID string) ([]events.StageEvent, error)
}

type TransferRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=direct inline virtual"`
	To     string `json:"to" validate:"required"`
	Symbol string `json:"symbol" validate:"required,max=64"`
	Amount int64  `json:"amount" validate:"gt=0"`
	Memo   string `json:"memo" validate:"max=256"`
	From   string `json:"from" validate:"required"`
	Dest   string `json:"dest" validate:"required,nefield=From"`
}

const (
	RequestStatusRunning   = "running"
	RequestStatusCompleted = "completed"
	RequestStatusFailed    = "failed"
)

type ReceiptView struct {
	MethodIdentifier string `json:"methodIdentifier"`
	CanonicalID      string `json:"canonicalId"`
	ReceiveTxID      string `json:"receiveTxId"`
	ReceiveStatus    string `json:"receiveStatus"`
}

func NewReceiptViews(receipts []relayer.Receipt) []ReceiptView {
	views := make([]ReceiptView, 0, len(receipts))
	for _, receipt := range receipts {
		view := ReceiptView{
			MethodIdentifier: receipt.Canonical.MethodIdentifier,
			CanonicalID:      receipt.Canonical.IdHex(),
		}
		if receipt.Record != nil {
			view.ReceiveTxID = receipt.Record.TxIdHex()
			view.ReceiveStatus = receipt.Record.Status.String()
		}
		views = append(views, view)
	}
	return views
}

// RequestState is what the API reports about an accepted transfer request.
type RequestState struct {
	RequestID  string        `json:"requestId"`
	Mode       string        `json:"mode"`
	Status     string        `json:"status"`
	TransferID string        `json:"transferId,omitempty"`
	Outcome    string        `json:"outcome,omitempty"`
	Receipts   []ReceiptView `json:"receipts,omitempty"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type errorBody struct {
	Error string `json:"error"`
}
