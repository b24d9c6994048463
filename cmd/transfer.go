package cmd

import (
	"encoding/json"
	"os"

	"github.com/scalarorg/crosschain-relayer/internal/relayer"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/scalarorg/crosschain-relayer/pkg/server"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"github.com/spf13/cobra"
)

type transferFlags struct {
	mode   string
	to     string
	symbol string
	amount int64
	memo   string
	from   string
	dest   string
}

var (
	transferArgs transferFlags
	transferCmd  = &cobra.Command{
		Use:   "transfer",
		Short: "Run one cross-chain transfer to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := types.ParseMarkerKind(transferArgs.mode)
			if err != nil {
				return err
			}
			to, err := types.AddressFromBase58(transferArgs.to)
			if err != nil {
				return err
			}
			service, err := newService(events.LogSink{})
			if err != nil {
				return err
			}
			result, err := service.Run(cmd.Context(), mode, types.TransferInput{
				To:        to,
				Symbol:    transferArgs.symbol,
				Amount:    transferArgs.amount,
				Memo:      transferArgs.memo,
				FromAlias: transferArgs.from,
				ToAlias:   transferArgs.dest,
			})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
)

type resultOutput struct {
	Initiating string               `json:"initiatingTransactionId,omitempty"`
	Outcome    string               `json:"outcome"`
	Receipts   []server.ReceiptView `json:"receipts"`
}

func printResult(result *relayer.Result) error {
	out := resultOutput{
		Outcome:  result.Outcome.String(),
		Receipts: server.NewReceiptViews(result.Receipts),
	}
	if result.Initiating != nil {
		out.Initiating = result.Initiating.TxIdHex()
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func init() {
	flags := transferCmd.Flags()
	flags.StringVar(&transferArgs.mode, "mode", "direct", "Transfer mode: direct, inline or virtual")
	flags.StringVar(&transferArgs.to, "to", "", "Recipient address on the destination chain")
	flags.StringVar(&transferArgs.symbol, "symbol", "ELF", "Token symbol")
	flags.Int64Var(&transferArgs.amount, "amount", 0, "Amount in the token's smallest unit")
	flags.StringVar(&transferArgs.memo, "memo", "", "Transfer memo")
	flags.StringVar(&transferArgs.from, "from", "", "Source chain alias")
	flags.StringVar(&transferArgs.dest, "dest", "", "Destination chain alias")
	for _, name := range []string{"to", "amount", "from", "dest"} {
		_ = transferCmd.MarkFlagRequired(name)
	}
}
