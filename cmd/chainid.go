package cmd

import (
	"fmt"
	"strconv"

	"github.com/scalarorg/crosschain-relayer/pkg/chainid"
	"github.com/spf13/cobra"
)

var chainIDCmd = &cobra.Command{
	Use:         "chainid <base58|int>",
	Short:       "Convert a chain id between its base58 and numeric forms",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"config": "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if id, err := strconv.ParseInt(args[0], 10, 32); err == nil {
			encoded, err := chainid.ToBase58(int32(id))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		}
		id, err := chainid.ToInt32(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}
