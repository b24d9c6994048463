package main

import (
	"os"

	"github.com/scalarorg/crosschain-relayer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
