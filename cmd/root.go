package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/config"
	"github.com/scalarorg/crosschain-relayer/internal/relayer"
	"github.com/scalarorg/crosschain-relayer/pkg/clients/aelf"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/spf13/cobra"
)

var (
	configPath      string
	envFile         string
	shutdownTracing func(context.Context) error
	rootCmd         = &cobra.Command{
		Use:   "relayer",
		Short: "Cross-chain transfer relayer",
		// chainid needs no config
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["config"] == "none" {
				return nil
			}
			return setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if shutdownTracing == nil {
				return nil
			}
			return shutdownTracing(context.Background())
		},
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(ctx context.Context) error {
	if err := config.LoadEnv(envFile); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return err
		}
		log.Debug().Str("file", envFile).Msg("[Relayer] [setup] no env file")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	config.InitLogger(cfg.Log)
	shutdownTracing, err = config.InitTracing(ctx, cfg.Tracing)
	return err
}

// newService wires the node client and the pipeline from the global config.
func newService(sink events.Sink) (*relayer.Service, error) {
	cfg := config.GlobalConfig
	client, err := aelf.NewClient(cfg.Chains, cfg.TokenInfoChain)
	if err != nil {
		return nil, err
	}
	extractor, err := cfg.ExtractorConfig()
	if err != nil {
		return nil, err
	}
	return relayer.NewService(client, relayer.Options{
		Policy:          cfg.Policy(),
		Extractor:       extractor,
		PollInterval:    cfg.Finality.PollInterval,
		FinalityTimeout: cfg.Finality.Timeout,
		Sink:            sink,
	}), nil
}

func init() {
	defaultConfig := os.Getenv("XCHAIN_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "Path to the yaml or json configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to the env file holding private keys")
	rootCmd.AddCommand(transferCmd, serveCmd, chainIDCmd)
}
