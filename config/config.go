package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/pkg/clients/aelf"
	"github.com/scalarorg/crosschain-relayer/pkg/crosschain"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
	"github.com/spf13/viper"
)

const EnvPrefix = "XCHAIN"

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

type FinalityConfig struct {
	PollInterval      time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
	DirectDepth       int64         `mapstructure:"direct_depth" validate:"gte=0"`
	SingleInlineDepth int64         `mapstructure:"single_inline_depth" validate:"gte=0"`
	MultiInlineDepth  int64         `mapstructure:"multi_inline_depth" validate:"gte=0"`
}

type MarkerConfig struct {
	EventNames []string `mapstructure:"event_names" validate:"min=1,dive,required"`
	Token      string   `mapstructure:"token" validate:"required"`
}

type ExtractorConfig struct {
	ReceivingAddress         string       `mapstructure:"receiving_address" validate:"required"`
	InitiatingMethod         string       `mapstructure:"initiating_method" validate:"required"`
	CrossChainTransferMethod string       `mapstructure:"cross_chain_transfer_method" validate:"required"`
	Inline                   MarkerConfig `mapstructure:"inline"`
	Virtual                  MarkerConfig `mapstructure:"virtual"`
}

type DatabaseConfig struct {
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" validate:"required_with=MongoURI"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name"`
}

type EventBusConfig struct {
	SubscriberBuffer int `mapstructure:"subscriber_buffer" validate:"gte=0"`
}

type Config struct {
	Log            LogConfig          `mapstructure:"log"`
	Chains         []aelf.ChainConfig `mapstructure:"chains" validate:"required,min=2,dive"`
	TokenInfoChain string             `mapstructure:"token_info_chain"`
	Finality       FinalityConfig     `mapstructure:"finality"`
	Extractor      ExtractorConfig    `mapstructure:"extractor"`
	Database       DatabaseConfig     `mapstructure:"database"`
	Server         ServerConfig       `mapstructure:"server"`
	Tracing        TracingConfig      `mapstructure:"tracing"`
	EventBus       EventBusConfig     `mapstructure:"event_bus"`
}

var GlobalConfig *Config

// LoadEnv reads an env file (.env when path is empty) into the global viper instance.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("finality.poll_interval", crosschain.DefaultPollInterval)
	v.SetDefault("finality.direct_depth", crosschain.DefaultDirectDepth)
	v.SetDefault("finality.single_inline_depth", crosschain.DefaultSingleInlineDepth)
	v.SetDefault("finality.multi_inline_depth", crosschain.DefaultMultiInlineDepth)
	v.SetDefault("extractor.initiating_method", crosschain.MethodTransfer)
	v.SetDefault("extractor.cross_chain_transfer_method", crosschain.MethodCrossChainTransfer)
	markers := crosschain.DefaultMarkers()
	v.SetDefault("extractor.inline.event_names", markers[types.MarkerSingleInline].EventNames)
	v.SetDefault("extractor.inline.token", markers[types.MarkerSingleInline].Token)
	v.SetDefault("extractor.virtual.event_names", markers[types.MarkerMultiInline].EventNames)
	v.SetDefault("extractor.virtual.token", markers[types.MarkerMultiInline].Token)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("tracing.service_name", "crosschain-relayer")
	v.SetDefault("event_bus.subscriber_buffer", 64)
}

// Load reads the yaml or json config file at path. Every key can be overridden
// with an XCHAIN_ prefixed environment variable (finality.poll_interval -> XCHAIN_FINALITY_POLL_INTERVAL).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	for i := range cfg.Chains {
		if err := preparePrivateKey(v, &cfg.Chains[i]); err != nil {
			return nil, err
		}
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	GlobalConfig = &cfg
	return &cfg, nil
}

// preparePrivateKey fills a missing chain key. It looks at XCHAIN_<ALIAS>_PRIVATE_KEY, then
// <ALIAS>_PRIVATE_KEY in .env, then derives one from the chain mnemonic (or <ALIAS>_MNEMONIC)
// at wallet_index.
func preparePrivateKey(v *viper.Viper, chain *aelf.ChainConfig) error {
	if chain.PrivateKey != "" {
		return nil
	}
	prefix := strings.ToUpper(chain.Alias)
	if privateKey := lookupEnv(v, prefix+"_PRIVATE_KEY"); privateKey != "" {
		chain.PrivateKey = privateKey
		return nil
	}
	mnemonic := chain.Mnemonic
	if mnemonic == "" {
		mnemonic = lookupEnv(v, prefix+"_MNEMONIC")
	}
	if mnemonic == "" {
		log.Warn().Str("chain", chain.Alias).Msg("[Config] [preparePrivateKey] no private key, chain is read only")
		return nil
	}
	privateKey, err := aelf.PrivateKeyFromMnemonic(mnemonic, chain.WalletIndex)
	if err != nil {
		return fmt.Errorf("chain %s: %w", chain.Alias, err)
	}
	chain.PrivateKey = privateKey
	return nil
}

func lookupEnv(v *viper.Viper, key string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return viper.GetString(key)
}

func (c *Config) Policy() crosschain.Policy {
	return crosschain.Policy{
		types.MarkerDirectTransfer: c.Finality.DirectDepth,
		types.MarkerSingleInline:   c.Finality.SingleInlineDepth,
		types.MarkerMultiInline:    c.Finality.MultiInlineDepth,
	}
}

func (c *Config) ExtractorConfig() (crosschain.ExtractorConfig, error) {
	receiving, err := types.AddressFromBase58(c.Extractor.ReceivingAddress)
	if err != nil {
		return crosschain.ExtractorConfig{}, fmt.Errorf("extractor receiving address: %w", err)
	}
	return crosschain.ExtractorConfig{
		ReceivingAddress:         receiving,
		InitiatingMethod:         c.Extractor.InitiatingMethod,
		CrossChainTransferMethod: c.Extractor.CrossChainTransferMethod,
		Markers: map[types.MarkerKind]crosschain.MarkerRule{
			types.MarkerSingleInline: {EventNames: c.Extractor.Inline.EventNames, Token: c.Extractor.Inline.Token},
			types.MarkerMultiInline:  {EventNames: c.Extractor.Virtual.EventNames, Token: c.Extractor.Virtual.Token},
		},
	}, nil
}
