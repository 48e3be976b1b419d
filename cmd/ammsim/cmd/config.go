package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/pkg/sandbox"
)

const (
	EnvPrefix         = "AMMSIM"
	DefaultConfigName = "ammsim"

	FlagConfig           = "config"
	FlagLogLevel         = "log-level"
	FlagBech32Prefix     = "bech32-prefix"
	FlagBlockTime        = "block-time"
	FlagPairCodeTemplate = "pair-code-template"
	FlagOutput           = "output"
	FlagAPIListen        = "api-listen"
	FlagAPIRateLimitRPS  = "api-rate-limit-rps"
	FlagAPICORSOrigins   = "api-cors-origins"
	FlagMetricsListen    = "metrics-listen"

	DefaultBech32Prefix  = "paw"
	DefaultMetricsListen = "127.0.0.1:36660"
)

// flagKeys maps command line flags to their config keys.
var flagKeys = map[string]string{
	FlagLogLevel:         "log-level",
	FlagBech32Prefix:     "bech32-prefix",
	FlagBlockTime:        "block-time",
	FlagPairCodeTemplate: "pair-code-template",
	FlagOutput:           "output",
	FlagAPIListen:        "api.listen",
	FlagAPIRateLimitRPS:  "api.rate-limit-rps",
	FlagAPICORSOrigins:   "api.cors-origins",
	FlagMetricsListen:    "metrics.listen",
}

// Config is the resolved ammsim configuration.
type Config struct {
	LogLevel         string
	Bech32Prefix     string
	BlockTime        time.Duration
	PairCodeTemplate string
	Output           string
	API              *api.Config
	MetricsListen    string
}

func setDefaults(v *viper.Viper) {
	apiCfg := api.DefaultConfig()
	v.SetDefault("log-level", "info")
	v.SetDefault("bech32-prefix", DefaultBech32Prefix)
	v.SetDefault("block-time", sandbox.DefaultBlockInterval.String())
	v.SetDefault("pair-code-template", sandbox.DefaultPairCodeTemplate)
	v.SetDefault("output", "yaml")
	v.SetDefault("api.listen", apiCfg.Listen)
	v.SetDefault("api.rate-limit-rps", apiCfg.RateLimitRPS)
	v.SetDefault("api.cors-origins", apiCfg.CORSOrigins)
	v.SetDefault("metrics.listen", DefaultMetricsListen)
}

// addConfigFlags registers the persistent flags every subcommand accepts.
func addConfigFlags(flags *pflag.FlagSet) {
	flags.String(FlagConfig, "", "config file (default ./ammsim.yaml if present)")
	flags.String(FlagLogLevel, "info", "log level (trace|debug|info|warn|error|disabled)")
	flags.String(FlagBech32Prefix, DefaultBech32Prefix, "bech32 prefix of account addresses")
	flags.Duration(FlagBlockTime, sandbox.DefaultBlockInterval, "block interval of the sandbox chain")
	flags.String(FlagPairCodeTemplate, sandbox.DefaultPairCodeTemplate, "pair code template recorded by the factory")
	flags.StringP(FlagOutput, "o", "yaml", "output format (yaml|json)")
}

// loadConfig binds flags and environment, then reads the config file.
// A missing default config file is not an error.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	setDefaults(v)
	for flag, key := range flagKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	path, _ := flags.GetString(FlagConfig)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(DefaultConfigName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// readConfig resolves the bound values into a Config.
func readConfig(v *viper.Viper) (*Config, error) {
	blockTime, err := cast.ToDurationE(v.Get("block-time"))
	if err != nil {
		return nil, fmt.Errorf("invalid block-time: %w", err)
	}
	if blockTime <= 0 {
		return nil, fmt.Errorf("block-time must be positive, got %s", blockTime)
	}
	rps, err := cast.ToIntE(v.Get("api.rate-limit-rps"))
	if err != nil {
		return nil, fmt.Errorf("invalid api.rate-limit-rps: %w", err)
	}
	origins, err := cast.ToStringSliceE(v.Get("api.cors-origins"))
	if err != nil {
		return nil, fmt.Errorf("invalid api.cors-origins: %w", err)
	}

	output := strings.ToLower(v.GetString("output"))
	if output != "yaml" && output != "json" {
		return nil, fmt.Errorf("unsupported output format %q", output)
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Listen = v.GetString("api.listen")
	apiCfg.RateLimitRPS = rps
	apiCfg.CORSOrigins = splitOrigins(origins)

	return &Config{
		LogLevel:         v.GetString("log-level"),
		Bech32Prefix:     v.GetString("bech32-prefix"),
		BlockTime:        blockTime,
		PairCodeTemplate: v.GetString("pair-code-template"),
		Output:           output,
		API:              apiCfg,
		MetricsListen:    v.GetString("metrics.listen"),
	}, nil
}

// splitOrigins accepts both list values and comma separated strings.
func splitOrigins(values []string) []string {
	var origins []string
	for _, v := range values {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return origins
}
