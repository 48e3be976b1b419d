package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/paw-chain/pawswap/pkg/sandbox"
)

var sdkConfigOnce sync.Once

// initSDKConfig sets the account bech32 prefixes. Only the first call takes effect.
func initSDKConfig(prefix string) {
	sdkConfigOnce.Do(func() {
		config := sdk.GetConfig()
		config.SetBech32PrefixForAccount(prefix, prefix+sdk.PrefixPublic)
		config.SetBech32PrefixForValidator(prefix+sdk.PrefixValidator+sdk.PrefixOperator, prefix+sdk.PrefixValidator+sdk.PrefixOperator+sdk.PrefixPublic)
		config.SetBech32PrefixForConsensusNode(prefix+sdk.PrefixValidator+sdk.PrefixConsensus, prefix+sdk.PrefixValidator+sdk.PrefixConsensus+sdk.PrefixPublic)
	})
}

// env carries the configuration resolved for the running command.
type env struct {
	v      *viper.Viper
	config *Config
	logger log.Logger
}

// NewRootCmd creates the ammsim root command.
func NewRootCmd() *cobra.Command {
	e := &env{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "ammsim",
		Short: "PAW constant-product AMM simulator",
		Long: `ammsim runs the factory, pair and router of the PAW AMM on an in-process chain
backed by the SDK auth and bank keepers. Scenarios are YAML scripts of liquidity
and swap operations; every successful operation commits a block.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			if err := loadConfig(e.v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := readConfig(e.v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			initSDKConfig(cfg.Bech32Prefix)

			e.config = cfg
			e.logger = logger
			return nil
		},
	}
	addConfigFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newRunCmd(e),
		newExportCmd(e),
		newQuoteCmd(e),
		newPairAddressCmd(e),
		newServeCmd(e),
	)
	return rootCmd
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewLogger(w, log.LevelOption(lvl)), nil
}

// newChain starts a sandbox chain from the resolved configuration.
func (e *env) newChain() (*sandbox.Chain, error) {
	cfg := sandbox.DefaultConfig()
	cfg.BlockInterval = e.config.BlockTime
	cfg.PairCodeTemplate = e.config.PairCodeTemplate
	cfg.Logger = e.logger
	return sandbox.New(cfg)
}

// runScenario loads path and runs it on a new chain. The partial report is
// returned with any error.
func (e *env) runScenario(path string) (*sandbox.Chain, *sandbox.Report, error) {
	scenario, err := sandbox.LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	chain, err := e.newChain()
	if err != nil {
		return nil, nil, err
	}
	report, err := sandbox.NewRunner(chain).Run(scenario)
	return chain, report, err
}

// print writes v in the configured output format.
func (e *env) print(cmd *cobra.Command, v interface{}) error {
	var (
		bz  []byte
		err error
	)
	switch e.config.Output {
	case "json":
		bz, err = json.MarshalIndent(v, "", "  ")
		bz = append(bz, '\n')
	default:
		bz, err = yaml.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(bz)
	return err
}
