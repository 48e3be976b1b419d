package cmd

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

const flagScenario = "scenario"

// QuoteResult is the output of the quote commands.
type QuoteResult struct {
	Path    []string `json:"path,omitempty" yaml:"path,omitempty"`
	Amounts []string `json:"amounts" yaml:"amounts"`
}

// PairAddressResult is the output of pair-address.
type PairAddressResult struct {
	Factory string `json:"factory" yaml:"factory"`
	Pair    string `json:"pair" yaml:"pair"`
	Token0  string `json:"token0" yaml:"token0"`
	Token1  string `json:"token1" yaml:"token1"`
	LPDenom string `json:"lp_denom" yaml:"lp_denom"`
}

func parseInts(args ...string) ([]math.Int, error) {
	ints := make([]math.Int, len(args))
	for i, arg := range args {
		n, ok := math.NewIntFromString(arg)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", arg)
		}
		ints[i] = n
	}
	return ints, nil
}

func intStrings(amounts []math.Int) []string {
	s := make([]string, len(amounts))
	for i, a := range amounts {
		s[i] = a.String()
	}
	return s
}

func newQuoteCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote swaps with the constant-product formula",
	}

	single := func(use, short string, fn func(amount, reserveIn, reserveOut math.Int) (math.Int, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [amount] [reserve-in] [reserve-out]",
			Short: short,
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				ints, err := parseInts(args...)
				if err != nil {
					return err
				}
				amount, err := fn(ints[0], ints[1], ints[2])
				if err != nil {
					return err
				}
				return e.print(cmd, QuoteResult{Amounts: []string{amount.String()}})
			},
		}
	}

	path := func(use, short string, fn func(ctx sdk.Context, k *keeper.Keeper, amount math.Int, path []string) ([]math.Int, error)) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " [amount] [denom,denom,...]",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ints, err := parseInts(args[0])
				if err != nil {
					return err
				}
				route := strings.Split(args[1], ",")
				scenario, _ := cmd.Flags().GetString(flagScenario)
				if scenario == "" {
					return fmt.Errorf("--%s is required to quote against live reserves", flagScenario)
				}
				chain, _, err := e.runScenario(scenario)
				if err != nil {
					return err
				}

				var amounts []math.Int
				err = chain.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
					amounts, err = fn(ctx, k, ints[0], route)
					return err
				})
				if err != nil {
					return err
				}
				return e.print(cmd, QuoteResult{Path: route, Amounts: intStrings(amounts)})
			},
		}
		c.Flags().String(flagScenario, "", "scenario whose final reserves are quoted against")
		return c
	}

	cmd.AddCommand(
		single("out", "Output of a single hop for an exact input, after the 0.3% fee", types.GetAmountOut),
		single("in", "Input a single hop requires for an exact output", types.GetAmountIn),
		single("ratio", "Amount of B equivalent to an amount of A at the reserve ratio", types.Quote),
		path("amounts-out", "Per-hop outputs for an exact input along a path",
			func(ctx sdk.Context, k *keeper.Keeper, amount math.Int, path []string) ([]math.Int, error) {
				return k.Router().RouterGetAmountsOut(ctx, amount, path)
			}),
		path("amounts-in", "Per-hop inputs for an exact output along a path",
			func(ctx sdk.Context, k *keeper.Keeper, amount math.Int, path []string) ([]math.Int, error) {
				return k.Router().RouterGetAmountsIn(ctx, amount, path)
			}),
	)
	return cmd
}

func newPairAddressCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "pair-address [token-a] [token-b]",
		Short: "Derive the pair address and LP denom for two tokens without touching state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token0, token1, err := types.SortTokens(args[0], args[1])
			if err != nil {
				return err
			}
			factory := types.FactoryAddress()
			pair, err := types.PairFor(factory, token0, token1)
			if err != nil {
				return err
			}
			return e.print(cmd, PairAddressResult{
				Factory: factory.String(),
				Pair:    pair.String(),
				Token0:  token0,
				Token1:  token1,
				LPDenom: types.LPDenom(pair),
			})
		},
	}
}
