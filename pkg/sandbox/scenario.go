package sandbox

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/cometbft/cometbft/crypto/tmhash"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"

	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

// Step actions understood by the runner.
const (
	ActionCreatePair      = "create_pair"
	ActionAddLiquidity    = "add_liquidity"
	ActionRemoveLiquidity = "remove_liquidity"
	ActionSwapExactIn     = "swap_exact_in"
	ActionSwapExactOut    = "swap_exact_out"
	ActionDeposit         = "deposit"
	ActionSwap            = "swap"
	ActionWithdraw        = "withdraw"
	ActionSkim            = "skim"
	ActionSync            = "sync"
	ActionSetFeeTo        = "set_fee_to"
	ActionSetFeesEnabled  = "set_fees_enabled"
	ActionAdvanceTime     = "advance_time"
	ActionTransfer        = "transfer"
)

const (
	pairTargetPrefix = "pair:"
	defaultDeadline  = time.Hour
)

// Scenario is a scripted sequence of operations against a fresh chain.
type Scenario struct {
	Name     string                            `yaml:"name"`
	Setter   string                            `yaml:"setter"`
	Accounts map[string]map[string]interface{} `yaml:"accounts"`
	Steps    []Step                            `yaml:"steps"`
}

// Step is one action; its arguments are loosely typed and coerced on use.
type Step struct {
	Action string                 `yaml:"action"`
	Args   map[string]interface{} `yaml:",inline"`
}

// StepResult records the outcome of one step.
type StepResult struct {
	Index     int               `json:"index" yaml:"index"`
	Action    string            `json:"action" yaml:"action"`
	Height    int64             `json:"height" yaml:"height"`
	Codespace string            `json:"codespace,omitempty" yaml:"codespace,omitempty"`
	Code      uint32            `json:"code,omitempty" yaml:"code,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
	Events    int               `json:"events" yaml:"events"`
	Output    map[string]string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Report is the result of a scenario run.
type Report struct {
	Scenario string            `json:"scenario" yaml:"scenario"`
	Accounts map[string]string `json:"accounts" yaml:"accounts"`
	Steps    []StepResult      `json:"steps" yaml:"steps"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return ParseScenario(bz)
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(bz []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.UnmarshalStrict(bz, &s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if s.Setter == "" {
		return nil, fmt.Errorf("invalid scenario: setter is required")
	}
	for i, step := range s.Steps {
		if step.Action == "" {
			return nil, fmt.Errorf("invalid scenario: step %d has no action", i)
		}
	}
	return &s, nil
}

// AccountAddress is the deterministic address of a named scenario account.
func AccountAddress(name string) sdk.AccAddress {
	return sdk.AccAddress(tmhash.SumTruncated([]byte("sandbox/" + name)))
}

// Runner executes scenarios against a chain.
type Runner struct {
	chain    *Chain
	accounts map[string]sdk.AccAddress
}

// NewRunner returns a runner bound to chain.
func NewRunner(chain *Chain) *Runner {
	return &Runner{chain: chain, accounts: make(map[string]sdk.AccAddress)}
}

// Run funds the accounts, bootstraps the factory and router, then executes
// each step. A step that fails without expecting to stops the run.
func (r *Runner) Run(s *Scenario) (*Report, error) {
	names := make([]string, 0, len(s.Accounts))
	for name := range s.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &Report{Scenario: s.Name, Accounts: make(map[string]string, len(names))}
	for _, name := range names {
		addr := AccountAddress(name)
		r.accounts[name] = addr
		report.Accounts[name] = addr.String()

		coins, err := parseCoins(s.Accounts[name])
		if err != nil {
			return report, fmt.Errorf("account %s: %w", name, err)
		}
		if coins.IsZero() {
			continue
		}
		if err := r.chain.Fund(addr, coins); err != nil {
			return report, fmt.Errorf("failed to fund %s: %w", name, err)
		}
	}

	setter, err := r.Resolve(s.Setter)
	if err != nil {
		return report, err
	}
	if err := r.chain.Bootstrap(setter); err != nil {
		return report, fmt.Errorf("failed to bootstrap: %w", err)
	}

	for i, step := range s.Steps {
		res, err := r.runStep(i, step)
		report.Steps = append(report.Steps, res)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (r *Runner) runStep(i int, step Step) (StepResult, error) {
	res := StepResult{Index: i, Action: step.Action, Height: r.chain.Height()}
	args := stepArgs(step.Args)

	output, events, err := r.dispatch(step.Action, args)
	res.Output = output
	res.Events = len(events)

	expected, hasExpectation := args["expect_error"]
	if err == nil {
		if hasExpectation {
			return res, fmt.Errorf("step %d (%s): expected error %v, got success", i, step.Action, expected)
		}
		r.chain.logger.Info("step ok", "index", i, "action", step.Action)
		return res, nil
	}

	codespace, code, _ := errorsmod.ABCIInfo(err, false)
	res.Codespace, res.Code, res.Error = codespace, code, err.Error()
	if !hasExpectation {
		return res, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
	}
	want, castErr := cast.ToUint32E(expected)
	if castErr != nil {
		return res, fmt.Errorf("step %d (%s): invalid expect_error: %w", i, step.Action, castErr)
	}
	wantSpace := types.ModuleName
	if v, ok := args["expect_codespace"]; ok {
		wantSpace = cast.ToString(v)
	}
	if code != want || codespace != wantSpace {
		return res, fmt.Errorf("step %d (%s): expected %s/%d, got %s/%d: %w", i, step.Action, wantSpace, want, codespace, code, err)
	}
	r.chain.logger.Info("step failed as expected", "index", i, "action", step.Action, "code", code)
	return res, nil
}

type stepArgs map[string]interface{}

func (a stepArgs) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	return cast.ToStringE(v)
}

func (a stepArgs) amount(key string) (math.Int, error) {
	v, ok := a[key]
	if !ok {
		return math.ZeroInt(), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return math.Int{}, fmt.Errorf("argument %q: %w", key, err)
	}
	n, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, fmt.Errorf("argument %q: invalid integer %q", key, s)
	}
	return n, nil
}

func (a stepArgs) path() ([]string, error) {
	v, ok := a["path"]
	if !ok {
		return nil, fmt.Errorf("missing argument %q", "path")
	}
	return cast.ToStringSliceE(v)
}

// Resolve maps an account name, a "pair:tokenA/tokenB" reference or a bech32
// address to an address.
func (r *Runner) Resolve(target string) (sdk.AccAddress, error) {
	if addr, ok := r.accounts[target]; ok {
		return addr, nil
	}
	if strings.HasPrefix(target, pairTargetPrefix) {
		tokens := strings.SplitN(strings.TrimPrefix(target, pairTargetPrefix), "/", 2)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("invalid pair reference %q", target)
		}
		return types.PairFor(r.chain.Keeper().Factory().Address(), tokens[0], tokens[1])
	}
	addr, err := sdk.AccAddressFromBech32(target)
	if err != nil {
		return nil, fmt.Errorf("unknown account %q", target)
	}
	return addr, nil
}

func (r *Runner) resolveArg(args stepArgs, key string) (sdk.AccAddress, error) {
	name, err := args.str(key)
	if err != nil {
		return nil, err
	}
	return r.Resolve(name)
}

// deadline is the absolute "deadline" argument, or the next block time plus
// "deadline_in" seconds (default one hour).
func (r *Runner) deadline(args stepArgs) (uint64, error) {
	if v, ok := args["deadline"]; ok {
		return cast.ToUint64E(v)
	}
	offset := defaultDeadline
	if v, ok := args["deadline_in"]; ok {
		secs, err := cast.ToInt64E(v)
		if err != nil {
			return 0, err
		}
		offset = time.Duration(secs) * time.Second
	}
	t := r.chain.BlockTime().Add(offset).Unix()
	if t < 0 {
		return 0, nil
	}
	return uint64(t), nil
}

func (r *Runner) pairArg(args stepArgs) (sdk.AccAddress, error) {
	tokenA, err := args.str("token_a")
	if err != nil {
		return nil, err
	}
	tokenB, err := args.str("token_b")
	if err != nil {
		return nil, err
	}
	return types.PairFor(r.chain.Keeper().Factory().Address(), tokenA, tokenB)
}

func joinInts(amounts []math.Int) string {
	s := make([]string, len(amounts))
	for i, a := range amounts {
		s[i] = a.String()
	}
	return strings.Join(s, ",")
}

func parseCoins(balances map[string]interface{}) (sdk.Coins, error) {
	coins := sdk.NewCoins()
	for denom, v := range balances {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		amount, ok := math.NewIntFromString(s)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q for %s", s, denom)
		}
		if err := sdk.ValidateDenom(denom); err != nil {
			return nil, err
		}
		coins = coins.Add(sdk.NewCoin(denom, amount))
	}
	return coins, nil
}

func (r *Runner) dispatch(action string, args stepArgs) (map[string]string, sdk.Events, error) {
	switch action {
	case ActionAdvanceTime:
		secs, err := cast.ToInt64E(args["seconds"])
		if err != nil {
			return nil, nil, fmt.Errorf("argument %q: %w", "seconds", err)
		}
		r.chain.AdvanceTime(time.Duration(secs) * time.Second)
		return map[string]string{"block_time": r.chain.BlockTime().Format(time.RFC3339)}, nil, nil

	case ActionTransfer:
		from, err := r.resolveArg(args, "from")
		if err != nil {
			return nil, nil, err
		}
		to, err := r.resolveArg(args, "to")
		if err != nil {
			return nil, nil, err
		}
		denom, err := args.str("denom")
		if err != nil {
			return nil, nil, err
		}
		amount, err := args.amount("amount")
		if err != nil {
			return nil, nil, err
		}
		return nil, nil, r.chain.Send(from, to, sdk.NewCoins(sdk.NewCoin(denom, amount)))
	}

	var output map[string]string
	events, err := r.chain.Exec(func(ctx sdk.Context, k *keeper.Keeper) error {
		var err error
		output, err = r.execute(ctx, k, action, args)
		return err
	})
	return output, events, err
}

// execute runs a keeper-level action inside a block.
func (r *Runner) execute(ctx sdk.Context, k *keeper.Keeper, action string, args stepArgs) (map[string]string, error) {
	switch action {
	case ActionCreatePair:
		tokenA, err := args.str("token_a")
		if err != nil {
			return nil, err
		}
		tokenB, err := args.str("token_b")
		if err != nil {
			return nil, err
		}
		pair, err := k.Factory().CreatePair(ctx, tokenA, tokenB)
		if err != nil {
			return nil, err
		}
		return map[string]string{"pair": pair.String()}, nil

	case ActionAddLiquidity:
		from, err := r.resolveArg(args, "from")
		if err != nil {
			return nil, err
		}
		to, err := r.recipient(args, from)
		if err != nil {
			return nil, err
		}
		tokenA, err := args.str("token_a")
		if err != nil {
			return nil, err
		}
		tokenB, err := args.str("token_b")
		if err != nil {
			return nil, err
		}
		amounts, err := amountArgs(args, "amount_a", "amount_b", "min_a", "min_b")
		if err != nil {
			return nil, err
		}
		deadline, err := r.deadline(args)
		if err != nil {
			return nil, err
		}
		res, err := k.Router().AddLiquidity(ctx, from, tokenA, tokenB, amounts[0], amounts[1], amounts[2], amounts[3], to, deadline)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"pair":      res.Pair.String(),
			"amount_a":  res.AmountA.String(),
			"amount_b":  res.AmountB.String(),
			"liquidity": res.Liquidity.String(),
		}, nil

	case ActionRemoveLiquidity:
		from, err := r.resolveArg(args, "from")
		if err != nil {
			return nil, err
		}
		to, err := r.recipient(args, from)
		if err != nil {
			return nil, err
		}
		tokenA, err := args.str("token_a")
		if err != nil {
			return nil, err
		}
		tokenB, err := args.str("token_b")
		if err != nil {
			return nil, err
		}
		amounts, err := amountArgs(args, "liquidity", "min_a", "min_b")
		if err != nil {
			return nil, err
		}
		deadline, err := r.deadline(args)
		if err != nil {
			return nil, err
		}
		amountA, amountB, err := k.Router().RemoveLiquidity(ctx, from, tokenA, tokenB, amounts[0], amounts[1], amounts[2], to, deadline)
		if err != nil {
			return nil, err
		}
		return map[string]string{"amount_a": amountA.String(), "amount_b": amountB.String()}, nil

	case ActionSwapExactIn, ActionSwapExactOut:
		from, err := r.resolveArg(args, "from")
		if err != nil {
			return nil, err
		}
		to, err := r.recipient(args, from)
		if err != nil {
			return nil, err
		}
		path, err := args.path()
		if err != nil {
			return nil, err
		}
		deadline, err := r.deadline(args)
		if err != nil {
			return nil, err
		}
		var amounts []math.Int
		if action == ActionSwapExactIn {
			bounds, err := amountArgs(args, "amount_in", "amount_out_min")
			if err != nil {
				return nil, err
			}
			amounts, err = k.Router().SwapExactTokensForTokens(ctx, from, bounds[0], bounds[1], path, to, deadline)
			if err != nil {
				return nil, err
			}
		} else {
			bounds, err := amountArgs(args, "amount_out", "amount_in_max")
			if err != nil {
				return nil, err
			}
			amounts, err = k.Router().SwapTokensForExactTokens(ctx, from, bounds[0], bounds[1], path, to, deadline)
			if err != nil {
				return nil, err
			}
		}
		return map[string]string{"amounts": joinInts(amounts)}, nil

	case ActionDeposit:
		pair, err := r.pairArg(args)
		if err != nil {
			return nil, err
		}
		to, err := r.resolveArg(args, "to")
		if err != nil {
			return nil, err
		}
		liquidity, err := k.Pair().Deposit(ctx, pair, to)
		if err != nil {
			return nil, err
		}
		return map[string]string{"liquidity": liquidity.String()}, nil

	case ActionSwap:
		pair, err := r.pairArg(args)
		if err != nil {
			return nil, err
		}
		to, err := r.resolveArg(args, "to")
		if err != nil {
			return nil, err
		}
		outs, err := amountArgs(args, "amount0_out", "amount1_out")
		if err != nil {
			return nil, err
		}
		return nil, k.Pair().Swap(ctx, pair, outs[0], outs[1], to)

	case ActionWithdraw:
		pair, err := r.pairArg(args)
		if err != nil {
			return nil, err
		}
		to, err := r.resolveArg(args, "to")
		if err != nil {
			return nil, err
		}
		amount0, amount1, err := k.Pair().Withdraw(ctx, pair, to)
		if err != nil {
			return nil, err
		}
		return map[string]string{"amount0": amount0.String(), "amount1": amount1.String()}, nil

	case ActionSkim:
		pair, err := r.pairArg(args)
		if err != nil {
			return nil, err
		}
		to, err := r.resolveArg(args, "to")
		if err != nil {
			return nil, err
		}
		return nil, k.Pair().Skim(ctx, pair, to)

	case ActionSync:
		pair, err := r.pairArg(args)
		if err != nil {
			return nil, err
		}
		return nil, k.Pair().Sync(ctx, pair)

	case ActionSetFeeTo:
		from, err := r.resolveArg(args, "from")
		if err != nil {
			return nil, err
		}
		feeTo, err := r.resolveArg(args, "fee_to")
		if err != nil {
			return nil, err
		}
		return nil, k.Factory().SetFeeTo(ctx, from, feeTo)

	case ActionSetFeesEnabled:
		from, err := r.resolveArg(args, "from")
		if err != nil {
			return nil, err
		}
		enabled, err := cast.ToBoolE(args["enabled"])
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", "enabled", err)
		}
		return nil, k.Factory().SetFeesEnabled(ctx, from, enabled)
	}
	return nil, fmt.Errorf("unknown action %q", action)
}

// recipient is the "to" argument, defaulting to the sender.
func (r *Runner) recipient(args stepArgs, from sdk.AccAddress) (sdk.AccAddress, error) {
	if _, ok := args["to"]; !ok {
		return from, nil
	}
	return r.resolveArg(args, "to")
}

func amountArgs(args stepArgs, keys ...string) ([]math.Int, error) {
	out := make([]math.Int, len(keys))
	for i, key := range keys {
		v, err := args.amount(key)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
