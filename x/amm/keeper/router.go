package keeper

import (
	"context"
	"errors"
	"strings"
	"time"

	"cosmossdk.io/math"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/hashicorp/go-metrics"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// RouterKeeper composes pair operations into liquidity management and
// multi-hop swaps. Its only state is the address of the factory it routes for.
type RouterKeeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	registry   types.PairRegistry
	pairs      types.PairEngine
	metrics    *AMMMetrics
}

type routerStore struct {
	store prefix.Store
}

func newRouterStore(ctx context.Context, key storetypes.StoreKey) routerStore {
	return routerStore{store: prefix.NewStore(getStore(ctx, key), types.RouterKeyPrefix)}
}

func (s routerStore) factory() sdk.AccAddress {
	return s.store.Get(types.RouterFactoryKey)
}

func (s routerStore) setFactory(factory sdk.AccAddress) {
	s.store.Set(types.RouterFactoryKey, factory)
}

// Initialize points the router at a factory, once. The factory must be the
// module's own registry, since pairs are only ever deployed there.
func (k *RouterKeeper) Initialize(ctx context.Context, factory sdk.AccAddress) error {
	return withCache(ctx, func(ctx sdk.Context) error {
		s := newRouterStore(ctx, k.storeKey)
		if s.factory() != nil {
			return types.ErrRouterAlreadyInitialized
		}
		if err := sdk.VerifyAddressFormat(factory); err != nil {
			return sdkerrors.ErrInvalidAddress.Wrapf("factory: %s", err)
		}
		if !factory.Equals(k.registry.Address()) {
			return sdkerrors.ErrInvalidAddress.Wrapf("factory %s is not the pair registry %s", factory, k.registry.Address())
		}
		s.setFactory(factory)

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeRouterInitialized,
				sdk.NewAttribute(types.AttributeKeyFactory, factory.String()),
			),
		)
		return nil
	})
}

// GetFactory returns the factory the router was initialized with.
func (k *RouterKeeper) GetFactory(ctx context.Context) (sdk.AccAddress, error) {
	factory := newRouterStore(ctx, k.storeKey).factory()
	if factory == nil {
		return nil, types.ErrRouterNotInitialized
	}
	return factory, nil
}

// RouterPairFor derives the pair address for (tokenA, tokenB) without reading the registry.
func (k *RouterKeeper) RouterPairFor(ctx context.Context, tokenA, tokenB string) (sdk.AccAddress, error) {
	factory, err := k.GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	return types.PairFor(factory, tokenA, tokenB)
}

func (k *RouterKeeper) RouterQuote(amountA, reserveA, reserveB math.Int) (math.Int, error) {
	return types.Quote(amountA, reserveA, reserveB)
}

func (k *RouterKeeper) RouterGetAmountOut(amountIn, reserveIn, reserveOut math.Int) (math.Int, error) {
	return types.GetAmountOut(amountIn, reserveIn, reserveOut)
}

func (k *RouterKeeper) RouterGetAmountIn(amountOut, reserveIn, reserveOut math.Int) (math.Int, error) {
	return types.GetAmountIn(amountOut, reserveIn, reserveOut)
}

// RouterGetAmountsOut quotes amountIn along path using the live reserves.
func (k *RouterKeeper) RouterGetAmountsOut(ctx context.Context, amountIn math.Int, path []string) ([]math.Int, error) {
	factory, err := k.GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	return types.GetAmountsOut(k.reservesFunc(ctx, factory), amountIn, path)
}

// RouterGetAmountsIn quotes the inputs needed along path for amountOut.
func (k *RouterKeeper) RouterGetAmountsIn(ctx context.Context, amountOut math.Int, path []string) ([]math.Int, error) {
	factory, err := k.GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	return types.GetAmountsIn(k.reservesFunc(ctx, factory), amountOut, path)
}

// reservesFunc resolves a hop's reserves from the pair at the derived address,
// oriented to the (tokenA, tokenB) order asked for.
func (k *RouterKeeper) reservesFunc(ctx context.Context, factory sdk.AccAddress) types.ReservesFunc {
	return func(tokenA, tokenB string) (math.Int, math.Int, error) {
		token0, _, err := types.SortTokens(tokenA, tokenB)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		pair, err := types.PairFor(factory, tokenA, tokenB)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		reserve0, reserve1, err := k.pairs.GetReserves(ctx, pair)
		if errors.Is(err, types.ErrPairNotInitialized) {
			return math.Int{}, math.Int{}, types.ErrRouterPairDoesNotExist.Wrapf("%s/%s", tokenA, tokenB)
		}
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		if tokenA == token0 {
			return reserve0, reserve1, nil
		}
		return reserve1, reserve0, nil
	}
}

// checkCall runs the guards shared by every mutating router operation, in order:
// initialized, amounts non-negative, deadline not reached.
func (k *RouterKeeper) checkCall(ctx sdk.Context, deadline uint64, amounts ...math.Int) (sdk.AccAddress, error) {
	factory, err := k.GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	for _, amount := range amounts {
		if amount.IsNil() || amount.IsNegative() {
			return nil, types.ErrRouterNegativeNotAllowed.Wrapf("amount %s", amount)
		}
	}
	if types.IsDeadlineExpired(ctx.BlockTime(), deadline) {
		return nil, types.ErrRouterDeadlineExpired.Wrapf("deadline %d, block time %d", deadline, ctx.BlockTime().Unix())
	}
	return factory, nil
}

func (k *RouterKeeper) observe(operation string, start time.Time, err error) {
	telemetry.MeasureSince(start, types.ModuleName, "router", operation)
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "router", "operations"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("operation", operation),
			telemetry.NewLabel("status", statusLabel(err)),
		},
	)
	k.metrics.RouterLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	k.metrics.RouterOperations.WithLabelValues(operation, statusLabel(err)).Inc()
}

// addLiquidityAmounts creates the pair if needed and picks the amounts to deposit.
func (k *RouterKeeper) addLiquidityAmounts(
	ctx sdk.Context,
	factory sdk.AccAddress,
	tokenA, tokenB string,
	amountADesired, amountBDesired, amountAMin, amountBMin math.Int,
) (math.Int, math.Int, error) {
	exists, err := k.registry.PairExists(ctx, tokenA, tokenB)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if !exists {
		if _, err := k.registry.CreatePair(ctx, tokenA, tokenB); err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	reserveA, reserveB, err := k.reservesFunc(ctx, factory)(tokenA, tokenB)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if reserveA.IsZero() && reserveB.IsZero() {
		return amountADesired, amountBDesired, nil
	}

	amountBOptimal, err := types.Quote(amountADesired, reserveA, reserveB)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if amountBOptimal.LTE(amountBDesired) {
		if amountBOptimal.LT(amountBMin) {
			return math.Int{}, math.Int{}, types.ErrRouterInsufficientBAmount.Wrapf("%s < %s", amountBOptimal, amountBMin)
		}
		return amountADesired, amountBOptimal, nil
	}

	amountAOptimal, err := types.Quote(amountBDesired, reserveB, reserveA)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if amountAOptimal.GT(amountADesired) {
		return math.Int{}, math.Int{}, types.ErrRouterInsufficientAAmount.Wrapf("%s exceeds desired %s", amountAOptimal, amountADesired)
	}
	if amountAOptimal.LT(amountAMin) {
		return math.Int{}, math.Int{}, types.ErrRouterInsufficientAAmount.Wrapf("%s < %s", amountAOptimal, amountAMin)
	}
	return amountAOptimal, amountBDesired, nil
}

// AddLiquidityResult is what AddLiquidity deposited and minted.
type AddLiquidityResult struct {
	Pair      sdk.AccAddress
	AmountA   math.Int
	AmountB   math.Int
	Liquidity math.Int
}

// AddLiquidity deposits the optimal amounts of tokenA and tokenB from sender
// into their pair, creating it if needed, and mints LP shares to `to`.
func (k *RouterKeeper) AddLiquidity(
	ctx context.Context,
	sender sdk.AccAddress,
	tokenA, tokenB string,
	amountADesired, amountBDesired, amountAMin, amountBMin math.Int,
	to sdk.AccAddress,
	deadline uint64,
) (res AddLiquidityResult, err error) {
	start := time.Now()
	defer func() { k.observe("add_liquidity", start, err) }()

	return withCacheResult(ctx, func(ctx sdk.Context) (AddLiquidityResult, error) {
		factory, err := k.checkCall(ctx, deadline, amountADesired, amountBDesired, amountAMin, amountBMin)
		if err != nil {
			return AddLiquidityResult{}, err
		}
		amountA, amountB, err := k.addLiquidityAmounts(ctx, factory, tokenA, tokenB, amountADesired, amountBDesired, amountAMin, amountBMin)
		if err != nil {
			return AddLiquidityResult{}, err
		}
		pair, err := types.PairFor(factory, tokenA, tokenB)
		if err != nil {
			return AddLiquidityResult{}, err
		}

		l := ledger{bank: k.bankKeeper}
		if err := l.transfer(ctx, sender, pair, tokenA, amountA); err != nil {
			return AddLiquidityResult{}, err
		}
		if err := l.transfer(ctx, sender, pair, tokenB, amountB); err != nil {
			return AddLiquidityResult{}, err
		}
		liquidity, err := k.pairs.Deposit(ctx, pair, to)
		if err != nil {
			return AddLiquidityResult{}, err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeRouterAddLiquidity,
				sdk.NewAttribute(types.AttributeKeyTokenA, tokenA),
				sdk.NewAttribute(types.AttributeKeyTokenB, tokenB),
				sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
				sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
				sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
				sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
				sdk.NewAttribute(types.AttributeKeyTo, to.String()),
			),
		)
		return AddLiquidityResult{Pair: pair, AmountA: amountA, AmountB: amountB, Liquidity: liquidity}, nil
	})
}

// RemoveLiquidity returns liquidity shares from sender to the pair and sends
// the redeemed tokens to `to`, in (tokenA, tokenB) order.
func (k *RouterKeeper) RemoveLiquidity(
	ctx context.Context,
	sender sdk.AccAddress,
	tokenA, tokenB string,
	liquidity, amountAMin, amountBMin math.Int,
	to sdk.AccAddress,
	deadline uint64,
) (amountA, amountB math.Int, err error) {
	start := time.Now()
	defer func() { k.observe("remove_liquidity", start, err) }()

	err = withCache(ctx, func(ctx sdk.Context) error {
		factory, err := k.checkCall(ctx, deadline, liquidity, amountAMin, amountBMin)
		if err != nil {
			return err
		}
		exists, err := k.registry.PairExists(ctx, tokenA, tokenB)
		if err != nil {
			return err
		}
		if !exists {
			return types.ErrRouterPairDoesNotExist.Wrapf("%s/%s", tokenA, tokenB)
		}
		pair, err := types.PairFor(factory, tokenA, tokenB)
		if err != nil {
			return err
		}

		l := ledger{bank: k.bankKeeper}
		if err := l.transfer(ctx, sender, pair, types.LPDenom(pair), liquidity); err != nil {
			return err
		}
		amount0, amount1, err := k.pairs.Withdraw(ctx, pair, to)
		if err != nil {
			return err
		}

		token0, _, err := types.SortTokens(tokenA, tokenB)
		if err != nil {
			return err
		}
		if tokenA == token0 {
			amountA, amountB = amount0, amount1
		} else {
			amountA, amountB = amount1, amount0
		}
		if amountA.LT(amountAMin) {
			return types.ErrRouterInsufficientAAmount.Wrapf("%s < %s", amountA, amountAMin)
		}
		if amountB.LT(amountBMin) {
			return types.ErrRouterInsufficientBAmount.Wrapf("%s < %s", amountB, amountBMin)
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeRouterRemoveLiquidity,
				sdk.NewAttribute(types.AttributeKeyTokenA, tokenA),
				sdk.NewAttribute(types.AttributeKeyTokenB, tokenB),
				sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
				sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
				sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
				sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
				sdk.NewAttribute(types.AttributeKeyTo, to.String()),
			),
		)
		return nil
	})
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return amountA, amountB, nil
}

// SwapExactTokensForTokens sells exactly amountIn of path[0] for at least amountOutMin of the last token.
func (k *RouterKeeper) SwapExactTokensForTokens(
	ctx context.Context,
	sender sdk.AccAddress,
	amountIn, amountOutMin math.Int,
	path []string,
	to sdk.AccAddress,
	deadline uint64,
) (amounts []math.Int, err error) {
	start := time.Now()
	defer func() { k.observe("swap_exact_tokens_for_tokens", start, err) }()

	return withCacheResult(ctx, func(ctx sdk.Context) ([]math.Int, error) {
		factory, err := k.checkCall(ctx, deadline, amountIn, amountOutMin)
		if err != nil {
			return nil, err
		}
		amounts, err := types.GetAmountsOut(k.reservesFunc(ctx, factory), amountIn, path)
		if err != nil {
			return nil, err
		}
		if out := amounts[len(amounts)-1]; out.LT(amountOutMin) {
			return nil, types.ErrRouterInsufficientOutputAmount.Wrapf("%s < %s", out, amountOutMin)
		}
		if err := k.executePath(ctx, factory, sender, amounts, path, to); err != nil {
			return nil, err
		}
		return amounts, nil
	})
}

// SwapTokensForExactTokens buys exactly amountOut of the last token for at most amountInMax of path[0].
func (k *RouterKeeper) SwapTokensForExactTokens(
	ctx context.Context,
	sender sdk.AccAddress,
	amountOut, amountInMax math.Int,
	path []string,
	to sdk.AccAddress,
	deadline uint64,
) (amounts []math.Int, err error) {
	start := time.Now()
	defer func() { k.observe("swap_tokens_for_exact_tokens", start, err) }()

	return withCacheResult(ctx, func(ctx sdk.Context) ([]math.Int, error) {
		factory, err := k.checkCall(ctx, deadline, amountOut, amountInMax)
		if err != nil {
			return nil, err
		}
		amounts, err := types.GetAmountsIn(k.reservesFunc(ctx, factory), amountOut, path)
		if err != nil {
			return nil, err
		}
		if amounts[0].GT(amountInMax) {
			return nil, types.ErrRouterExcessiveInputAmount.Wrapf("%s > %s", amounts[0], amountInMax)
		}
		if err := k.executePath(ctx, factory, sender, amounts, path, to); err != nil {
			return nil, err
		}
		return amounts, nil
	})
}

// executePath pays amounts[0] into the first pair and walks the path. Each
// intermediate hop sends its output straight to the next pair.
func (k *RouterKeeper) executePath(ctx sdk.Context, factory, sender sdk.AccAddress, amounts []math.Int, path []string, to sdk.AccAddress) error {
	first, err := types.PairFor(factory, path[0], path[1])
	if err != nil {
		return err
	}
	l := ledger{bank: k.bankKeeper}
	if err := l.transfer(ctx, sender, first, path[0], amounts[0]); err != nil {
		return err
	}

	for i := 0; i < len(path)-1; i++ {
		input, output := path[i], path[i+1]
		token0, _, err := types.SortTokens(input, output)
		if err != nil {
			return err
		}
		amount0Out, amount1Out := math.ZeroInt(), amounts[i+1]
		if input != token0 {
			amount0Out, amount1Out = amounts[i+1], math.ZeroInt()
		}

		recipient := to
		if i < len(path)-2 {
			if recipient, err = types.PairFor(factory, output, path[i+2]); err != nil {
				return err
			}
		}
		pair, err := types.PairFor(factory, input, output)
		if err != nil {
			return err
		}
		if err := k.pairs.Swap(ctx, pair, amount0Out, amount1Out, recipient); err != nil {
			return err
		}
	}

	amountStrs := make([]string, len(amounts))
	for i, a := range amounts {
		amountStrs[i] = a.String()
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRouterSwap,
			sdk.NewAttribute(types.AttributeKeyPath, strings.Join(path, ",")),
			sdk.NewAttribute(types.AttributeKeyAmounts, strings.Join(amountStrs, ",")),
			sdk.NewAttribute(types.AttributeKeyTo, to.String()),
		),
	)
	k.metrics.RouterHops.Observe(float64(len(path) - 1))
	moduleLogger(ctx).Debug("routed swap", "path", strings.Join(path, ","), "amounts", strings.Join(amountStrs, ","), "to", to.String())
	return nil
}
