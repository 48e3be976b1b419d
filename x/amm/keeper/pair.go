package keeper

import (
	"context"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// PairKeeper runs every pair. A pair is addressed by its derived address and
// keeps its fields under its own store prefix; it knows its factory only
// through the fee configuration it reads from it.
type PairKeeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	factory    types.FactoryReader
	metrics    *AMMMetrics
}

var (
	_ types.PairDeployer = (*PairKeeper)(nil)
	_ types.PairEngine   = (*PairKeeper)(nil)
)

func (k *PairKeeper) ledger() ledger {
	return ledger{bank: k.bankKeeper}
}

// activeStore returns the store of an initialized pair.
func (k *PairKeeper) activeStore(ctx context.Context, pair sdk.AccAddress) (pairStore, error) {
	s := newPairStore(ctx, k.storeKey, pair)
	if !s.initialized() {
		return pairStore{}, types.ErrPairNotInitialized.Wrapf("pair %s", pair)
	}
	return s, nil
}

// Deploy instantiates a pair from an opaque code template at the address
// derived from the deployer and salt.
func (k *PairKeeper) Deploy(ctx context.Context, deployer sdk.AccAddress, template string, salt []byte) (sdk.AccAddress, error) {
	pair := types.DeployAddress(deployer, salt)
	s := newPairStore(ctx, k.storeKey, pair)
	if s.deployed() {
		return nil, types.ErrPairAlreadyInitialized.Wrapf("pair %s already deployed", pair)
	}
	s.setTemplate(template)
	return pair, nil
}

// Initialize is the one-shot transition of a deployed pair to the active state.
func (k *PairKeeper) Initialize(ctx context.Context, pair, factory sdk.AccAddress, token0, token1 string) error {
	return withCache(ctx, func(ctx sdk.Context) error {
		s := newPairStore(ctx, k.storeKey, pair)
		if s.initialized() {
			return types.ErrPairAlreadyInitialized.Wrapf("pair %s", pair)
		}
		if !s.deployed() {
			return types.ErrPairNotInitialized.Wrapf("no pair deployed at %s", pair)
		}
		if token0 >= token1 {
			return types.ErrPairInvalidTokenOrder.Wrapf("%s >= %s", token0, token1)
		}

		s.setFactory(factory)
		s.setTokens(token0, token1)
		s.setReserves(math.ZeroInt(), math.ZeroInt())
		s.setKLast(math.ZeroInt())

		l := k.ledger()
		k.bankKeeper.SetDenomMetaData(ctx, types.NewLPMetadata(types.LPDenom(pair), l.symbol(ctx, token0), l.symbol(ctx, token1)))
		return nil
	})
}

// Token0 returns the lower denom of the pair.
func (k *PairKeeper) Token0(ctx context.Context, pair sdk.AccAddress) (string, error) {
	s, err := k.activeStore(ctx, pair)
	if err != nil {
		return "", err
	}
	return s.token0(), nil
}

// Token1 returns the higher denom of the pair.
func (k *PairKeeper) Token1(ctx context.Context, pair sdk.AccAddress) (string, error) {
	s, err := k.activeStore(ctx, pair)
	if err != nil {
		return "", err
	}
	return s.token1(), nil
}

// Factory returns the address of the factory that deployed the pair.
func (k *PairKeeper) Factory(ctx context.Context, pair sdk.AccAddress) (sdk.AccAddress, error) {
	s, err := k.activeStore(ctx, pair)
	if err != nil {
		return nil, err
	}
	return s.factory(), nil
}

// GetReserves returns the last synchronized reserves.
func (k *PairKeeper) GetReserves(ctx context.Context, pair sdk.AccAddress) (math.Int, math.Int, error) {
	s, err := k.activeStore(ctx, pair)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	r0, r1 := s.reserves()
	return r0, r1, nil
}

// KLast returns reserve0*reserve1 as of the last liquidity event with fees on.
func (k *PairKeeper) KLast(ctx context.Context, pair sdk.AccAddress) (math.Int, error) {
	s, err := k.activeStore(ctx, pair)
	if err != nil {
		return math.Int{}, err
	}
	return s.kLast(), nil
}

// LPTotalSupply returns the outstanding LP shares of the pair.
func (k *PairKeeper) LPTotalSupply(ctx context.Context, pair sdk.AccAddress) (math.Int, error) {
	if _, err := k.activeStore(ctx, pair); err != nil {
		return math.Int{}, err
	}
	return k.ledger().supply(ctx, types.LPDenom(pair)), nil
}

// LPBalance returns the LP shares held by owner.
func (k *PairKeeper) LPBalance(ctx context.Context, pair, owner sdk.AccAddress) (math.Int, error) {
	if _, err := k.activeStore(ctx, pair); err != nil {
		return math.Int{}, err
	}
	return k.ledger().balance(ctx, owner, types.LPDenom(pair)), nil
}

// Get returns a snapshot of the pair's persisted state.
func (k *PairKeeper) Get(ctx context.Context, pair sdk.AccAddress) (types.Pair, error) {
	s, err := k.activeStore(ctx, pair)
	if err != nil {
		return types.Pair{}, err
	}
	r0, r1 := s.reserves()
	return types.Pair{
		Address:      pair.String(),
		Factory:      s.factory().String(),
		Token0:       s.token0(),
		Token1:       s.token1(),
		Reserve0:     r0,
		Reserve1:     r1,
		KLast:        s.kLast(),
		CodeTemplate: s.template(),
	}, nil
}

// Deposit mints LP shares to `to` for whatever was sent to the pair since the last update.
func (k *PairKeeper) Deposit(ctx context.Context, pair, to sdk.AccAddress) (math.Int, error) {
	return withCacheResult(ctx, func(ctx sdk.Context) (math.Int, error) {
		s, err := k.activeStore(ctx, pair)
		if err != nil {
			return math.Int{}, err
		}
		l := k.ledger()
		token0, token1 := s.token0(), s.token1()
		lpDenom := types.LPDenom(pair)

		reserve0, reserve1 := s.reserves()
		balance0 := l.balance(ctx, pair, token0)
		balance1 := l.balance(ctx, pair, token1)
		amount0 := balance0.Sub(reserve0)
		amount1 := balance1.Sub(reserve1)
		if !amount0.IsPositive() {
			return math.Int{}, types.ErrDepositInsufficientAmountToken0.Wrapf("amount0 %s", amount0)
		}
		if !amount1.IsPositive() {
			return math.Int{}, types.ErrDepositInsufficientAmountToken1.Wrapf("amount1 %s", amount1)
		}

		feeOn, err := k.mintFee(ctx, s, reserve0, reserve1)
		if err != nil {
			return math.Int{}, err
		}

		var liquidity math.Int
		totalSupply := l.supply(ctx, lpDenom)
		if totalSupply.IsZero() {
			product, err := mulChecked(amount0, amount1)
			if err != nil {
				return math.Int{}, types.ErrPairOverflow.Wrap(err.Error())
			}
			root := sqrtFloor(product)
			if root.LTE(types.MinimumLiquidity) {
				return math.Int{}, types.ErrDepositInsufficientFirstLiquidity.Wrapf("sqrt(%s*%s) = %s", amount0, amount1, root)
			}
			if err := l.mint(ctx, pair, lpDenom, types.MinimumLiquidity); err != nil {
				return math.Int{}, err
			}
			liquidity = root.Sub(types.MinimumLiquidity)
		} else {
			shares0, err := mulDiv(amount0, totalSupply, reserve0)
			if err != nil {
				return math.Int{}, types.ErrPairOverflow.Wrap(err.Error())
			}
			shares1, err := mulDiv(amount1, totalSupply, reserve1)
			if err != nil {
				return math.Int{}, types.ErrPairOverflow.Wrap(err.Error())
			}
			liquidity = math.MinInt(shares0, shares1)
		}
		if !liquidity.IsPositive() {
			return math.Int{}, types.ErrDepositInsufficientLiquidityMinted.Wrapf("liquidity %s", liquidity)
		}
		if err := l.mint(ctx, to, lpDenom, liquidity); err != nil {
			return math.Int{}, err
		}

		k.update(ctx, s, balance0, balance1)
		if feeOn {
			if err := k.refreshKLast(s, balance0, balance1); err != nil {
				return math.Int{}, err
			}
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePairDeposit,
				sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
				sdk.NewAttribute(types.AttributeKeyTo, to.String()),
				sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
				sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
				sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
				sdk.NewAttribute(types.AttributeKeyNewReserve0, balance0.String()),
				sdk.NewAttribute(types.AttributeKeyNewReserve1, balance1.String()),
			),
		)
		k.metrics.LiquidityAdded.WithLabelValues(pair.String()).Add(amountToFloat(liquidity))
		moduleLogger(ctx).Debug("deposit", "pair", pair.String(), "to", to.String(), "liquidity", liquidity.String())

		return liquidity, nil
	})
}

// Swap sends the requested outputs to `to` and checks, net of the 0.3% fee on
// the implied inputs, that the constant product did not decrease.
func (k *PairKeeper) Swap(ctx context.Context, pair sdk.AccAddress, amount0Out, amount1Out math.Int, to sdk.AccAddress) error {
	return withCache(ctx, func(ctx sdk.Context) error {
		s, err := k.activeStore(ctx, pair)
		if err != nil {
			return err
		}
		if amount0Out.IsZero() && amount1Out.IsZero() {
			return types.ErrSwapInsufficientOutputAmount
		}
		if amount0Out.IsNegative() || amount1Out.IsNegative() {
			return types.ErrSwapNegativesOutNotSupported.Wrapf("outputs %s/%s", amount0Out, amount1Out)
		}
		reserve0, reserve1 := s.reserves()
		if amount0Out.GTE(reserve0) || amount1Out.GTE(reserve1) {
			return types.ErrSwapInsufficientLiquidity.Wrapf("outputs %s/%s, reserves %s/%s", amount0Out, amount1Out, reserve0, reserve1)
		}
		token0, token1 := s.token0(), s.token1()
		if to.Equals(types.TokenAddress(token0)) || to.Equals(types.TokenAddress(token1)) {
			return types.ErrSwapInvalidTo.Wrapf("%s is a token address", to)
		}

		l := k.ledger()
		if err := l.transfer(ctx, pair, to, token0, amount0Out); err != nil {
			return err
		}
		if err := l.transfer(ctx, pair, to, token1, amount1Out); err != nil {
			return err
		}

		balance0 := l.balance(ctx, pair, token0)
		balance1 := l.balance(ctx, pair, token1)
		amount0In := impliedInput(balance0, reserve0, amount0Out)
		amount1In := impliedInput(balance1, reserve1, amount1Out)
		if amount0In.IsZero() && amount1In.IsZero() {
			return types.ErrSwapInsufficientInputAmount
		}
		if amount0In.IsNegative() || amount1In.IsNegative() {
			return types.ErrSwapNegativesInNotSupported.Wrapf("inputs %s/%s", amount0In, amount1In)
		}

		fee0, err := types.SwapFee(amount0In)
		if err != nil {
			return types.ErrPairOverflow.Wrap(err.Error())
		}
		fee1, err := types.SwapFee(amount1In)
		if err != nil {
			return types.ErrPairOverflow.Wrap(err.Error())
		}
		adjusted, err := mulChecked(balance0.Sub(fee0), balance1.Sub(fee1))
		if err != nil {
			return types.ErrPairOverflow.Wrap(err.Error())
		}
		k0, err := mulChecked(reserve0, reserve1)
		if err != nil {
			return types.ErrPairOverflow.Wrap(err.Error())
		}
		if adjusted.LT(k0) {
			return types.ErrSwapConstantNotMet.Wrapf("%s < %s", adjusted, k0)
		}

		k.update(ctx, s, balance0, balance1)

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePairSwap,
				sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
				sdk.NewAttribute(types.AttributeKeyTo, to.String()),
				sdk.NewAttribute(types.AttributeKeyAmount0In, amount0In.String()),
				sdk.NewAttribute(types.AttributeKeyAmount1In, amount1In.String()),
				sdk.NewAttribute(types.AttributeKeyAmount0Out, amount0Out.String()),
				sdk.NewAttribute(types.AttributeKeyAmount1Out, amount1Out.String()),
			),
		)
		k.metrics.SwapsTotal.WithLabelValues(pair.String()).Inc()
		if amount0In.IsPositive() {
			k.metrics.SwapVolume.WithLabelValues(pair.String(), token0).Add(amountToFloat(amount0In))
		}
		if amount1In.IsPositive() {
			k.metrics.SwapVolume.WithLabelValues(pair.String(), token1).Add(amountToFloat(amount1In))
		}
		moduleLogger(ctx).Debug("swap", "pair", pair.String(), "to", to.String(),
			"amount0_in", amount0In.String(), "amount1_in", amount1In.String(),
			"amount0_out", amount0Out.String(), "amount1_out", amount1Out.String())
		return nil
	})
}

// impliedInput is max(0, balance - (reserve - amountOut)).
func impliedInput(balance, reserve, amountOut math.Int) math.Int {
	floor := reserve.Sub(amountOut)
	if balance.GT(floor) {
		return balance.Sub(floor)
	}
	return math.ZeroInt()
}

// Withdraw redeems the LP shares sent to the pair, less the locked minimum, for
// a proportional share of both balances.
func (k *PairKeeper) Withdraw(ctx context.Context, pair, to sdk.AccAddress) (math.Int, math.Int, error) {
	var amount0, amount1 math.Int
	err := withCache(ctx, func(ctx sdk.Context) error {
		s, err := k.activeStore(ctx, pair)
		if err != nil {
			return err
		}
		l := k.ledger()
		token0, token1 := s.token0(), s.token1()
		lpDenom := types.LPDenom(pair)

		held := l.balance(ctx, pair, lpDenom)
		if held.IsZero() {
			return types.ErrWithdrawLiquidityNotInitialized
		}
		shares := held.Sub(types.MinimumLiquidity)
		if !shares.IsPositive() {
			return types.ErrWithdrawInsufficientSentShares.Wrapf("pair holds %s shares", held)
		}

		reserve0, reserve1 := s.reserves()
		feeOn, err := k.mintFee(ctx, s, reserve0, reserve1)
		if err != nil {
			return err
		}

		balance0 := l.balance(ctx, pair, token0)
		balance1 := l.balance(ctx, pair, token1)
		totalSupply := l.supply(ctx, lpDenom)
		amount0, err = mulDiv(balance0, shares, totalSupply)
		if err != nil {
			return types.ErrPairOverflow.Wrap(err.Error())
		}
		amount1, err = mulDiv(balance1, shares, totalSupply)
		if err != nil {
			return types.ErrPairOverflow.Wrap(err.Error())
		}
		if !amount0.IsPositive() || !amount1.IsPositive() {
			return types.ErrWithdrawInsufficientLiquidityBurned.Wrapf("amounts %s/%s", amount0, amount1)
		}

		if err := l.burn(ctx, pair, lpDenom, shares); err != nil {
			return err
		}
		if err := l.transfer(ctx, pair, to, token0, amount0); err != nil {
			return err
		}
		if err := l.transfer(ctx, pair, to, token1, amount1); err != nil {
			return err
		}

		balance0 = l.balance(ctx, pair, token0)
		balance1 = l.balance(ctx, pair, token1)
		k.update(ctx, s, balance0, balance1)
		if feeOn {
			if err := k.refreshKLast(s, balance0, balance1); err != nil {
				return err
			}
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePairWithdraw,
				sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
				sdk.NewAttribute(types.AttributeKeyTo, to.String()),
				sdk.NewAttribute(types.AttributeKeyLiquidity, shares.String()),
				sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
				sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
				sdk.NewAttribute(types.AttributeKeyNewReserve0, balance0.String()),
				sdk.NewAttribute(types.AttributeKeyNewReserve1, balance1.String()),
			),
		)
		k.metrics.LiquidityRemoved.WithLabelValues(pair.String()).Add(amountToFloat(shares))
		moduleLogger(ctx).Debug("withdraw", "pair", pair.String(), "to", to.String(), "liquidity", shares.String())
		return nil
	})
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return amount0, amount1, nil
}

// Skim sends any balance above the reserves to `to`. Reserves are not touched.
func (k *PairKeeper) Skim(ctx context.Context, pair, to sdk.AccAddress) error {
	return withCache(ctx, func(ctx sdk.Context) error {
		s, err := k.activeStore(ctx, pair)
		if err != nil {
			return err
		}
		l := k.ledger()
		reserve0, reserve1 := s.reserves()
		excess0 := l.balance(ctx, pair, s.token0()).Sub(reserve0)
		excess1 := l.balance(ctx, pair, s.token1()).Sub(reserve1)
		if err := l.transfer(ctx, pair, to, s.token0(), excess0); err != nil {
			return err
		}
		if err := l.transfer(ctx, pair, to, s.token1(), excess1); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePairSkim,
				sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
				sdk.NewAttribute(types.AttributeKeyTo, to.String()),
				sdk.NewAttribute(types.AttributeKeyAmount0, math.MaxInt(excess0, math.ZeroInt()).String()),
				sdk.NewAttribute(types.AttributeKeyAmount1, math.MaxInt(excess1, math.ZeroInt()).String()),
			),
		)
		return nil
	})
}

// Sync forces the reserves to match the balances.
func (k *PairKeeper) Sync(ctx context.Context, pair sdk.AccAddress) error {
	return withCache(ctx, func(ctx sdk.Context) error {
		s, err := k.activeStore(ctx, pair)
		if err != nil {
			return err
		}
		l := k.ledger()
		k.update(ctx, s, l.balance(ctx, pair, s.token0()), l.balance(ctx, pair, s.token1()))
		return nil
	})
}

// update is the only place reserves are written.
func (k *PairKeeper) update(ctx sdk.Context, s pairStore, balance0, balance1 math.Int) {
	s.setReserves(balance0, balance1)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePairSync,
			sdk.NewAttribute(types.AttributeKeyPair, s.address.String()),
			sdk.NewAttribute(types.AttributeKeyNewReserve0, balance0.String()),
			sdk.NewAttribute(types.AttributeKeyNewReserve1, balance1.String()),
		),
	)
	pairLabel := s.address.String()
	k.metrics.PairReserves.WithLabelValues(pairLabel, s.token0()).Set(amountToFloat(balance0))
	k.metrics.PairReserves.WithLabelValues(pairLabel, s.token1()).Set(amountToFloat(balance1))
}

func (k *PairKeeper) refreshKLast(s pairStore, reserve0, reserve1 math.Int) error {
	kLast, err := mulChecked(reserve0, reserve1)
	if err != nil {
		return types.ErrPairOverflow.Wrap(err.Error())
	}
	s.setKLast(kLast)
	return nil
}

// mintFee mints the protocol's share of the growth in sqrt(k) since the last
// liquidity event: totalSupply * (rootK - rootKLast) / (5*rootK + rootKLast).
// It reports whether fees are on so the caller can refresh kLast afterwards.
func (k *PairKeeper) mintFee(ctx sdk.Context, s pairStore, reserve0, reserve1 math.Int) (bool, error) {
	feeOn, err := k.factory.FeesEnabled(ctx)
	if err != nil {
		return false, err
	}
	kLast := s.kLast()

	if !feeOn {
		if !kLast.IsZero() {
			s.setKLast(math.ZeroInt())
		}
		return false, nil
	}
	if kLast.IsZero() {
		return true, nil
	}

	product, err := mulChecked(reserve0, reserve1)
	if err != nil {
		return false, types.ErrPairOverflow.Wrap(err.Error())
	}
	rootK := sqrtFloor(product)
	rootKLast := sqrtFloor(kLast)
	if !rootK.GT(rootKLast) {
		return true, nil
	}

	l := k.ledger()
	lpDenom := types.LPDenom(s.address)
	numerator, err := mulChecked(l.supply(ctx, lpDenom), rootK.Sub(rootKLast))
	if err != nil {
		return false, types.ErrPairOverflow.Wrap(err.Error())
	}
	denominator, err := mulChecked(rootK, math.NewInt(5))
	if err != nil {
		return false, types.ErrPairOverflow.Wrap(err.Error())
	}
	denominator, err = denominator.SafeAdd(rootKLast)
	if err != nil {
		return false, types.ErrPairOverflow.Wrap(err.Error())
	}
	liquidity := numerator.Quo(denominator)
	if !liquidity.IsPositive() {
		return true, nil
	}

	feeTo, err := k.factory.FeeTo(ctx)
	if err != nil {
		return false, err
	}
	if err := l.mint(ctx, feeTo, lpDenom, liquidity); err != nil {
		return false, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeProtocolFee,
			sdk.NewAttribute(types.AttributeKeyPair, s.address.String()),
			sdk.NewAttribute(types.AttributeKeyTo, feeTo.String()),
			sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
		),
	)
	k.metrics.ProtocolFeeMints.WithLabelValues(s.address.String()).Add(amountToFloat(liquidity))
	moduleLogger(ctx).Info("protocol fee minted", "pair", s.address.String(), "fee_to", feeTo.String(), "liquidity", liquidity.String())
	return true, nil
}
