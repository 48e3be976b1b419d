package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

func sendCoin(rt *rapid.T, f *fixture, ctx sdk.Context, to sdk.AccAddress, denom string, amount int64) {
	require.NoError(rt, f.bank.SendCoins(ctx, f.user, to, sdk.NewCoins(sdk.NewInt64Coin(denom, amount))))
}

// A swap for exactly GetAmountOut never fails the product check.
func TestProperty_QuotedSwapSucceeds(t *testing.T) {
	f := newFixture(t)
	pair := f.createPair(t, denomAtom, denomPaw)
	base := f.ctx

	rapid.Check(t, func(rt *rapid.T) {
		ctx, _ := base.CacheContext()
		reserve0 := rapid.Int64Range(1_001, 1_000_000_000).Draw(rt, "reserve0")
		reserve1 := rapid.Int64Range(1_001, 1_000_000_000).Draw(rt, "reserve1")
		amountIn := rapid.Int64Range(1, 1_000_000_000).Draw(rt, "amountIn")
		zeroForOne := rapid.Bool().Draw(rt, "zeroForOne")

		sendCoin(rt, f, ctx, pair, denomAtom, reserve0)
		sendCoin(rt, f, ctx, pair, denomPaw, reserve1)
		_, err := f.k.Pair().Deposit(ctx, pair, f.user)
		require.NoError(rt, err)

		reserveIn, reserveOut, denomIn := reserve0, reserve1, denomAtom
		if !zeroForOne {
			reserveIn, reserveOut, denomIn = reserve1, reserve0, denomPaw
		}
		out, err := types.GetAmountOut(math.NewInt(amountIn), math.NewInt(reserveIn), math.NewInt(reserveOut))
		require.NoError(rt, err)
		require.True(rt, out.LT(math.NewInt(reserveOut)))
		if out.IsZero() {
			return
		}

		sendCoin(rt, f, ctx, pair, denomIn, amountIn)
		out0, out1 := math.ZeroInt(), out
		if !zeroForOne {
			out0, out1 = out, math.ZeroInt()
		}
		require.NoError(rt, f.k.Pair().Swap(ctx, pair, out0, out1, f.user))

		r0, r1, err := f.k.Pair().GetReserves(ctx, pair)
		require.NoError(rt, err)
		require.True(rt, r0.Mul(r1).GTE(math.NewInt(reserve0).Mul(math.NewInt(reserve1))))

		// One more unit of output breaks the check.
		if out.AddRaw(1).LT(math.NewInt(reserveOut)) {
			fresh, _ := base.CacheContext()
			sendCoin(rt, f, fresh, pair, denomAtom, reserve0)
			sendCoin(rt, f, fresh, pair, denomPaw, reserve1)
			_, err := f.k.Pair().Deposit(fresh, pair, f.user)
			require.NoError(rt, err)
			sendCoin(rt, f, fresh, pair, denomIn, amountIn)
			if zeroForOne {
				out1 = out1.AddRaw(1)
			} else {
				out0 = out0.AddRaw(1)
			}
			err = f.k.Pair().Swap(fresh, pair, out0, out1, f.user)
			require.ErrorIs(rt, err, types.ErrSwapConstantNotMet)
		}
	})
}

// Withdrawing everything just deposited never returns more than was put in.
func TestProperty_DepositWithdrawNoProfit(t *testing.T) {
	f := newFixture(t)
	pair := f.createPair(t, denomAtom, denomPaw)
	base := f.ctx

	rapid.Check(t, func(rt *rapid.T) {
		ctx, _ := base.CacheContext()
		seed0 := rapid.Int64Range(1_001, 1_000_000_000).Draw(rt, "seed0")
		seed1 := rapid.Int64Range(1_001, 1_000_000_000).Draw(rt, "seed1")
		sendCoin(rt, f, ctx, pair, denomAtom, seed0)
		sendCoin(rt, f, ctx, pair, denomPaw, seed1)
		_, err := f.k.Pair().Deposit(ctx, pair, f.other)
		require.NoError(rt, err)

		amount0 := rapid.Int64Range(1, 1_000_000_000).Draw(rt, "amount0")
		amount1 := rapid.Int64Range(1, 1_000_000_000).Draw(rt, "amount1")
		sendCoin(rt, f, ctx, pair, denomAtom, amount0)
		sendCoin(rt, f, ctx, pair, denomPaw, amount1)
		liquidity, err := f.k.Pair().Deposit(ctx, pair, f.user)
		if err != nil {
			require.ErrorIs(rt, err, types.ErrDepositInsufficientLiquidityMinted)
			return
		}

		require.NoError(rt, f.bank.SendCoins(ctx, f.user, pair, sdk.NewCoins(sdk.NewCoin(types.LPDenom(pair), liquidity))))
		got0, got1, err := f.k.Pair().Withdraw(ctx, pair, f.user)
		if err != nil {
			require.ErrorIs(rt, err, types.ErrWithdrawInsufficientLiquidityBurned)
			return
		}
		require.True(rt, got0.LTE(math.NewInt(amount0)), "got0 %s > %d", got0, amount0)
		require.True(rt, got1.LTE(math.NewInt(amount1)), "got1 %s > %d", got1, amount1)
	})
}

// Invariants hold across any sequence of router operations.
func TestProperty_RouterSequenceKeepsInvariants(t *testing.T) {
	f := newFixture(t)
	base := f.ctx
	denoms := []string{denomAtom, denomPaw, denomUsdc}

	rapid.Check(t, func(rt *rapid.T) {
		ctx, _ := base.CacheContext()
		if rapid.Bool().Draw(rt, "feesOn") {
			require.NoError(rt, f.k.Factory().SetFeesEnabled(ctx, f.setter, true))
		}

		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			a := rapid.SampledFrom(denoms).Draw(rt, "tokenA")
			b := rapid.SampledFrom(denoms).Draw(rt, "tokenB")
			amount := math.NewInt(rapid.Int64Range(1, 100_000_000).Draw(rt, "amount"))

			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				other := math.NewInt(rapid.Int64Range(1, 100_000_000).Draw(rt, "amountB"))
				_, _ = f.k.Router().AddLiquidity(ctx, f.user, a, b, amount, other, math.ZeroInt(), math.ZeroInt(), f.user, deadline)
			case 1:
				_, _ = f.k.Router().SwapExactTokensForTokens(ctx, f.user, amount, math.ZeroInt(), []string{a, b}, f.user, deadline)
			case 2:
				_, _, _ = f.k.Router().RemoveLiquidity(ctx, f.user, a, b, amount, math.ZeroInt(), math.ZeroInt(), f.user, deadline)
			}

			msg, broken := keeper.AllInvariants(f.k)(ctx)
			require.False(rt, broken, msg)
		}
	})
}
