package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// RegisterInvariants registers all amm invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k *Keeper) {
	ir.RegisterRoute(types.ModuleName, "pair-registry", PairRegistryInvariant(k))
	ir.RegisterRoute(types.ModuleName, "pair-reserves", PairReservesInvariant(k))
	ir.RegisterRoute(types.ModuleName, "lp-supply", LPSupplyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "k-last", KLastInvariant(k))
}

// AllInvariants runs all invariants of the amm module
func AllInvariants(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := PairRegistryInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = PairReservesInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = LPSupplyInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		return KLastInvariant(k)(ctx)
	}
}

// PairRegistryInvariant checks that the token registry and the creation index
// describe the same set of pairs and that the counter matches both.
func PairRegistryInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		s := newFactoryStore(ctx, k.storeKey)
		total := s.totalPairs()

		registered := 0
		s.iterateRegistry(func(_ []byte, _ sdk.AccAddress) bool {
			registered++
			return false
		})
		if uint64(registered) != total {
			count++
			msg += fmt.Sprintf("registry has %d entries, counter is %d\n", registered, total)
		}

		seen := make(map[string]bool, total)
		for i := uint64(0); i < total; i++ {
			addr := s.pairAt(i)
			if addr == nil {
				count++
				msg += fmt.Sprintf("index %d is empty\n", i)
				continue
			}
			if seen[addr.String()] {
				count++
				msg += fmt.Sprintf("pair %s indexed twice\n", addr)
			}
			seen[addr.String()] = true

			p := newPairStore(ctx, k.storeKey, addr)
			if !p.initialized() {
				count++
				msg += fmt.Sprintf("index %d points at uninitialized pair %s\n", i, addr)
				continue
			}
			if !addr.Equals(s.pair(p.token0(), p.token1())) {
				count++
				msg += fmt.Sprintf("pair %s (%s/%s) missing from registry\n", addr, p.token0(), p.token1())
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "pair-registry",
			fmt.Sprintf("found %d registry inconsistencies\n%s", count, msg),
		), broken
	}
}

// PairReservesInvariant checks that no pair records more than it holds
func PairReservesInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		l := ledger{bank: k.bankKeeper}
		k.factory.IteratePairs(ctx, func(_ uint64, addr sdk.AccAddress) bool {
			p := newPairStore(ctx, k.storeKey, addr)
			reserve0, reserve1 := p.reserves()
			if balance := l.balance(ctx, addr, p.token0()); balance.LT(reserve0) {
				count++
				msg += fmt.Sprintf("pair %s: balance %s%s < reserve %s\n", addr, balance, p.token0(), reserve0)
			}
			if balance := l.balance(ctx, addr, p.token1()); balance.LT(reserve1) {
				count++
				msg += fmt.Sprintf("pair %s: balance %s%s < reserve %s\n", addr, balance, p.token1(), reserve1)
			}
			return false
		})

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "pair-reserves",
			fmt.Sprintf("found %d pairs with reserves above balances\n%s", count, msg),
		), broken
	}
}

// LPSupplyInvariant checks that a pair with LP supply holds both reserves and
// that the locked minimum never leaves the pair. Reserves without supply are
// allowed: tokens can be sent and synced before the first deposit.
func LPSupplyInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		l := ledger{bank: k.bankKeeper}
		k.factory.IteratePairs(ctx, func(_ uint64, addr sdk.AccAddress) bool {
			p := newPairStore(ctx, k.storeKey, addr)
			reserve0, reserve1 := p.reserves()
			lpDenom := types.LPDenom(addr)
			supply := l.supply(ctx, lpDenom)

			if !supply.IsZero() && (reserve0.IsZero() || reserve1.IsZero()) {
				count++
				msg += fmt.Sprintf("pair %s: reserves %s/%s with LP supply %s\n", addr, reserve0, reserve1, supply)
			}
			if !supply.IsZero() && l.balance(ctx, addr, lpDenom).LT(types.MinimumLiquidity) {
				count++
				msg += fmt.Sprintf("pair %s: locked liquidity below minimum\n", addr)
			}
			return false
		})

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "lp-supply",
			fmt.Sprintf("found %d LP supply inconsistencies\n%s", count, msg),
		), broken
	}
}

// KLastInvariant checks that the fee multiplier never exceeds the current product
func KLastInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		k.factory.IteratePairs(ctx, func(_ uint64, addr sdk.AccAddress) bool {
			p := newPairStore(ctx, k.storeKey, addr)
			reserve0, reserve1 := p.reserves()
			product, err := mulChecked(reserve0, reserve1)
			if err != nil {
				count++
				msg += fmt.Sprintf("pair %s: %s\n", addr, err)
				return false
			}
			if p.kLast().GT(product) {
				count++
				msg += fmt.Sprintf("pair %s: k_last %s > reserve product %s\n", addr, p.kLast(), product)
			}
			return false
		})

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "k-last",
			fmt.Sprintf("found %d pairs with k_last above reserves\n%s", count, msg),
		), broken
	}
}
