package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// SetReservesForTest overwrites a pair's reserves without touching balances.
func SetReservesForTest(k *Keeper, ctx sdk.Context, pair sdk.AccAddress, reserve0, reserve1 math.Int) {
	newPairStore(ctx, k.storeKey, pair).setReserves(reserve0, reserve1)
}

// SetTotalPairsForTest overwrites the factory pair counter.
func SetTotalPairsForTest(k *Keeper, ctx sdk.Context, n uint64) {
	newFactoryStore(ctx, k.storeKey).setTotalPairs(n)
}
