package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// Keeper of the amm store. It wires the factory, pair and router components,
// each of which owns a disjoint prefix of the module store.
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	metrics    *AMMMetrics

	factory *FactoryKeeper
	pair    *PairKeeper
	router  *RouterKeeper
}

// NewKeeper creates a new amm Keeper instance
func NewKeeper(key storetypes.StoreKey, bankKeeper types.BankKeeper) *Keeper {
	metrics := NewAMMMetrics()

	pair := &PairKeeper{
		storeKey:   key,
		bankKeeper: bankKeeper,
		metrics:    metrics,
	}
	factory := &FactoryKeeper{
		storeKey: key,
		address:  types.FactoryAddress(),
		deployer: pair,
		metrics:  metrics,
	}
	pair.factory = factory
	router := &RouterKeeper{
		storeKey:   key,
		bankKeeper: bankKeeper,
		registry:   factory,
		pairs:      pair,
		metrics:    metrics,
	}

	return &Keeper{
		storeKey:   key,
		bankKeeper: bankKeeper,
		metrics:    metrics,
		factory:    factory,
		pair:       pair,
		router:     router,
	}
}

// Factory returns the pair registry component
func (k *Keeper) Factory() *FactoryKeeper { return k.factory }

// Pair returns the pair engine component
func (k *Keeper) Pair() *PairKeeper { return k.pair }

// Router returns the router component
func (k *Keeper) Router() *RouterKeeper { return k.router }

// Logger returns a module-specific logger.
func (k *Keeper) Logger(ctx context.Context) log.Logger {
	return moduleLogger(ctx)
}

func moduleLogger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// getStore returns the KVStore for the amm module
func getStore(ctx context.Context, key storetypes.StoreKey) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(key)
}

// withCache runs fn on a cached branch of ctx. The branch, including its events,
// is written back only when fn succeeds, so a failure anywhere in a nested call
// chain leaves no partial state behind.
func withCache(ctx context.Context, fn func(ctx sdk.Context) error) error {
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
}

// withCacheResult is withCache for entry points that return a value.
func withCacheResult[T any](ctx context.Context, fn func(ctx sdk.Context) (T, error)) (T, error) {
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	res, err := fn(cacheCtx)
	if err != nil {
		var zero T
		return zero, err
	}
	write()
	return res, nil
}
