package keeper

import (
	"context"

	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// factoryStore is the factory's closed set of persistent fields.
type factoryStore struct {
	store prefix.Store
}

func newFactoryStore(ctx context.Context, key storetypes.StoreKey) factoryStore {
	return factoryStore{store: prefix.NewStore(getStore(ctx, key), types.FactoryKeyPrefix)}
}

func (s factoryStore) initialized() bool {
	return s.store.Has(types.FactoryFeeToSetterKey)
}

func (s factoryStore) feeTo() sdk.AccAddress {
	return s.store.Get(types.FactoryFeeToKey)
}

func (s factoryStore) setFeeTo(addr sdk.AccAddress) {
	s.store.Set(types.FactoryFeeToKey, addr)
}

func (s factoryStore) feeToSetter() sdk.AccAddress {
	return s.store.Get(types.FactoryFeeToSetterKey)
}

func (s factoryStore) setFeeToSetter(addr sdk.AccAddress) {
	s.store.Set(types.FactoryFeeToSetterKey, addr)
}

func (s factoryStore) feesEnabled() bool {
	bz := s.store.Get(types.FactoryFeesEnabledKey)
	return len(bz) == 1 && bz[0] == 1
}

func (s factoryStore) setFeesEnabled(enabled bool) {
	v := byte(0)
	if enabled {
		v = 1
	}
	s.store.Set(types.FactoryFeesEnabledKey, []byte{v})
}

func (s factoryStore) pairCodeTemplate() string {
	return string(s.store.Get(types.FactoryPairCodeTemplateKey))
}

func (s factoryStore) setPairCodeTemplate(template string) {
	s.store.Set(types.FactoryPairCodeTemplateKey, []byte(template))
}

func (s factoryStore) totalPairs() uint64 {
	bz := s.store.Get(types.FactoryTotalPairsKey)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

func (s factoryStore) setTotalPairs(n uint64) {
	s.store.Set(types.FactoryTotalPairsKey, sdk.Uint64ToBigEndian(n))
}

// pair returns the registered pair for an ordered token pair, or nil.
func (s factoryStore) pair(token0, token1 string) sdk.AccAddress {
	return s.store.Get(types.GetPairByTokensKey(token0, token1))
}

// pairAt returns the n-th registered pair, or nil.
func (s factoryStore) pairAt(n uint64) sdk.AccAddress {
	return s.store.Get(types.GetPairByIndexKey(n))
}

// registerPair writes both the registry and the index entry and bumps the counter.
// It returns the new number of pairs.
func (s factoryStore) registerPair(token0, token1 string, pair sdk.AccAddress) uint64 {
	n := s.totalPairs()
	s.store.Set(types.GetPairByTokensKey(token0, token1), pair)
	s.store.Set(types.GetPairByIndexKey(n), pair)
	s.setTotalPairs(n + 1)
	return n + 1
}

// iterateRegistry walks the token registry in key order.
func (s factoryStore) iterateRegistry(cb func(key []byte, pair sdk.AccAddress) bool) {
	iterator := storetypes.KVStorePrefixIterator(s.store, types.FactoryPairByTokensPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		if cb(iterator.Key(), iterator.Value()) {
			break
		}
	}
}
