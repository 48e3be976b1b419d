package keeper

import (
	"context"

	"cosmossdk.io/math"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// pairStore is the closed set of persistent fields of a single pair.
type pairStore struct {
	address sdk.AccAddress
	store   prefix.Store
}

func newPairStore(ctx context.Context, key storetypes.StoreKey, pair sdk.AccAddress) pairStore {
	return pairStore{
		address: pair,
		store:   prefix.NewStore(getStore(ctx, key), types.GetPairStorePrefix(pair)),
	}
}

func (s pairStore) deployed() bool {
	return s.store.Has(types.PairTemplateKey)
}

func (s pairStore) initialized() bool {
	return s.store.Has(types.PairToken0Key)
}

func (s pairStore) template() string {
	return string(s.store.Get(types.PairTemplateKey))
}

func (s pairStore) setTemplate(template string) {
	s.store.Set(types.PairTemplateKey, []byte(template))
}

func (s pairStore) token0() string {
	return string(s.store.Get(types.PairToken0Key))
}

func (s pairStore) token1() string {
	return string(s.store.Get(types.PairToken1Key))
}

func (s pairStore) setTokens(token0, token1 string) {
	s.store.Set(types.PairToken0Key, []byte(token0))
	s.store.Set(types.PairToken1Key, []byte(token1))
}

func (s pairStore) factory() sdk.AccAddress {
	return s.store.Get(types.PairFactoryKey)
}

func (s pairStore) setFactory(factory sdk.AccAddress) {
	s.store.Set(types.PairFactoryKey, factory)
}

func (s pairStore) reserves() (math.Int, math.Int) {
	return s.getInt(types.PairReserve0Key), s.getInt(types.PairReserve1Key)
}

func (s pairStore) setReserves(reserve0, reserve1 math.Int) {
	s.setInt(types.PairReserve0Key, reserve0)
	s.setInt(types.PairReserve1Key, reserve1)
}

func (s pairStore) kLast() math.Int {
	return s.getInt(types.PairKLastKey)
}

func (s pairStore) setKLast(k math.Int) {
	s.setInt(types.PairKLastKey, k)
}

func (s pairStore) getInt(key []byte) math.Int {
	bz := s.store.Get(key)
	if bz == nil {
		return math.ZeroInt()
	}
	var v math.Int
	if err := v.Unmarshal(bz); err != nil {
		panic(err)
	}
	return v
}

func (s pairStore) setInt(key []byte, v math.Int) {
	bz, err := v.Marshal()
	if err != nil {
		panic(err)
	}
	s.store.Set(key, bz)
}
