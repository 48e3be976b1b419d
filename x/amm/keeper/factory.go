package keeper

import (
	"context"
	"fmt"
	"strconv"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// FactoryKeeper is the pair registry. It deploys pairs at deterministic
// addresses and owns the protocol fee configuration.
type FactoryKeeper struct {
	storeKey storetypes.StoreKey
	address  sdk.AccAddress
	deployer types.PairDeployer
	metrics  *AMMMetrics
}

var (
	_ types.FactoryReader = (*FactoryKeeper)(nil)
	_ types.PairRegistry  = (*FactoryKeeper)(nil)
)

// Address is the factory's own address, the deployer of every pair.
func (k *FactoryKeeper) Address() sdk.AccAddress {
	return k.address
}

// Initialize sets up the factory once. The setter becomes both fee recipient and fee setter.
func (k *FactoryKeeper) Initialize(ctx context.Context, setter sdk.AccAddress, pairCodeTemplate string) error {
	return withCache(ctx, func(ctx sdk.Context) error {
		s := newFactoryStore(ctx, k.storeKey)
		if s.initialized() {
			return types.ErrFactoryAlreadyInitialized
		}
		if err := sdk.VerifyAddressFormat(setter); err != nil {
			return sdkerrors.ErrInvalidAddress.Wrapf("setter: %s", err)
		}

		s.setFeeTo(setter)
		s.setFeeToSetter(setter)
		s.setFeesEnabled(false)
		s.setPairCodeTemplate(pairCodeTemplate)
		s.setTotalPairs(0)

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeFactoryInitialized,
				sdk.NewAttribute(types.AttributeKeySetter, setter.String()),
			),
		)
		return nil
	})
}

func (k *FactoryKeeper) initializedStore(ctx context.Context) (factoryStore, error) {
	s := newFactoryStore(ctx, k.storeKey)
	if !s.initialized() {
		return factoryStore{}, types.ErrFactoryNotInitialized
	}
	return s, nil
}

// CreatePair deploys and registers the pair for (tokenA, tokenB).
func (k *FactoryKeeper) CreatePair(ctx context.Context, tokenA, tokenB string) (sdk.AccAddress, error) {
	return withCacheResult(ctx, func(ctx sdk.Context) (sdk.AccAddress, error) {
		s, err := k.initializedStore(ctx)
		if err != nil {
			return nil, err
		}
		if tokenA == tokenB {
			return nil, types.ErrFactoryIdenticalTokens.Wrapf("%s", tokenA)
		}
		for _, denom := range []string{tokenA, tokenB} {
			if err := sdk.ValidateDenom(denom); err != nil {
				return nil, sdkerrors.ErrInvalidCoins.Wrapf("token %q: %s", denom, err)
			}
		}

		token0, token1, err := types.SortTokens(tokenA, tokenB)
		if err != nil {
			return nil, err
		}
		if s.pair(token0, token1) != nil {
			return nil, types.ErrFactoryPairAlreadyExists.Wrapf("%s/%s", token0, token1)
		}

		pair, err := k.deployer.Deploy(ctx, k.address, s.pairCodeTemplate(), types.PairSalt(token0, token1))
		if err != nil {
			return nil, err
		}
		if err := k.deployer.Initialize(ctx, pair, k.address, token0, token1); err != nil {
			return nil, err
		}
		total := s.registerPair(token0, token1, pair)

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePairCreated,
				sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
				sdk.NewAttribute(types.AttributeKeyToken0, token0),
				sdk.NewAttribute(types.AttributeKeyToken1, token1),
				sdk.NewAttribute(types.AttributeKeyNewPairsLength, strconv.FormatUint(total, 10)),
			),
		)

		k.metrics.PairsCreated.Inc()
		k.metrics.PairsTotal.Set(float64(total))
		moduleLogger(ctx).Info("pair created", "pair", pair.String(), "token0", token0, "token1", token1, "total", total)

		return pair, nil
	})
}

// GetPair returns the registered pair for (tokenA, tokenB) in either order.
func (k *FactoryKeeper) GetPair(ctx context.Context, tokenA, tokenB string) (sdk.AccAddress, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return nil, err
	}
	token0, token1, err := types.SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, types.ErrFactoryPairDoesNotExist.Wrap(err.Error())
	}
	pair := s.pair(token0, token1)
	if pair == nil {
		return nil, types.ErrFactoryPairDoesNotExist.Wrapf("%s/%s", token0, token1)
	}
	return pair, nil
}

// PairExists reports whether (tokenA, tokenB) has been registered.
func (k *FactoryKeeper) PairExists(ctx context.Context, tokenA, tokenB string) (bool, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return false, err
	}
	token0, token1, err := types.SortTokens(tokenA, tokenB)
	if err != nil {
		return false, nil
	}
	return s.pair(token0, token1) != nil, nil
}

// AllPairs returns the n-th created pair.
func (k *FactoryKeeper) AllPairs(ctx context.Context, n uint64) (sdk.AccAddress, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return nil, err
	}
	if n >= s.totalPairs() {
		return nil, types.ErrFactoryIndexDoesNotExist.Wrapf("index %d, total %d", n, s.totalPairs())
	}
	return s.pairAt(n), nil
}

// AllPairsLength returns the number of created pairs.
func (k *FactoryKeeper) AllPairsLength(ctx context.Context) (uint64, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return 0, err
	}
	return s.totalPairs(), nil
}

// IteratePairs walks the pairs in creation order until cb returns true.
func (k *FactoryKeeper) IteratePairs(ctx context.Context, cb func(index uint64, pair sdk.AccAddress) (stop bool)) {
	s := newFactoryStore(ctx, k.storeKey)
	total := s.totalPairs()
	for i := uint64(0); i < total; i++ {
		if cb(i, s.pairAt(i)) {
			return
		}
	}
}

func (k *FactoryKeeper) FeeTo(ctx context.Context) (sdk.AccAddress, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return nil, err
	}
	return s.feeTo(), nil
}

func (k *FactoryKeeper) FeeToSetter(ctx context.Context) (sdk.AccAddress, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return nil, err
	}
	return s.feeToSetter(), nil
}

func (k *FactoryKeeper) FeesEnabled(ctx context.Context) (bool, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return false, err
	}
	return s.feesEnabled(), nil
}

func (k *FactoryKeeper) PairCodeTemplate(ctx context.Context) (string, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return "", err
	}
	return s.pairCodeTemplate(), nil
}

// SetFeeTo changes the protocol fee recipient. Only the fee setter may call it.
func (k *FactoryKeeper) SetFeeTo(ctx context.Context, caller, feeTo sdk.AccAddress) error {
	if err := sdk.VerifyAddressFormat(feeTo); err != nil {
		return sdkerrors.ErrInvalidAddress.Wrapf("fee_to: %s", err)
	}
	return k.setParam(ctx, caller, types.ParamFeeTo, feeTo.String(), func(s factoryStore) {
		s.setFeeTo(feeTo)
	})
}

// SetFeeToSetter hands fee governance to another address.
func (k *FactoryKeeper) SetFeeToSetter(ctx context.Context, caller, setter sdk.AccAddress) error {
	if err := sdk.VerifyAddressFormat(setter); err != nil {
		return sdkerrors.ErrInvalidAddress.Wrapf("fee_to_setter: %s", err)
	}
	return k.setParam(ctx, caller, types.ParamFeeToSetter, setter.String(), func(s factoryStore) {
		s.setFeeToSetter(setter)
	})
}

// SetFeesEnabled turns protocol fee minting on or off.
func (k *FactoryKeeper) SetFeesEnabled(ctx context.Context, caller sdk.AccAddress, enabled bool) error {
	return k.setParam(ctx, caller, types.ParamFeesEnabled, strconv.FormatBool(enabled), func(s factoryStore) {
		s.setFeesEnabled(enabled)
	})
}

func (k *FactoryKeeper) setParam(ctx context.Context, caller sdk.AccAddress, param, value string, set func(factoryStore)) error {
	return withCache(ctx, func(ctx sdk.Context) error {
		s, err := k.initializedStore(ctx)
		if err != nil {
			return err
		}
		if !caller.Equals(s.feeToSetter()) {
			return types.ErrFactoryUnauthorized.Wrapf("%s is not the fee setter", caller)
		}
		set(s)

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeFactoryParamChange,
				sdk.NewAttribute(types.AttributeKeyParam, param),
				sdk.NewAttribute(types.AttributeKeyValue, value),
			),
		)
		k.metrics.ParamsChanged.WithLabelValues(param).Inc()
		moduleLogger(ctx).Info("factory parameter changed", "param", param, "value", value)
		return nil
	})
}

// State returns a snapshot of the factory configuration.
func (k *FactoryKeeper) State(ctx context.Context) (types.FactoryState, error) {
	s, err := k.initializedStore(ctx)
	if err != nil {
		return types.FactoryState{}, err
	}
	return types.FactoryState{
		FeeTo:            s.feeTo().String(),
		FeeToSetter:      s.feeToSetter().String(),
		FeesEnabled:      s.feesEnabled(),
		PairCodeTemplate: s.pairCodeTemplate(),
		TotalPairs:       s.totalPairs(),
	}, nil
}

// importState restores the factory configuration and registry from genesis.
func (k *FactoryKeeper) importState(ctx context.Context, state types.FactoryState, pairs []types.Pair) error {
	s := newFactoryStore(ctx, k.storeKey)
	feeTo, err := sdk.AccAddressFromBech32(state.FeeTo)
	if err != nil {
		return err
	}
	setter, err := sdk.AccAddressFromBech32(state.FeeToSetter)
	if err != nil {
		return err
	}
	s.setFeeTo(feeTo)
	s.setFeeToSetter(setter)
	s.setFeesEnabled(state.FeesEnabled)
	s.setPairCodeTemplate(state.PairCodeTemplate)
	s.setTotalPairs(0)
	for _, p := range pairs {
		addr, err := sdk.AccAddressFromBech32(p.Address)
		if err != nil {
			return err
		}
		if s.pair(p.Token0, p.Token1) != nil {
			return fmt.Errorf("duplicate pair %s/%s", p.Token0, p.Token1)
		}
		s.registerPair(p.Token0, p.Token1, addr)
	}
	k.metrics.PairsTotal.Set(float64(s.totalPairs()))
	return nil
}
