package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// InitGenesis initializes the amm module's state from a genesis state
func (k *Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	if genState.Factory != nil {
		if err := k.factory.importState(ctx, *genState.Factory, genState.Pairs); err != nil {
			return fmt.Errorf("failed to import factory: %w", err)
		}
	}

	for _, p := range genState.Pairs {
		if err := k.pair.importPair(ctx, p); err != nil {
			return fmt.Errorf("failed to import pair %s: %w", p.Address, err)
		}
	}

	if genState.Router != nil {
		factory, err := sdk.AccAddressFromBech32(genState.Router.Factory)
		if err != nil {
			return fmt.Errorf("invalid router factory: %w", err)
		}
		if !factory.Equals(k.factory.Address()) {
			return fmt.Errorf("router factory %s is not the pair registry %s", factory, k.factory.Address())
		}
		newRouterStore(ctx, k.storeKey).setFactory(factory)
	}
	return nil
}

// ExportGenesis returns the amm module's exported genesis
func (k *Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	genesis := types.DefaultGenesis()

	if state, err := k.factory.State(ctx); err == nil {
		genesis.Factory = &state
	}
	if factory, err := k.router.GetFactory(ctx); err == nil {
		genesis.Router = &types.RouterState{Factory: factory.String()}
	}

	var iterErr error
	k.factory.IteratePairs(ctx, func(_ uint64, addr sdk.AccAddress) bool {
		p, err := k.pair.Get(ctx, addr)
		if err != nil {
			iterErr = err
			return true
		}
		genesis.Pairs = append(genesis.Pairs, p)
		return false
	})
	if iterErr != nil {
		return nil, iterErr
	}
	return genesis, nil
}

// importPair writes an exported pair record back as an active pair.
func (k *PairKeeper) importPair(ctx context.Context, p types.Pair) error {
	addr, err := sdk.AccAddressFromBech32(p.Address)
	if err != nil {
		return err
	}
	factory, err := sdk.AccAddressFromBech32(p.Factory)
	if err != nil {
		return err
	}
	s := newPairStore(ctx, k.storeKey, addr)
	if s.initialized() {
		return types.ErrPairAlreadyInitialized.Wrapf("pair %s", addr)
	}
	s.setTemplate(p.CodeTemplate)
	s.setFactory(factory)
	s.setTokens(p.Token0, p.Token1)
	s.setReserves(p.Reserve0, p.Reserve1)
	s.setKLast(p.KLast)

	lpDenom := types.LPDenom(addr)
	if _, found := k.bankKeeper.GetDenomMetaData(ctx, lpDenom); !found {
		l := k.ledger()
		k.bankKeeper.SetDenomMetaData(ctx, types.NewLPMetadata(lpDenom, l.symbol(ctx, p.Token0), l.symbol(ctx, p.Token1)))
	}
	return nil
}
