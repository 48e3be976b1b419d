package types

import (
	"encoding/json"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisState is the exported state of the amm module.
// Pairs are listed in creation order; the index of a pair is its position.
type GenesisState struct {
	Factory *FactoryState `json:"factory,omitempty"`
	Router  *RouterState  `json:"router,omitempty"`
	Pairs   []Pair        `json:"pairs"`
}

// DefaultGenesis returns an uninitialized factory and router with no pairs.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Pairs: []Pair{},
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if gs.Factory == nil {
		if len(gs.Pairs) > 0 {
			return fmt.Errorf("pairs require an initialized factory")
		}
	} else {
		if _, err := sdk.AccAddressFromBech32(gs.Factory.FeeTo); err != nil {
			return fmt.Errorf("invalid fee_to: %w", err)
		}
		if _, err := sdk.AccAddressFromBech32(gs.Factory.FeeToSetter); err != nil {
			return fmt.Errorf("invalid fee_to_setter: %w", err)
		}
		if gs.Factory.TotalPairs != uint64(len(gs.Pairs)) {
			return fmt.Errorf("total_pairs %d does not match %d pairs", gs.Factory.TotalPairs, len(gs.Pairs))
		}
	}
	if gs.Router != nil {
		factory, err := sdk.AccAddressFromBech32(gs.Router.Factory)
		if err != nil {
			return fmt.Errorf("invalid router factory: %w", err)
		}
		if !factory.Equals(FactoryAddress()) {
			return fmt.Errorf("router factory %s is not the pair registry %s", factory, FactoryAddress())
		}
	}

	seen := make(map[string]bool, len(gs.Pairs))
	for i, p := range gs.Pairs {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pair %d: %w", i, err)
		}
		key := p.Token0 + "/" + p.Token1
		if seen[key] {
			return fmt.Errorf("duplicate pair %s", key)
		}
		seen[key] = true
	}
	return nil
}

// Validate checks a single pair record, including that its address is the derived one.
func (p Pair) Validate() error {
	if err := sdk.ValidateDenom(p.Token0); err != nil {
		return fmt.Errorf("token0: %w", err)
	}
	if err := sdk.ValidateDenom(p.Token1); err != nil {
		return fmt.Errorf("token1: %w", err)
	}
	if p.Token0 >= p.Token1 {
		return ErrPairInvalidTokenOrder.Wrapf("%s >= %s", p.Token0, p.Token1)
	}
	factory, err := sdk.AccAddressFromBech32(p.Factory)
	if err != nil {
		return fmt.Errorf("invalid factory: %w", err)
	}
	addr, err := sdk.AccAddressFromBech32(p.Address)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	expected, err := PairFor(factory, p.Token0, p.Token1)
	if err != nil {
		return err
	}
	if !expected.Equals(addr) {
		return fmt.Errorf("address %s is not the derived pair address %s", p.Address, expected)
	}
	if p.Reserve0.IsNil() || p.Reserve1.IsNil() || p.KLast.IsNil() {
		return fmt.Errorf("reserves and k_last must be set")
	}
	if p.Reserve0.IsNegative() || p.Reserve1.IsNegative() || p.KLast.IsNegative() {
		return fmt.Errorf("reserves and k_last must be non-negative")
	}
	return nil
}

// MustMarshalJSON encodes the genesis state.
func (gs GenesisState) MustMarshalJSON() json.RawMessage {
	bz, err := json.Marshal(gs)
	if err != nil {
		panic(err)
	}
	return bz
}

// UnmarshalGenesis decodes a genesis document.
func UnmarshalGenesis(bz json.RawMessage) (*GenesisState, error) {
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s genesis state: %w", ModuleName, err)
	}
	return &gs, nil
}
