package types

import (
	"cosmossdk.io/math"
)

// Pair is the persisted state of one pair, keyed by its address.
type Pair struct {
	Address      string   `json:"address"`
	Factory      string   `json:"factory"`
	Token0       string   `json:"token0"`
	Token1       string   `json:"token1"`
	Reserve0     math.Int `json:"reserve0"`
	Reserve1     math.Int `json:"reserve1"`
	KLast        math.Int `json:"k_last"`
	CodeTemplate string   `json:"code_template"`
}

// FactoryState is the singleton registry configuration.
type FactoryState struct {
	FeeTo            string `json:"fee_to"`
	FeeToSetter      string `json:"fee_to_setter"`
	FeesEnabled      bool   `json:"fees_enabled"`
	PairCodeTemplate string `json:"pair_code_template"`
	TotalPairs       uint64 `json:"total_pairs"`
}

// RouterState holds the router's factory pointer.
type RouterState struct {
	Factory string `json:"factory"`
}
