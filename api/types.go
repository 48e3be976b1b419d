package api

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// ErrorResponse carries the registered code of the failure alongside its message.
type ErrorResponse struct {
	Error     string `json:"error"`
	Codespace string `json:"codespace,omitempty"`
	Code      uint32 `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Height    int64  `json:"height"`
	BlockTime int64  `json:"block_time"`
	Timestamp int64  `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// FactoryResponse is the factory configuration plus the router's factory pointer.
type FactoryResponse struct {
	Address string `json:"address"`
	types.FactoryState
	Router string `json:"router_factory,omitempty"`
}

// PairResponse is a pair's persisted state with its LP supply.
type PairResponse struct {
	types.Pair
	LPDenom  string   `json:"lp_denom"`
	LPSupply math.Int `json:"lp_supply"`
}

// PairsResponse is one page of pairs in creation order.
type PairsResponse struct {
	Pairs  []PairResponse `json:"pairs"`
	Offset uint64         `json:"offset"`
	Total  uint64         `json:"total"`
}

// PairForResponse is a derived pair address and whether it has been created.
type PairForResponse struct {
	Address string `json:"address"`
	Token0  string `json:"token0"`
	Token1  string `json:"token1"`
	Exists  bool   `json:"exists"`
}

// QuoteResponse holds the per-hop amounts along a path.
type QuoteResponse struct {
	Path    []string   `json:"path"`
	Amounts []math.Int `json:"amounts"`
}

// BalancesResponse lists every balance held by an address.
type BalancesResponse struct {
	Address  string    `json:"address"`
	Balances sdk.Coins `json:"balances"`
}
