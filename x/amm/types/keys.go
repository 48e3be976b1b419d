package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "amm"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// LPDenomPrefix prefixes every LP share denom minted by a pair
	LPDenomPrefix = ModuleName + "/"

	// LPDecimals is the display exponent of LP share denoms
	LPDecimals = 7
)

// MinimumLiquidity is locked at the pair's own address on the first deposit.
var MinimumLiquidity = math.NewInt(100)

// Store key prefixes, one per component
var (
	FactoryKeyPrefix = []byte{0x01}
	PairKeyPrefix    = []byte{0x02}
	RouterKeyPrefix  = []byte{0x03}
)

// Factory store keys (relative to FactoryKeyPrefix)
var (
	FactoryFeeToKey            = []byte{0x01}
	FactoryFeeToSetterKey      = []byte{0x02}
	FactoryFeesEnabledKey      = []byte{0x03}
	FactoryPairCodeTemplateKey = []byte{0x04}
	FactoryTotalPairsKey       = []byte{0x05}
	FactoryPairByTokensPrefix  = []byte{0x06}
	FactoryPairByIndexPrefix   = []byte{0x07}
)

// Pair store keys (relative to the pair's own prefix)
var (
	PairToken0Key   = []byte{0x01}
	PairToken1Key   = []byte{0x02}
	PairFactoryKey  = []byte{0x03}
	PairReserve0Key = []byte{0x04}
	PairReserve1Key = []byte{0x05}
	PairKLastKey    = []byte{0x06}
	PairTemplateKey = []byte{0x07}
)

// Router store keys (relative to RouterKeyPrefix)
var (
	RouterFactoryKey = []byte{0x01}
)

// GetPairByTokensKey returns the registry key for an ordered token pair.
// Both denoms are length prefixed so that no two pairs share a key.
func GetPairByTokensKey(token0, token1 string) []byte {
	key := append([]byte{}, FactoryPairByTokensPrefix...)
	key = append(key, address.MustLengthPrefix([]byte(token0))...)
	return append(key, address.MustLengthPrefix([]byte(token1))...)
}

// GetPairByIndexKey returns the enumeration key for the n-th created pair
func GetPairByIndexKey(n uint64) []byte {
	return append(append([]byte{}, FactoryPairByIndexPrefix...), sdk.Uint64ToBigEndian(n)...)
}

// GetPairStorePrefix returns the prefix under which a single pair keeps its fields
func GetPairStorePrefix(pair sdk.AccAddress) []byte {
	return append(append([]byte{}, PairKeyPrefix...), address.MustLengthPrefix(pair)...)
}
