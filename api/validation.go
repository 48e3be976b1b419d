package api

import (
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cast"
)

// Validation constants
const (
	MaxAmountLength = 78
	MaxPathHops     = 8
)

// parseAddress validates a bech32 account address parameter.
func parseAddress(field, value string) (sdk.AccAddress, error) {
	if value == "" {
		return nil, ErrInvalidRequest.Wrapf("%s is required", field)
	}
	addr, err := sdk.AccAddressFromBech32(value)
	if err != nil {
		return nil, ErrInvalidRequest.Wrapf("%s: %s", field, err)
	}
	return addr, nil
}

// parseAmount validates a non-negative integer amount of at most 256 bits.
func parseAmount(field, value string) (math.Int, error) {
	if value == "" {
		return math.Int{}, ErrInvalidRequest.Wrapf("%s is required", field)
	}
	if len(value) > MaxAmountLength {
		return math.Int{}, ErrInvalidRequest.Wrapf("%s is too long", field)
	}
	amount, ok := math.NewIntFromString(value)
	if !ok || amount.IsNegative() {
		return math.Int{}, ErrInvalidRequest.Wrapf("%s must be a non-negative integer, got %q", field, value)
	}
	return amount, nil
}

// parsePath splits a comma separated list of denoms.
func parsePath(value string) ([]string, error) {
	if value == "" {
		return nil, ErrInvalidRequest.Wrap("path is required")
	}
	path := strings.Split(value, ",")
	if len(path) > MaxPathHops+1 {
		return nil, ErrInvalidRequest.Wrapf("path has more than %d hops", MaxPathHops)
	}
	for i, denom := range path {
		path[i] = strings.TrimSpace(denom)
		if err := sdk.ValidateDenom(path[i]); err != nil {
			return nil, ErrInvalidRequest.Wrapf("path[%d]: %s", i, err)
		}
	}
	return path, nil
}

// parseUint reads an optional unsigned query parameter.
func parseUint(field, value string, def uint64) (uint64, error) {
	if value == "" {
		return def, nil
	}
	n, err := cast.ToUint64E(value)
	if err != nil {
		return 0, ErrInvalidRequest.Wrapf("%s: %s", field, err)
	}
	return n, nil
}
