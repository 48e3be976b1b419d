package keeper

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// mulDiv computes floor(a * b / c). The intermediate product is bounded by
// the 256-bit range of math.Int.
func mulDiv(a, b, c math.Int) (math.Int, error) {
	if c.IsZero() {
		return math.Int{}, fmt.Errorf("division by zero")
	}
	product, err := a.SafeMul(b)
	if err != nil {
		return math.Int{}, fmt.Errorf("overflow: %s * %s exceeds maximum value", a, b)
	}
	return product.Quo(c), nil
}

// mulChecked multiplies two amounts, reporting overflow as an error.
func mulChecked(a, b math.Int) (math.Int, error) {
	product, err := a.SafeMul(b)
	if err != nil {
		return math.Int{}, fmt.Errorf("overflow: %s * %s exceeds maximum value", a, b)
	}
	return product, nil
}

// sqrtFloor returns floor(sqrt(x)) for non-negative x.
func sqrtFloor(x math.Int) math.Int {
	if !x.IsPositive() {
		return math.ZeroInt()
	}
	return math.NewIntFromBigInt(new(big.Int).Sqrt(x.BigInt()))
}
