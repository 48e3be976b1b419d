package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

var (
	feeNumerator   = math.NewInt(3)
	feeDenominator = math.NewInt(1000)
	feeComplement  = math.NewInt(997)
)

// ReservesFunc resolves the reserves of the pair for (tokenA, tokenB), oriented
// so that the first value belongs to tokenA.
type ReservesFunc func(tokenA, tokenB string) (reserveA, reserveB math.Int, err error)

// FactoryAddress is the account that deploys pairs and signs for nothing else.
func FactoryAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(ModuleName)
}

// TokenAddress is the keyless account standing in for a token denom.
// Funds sent here can never be moved again.
func TokenAddress(denom string) sdk.AccAddress {
	return sdk.AccAddress(address.Module(ModuleName, []byte("token"), []byte(denom)))
}

// LPDenom returns the denom of the LP share issued by the pair at the given address.
func LPDenom(pair sdk.AccAddress) string {
	return LPDenomPrefix + hex.EncodeToString(pair)
}

// SortTokens returns the two denoms in canonical order.
func SortTokens(tokenA, tokenB string) (string, string, error) {
	if tokenA == tokenB {
		return "", "", ErrSortIdenticalTokens.Wrapf("%s", tokenA)
	}
	if tokenA > tokenB {
		return tokenB, tokenA, nil
	}
	return tokenA, tokenB, nil
}

// PairSalt is sha256(len(token0) || token0 || len(token1) || token1).
func PairSalt(token0, token1 string) []byte {
	h := sha256.New()
	h.Write(address.MustLengthPrefix([]byte(token0)))
	h.Write(address.MustLengthPrefix([]byte(token1)))
	return h.Sum(nil)
}

// PairFor derives the address of the pair for (tokenA, tokenB) deployed by factory.
// It reads no state, so the address is known before the pair exists.
func PairFor(factory sdk.AccAddress, tokenA, tokenB string) (sdk.AccAddress, error) {
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	return DeployAddress(factory, PairSalt(token0, token1)), nil
}

// DeployAddress is the address a deployer instantiates a pair at for a given salt.
func DeployAddress(deployer sdk.AccAddress, salt []byte) sdk.AccAddress {
	return sdk.AccAddress(address.Derive(deployer, salt))
}

// IsDeadlineExpired reports whether a unix-seconds deadline has been reached.
func IsDeadlineExpired(blockTime time.Time, deadline uint64) bool {
	now := blockTime.Unix()
	return now >= 0 && uint64(now) >= deadline
}

// Quote returns the amount of B equivalent to amountA at the current reserve ratio.
func Quote(amountA, reserveA, reserveB math.Int) (math.Int, error) {
	if !amountA.IsPositive() {
		return math.Int{}, ErrInsufficientAmount.Wrapf("amount %s", amountA)
	}
	if !reserveA.IsPositive() || !reserveB.IsPositive() {
		return math.Int{}, ErrInsufficientLiquidity.Wrapf("reserves %s/%s", reserveA, reserveB)
	}
	num, err := amountA.SafeMul(reserveB)
	if err != nil {
		return math.Int{}, ErrLibraryOverflow.Wrap(err.Error())
	}
	return num.Quo(reserveA), nil
}

// SwapFee returns ceil(amount * 3 / 1000).
func SwapFee(amount math.Int) (math.Int, error) {
	num, err := amount.SafeMul(feeNumerator)
	if err != nil {
		return math.Int{}, err
	}
	return CeilDiv(num, feeDenominator), nil
}

// CeilDiv divides non-negative a by positive b rounding up.
func CeilDiv(a, b math.Int) math.Int {
	q := a.Quo(b)
	if !a.Mod(b).IsZero() {
		q = q.AddRaw(1)
	}
	return q
}

// GetAmountOut returns the output of a single hop after the 0.3% fee.
func GetAmountOut(amountIn, reserveIn, reserveOut math.Int) (math.Int, error) {
	if !amountIn.IsPositive() {
		return math.Int{}, ErrInsufficientInputAmount.Wrapf("amount in %s", amountIn)
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.Int{}, ErrInsufficientLiquidity.Wrapf("reserves %s/%s", reserveIn, reserveOut)
	}
	fee, err := SwapFee(amountIn)
	if err != nil {
		return math.Int{}, ErrLibraryOverflow.Wrap(err.Error())
	}
	lessFee := amountIn.Sub(fee)
	num, err := lessFee.SafeMul(reserveOut)
	if err != nil {
		return math.Int{}, ErrLibraryOverflow.Wrap(err.Error())
	}
	den, err := reserveIn.SafeAdd(lessFee)
	if err != nil {
		return math.Int{}, ErrLibraryOverflow.Wrap(err.Error())
	}
	return num.Quo(den), nil
}

// GetAmountIn returns the input required for amountOut, rounded up plus one.
func GetAmountIn(amountOut, reserveIn, reserveOut math.Int) (math.Int, error) {
	if !amountOut.IsPositive() {
		return math.Int{}, ErrInsufficientOutputAmount.Wrapf("amount out %s", amountOut)
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.Int{}, ErrInsufficientLiquidity.Wrapf("reserves %s/%s", reserveIn, reserveOut)
	}
	if amountOut.GTE(reserveOut) {
		return math.Int{}, ErrInsufficientLiquidity.Wrapf("amount out %s exceeds reserve %s", amountOut, reserveOut)
	}
	num, err := reserveIn.SafeMul(amountOut)
	if err == nil {
		num, err = num.SafeMul(feeDenominator)
	}
	if err != nil {
		return math.Int{}, ErrLibraryOverflow.Wrap(err.Error())
	}
	den, err := reserveOut.Sub(amountOut).SafeMul(feeComplement)
	if err != nil {
		return math.Int{}, ErrLibraryOverflow.Wrap(err.Error())
	}
	return CeilDiv(num, den).AddRaw(1), nil
}

// GetAmountsOut chains GetAmountOut along path.
func GetAmountsOut(reserves ReservesFunc, amountIn math.Int, path []string) ([]math.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath.Wrapf("path length %d", len(path))
	}
	amounts := make([]math.Int, len(path))
	amounts[0] = amountIn
	for i := 0; i < len(path)-1; i++ {
		reserveIn, reserveOut, err := reserves(path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		amounts[i+1], err = GetAmountOut(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// GetAmountsIn chains GetAmountIn backwards along path.
func GetAmountsIn(reserves ReservesFunc, amountOut math.Int, path []string) ([]math.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath.Wrapf("path length %d", len(path))
	}
	amounts := make([]math.Int, len(path))
	amounts[len(amounts)-1] = amountOut
	for i := len(path) - 1; i > 0; i-- {
		reserveIn, reserveOut, err := reserves(path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		amounts[i-1], err = GetAmountIn(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}
