package types_test

import (
	"encoding/hex"
	"math/big"
	"testing"
	"testing/quick"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/x/amm/types"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		reserveA int64
		reserveB int64
		want     int64
		err      error
	}{
		{"doubles", 1, 100, 200, 2, nil},
		{"halves", 2, 200, 100, 1, nil},
		{"zero amount", 0, 100, 200, 0, types.ErrInsufficientAmount},
		{"zero reserve a", 1, 0, 200, 0, types.ErrInsufficientLiquidity},
		{"zero reserve b", 1, 100, 0, 0, types.ErrInsufficientLiquidity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := types.Quote(math.NewInt(tc.amount), math.NewInt(tc.reserveA), math.NewInt(tc.reserveB))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, math.NewInt(tc.want), got)
		})
	}
}

func TestGetAmountOut(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   int64
		reserveIn  int64
		reserveOut int64
		want       int64
		err        error
	}{
		{"small", 3, 100, 100, 1, nil},
		{"reference swap", 10_000_000, 50_000_000, 100_000_000, 16_624_979, nil},
		{"fee eats a single unit", 1, 100, 100, 0, nil},
		{"zero input", 0, 100, 100, 0, types.ErrInsufficientInputAmount},
		{"negative input", -5, 100, 100, 0, types.ErrInsufficientInputAmount},
		{"zero reserve in", 3, 0, 100, 0, types.ErrInsufficientLiquidity},
		{"zero reserve out", 3, 100, 0, 0, types.ErrInsufficientLiquidity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := types.GetAmountOut(math.NewInt(tc.amountIn), math.NewInt(tc.reserveIn), math.NewInt(tc.reserveOut))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, math.NewInt(tc.want), got)
		})
	}
}

func TestGetAmountIn(t *testing.T) {
	tests := []struct {
		name       string
		amountOut  int64
		reserveIn  int64
		reserveOut int64
		want       int64
		err        error
	}{
		{"small", 1, 100, 100, 3, nil},
		{"zero output", 0, 100, 100, 0, types.ErrInsufficientOutputAmount},
		{"zero reserve", 1, 0, 100, 0, types.ErrInsufficientLiquidity},
		{"drains reserve", 100, 100, 100, 0, types.ErrInsufficientLiquidity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := types.GetAmountIn(math.NewInt(tc.amountOut), math.NewInt(tc.reserveIn), math.NewInt(tc.reserveOut))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, math.NewInt(tc.want), got)
		})
	}
}

func TestLibraryOverflow(t *testing.T) {
	huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 200))

	_, err := types.Quote(huge, math.OneInt(), huge)
	require.ErrorIs(t, err, types.ErrLibraryOverflow)

	_, err = types.GetAmountOut(huge, huge, huge)
	require.ErrorIs(t, err, types.ErrLibraryOverflow)
}

func TestSwapFee(t *testing.T) {
	for amount, want := range map[int64]int64{0: 0, 1: 1, 333: 1, 334: 2, 1000: 3, 10_000_000: 30_000} {
		fee, err := types.SwapFee(math.NewInt(amount))
		require.NoError(t, err)
		require.Equal(t, math.NewInt(want), fee, "amount %d", amount)
	}
}

func TestSortTokens(t *testing.T) {
	t0, t1, err := types.SortTokens("upaw", "uatom")
	require.NoError(t, err)
	require.Equal(t, "uatom", t0)
	require.Equal(t, "upaw", t1)

	t0, t1, err = types.SortTokens("uatom", "upaw")
	require.NoError(t, err)
	require.Equal(t, "uatom", t0)
	require.Equal(t, "upaw", t1)

	_, _, err = types.SortTokens("upaw", "upaw")
	require.ErrorIs(t, err, types.ErrSortIdenticalTokens)
}

func TestPairFor(t *testing.T) {
	factory := types.FactoryAddress()

	ab, err := types.PairFor(factory, "uatom", "upaw")
	require.NoError(t, err)
	ba, err := types.PairFor(factory, "upaw", "uatom")
	require.NoError(t, err)
	require.Equal(t, ab, ba)
	require.Equal(t, types.DeployAddress(factory, types.PairSalt("uatom", "upaw")), ab)

	other, err := types.PairFor(factory, "uatom", "uusdc")
	require.NoError(t, err)
	require.NotEqual(t, ab, other)

	otherFactory, err := types.PairFor(sdk.AccAddress("another-factory-addr"), "uatom", "upaw")
	require.NoError(t, err)
	require.NotEqual(t, ab, otherFactory)

	// Length prefixing keeps ("ab","c") and ("a","bc") apart.
	require.NotEqual(t, types.PairSalt("ab", "c"), types.PairSalt("a", "bc"))

	_, err = types.PairFor(factory, "uatom", "uatom")
	require.ErrorIs(t, err, types.ErrSortIdenticalTokens)

	require.Equal(t, "amm/"+hex.EncodeToString(ab), types.LPDenom(ab))
	require.NoError(t, sdk.ValidateDenom(types.LPDenom(ab)))
}

func TestIsDeadlineExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	require.True(t, types.IsDeadlineExpired(now, 1_700_000_000))
	require.True(t, types.IsDeadlineExpired(now, 0))
	require.False(t, types.IsDeadlineExpired(now, 1_700_000_001))
	require.False(t, types.IsDeadlineExpired(time.Unix(-1, 0), 0))
}

func TestGetAmountsOut(t *testing.T) {
	reserves := map[[2]string][2]int64{
		{"a", "b"}: {50_000_000, 100_000_000},
		{"b", "c"}: {1_000_000, 2_000_000},
	}
	lookup := func(tokenA, tokenB string) (math.Int, math.Int, error) {
		if r, ok := reserves[[2]string{tokenA, tokenB}]; ok {
			return math.NewInt(r[0]), math.NewInt(r[1]), nil
		}
		if r, ok := reserves[[2]string{tokenB, tokenA}]; ok {
			return math.NewInt(r[1]), math.NewInt(r[0]), nil
		}
		return math.Int{}, math.Int{}, types.ErrRouterPairDoesNotExist
	}

	amounts, err := types.GetAmountsOut(lookup, math.NewInt(10_000_000), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []math.Int{math.NewInt(10_000_000), math.NewInt(16_624_979)}, amounts)

	amounts, err = types.GetAmountsOut(lookup, math.NewInt(1_000), []string{"a", "b", "c"})
	require.NoError(t, err)
	hop1, _ := types.GetAmountOut(math.NewInt(1_000), math.NewInt(50_000_000), math.NewInt(100_000_000))
	hop2, _ := types.GetAmountOut(hop1, math.NewInt(1_000_000), math.NewInt(2_000_000))
	require.Equal(t, []math.Int{math.NewInt(1_000), hop1, hop2}, amounts)

	amounts, err = types.GetAmountsIn(lookup, hop2, []string{"c", "b"})
	require.NoError(t, err)
	require.Len(t, amounts, 2)
	require.Equal(t, hop2, amounts[1])

	_, err = types.GetAmountsOut(lookup, math.NewInt(1), []string{"a"})
	require.ErrorIs(t, err, types.ErrInvalidPath)
	_, err = types.GetAmountsIn(lookup, math.NewInt(1), nil)
	require.ErrorIs(t, err, types.ErrInvalidPath)
	_, err = types.GetAmountsOut(lookup, math.NewInt(1), []string{"a", "c"})
	require.ErrorIs(t, err, types.ErrRouterPairDoesNotExist)
}

// Property: the quoted output never reaches the reserve and a larger input
// never quotes a smaller output.
func TestPropertyGetAmountOutBounded(t *testing.T) {
	property := func(in, rIn, rOut uint32) bool {
		if in == 0 || rIn == 0 || rOut == 0 {
			return true
		}
		amountIn := math.NewInt(int64(in))
		reserveIn := math.NewInt(int64(rIn))
		reserveOut := math.NewInt(int64(rOut))

		out, err := types.GetAmountOut(amountIn, reserveIn, reserveOut)
		if err != nil || !out.LT(reserveOut) {
			return false
		}
		more, err := types.GetAmountOut(amountIn.AddRaw(1), reserveIn, reserveOut)
		return err == nil && more.GTE(out)
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 1000}))
}

// Property: quoting there and back never yields more than was started with.
func TestPropertyQuoteRoundTrip(t *testing.T) {
	property := func(a, rA, rB uint32) bool {
		if a == 0 || rA == 0 || rB == 0 {
			return true
		}
		b, err := types.Quote(math.NewInt(int64(a)), math.NewInt(int64(rA)), math.NewInt(int64(rB)))
		if err != nil {
			return false
		}
		if b.IsZero() {
			return true
		}
		back, err := types.Quote(b, math.NewInt(int64(rB)), math.NewInt(int64(rA)))
		return err == nil && back.LTE(math.NewInt(int64(a)))
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 1000}))
}
