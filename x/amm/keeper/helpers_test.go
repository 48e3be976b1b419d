package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

const (
	denomAtom = "uatom"
	denomPaw  = "upaw"
	denomUsdc = "uusdc"

	pairTemplate = "pair-v1"
	initialFunds = int64(1_000_000_000_000)
)

var blockTime = time.Unix(1_700_000_000, 0)

type fixture struct {
	k      *keeper.Keeper
	bank   *keepertest.MockBankKeeper
	ctx    sdk.Context
	setter sdk.AccAddress
	user   sdk.AccAddress
	other  sdk.AccAddress
}

// newFixture returns an initialized factory and router and a funded user.
func newFixture(t testing.TB) *fixture {
	k, bank, ctx := keepertest.AMMKeeper(t)
	ctx = ctx.WithBlockTime(blockTime)

	f := &fixture{
		k:      k,
		bank:   bank,
		ctx:    ctx,
		setter: keepertest.TestAddr(1),
		user:   keepertest.TestAddr(2),
		other:  keepertest.TestAddr(3),
	}
	require.NoError(t, k.Factory().Initialize(ctx, f.setter, pairTemplate))
	require.NoError(t, k.Router().Initialize(ctx, k.Factory().Address()))

	bank.Fund(ctx, f.user,
		sdk.NewInt64Coin(denomAtom, initialFunds),
		sdk.NewInt64Coin(denomPaw, initialFunds),
		sdk.NewInt64Coin(denomUsdc, initialFunds),
	)
	return f
}

func (f *fixture) createPair(t testing.TB, tokenA, tokenB string) sdk.AccAddress {
	pair, err := f.k.Factory().CreatePair(f.ctx, tokenA, tokenB)
	require.NoError(t, err)
	return pair
}

// send moves coins from the user to addr.
func (f *fixture) send(t testing.TB, to sdk.AccAddress, denom string, amount int64) {
	require.NoError(t, f.bank.SendCoins(f.ctx, f.user, to, sdk.NewCoins(sdk.NewInt64Coin(denom, amount))))
}

// deposit sends both amounts to the pair and deposits them for the user.
func (f *fixture) deposit(t testing.TB, pair sdk.AccAddress, amount0, amount1 int64) math.Int {
	token0, err := f.k.Pair().Token0(f.ctx, pair)
	require.NoError(t, err)
	token1, err := f.k.Pair().Token1(f.ctx, pair)
	require.NoError(t, err)
	f.send(t, pair, token0, amount0)
	f.send(t, pair, token1, amount1)
	liquidity, err := f.k.Pair().Deposit(f.ctx, pair, f.user)
	require.NoError(t, err)
	return liquidity
}

func (f *fixture) balance(addr sdk.AccAddress, denom string) math.Int {
	return f.bank.GetBalance(f.ctx, addr, denom).Amount
}

func (f *fixture) reserves(t testing.TB, pair sdk.AccAddress) (int64, int64) {
	r0, r1, err := f.k.Pair().GetReserves(f.ctx, pair)
	require.NoError(t, err)
	return r0.Int64(), r1.Int64()
}

// findEvent returns the attributes of the last event of the given type.
func findEvent(ctx sdk.Context, eventType string) (map[string]string, bool) {
	events := ctx.EventManager().Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type != eventType {
			continue
		}
		attrs := make(map[string]string, len(events[i].Attributes))
		for _, a := range events[i].Attributes {
			attrs[a.Key] = a.Value
		}
		return attrs, true
	}
	return nil, false
}

func countEvents(ctx sdk.Context, eventType string) int {
	n := 0
	for _, e := range ctx.EventManager().Events() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func lpDenom(pair sdk.AccAddress) string {
	return types.LPDenom(pair)
}
