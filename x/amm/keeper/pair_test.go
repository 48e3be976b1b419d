package keeper_test

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

type PairTestSuite struct {
	suite.Suite
	f    *fixture
	pair sdk.AccAddress
}

func (s *PairTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.pair = s.f.createPair(s.T(), denomAtom, denomPaw)
}

func TestPairTestSuite(t *testing.T) {
	suite.Run(t, new(PairTestSuite))
}

// seed deposits 50M/100M and swaps 10M token0 for 16_624_979 token1.
func (s *PairTestSuite) seed() {
	liquidity := s.f.deposit(s.T(), s.pair, 50_000_000, 100_000_000)
	s.Require().Equal(math.NewInt(70_710_578), liquidity)

	s.f.send(s.T(), s.pair, denomAtom, 10_000_000)
	s.Require().NoError(s.f.k.Pair().Swap(s.f.ctx, s.pair, math.ZeroInt(), math.NewInt(16_624_979), s.f.user))
}

func (s *PairTestSuite) lpBalance(addr sdk.AccAddress) math.Int {
	b, err := s.f.k.Pair().LPBalance(s.f.ctx, s.pair, addr)
	s.Require().NoError(err)
	return b
}

func (s *PairTestSuite) totalSupply() math.Int {
	supply, err := s.f.k.Pair().LPTotalSupply(s.f.ctx, s.pair)
	s.Require().NoError(err)
	return supply
}

func (s *PairTestSuite) TestInitialize_Errors() {
	f := s.f
	err := f.k.Pair().Initialize(f.ctx, s.pair, f.k.Factory().Address(), denomAtom, denomPaw)
	s.Require().ErrorIs(err, types.ErrPairAlreadyInitialized)

	undeployed := keepertest.TestAddr(42)
	err = f.k.Pair().Initialize(f.ctx, undeployed, f.k.Factory().Address(), denomAtom, denomPaw)
	s.Require().ErrorIs(err, types.ErrPairNotInitialized)

	deployed, err := f.k.Pair().Deploy(f.ctx, f.user, pairTemplate, []byte("salt"))
	s.Require().NoError(err)
	err = f.k.Pair().Initialize(f.ctx, deployed, f.k.Factory().Address(), denomPaw, denomAtom)
	s.Require().ErrorIs(err, types.ErrPairInvalidTokenOrder)
	err = f.k.Pair().Initialize(f.ctx, deployed, f.k.Factory().Address(), denomPaw, denomPaw)
	s.Require().ErrorIs(err, types.ErrPairInvalidTokenOrder)
	s.Require().NoError(f.k.Pair().Initialize(f.ctx, deployed, f.k.Factory().Address(), denomAtom, denomPaw))

	_, err = f.k.Pair().Deploy(f.ctx, f.user, pairTemplate, []byte("salt"))
	s.Require().ErrorIs(err, types.ErrPairAlreadyInitialized)
}

func (s *PairTestSuite) TestUnknownPair() {
	unknown := keepertest.TestAddr(77)
	_, _, err := s.f.k.Pair().GetReserves(s.f.ctx, unknown)
	s.Require().ErrorIs(err, types.ErrPairNotInitialized)
	_, err = s.f.k.Pair().Deposit(s.f.ctx, unknown, s.f.user)
	s.Require().ErrorIs(err, types.ErrPairNotInitialized)
	err = s.f.k.Pair().Swap(s.f.ctx, unknown, math.ZeroInt(), math.OneInt(), s.f.user)
	s.Require().ErrorIs(err, types.ErrPairNotInitialized)
	_, _, err = s.f.k.Pair().Withdraw(s.f.ctx, unknown, s.f.user)
	s.Require().ErrorIs(err, types.ErrPairNotInitialized)
}

func (s *PairTestSuite) TestInitialState() {
	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Zero(r0)
	s.Require().Zero(r1)
	s.Require().True(s.totalSupply().IsZero())

	kLast, err := s.f.k.Pair().KLast(s.f.ctx, s.pair)
	s.Require().NoError(err)
	s.Require().True(kLast.IsZero())

	md, found := s.f.bank.GetDenomMetaData(s.f.ctx, lpDenom(s.pair))
	s.Require().True(found)
	s.Require().Equal("uatom-upaw-PAW-LP", md.Symbol)
	s.Require().Equal(uint32(types.LPDecimals), md.DenomUnits[1].Exponent)
}

func (s *PairTestSuite) TestDeposit_First() {
	liquidity := s.f.deposit(s.T(), s.pair, 50_000_000, 100_000_000)

	s.Require().Equal(math.NewInt(70_710_578), liquidity)
	s.Require().Equal(math.NewInt(70_710_678), s.totalSupply())
	s.Require().Equal(math.NewInt(70_710_578), s.lpBalance(s.f.user))
	s.Require().Equal(types.MinimumLiquidity, s.lpBalance(s.pair))

	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(50_000_000), r0)
	s.Require().Equal(int64(100_000_000), r1)

	attrs, found := findEvent(s.f.ctx, types.EventTypePairDeposit)
	s.Require().True(found)
	s.Require().Equal("70710578", attrs[types.AttributeKeyLiquidity])
	s.Require().Equal("50000000", attrs[types.AttributeKeyAmount0])
	s.Require().Equal("100000000", attrs[types.AttributeKeyNewReserve1])
	s.Require().Equal(s.f.user.String(), attrs[types.AttributeKeyTo])
}

func (s *PairTestSuite) TestDeposit_FirstLiquidityThreshold() {
	tests := []struct {
		name      string
		amount0   int64
		amount1   int64
		err       error
		liquidity int64
	}{
		{"sqrt equals minimum", 100, 100, types.ErrDepositInsufficientFirstLiquidity, 0},
		{"sqrt below minimum", 1, 10_000, types.ErrDepositInsufficientFirstLiquidity, 0},
		{"just above minimum", 1001, 1001, nil, 901},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.f.send(s.T(), s.pair, denomAtom, tc.amount0)
			s.f.send(s.T(), s.pair, denomPaw, tc.amount1)
			liquidity, err := s.f.k.Pair().Deposit(s.f.ctx, s.pair, s.f.user)
			if tc.err != nil {
				s.Require().ErrorIs(err, tc.err)
				s.Require().True(s.totalSupply().IsZero())
				return
			}
			s.Require().NoError(err)
			s.Require().Equal(math.NewInt(tc.liquidity), liquidity)
		})
	}
}

func (s *PairTestSuite) TestDeposit_MissingAmounts() {
	_, err := s.f.k.Pair().Deposit(s.f.ctx, s.pair, s.f.user)
	s.Require().ErrorIs(err, types.ErrDepositInsufficientAmountToken0)

	s.f.send(s.T(), s.pair, denomAtom, 5_000)
	_, err = s.f.k.Pair().Deposit(s.f.ctx, s.pair, s.f.user)
	s.Require().ErrorIs(err, types.ErrDepositInsufficientAmountToken1)

	s.SetupTest()
	s.f.send(s.T(), s.pair, denomPaw, 5_000)
	_, err = s.f.k.Pair().Deposit(s.f.ctx, s.pair, s.f.user)
	s.Require().ErrorIs(err, types.ErrDepositInsufficientAmountToken0)
}

func (s *PairTestSuite) TestDeposit_SubsequentUsesMinimumRatio() {
	s.f.deposit(s.T(), s.pair, 50_000_000, 100_000_000)

	// Unbalanced deposit: token1 is over-supplied and its excess is donated.
	liquidity := s.f.deposit(s.T(), s.pair, 5_000_000, 20_000_000)
	s.Require().Equal(math.NewInt(7_071_067), liquidity)
	s.Require().Equal(math.NewInt(70_710_678+7_071_067), s.totalSupply())

	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(55_000_000), r0)
	s.Require().Equal(int64(120_000_000), r1)
}

func (s *PairTestSuite) TestDeposit_SubsequentOverflow() {
	s.f.deposit(s.T(), s.pair, 50_000_000, 100_000_000)

	// amount0 * totalSupply no longer fits in 256 bits.
	huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 240))
	s.f.bank.Fund(s.f.ctx, s.pair, sdk.NewCoin(denomAtom, huge))
	s.f.send(s.T(), s.pair, denomPaw, 1)

	_, err := s.f.k.Pair().Deposit(s.f.ctx, s.pair, s.f.user)
	s.Require().ErrorIs(err, types.ErrPairOverflow)
	s.Require().Equal(math.NewInt(70_710_678), s.totalSupply())
	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(50_000_000), r0)
	s.Require().Equal(int64(100_000_000), r1)
}

func (s *PairTestSuite) TestSwap_Vector() {
	s.f.deposit(s.T(), s.pair, 50_000_000, 100_000_000)
	s.f.send(s.T(), s.pair, denomAtom, 10_000_000)
	before := s.f.balance(s.f.user, denomPaw)

	err := s.f.k.Pair().Swap(s.f.ctx, s.pair, math.ZeroInt(), math.NewInt(16_624_980), s.f.user)
	s.Require().ErrorIs(err, types.ErrSwapConstantNotMet)
	s.Require().Equal(before, s.f.balance(s.f.user, denomPaw))
	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(50_000_000), r0)
	s.Require().Equal(int64(100_000_000), r1)

	s.Require().NoError(s.f.k.Pair().Swap(s.f.ctx, s.pair, math.ZeroInt(), math.NewInt(16_624_979), s.f.user))
	s.Require().Equal(before.AddRaw(16_624_979), s.f.balance(s.f.user, denomPaw))

	r0, r1 = s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(60_000_000), r0)
	s.Require().Equal(int64(83_375_021), r1)

	attrs, found := findEvent(s.f.ctx, types.EventTypePairSwap)
	s.Require().True(found)
	s.Require().Equal("10000000", attrs[types.AttributeKeyAmount0In])
	s.Require().Equal("0", attrs[types.AttributeKeyAmount1In])
	s.Require().Equal("0", attrs[types.AttributeKeyAmount0Out])
	s.Require().Equal("16624979", attrs[types.AttributeKeyAmount1Out])
}

func (s *PairTestSuite) TestSwap_Errors() {
	s.f.deposit(s.T(), s.pair, 1_000_000, 1_000_000)

	tests := []struct {
		name string
		out0 math.Int
		out1 math.Int
		to   sdk.AccAddress
		err  error
	}{
		{"no output", math.ZeroInt(), math.ZeroInt(), s.f.user, types.ErrSwapInsufficientOutputAmount},
		{"negative output", math.NewInt(-1), math.NewInt(10), s.f.user, types.ErrSwapNegativesOutNotSupported},
		{"output equals reserve", math.NewInt(1_000_000), math.ZeroInt(), s.f.user, types.ErrSwapInsufficientLiquidity},
		{"output above reserve", math.ZeroInt(), math.NewInt(2_000_000), s.f.user, types.ErrSwapInsufficientLiquidity},
		{"to token0", math.NewInt(10), math.ZeroInt(), types.TokenAddress(denomAtom), types.ErrSwapInvalidTo},
		{"to token1", math.NewInt(10), math.ZeroInt(), types.TokenAddress(denomPaw), types.ErrSwapInvalidTo},
		{"no input", math.NewInt(10), math.ZeroInt(), s.f.user, types.ErrSwapInsufficientInputAmount},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			err := s.f.k.Pair().Swap(s.f.ctx, s.pair, tc.out0, tc.out1, tc.to)
			s.Require().ErrorIs(err, tc.err)
			r0, r1 := s.f.reserves(s.T(), s.pair)
			s.Require().Equal(int64(1_000_000), r0)
			s.Require().Equal(int64(1_000_000), r1)
		})
	}
}

func (s *PairTestSuite) TestSwap_InsufficientInputForFee() {
	s.f.deposit(s.T(), s.pair, 1_000_000, 1_000_000)
	// 1000 in for 997 out ignores the fee.
	s.f.send(s.T(), s.pair, denomAtom, 1_000)
	err := s.f.k.Pair().Swap(s.f.ctx, s.pair, math.ZeroInt(), math.NewInt(997), s.f.user)
	s.Require().ErrorIs(err, types.ErrSwapConstantNotMet)
}

func (s *PairTestSuite) TestWithdraw_NothingSent() {
	_, _, err := s.f.k.Pair().Withdraw(s.f.ctx, s.pair, s.f.user)
	s.Require().ErrorIs(err, types.ErrWithdrawLiquidityNotInitialized)

	s.f.deposit(s.T(), s.pair, 50_000_000, 100_000_000)
	_, _, err = s.f.k.Pair().Withdraw(s.f.ctx, s.pair, s.f.user)
	s.Require().ErrorIs(err, types.ErrWithdrawInsufficientSentShares)
}

func (s *PairTestSuite) TestWithdraw_FeeOff() {
	s.seed()
	atomBefore := s.f.balance(s.f.user, denomAtom)
	pawBefore := s.f.balance(s.f.user, denomPaw)

	s.f.send(s.T(), s.pair, lpDenom(s.pair), 70_710_578)
	amount0, amount1, err := s.f.k.Pair().Withdraw(s.f.ctx, s.pair, s.f.user)
	s.Require().NoError(err)

	s.Require().Equal(math.NewInt(60_000_000-85), amount0)
	s.Require().Equal(math.NewInt(83_375_021-118), amount1)
	s.Require().Equal(atomBefore.Add(amount0), s.f.balance(s.f.user, denomAtom))
	s.Require().Equal(pawBefore.Add(amount1), s.f.balance(s.f.user, denomPaw))

	s.Require().Equal(math.NewInt(85), s.f.balance(s.pair, denomAtom))
	s.Require().Equal(math.NewInt(118), s.f.balance(s.pair, denomPaw))
	s.Require().Equal(types.MinimumLiquidity, s.totalSupply())
	s.Require().True(s.lpBalance(s.f.user).IsZero())

	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(85), r0)
	s.Require().Equal(int64(118), r1)

	kLast, err := s.f.k.Pair().KLast(s.f.ctx, s.pair)
	s.Require().NoError(err)
	s.Require().True(kLast.IsZero())
}

func (s *PairTestSuite) TestWithdraw_RoundTrip() {
	liquidity := s.f.deposit(s.T(), s.pair, 4_000_000, 9_000_000)
	s.f.send(s.T(), s.pair, lpDenom(s.pair), liquidity.Int64())

	amount0, amount1, err := s.f.k.Pair().Withdraw(s.f.ctx, s.pair, s.f.user)
	s.Require().NoError(err)
	s.Require().True(amount0.LTE(math.NewInt(4_000_000)))
	s.Require().True(amount1.LTE(math.NewInt(9_000_000)))

	// The locked minimum keeps a proportional residue in the pair.
	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(4_000_000)-amount0.Int64(), r0)
	s.Require().Equal(int64(9_000_000)-amount1.Int64(), r1)
	s.Require().Positive(r0)
	s.Require().Positive(r1)
}

func (s *PairTestSuite) TestProtocolFee() {
	f := s.f
	s.Require().NoError(f.k.Factory().SetFeesEnabled(f.ctx, f.setter, true))
	feeTo := f.other
	s.Require().NoError(f.k.Factory().SetFeeTo(f.ctx, f.setter, feeTo))

	s.seed()
	kLast, err := f.k.Pair().KLast(f.ctx, s.pair)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(5_000_000_000_000_000), kLast)

	liquidity := f.deposit(s.T(), s.pair, 1_000_000, 1_389_583)
	s.Require().Equal(math.NewInt(1_178_559), liquidity)
	s.Require().Equal(math.NewInt(2946), s.lpBalance(feeTo))
	s.Require().Equal(math.NewInt(70_710_678+2946+1_178_559), s.totalSupply())

	expectedK := math.NewInt(61_000_000).Mul(math.NewInt(84_764_604))
	kLast, err = f.k.Pair().KLast(f.ctx, s.pair)
	s.Require().NoError(err)
	s.Require().Equal(expectedK, kLast)

	attrs, found := findEvent(f.ctx, types.EventTypeProtocolFee)
	s.Require().True(found)
	s.Require().Equal("2946", attrs[types.AttributeKeyLiquidity])
	s.Require().Equal(feeTo.String(), attrs[types.AttributeKeyTo])
}

func (s *PairTestSuite) TestProtocolFee_DisabledResetsKLast() {
	f := s.f
	s.Require().NoError(f.k.Factory().SetFeesEnabled(f.ctx, f.setter, true))
	f.deposit(s.T(), s.pair, 50_000_000, 100_000_000)

	kLast, err := f.k.Pair().KLast(f.ctx, s.pair)
	s.Require().NoError(err)
	s.Require().False(kLast.IsZero())

	s.Require().NoError(f.k.Factory().SetFeesEnabled(f.ctx, f.setter, false))
	f.deposit(s.T(), s.pair, 1_000_000, 2_000_000)

	kLast, err = f.k.Pair().KLast(f.ctx, s.pair)
	s.Require().NoError(err)
	s.Require().True(kLast.IsZero())
	s.Require().Equal(0, countEvents(f.ctx, types.EventTypeProtocolFee))
}

func (s *PairTestSuite) TestSkim() {
	s.f.deposit(s.T(), s.pair, 1_000_000, 2_000_000)
	s.f.send(s.T(), s.pair, denomAtom, 500)
	s.f.send(s.T(), s.pair, denomPaw, 700)
	before0 := s.f.balance(s.f.other, denomAtom)
	before1 := s.f.balance(s.f.other, denomPaw)

	s.Require().NoError(s.f.k.Pair().Skim(s.f.ctx, s.pair, s.f.other))

	s.Require().Equal(before0.AddRaw(500), s.f.balance(s.f.other, denomAtom))
	s.Require().Equal(before1.AddRaw(700), s.f.balance(s.f.other, denomPaw))
	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(1_000_000), r0)
	s.Require().Equal(int64(2_000_000), r1)

	attrs, found := findEvent(s.f.ctx, types.EventTypePairSkim)
	s.Require().True(found)
	s.Require().Equal("500", attrs[types.AttributeKeyAmount0])
	s.Require().Equal("700", attrs[types.AttributeKeyAmount1])
}

func (s *PairTestSuite) TestSync() {
	s.f.deposit(s.T(), s.pair, 1_000_000, 2_000_000)
	s.f.send(s.T(), s.pair, denomPaw, 300)

	s.Require().NoError(s.f.k.Pair().Sync(s.f.ctx, s.pair))
	r0, r1 := s.f.reserves(s.T(), s.pair)
	s.Require().Equal(int64(1_000_000), r0)
	s.Require().Equal(int64(2_000_300), r1)

	attrs, found := findEvent(s.f.ctx, types.EventTypePairSync)
	s.Require().True(found)
	s.Require().Equal("2000300", attrs[types.AttributeKeyNewReserve1])
}

func (s *PairTestSuite) TestGet() {
	s.f.deposit(s.T(), s.pair, 1_000_000, 2_000_000)
	p, err := s.f.k.Pair().Get(s.f.ctx, s.pair)
	s.Require().NoError(err)
	s.Require().Equal(s.pair.String(), p.Address)
	s.Require().Equal(denomAtom, p.Token0)
	s.Require().Equal(denomPaw, p.Token1)
	s.Require().Equal(math.NewInt(2_000_000), p.Reserve1)
	s.Require().Equal(pairTemplate, p.CodeTemplate)
	s.Require().NoError(p.Validate())
}
