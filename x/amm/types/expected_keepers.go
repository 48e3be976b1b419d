package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
)

// BankKeeper is the token ledger used for underlying tokens and LP shares.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins
	GetSupply(ctx context.Context, denom string) sdk.Coin
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	GetDenomMetaData(ctx context.Context, denom string) (banktypes.Metadata, bool)
	SetDenomMetaData(ctx context.Context, denomMetaData banktypes.Metadata)
}

// FactoryReader is the narrow view a pair has of its factory: fee configuration only.
type FactoryReader interface {
	FeeTo(ctx context.Context) (sdk.AccAddress, error)
	FeesEnabled(ctx context.Context) (bool, error)
}

// PairDeployer instantiates a pair at a derived address from an opaque code template
// and runs its one-shot initialization.
type PairDeployer interface {
	Deploy(ctx context.Context, deployer sdk.AccAddress, template string, salt []byte) (sdk.AccAddress, error)
	Initialize(ctx context.Context, pair, factory sdk.AccAddress, token0, token1 string) error
}

// PairEngine is what the router needs from a pair.
type PairEngine interface {
	GetReserves(ctx context.Context, pair sdk.AccAddress) (math.Int, math.Int, error)
	Deposit(ctx context.Context, pair, to sdk.AccAddress) (math.Int, error)
	Withdraw(ctx context.Context, pair, to sdk.AccAddress) (math.Int, math.Int, error)
	Swap(ctx context.Context, pair sdk.AccAddress, amount0Out, amount1Out math.Int, to sdk.AccAddress) error
}

// PairRegistry is what the router needs from the factory.
type PairRegistry interface {
	Address() sdk.AccAddress
	PairExists(ctx context.Context, tokenA, tokenB string) (bool, error)
	CreatePair(ctx context.Context, tokenA, tokenB string) (sdk.AccAddress, error)
}
