package keeper

import (
	"context"

	"cosmossdk.io/math"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

var (
	mockBalancePrefix  = []byte{0x01}
	mockSupplyPrefix   = []byte{0x02}
	mockMetadataPrefix = []byte{0x03}
)

// MockBankKeeper is a minimal token ledger for keeper tests. Balances, supply
// and denom metadata live in their own KV store so that they are branched and
// discarded together with the amm state when a cached context is not written.
type MockBankKeeper struct {
	storeKey storetypes.StoreKey
}

var _ types.BankKeeper = (*MockBankKeeper)(nil)

// NewMockBankKeeper returns an empty ledger over storeKey
func NewMockBankKeeper(storeKey storetypes.StoreKey) *MockBankKeeper {
	return &MockBankKeeper{storeKey: storeKey}
}

func (b *MockBankKeeper) balanceStore(ctx context.Context, addr sdk.AccAddress) prefix.Store {
	store := sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey)
	return prefix.NewStore(store, append(append([]byte{}, mockBalancePrefix...), address.MustLengthPrefix(addr)...))
}

func (b *MockBankKeeper) metadataStore(ctx context.Context) prefix.Store {
	return prefix.NewStore(sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey), mockMetadataPrefix)
}

func (b *MockBankKeeper) supplyStore(ctx context.Context) prefix.Store {
	return prefix.NewStore(sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey), mockSupplyPrefix)
}

func getAmount(store prefix.Store, denom string) math.Int {
	bz := store.Get([]byte(denom))
	if bz == nil {
		return math.ZeroInt()
	}
	var v math.Int
	if err := v.Unmarshal(bz); err != nil {
		panic(err)
	}
	return v
}

func setAmount(store prefix.Store, denom string, v math.Int) {
	if v.IsZero() {
		store.Delete([]byte(denom))
		return
	}
	bz, err := v.Marshal()
	if err != nil {
		panic(err)
	}
	store.Set([]byte(denom), bz)
}

// Fund mints coins straight into addr.
func (b *MockBankKeeper) Fund(ctx context.Context, addr sdk.AccAddress, coins ...sdk.Coin) {
	balances := b.balanceStore(ctx, addr)
	supply := b.supplyStore(ctx)
	for _, c := range coins {
		setAmount(balances, c.Denom, getAmount(balances, c.Denom).Add(c.Amount))
		setAmount(supply, c.Denom, getAmount(supply, c.Denom).Add(c.Amount))
	}
}

func (b *MockBankKeeper) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, getAmount(b.balanceStore(ctx, addr), denom))
}

func (b *MockBankKeeper) GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins {
	store := b.balanceStore(ctx, addr)
	iterator := store.Iterator(nil, nil)
	defer iterator.Close()

	coins := sdk.NewCoins()
	for ; iterator.Valid(); iterator.Next() {
		coins = coins.Add(sdk.NewCoin(string(iterator.Key()), getAmount(store, string(iterator.Key()))))
	}
	return coins
}

func (b *MockBankKeeper) GetSupply(ctx context.Context, denom string) sdk.Coin {
	return sdk.NewCoin(denom, getAmount(b.supplyStore(ctx), denom))
}

func (b *MockBankKeeper) SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	from := b.balanceStore(ctx, fromAddr)
	for _, c := range amt {
		if getAmount(from, c.Denom).LT(c.Amount) {
			return sdkerrors.ErrInsufficientFunds.Wrapf("%s has %s%s, needs %s", fromAddr, getAmount(from, c.Denom), c.Denom, c)
		}
	}
	to := b.balanceStore(ctx, toAddr)
	for _, c := range amt {
		setAmount(from, c.Denom, getAmount(from, c.Denom).Sub(c.Amount))
		setAmount(to, c.Denom, getAmount(to, c.Denom).Add(c.Amount))
	}
	return nil
}

func (b *MockBankKeeper) MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	b.Fund(ctx, authtypes.NewModuleAddress(moduleName), amt...)
	return nil
}

func (b *MockBankKeeper) BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	balances := b.balanceStore(ctx, authtypes.NewModuleAddress(moduleName))
	supply := b.supplyStore(ctx)
	for _, c := range amt {
		if getAmount(balances, c.Denom).LT(c.Amount) {
			return sdkerrors.ErrInsufficientFunds.Wrapf("module %s cannot burn %s", moduleName, c)
		}
	}
	for _, c := range amt {
		setAmount(balances, c.Denom, getAmount(balances, c.Denom).Sub(c.Amount))
		setAmount(supply, c.Denom, getAmount(supply, c.Denom).Sub(c.Amount))
	}
	return nil
}

func (b *MockBankKeeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return b.SendCoins(ctx, authtypes.NewModuleAddress(senderModule), recipientAddr, amt)
}

func (b *MockBankKeeper) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	return b.SendCoins(ctx, senderAddr, authtypes.NewModuleAddress(recipientModule), amt)
}

func (b *MockBankKeeper) GetDenomMetaData(ctx context.Context, denom string) (banktypes.Metadata, bool) {
	bz := b.metadataStore(ctx).Get([]byte(denom))
	if bz == nil {
		return banktypes.Metadata{}, false
	}
	var md banktypes.Metadata
	if err := md.Unmarshal(bz); err != nil {
		panic(err)
	}
	return md, true
}

func (b *MockBankKeeper) SetDenomMetaData(ctx context.Context, denomMetaData banktypes.Metadata) {
	bz, err := denomMetaData.Marshal()
	if err != nil {
		panic(err)
	}
	b.metadataStore(ctx).Set([]byte(denomMetaData.Base), bz)
}
