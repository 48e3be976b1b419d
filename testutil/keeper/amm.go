package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

// AMMKeeper creates a test keeper for the amm module over an in-memory
// multistore, with a store-backed mock bank keeper.
func AMMKeeper(t testing.TB) (*keeper.Keeper, *MockBankKeeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	bankStoreKey := storetypes.NewKVStoreKey("mockbank")

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(bankStoreKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	bank := NewMockBankKeeper(bankStoreKey)
	k := keeper.NewKeeper(storeKey, bank)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())

	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, bank, ctx
}

// TestAddr returns a deterministic 20-byte account address for index i.
func TestAddr(i int) sdk.AccAddress {
	addr := make([]byte, 20)
	copy(addr, []byte("amm_test_account_"))
	addr[19] = byte(i)
	return sdk.AccAddress(addr)
}
