// Package sandbox runs the amm module in-process over a real multistore with
// the SDK auth and bank keepers, one block per state transition.
package sandbox

import (
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/paw-chain/pawswap/x/amm"
	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

// FaucetModuleName is the module account that mints initial balances.
const FaucetModuleName = "faucet"

const (
	DefaultChainID          = "pawswap-sandbox-1"
	DefaultPairCodeTemplate = "pair-v1"
	DefaultBlockInterval    = 6 * time.Second
)

// Config configures a Chain.
type Config struct {
	ChainID          string
	GenesisTime      time.Time
	BlockInterval    time.Duration
	PairCodeTemplate string
	Logger           log.Logger
}

// DefaultConfig returns a config with a fixed genesis time so runs are reproducible.
func DefaultConfig() Config {
	return Config{
		ChainID:          DefaultChainID,
		GenesisTime:      time.Unix(1_700_000_000, 0).UTC(),
		BlockInterval:    DefaultBlockInterval,
		PairCodeTemplate: DefaultPairCodeTemplate,
		Logger:           log.NewNopLogger(),
	}
}

// Chain is a single-validator chain holding the auth, bank and amm stores.
// All access is serialized; every successful Exec commits a block.
type Chain struct {
	mu sync.Mutex

	cfg    Config
	cms    storetypes.CommitMultiStore
	header cmtproto.Header
	logger log.Logger

	accountKeeper authkeeper.AccountKeeper
	bankKeeper    bankkeeper.BaseKeeper
	ammKeeper     *keeper.Keeper
	module        amm.AppModule
	invariants    *invariantRegistry
}

// New mounts the stores, wires the keepers and initializes their genesis state.
func New(cfg Config) (*Chain, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	if cfg.ChainID == "" {
		cfg.ChainID = DefaultChainID
	}
	if cfg.BlockInterval <= 0 {
		cfg.BlockInterval = DefaultBlockInterval
	}
	if cfg.PairCodeTemplate == "" {
		cfg.PairCodeTemplate = DefaultPairCodeTemplate
	}

	authKey := storetypes.NewKVStoreKey(authtypes.StoreKey)
	bankKey := storetypes.NewKVStoreKey(banktypes.StoreKey)
	ammKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db, cfg.Logger, metrics.NewNoOpMetrics())
	for _, key := range []*storetypes.KVStoreKey{authKey, bankKey, ammKey} {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, db)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}

	registry := codectypes.NewInterfaceRegistry()
	authtypes.RegisterInterfaces(registry)
	banktypes.RegisterInterfaces(registry)
	cdc := codec.NewProtoCodec(registry)
	authority := authtypes.NewModuleAddress(govtypes.ModuleName)
	prefix := sdk.GetConfig().GetBech32AccountAddrPrefix()

	maccPerms := map[string][]string{
		FaucetModuleName: {authtypes.Minter},
		types.ModuleName: {authtypes.Minter, authtypes.Burner},
	}
	accountKeeper := authkeeper.NewAccountKeeper(
		cdc,
		runtime.NewKVStoreService(authKey),
		authtypes.ProtoBaseAccount,
		maccPerms,
		address.NewBech32Codec(prefix),
		prefix,
		authority.String(),
	)

	blockedAddrs := make(map[string]bool, len(maccPerms))
	for name := range maccPerms {
		blockedAddrs[authtypes.NewModuleAddress(name).String()] = true
	}
	bankKeeper := bankkeeper.NewBaseKeeper(
		cdc,
		runtime.NewKVStoreService(bankKey),
		accountKeeper,
		blockedAddrs,
		authority.String(),
		cfg.Logger,
	)

	ammKeeper := keeper.NewKeeper(ammKey, bankKeeper)

	c := &Chain{
		cfg:           cfg,
		cms:           cms,
		header:        cmtproto.Header{ChainID: cfg.ChainID, Height: 1, Time: cfg.GenesisTime},
		logger:        cfg.Logger.With("module", "sandbox"),
		accountKeeper: accountKeeper,
		bankKeeper:    bankKeeper,
		ammKeeper:     ammKeeper,
		module:        amm.NewAppModule(ammKeeper),
		invariants:    newInvariantRegistry(),
	}
	c.module.RegisterInvariants(c.invariants)

	ctx := c.context()
	if err := accountKeeper.Params.Set(ctx, authtypes.DefaultParams()); err != nil {
		return nil, fmt.Errorf("failed to set auth params: %w", err)
	}
	if err := bankKeeper.SetParams(ctx, banktypes.DefaultParams()); err != nil {
		return nil, fmt.Errorf("failed to set bank params: %w", err)
	}
	c.module.InitGenesis(ctx, cdc, c.module.DefaultGenesis(cdc))
	c.commit()

	return c, nil
}

func (c *Chain) context() sdk.Context {
	return sdk.NewContext(c.cms, c.header, false, c.logger)
}

// commit persists the block and opens the next one.
func (c *Chain) commit() {
	id := c.cms.Commit()
	c.logger.Debug("committed block", "height", c.header.Height, "hash", fmt.Sprintf("%X", id.Hash))
	c.header.Height++
	c.header.Time = c.header.Time.Add(c.cfg.BlockInterval)
}

// Exec runs fn as one transaction in the current block. State and events are
// kept only if fn succeeds; the block is then committed and the invariants checked.
func (c *Chain) Exec(fn func(ctx sdk.Context, k *keeper.Keeper) error) (sdk.Events, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.context()
	cacheCtx, write := ctx.CacheContext()
	if err := fn(cacheCtx, c.ammKeeper); err != nil {
		return nil, err
	}
	if msg, broken := c.invariants.check(cacheCtx); broken {
		return nil, fmt.Errorf("invariant broken at height %d: %s", c.header.Height, msg)
	}
	write()
	c.commit()
	return cacheCtx.EventManager().Events(), nil
}

// Query runs fn against the latest committed state and discards any writes.
func (c *Chain) Query(fn func(ctx sdk.Context, k *keeper.Keeper) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, _ := c.context().CacheContext()
	return fn(ctx, c.ammKeeper)
}

// Bootstrap initializes the factory with setter as fee_to_setter and points
// the router at it.
func (c *Chain) Bootstrap(setter sdk.AccAddress) error {
	_, err := c.Exec(func(ctx sdk.Context, k *keeper.Keeper) error {
		if err := k.Factory().Initialize(ctx, setter, c.cfg.PairCodeTemplate); err != nil {
			return err
		}
		return k.Router().Initialize(ctx, k.Factory().Address())
	})
	return err
}

// Fund mints coins from the faucet to addr.
func (c *Chain) Fund(addr sdk.AccAddress, coins sdk.Coins) error {
	_, err := c.Exec(func(ctx sdk.Context, _ *keeper.Keeper) error {
		if err := c.bankKeeper.MintCoins(ctx, FaucetModuleName, coins); err != nil {
			return err
		}
		return c.bankKeeper.SendCoinsFromModuleToAccount(ctx, FaucetModuleName, addr, coins)
	})
	return err
}

// Send moves coins between two accounts.
func (c *Chain) Send(from, to sdk.AccAddress, coins sdk.Coins) error {
	_, err := c.Exec(func(ctx sdk.Context, _ *keeper.Keeper) error {
		return c.bankKeeper.SendCoins(ctx, from, to, coins)
	})
	return err
}

// Balances returns every balance held by addr.
func (c *Chain) Balances(addr sdk.AccAddress) sdk.Coins {
	var coins sdk.Coins
	_ = c.Query(func(ctx sdk.Context, _ *keeper.Keeper) error {
		coins = c.bankKeeper.GetAllBalances(ctx, addr)
		return nil
	})
	return coins
}

// AdvanceTime moves the block clock forward without producing a block.
func (c *Chain) AdvanceTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header.Time = c.header.Time.Add(d)
}

// BlockTime is the time of the block the next Exec runs in.
func (c *Chain) BlockTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.header.Time
}

// Height is the height of the block the next Exec runs in.
func (c *Chain) Height() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.header.Height
}

// Keeper exposes the amm keeper for callers that manage their own contexts.
func (c *Chain) Keeper() *keeper.Keeper {
	return c.ammKeeper
}

// CheckInvariants runs every registered invariant against the committed state.
func (c *Chain) CheckInvariants() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg, broken := c.invariants.check(c.context()); broken {
		return fmt.Errorf("invariant broken: %s", msg)
	}
	return nil
}

// ExportGenesis exports the amm module state.
func (c *Chain) ExportGenesis() (*types.GenesisState, error) {
	var gs *types.GenesisState
	err := c.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
		var err error
		gs, err = k.ExportGenesis(ctx)
		return err
	})
	return gs, err
}
