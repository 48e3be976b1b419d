package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// ledger adapts the bank keeper to the balance/transfer/mint/burn primitives
// the pair and router work with. LP shares are minted through the module account.
type ledger struct {
	bank types.BankKeeper
}

func (l ledger) balance(ctx context.Context, addr sdk.AccAddress, denom string) math.Int {
	return l.bank.GetBalance(ctx, addr, denom).Amount
}

func (l ledger) supply(ctx context.Context, denom string) math.Int {
	return l.bank.GetSupply(ctx, denom).Amount
}

func (l ledger) transfer(ctx context.Context, from, to sdk.AccAddress, denom string, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := l.bank.SendCoins(ctx, from, to, sdk.NewCoins(sdk.NewCoin(denom, amount))); err != nil {
		return errorsmod.Wrapf(err, "transfer %s%s from %s to %s", amount, denom, from, to)
	}
	return nil
}

func (l ledger) mint(ctx context.Context, to sdk.AccAddress, denom string, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, amount))
	if err := l.bank.MintCoins(ctx, types.ModuleName, coins); err != nil {
		return errorsmod.Wrapf(err, "mint %s", coins)
	}
	if err := l.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, to, coins); err != nil {
		return errorsmod.Wrapf(err, "send minted %s to %s", coins, to)
	}
	return nil
}

func (l ledger) burn(ctx context.Context, from sdk.AccAddress, denom string, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, amount))
	if err := l.bank.SendCoinsFromAccountToModule(ctx, from, types.ModuleName, coins); err != nil {
		return errorsmod.Wrapf(err, "collect %s from %s for burn", coins, from)
	}
	if err := l.bank.BurnCoins(ctx, types.ModuleName, coins); err != nil {
		return errorsmod.Wrapf(err, "burn %s", coins)
	}
	return nil
}

// symbol returns the registered display symbol of a denom, falling back to the denom.
func (l ledger) symbol(ctx context.Context, denom string) string {
	if md, found := l.bank.GetDenomMetaData(ctx, denom); found && md.Symbol != "" {
		return md.Symbol
	}
	return denom
}
