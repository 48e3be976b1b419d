package types

import (
	"fmt"

	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
)

const lpSymbolLen = 6

func truncateSymbol(symbol string) string {
	r := []rune(symbol)
	if len(r) > lpSymbolLen {
		r = r[:lpSymbolLen]
	}
	return string(r)
}

// LPSymbol joins the first six characters of each underlying symbol.
func LPSymbol(symbol0, symbol1 string) string {
	return fmt.Sprintf("%s-%s-PAW-LP", truncateSymbol(symbol0), truncateSymbol(symbol1))
}

// LPName is the human readable counterpart of LPSymbol.
func LPName(symbol0, symbol1 string) string {
	return fmt.Sprintf("%s-%s PAW LP Token", truncateSymbol(symbol0), truncateSymbol(symbol1))
}

// NewLPMetadata builds the bank metadata registered for a pair's LP denom.
func NewLPMetadata(lpDenom, symbol0, symbol1 string) banktypes.Metadata {
	symbol := LPSymbol(symbol0, symbol1)
	return banktypes.Metadata{
		Description: fmt.Sprintf("liquidity shares of the %s/%s pair", symbol0, symbol1),
		DenomUnits: []*banktypes.DenomUnit{
			{Denom: lpDenom, Exponent: 0},
			{Denom: symbol, Exponent: LPDecimals},
		},
		Base:    lpDenom,
		Display: symbol,
		Name:    LPName(symbol0, symbol1),
		Symbol:  symbol,
	}
}
