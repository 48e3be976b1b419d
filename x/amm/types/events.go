package types

// Event types for the amm module
const (
	EventTypeFactoryInitialized = "factory_initialized"
	EventTypeFactoryParamChange = "factory_param_change"
	EventTypePairCreated        = "pair_created"

	EventTypePairDeposit  = "pair_deposit"
	EventTypePairSwap     = "pair_swap"
	EventTypePairWithdraw = "pair_withdraw"
	EventTypePairSync     = "pair_sync"
	EventTypePairSkim     = "pair_skim"
	EventTypeProtocolFee  = "pair_protocol_fee"

	EventTypeRouterInitialized     = "router_initialized"
	EventTypeRouterAddLiquidity    = "router_add_liquidity"
	EventTypeRouterRemoveLiquidity = "router_remove_liquidity"
	EventTypeRouterSwap            = "router_swap"
)

// Event attribute keys
const (
	AttributeKeySetter         = "setter"
	AttributeKeyParam          = "param"
	AttributeKeyValue          = "value"
	AttributeKeyPair           = "pair"
	AttributeKeyToken0         = "token0"
	AttributeKeyToken1         = "token1"
	AttributeKeyNewPairsLength = "new_pairs_length"
	AttributeKeyTo             = "to"
	AttributeKeyAmount0        = "amount0"
	AttributeKeyAmount1        = "amount1"
	AttributeKeyLiquidity      = "liquidity"
	AttributeKeyNewReserve0    = "new_reserve0"
	AttributeKeyNewReserve1    = "new_reserve1"
	AttributeKeyAmount0In      = "amount0_in"
	AttributeKeyAmount1In      = "amount1_in"
	AttributeKeyAmount0Out     = "amount0_out"
	AttributeKeyAmount1Out     = "amount1_out"
	AttributeKeyFactory        = "factory"
	AttributeKeyTokenA         = "token_a"
	AttributeKeyTokenB         = "token_b"
	AttributeKeyAmountA        = "amount_a"
	AttributeKeyAmountB        = "amount_b"
	AttributeKeyPath           = "path"
	AttributeKeyAmounts        = "amounts"
)

// Factory parameter names carried by EventTypeFactoryParamChange
const (
	ParamFeeTo       = "fee_to"
	ParamFeeToSetter = "fee_to_setter"
	ParamFeesEnabled = "fees_enabled"
)
