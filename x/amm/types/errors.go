package types

import (
	"cosmossdk.io/errors"
)

// Pair errors (1xx)
var (
	ErrPairAlreadyInitialized              = errors.Register(ModuleName, 101, "pair already initialized")
	ErrPairNotInitialized                  = errors.Register(ModuleName, 102, "pair not initialized")
	ErrPairInvalidTokenOrder               = errors.Register(ModuleName, 103, "token0 must be less than token1")
	ErrDepositInsufficientAmountToken0     = errors.Register(ModuleName, 104, "insufficient amount of token0 sent")
	ErrDepositInsufficientAmountToken1     = errors.Register(ModuleName, 105, "insufficient amount of token1 sent")
	ErrDepositInsufficientFirstLiquidity   = errors.Register(ModuleName, 106, "insufficient first liquidity minted")
	ErrDepositInsufficientLiquidityMinted  = errors.Register(ModuleName, 107, "insufficient liquidity minted")
	ErrSwapInsufficientOutputAmount        = errors.Register(ModuleName, 108, "insufficient output amount")
	ErrSwapNegativesOutNotSupported        = errors.Register(ModuleName, 109, "negative output amounts are not supported")
	ErrSwapInsufficientLiquidity           = errors.Register(ModuleName, 110, "insufficient liquidity")
	ErrSwapInvalidTo                       = errors.Register(ModuleName, 111, "invalid recipient")
	ErrSwapInsufficientInputAmount         = errors.Register(ModuleName, 112, "insufficient input amount")
	ErrSwapNegativesInNotSupported         = errors.Register(ModuleName, 113, "negative input amounts are not supported")
	ErrSwapConstantNotMet                  = errors.Register(ModuleName, 114, "constant product not met")
	ErrWithdrawLiquidityNotInitialized     = errors.Register(ModuleName, 115, "no liquidity shares sent to the pair")
	ErrWithdrawInsufficientSentShares      = errors.Register(ModuleName, 116, "insufficient shares sent")
	ErrWithdrawInsufficientLiquidityBurned = errors.Register(ModuleName, 117, "insufficient liquidity burned")
	ErrPairOverflow                        = errors.Register(ModuleName, 118, "pair arithmetic overflow")
)

// Factory errors (2xx)
var (
	ErrFactoryNotInitialized     = errors.Register(ModuleName, 201, "factory not initialized")
	ErrFactoryIdenticalTokens    = errors.Register(ModuleName, 202, "identical tokens")
	ErrFactoryPairAlreadyExists  = errors.Register(ModuleName, 203, "pair already exists")
	ErrFactoryAlreadyInitialized = errors.Register(ModuleName, 204, "factory already initialized")
	ErrFactoryPairDoesNotExist   = errors.Register(ModuleName, 205, "pair does not exist")
	ErrFactoryIndexDoesNotExist  = errors.Register(ModuleName, 206, "pair index does not exist")
	ErrFactoryUnauthorized       = errors.Register(ModuleName, 207, "caller is not the fee setter")
)

// Library errors (3xx)
var (
	ErrInsufficientAmount       = errors.Register(ModuleName, 301, "insufficient amount")
	ErrInsufficientLiquidity    = errors.Register(ModuleName, 302, "insufficient liquidity")
	ErrInsufficientInputAmount  = errors.Register(ModuleName, 303, "insufficient input amount")
	ErrInsufficientOutputAmount = errors.Register(ModuleName, 304, "insufficient output amount")
	ErrInvalidPath              = errors.Register(ModuleName, 305, "invalid path")
	ErrSortIdenticalTokens      = errors.Register(ModuleName, 306, "cannot sort identical tokens")
	ErrLibraryOverflow          = errors.Register(ModuleName, 307, "library arithmetic overflow")
)

// Router errors (4xx)
var (
	ErrRouterNotInitialized           = errors.Register(ModuleName, 401, "router not initialized")
	ErrRouterNegativeNotAllowed       = errors.Register(ModuleName, 402, "negative amounts are not allowed")
	ErrRouterDeadlineExpired          = errors.Register(ModuleName, 403, "deadline expired")
	ErrRouterAlreadyInitialized       = errors.Register(ModuleName, 404, "router already initialized")
	ErrRouterInsufficientAAmount      = errors.Register(ModuleName, 405, "insufficient a amount")
	ErrRouterInsufficientBAmount      = errors.Register(ModuleName, 406, "insufficient b amount")
	ErrRouterInsufficientOutputAmount = errors.Register(ModuleName, 407, "insufficient output amount")
	ErrRouterExcessiveInputAmount     = errors.Register(ModuleName, 408, "excessive input amount")
	ErrRouterPairDoesNotExist         = errors.Register(ModuleName, 409, "pair does not exist")
)
