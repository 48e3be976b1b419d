package api

import (
	"net/http"

	errorsmod "cosmossdk.io/errors"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// Codespace is the error codespace of the HTTP layer.
const Codespace = "api"

var (
	ErrInvalidRequest = errorsmod.Register(Codespace, 2, "invalid request")
	ErrRateLimited    = errorsmod.Register(Codespace, 3, "rate limit exceeded")
	ErrTimeout        = errorsmod.Register(Codespace, 4, "request timeout")
	ErrInternal       = errorsmod.Register(Codespace, 5, "internal server error")
)

// notFound are the amm codes that mean the requested object does not exist.
var notFound = map[uint32]bool{
	types.ErrPairNotInitialized.ABCICode():       true,
	types.ErrFactoryPairDoesNotExist.ABCICode():  true,
	types.ErrFactoryIndexDoesNotExist.ABCICode(): true,
	types.ErrRouterPairDoesNotExist.ABCICode():   true,
}

// unavailable are the amm codes returned before bootstrap.
var unavailable = map[uint32]bool{
	types.ErrFactoryNotInitialized.ABCICode(): true,
	types.ErrRouterNotInitialized.ABCICode():  true,
}

// httpStatus maps a registered error to a status code.
func httpStatus(codespace string, code uint32) int {
	switch codespace {
	case Codespace:
		switch code {
		case ErrRateLimited.ABCICode():
			return http.StatusTooManyRequests
		case ErrTimeout.ABCICode():
			return http.StatusRequestTimeout
		case ErrInternal.ABCICode():
			return http.StatusInternalServerError
		}
		return http.StatusBadRequest
	case types.ModuleName:
		if notFound[code] {
			return http.StatusNotFound
		}
		if unavailable[code] {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadRequest
	case sdkerrors.RootCodespace:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError writes err as an ErrorResponse and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	codespace, code, msg := errorsmod.ABCIInfo(err, false)
	c.AbortWithStatusJSON(httpStatus(codespace, code), ErrorResponse{
		Error:     msg,
		Codespace: codespace,
		Code:      code,
		RequestID: c.GetString("request_id"),
	})
}
