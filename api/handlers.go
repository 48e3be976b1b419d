package api

import (
	"net/http"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

// handleGetFactory returns the factory configuration
func (s *Server) handleGetFactory(c *gin.Context) {
	var resp FactoryResponse
	err := s.chain.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
		state, err := k.Factory().State(ctx)
		if err != nil {
			return err
		}
		resp = FactoryResponse{Address: k.Factory().Address().String(), FactoryState: state}
		if factory, err := k.Router().GetFactory(ctx); err == nil {
			resp.Router = factory.String()
		}
		return nil
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func pairResponse(ctx sdk.Context, k *keeper.Keeper, addr sdk.AccAddress) (PairResponse, error) {
	p, err := k.Pair().Get(ctx, addr)
	if err != nil {
		return PairResponse{}, err
	}
	supply, err := k.Pair().LPTotalSupply(ctx, addr)
	if err != nil {
		return PairResponse{}, err
	}
	return PairResponse{Pair: p, LPDenom: types.LPDenom(addr), LPSupply: supply}, nil
}

// handleGetPairs returns a page of pairs in creation order
func (s *Server) handleGetPairs(c *gin.Context) {
	offset, err := parseUint("offset", c.Query("offset"), 0)
	if err != nil {
		abortWithError(c, err)
		return
	}
	limit, err := parseUint("limit", c.Query("limit"), uint64(s.config.MaxPageSize))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if limit == 0 || limit > uint64(s.config.MaxPageSize) {
		limit = uint64(s.config.MaxPageSize)
	}

	resp := PairsResponse{Pairs: []PairResponse{}, Offset: offset}
	err = s.chain.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
		total, err := k.Factory().AllPairsLength(ctx)
		if err != nil {
			return err
		}
		resp.Total = total
		for i := offset; i < total && uint64(len(resp.Pairs)) < limit; i++ {
			addr, err := k.Factory().AllPairs(ctx, i)
			if err != nil {
				return err
			}
			p, err := pairResponse(ctx, k, addr)
			if err != nil {
				return err
			}
			resp.Pairs = append(resp.Pairs, p)
		}
		return nil
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetPairByIndex returns the n-th created pair
func (s *Server) handleGetPairByIndex(c *gin.Context) {
	index, err := parseUint("index", c.Param("index"), 0)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var resp PairResponse
	err = s.chain.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
		addr, err := k.Factory().AllPairs(ctx, index)
		if err != nil {
			return err
		}
		resp, err = pairResponse(ctx, k, addr)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetPair returns the pair at an address
func (s *Server) handleGetPair(c *gin.Context) {
	addr, err := parseAddress("address", c.Param("address"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var resp PairResponse
	err = s.chain.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
		resp, err = pairResponse(ctx, k, addr)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handlePairFor derives the pair address for token_a/token_b through the router
func (s *Server) handlePairFor(c *gin.Context) {
	tokenA, tokenB := c.Query("token_a"), c.Query("token_b")

	var resp PairForResponse
	err := s.chain.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
		token0, token1, err := types.SortTokens(tokenA, tokenB)
		if err != nil {
			return err
		}
		addr, err := k.Router().RouterPairFor(ctx, tokenA, tokenB)
		if err != nil {
			return err
		}
		exists, err := k.Factory().PairExists(ctx, tokenA, tokenB)
		if err != nil {
			return err
		}
		resp = PairForResponse{Address: addr.String(), Token0: token0, Token1: token1, Exists: exists}
		return nil
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type quoteFunc func(ctx sdk.Context, k *keeper.Keeper, amount math.Int, path []string) ([]math.Int, error)

func (s *Server) handleQuote(c *gin.Context, quote quoteFunc) {
	amount, err := parseAmount("amount", c.Query("amount"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	path, err := parsePath(c.Query("path"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var amounts []math.Int
	err = s.chain.Query(func(ctx sdk.Context, k *keeper.Keeper) error {
		amounts, err = quote(ctx, k, amount, path)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, QuoteResponse{Path: path, Amounts: amounts})
}

// handleQuoteAmountsOut quotes an exact input along a path
func (s *Server) handleQuoteAmountsOut(c *gin.Context) {
	s.handleQuote(c, func(ctx sdk.Context, k *keeper.Keeper, amount math.Int, path []string) ([]math.Int, error) {
		return k.Router().RouterGetAmountsOut(ctx, amount, path)
	})
}

// handleQuoteAmountsIn quotes the inputs for an exact output along a path
func (s *Server) handleQuoteAmountsIn(c *gin.Context) {
	s.handleQuote(c, func(ctx sdk.Context, k *keeper.Keeper, amount math.Int, path []string) ([]math.Int, error) {
		return k.Router().RouterGetAmountsIn(ctx, amount, path)
	})
}

// handleGetBalances returns every balance held by an address
func (s *Server) handleGetBalances(c *gin.Context) {
	addr, err := parseAddress("address", c.Param("address"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	balances := s.chain.Balances(addr)
	if balances == nil {
		balances = sdk.Coins{}
	}
	c.JSON(http.StatusOK, BalancesResponse{Address: addr.String(), Balances: balances})
}
