package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/factory", s.handleGetFactory)

		pairs := api.Group("/pairs")
		{
			pairs.GET("", s.handleGetPairs)
			pairs.GET("/:index", s.handleGetPairByIndex)
		}
		api.GET("/pair/:address", s.handleGetPair)
		api.GET("/pair-for", s.handlePairFor)

		quote := api.Group("/quote")
		{
			quote.GET("/amounts-out", s.handleQuoteAmountsOut)
			quote.GET("/amounts-in", s.handleQuoteAmountsIn)
		}

		api.GET("/balances/:address", s.handleGetBalances)
	}
}
