package dto

// GetPortfoliosParam filters portfolio lookups.
type GetPortfoliosParam struct {
	IDs    []uint `json:"ids"`
	UserID *uint  `json:"user_id"`
}

// GetPositionsParam filters position lookups.
type GetPositionsParam struct {
	IDs          []uint   `json:"ids"`
	PortfolioIDs []uint   `json:"portfolio_ids"`
	Tickers      []string `json:"tickers"`
}
