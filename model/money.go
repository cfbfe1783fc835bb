package model

import "github.com/shopspring/decimal"

// Prices, subtotals and totals go out as JSON numbers, e.g. "total_price":20.5.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
