package models

// Position is one holding of the simulated portfolio.
type Position struct {
	Ticker string  `json:"ticker" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0,lte=1"`
}

// AssetParams are the daily drift and volatility of a single asset.
type AssetParams struct {
	Mean float64 `json:"mean"`
	Vol  float64 `json:"vol"`
}

// GenericAssetParams apply to tickers missing from both the default table and
// the caller overrides.
var GenericAssetParams = AssetParams{Mean: 0.0003, Vol: 0.015}

// AssetTable maps upper-cased tickers to their parameters.
type AssetTable map[string]AssetParams

var defaultAssetParams = AssetTable{
	"SPY":   {Mean: 0.0004, Vol: 0.012},
	"VTI":   {Mean: 0.0004, Vol: 0.012},
	"VOO":   {Mean: 0.0004, Vol: 0.012},
	"QQQ":   {Mean: 0.0005, Vol: 0.016},
	"IWM":   {Mean: 0.0004, Vol: 0.017},
	"EFA":   {Mean: 0.0003, Vol: 0.013},
	"BND":   {Mean: 0.0001, Vol: 0.003},
	"AGG":   {Mean: 0.0001, Vol: 0.003},
	"TLT":   {Mean: 0.0001, Vol: 0.009},
	"GLD":   {Mean: 0.0002, Vol: 0.010},
	"VNQ":   {Mean: 0.0003, Vol: 0.015},
	"AAPL":  {Mean: 0.0006, Vol: 0.018},
	"MSFT":  {Mean: 0.0006, Vol: 0.017},
	"GOOGL": {Mean: 0.0005, Vol: 0.019},
	"AMZN":  {Mean: 0.0006, Vol: 0.021},
	"META":  {Mean: 0.0006, Vol: 0.024},
	"NVDA":  {Mean: 0.0010, Vol: 0.030},
	"TSLA":  {Mean: 0.0008, Vol: 0.035},
}

// DefaultAssetParams returns the shared built-in table. Callers must treat it
// as read-only and use Merge to derive a run-specific table.
func DefaultAssetParams() AssetTable { return defaultAssetParams }

// Lookup returns the parameters for ticker, falling back to GenericAssetParams.
func (t AssetTable) Lookup(ticker string) AssetParams {
	if p, ok := t[NormalizeTicker(ticker)]; ok {
		return p
	}
	return GenericAssetParams
}

// Merge returns a new table holding t overlaid with overrides. Neither input
// is modified.
func (t AssetTable) Merge(overrides map[string]AssetParams) AssetTable {
	out := make(AssetTable, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[NormalizeTicker(k)] = v
	}
	return out
}
