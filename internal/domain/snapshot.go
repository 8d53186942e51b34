package domain

// QuoteFeeScale is the fixed-point scale of the quote-side fee counter:
// units per one quote currency unit. It is part of the ledger contract;
// changing it changes every campaign's reported raised amount.
const QuoteFeeScale = 1_000_000

// FeeSnapshot holds the accumulated trading-fee counters of a campaign's
// bonding-curve pool, as read from the ledger. Fetched per request,
// never persisted.
type FeeSnapshot struct {
	BaseFee  uint64 // base-mint fees, whole token units
	QuoteFee uint64 // quote-mint fees, fixed-point at QuoteFeeScale
}

// Total returns the combined fees in quote currency units.
func (f FeeSnapshot) Total() float64 {
	return float64(f.BaseFee) + float64(f.QuoteFee)/QuoteFeeScale
}

// MarketSnapshot holds one token's trading-pool stats from the market-data
// service. Absence of a snapshot for a token is a normal state, not an error.
type MarketSnapshot struct {
	PoolID        string
	Volume24h     float64
	Buys24h       int64
	Sells24h      int64
	PriceChange   float64 // 24h price change
	Liquidity     float64
	MarketCap     float64
	BondingCurve  *float64 // 0-100 completion; nil means graduated/untracked
	GraduatedPool string   // post-graduation pool address, empty if none
}

// Trades24h returns the combined 24h buy and sell count.
func (m MarketSnapshot) Trades24h() int64 {
	return m.Buys24h + m.Sells24h
}
