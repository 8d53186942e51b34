package domain

// CampaignView is the reconciled read model of a campaign: the persisted
// record merged with ledger fees and optional market data. Rebuilt on every
// request, never persisted.
type CampaignView struct {
	Campaign Campaign
	User     *User // attached on the single-campaign path, nil otherwise

	// Raised and Percentage are derived from the ledger fee counters;
	// the store's RaisedLegacy field is never their source.
	Raised     float64
	Percentage float64

	BondingCurve  float64 // defaults to 100 when no market snapshot exists
	GraduatedPool string  // empty means no claimable pool yet

	Market *MarketSnapshot // nil when market data is unavailable

	// FeesUnavailable marks a view whose ledger read failed. Raised and
	// Percentage are zero in that case but must not be presented as real
	// zeros; "no fees yet" has FeesUnavailable=false.
	FeesUnavailable bool
}
