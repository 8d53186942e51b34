// Package reconcile computes the live funding state of campaigns by merging
// the persisted record with ledger fee counters and market pool data.
package reconcile

import (
	"math"

	"curvefund/internal/domain"
)

// DefaultBondingCurve is reported when no market snapshot tracks the pool.
// A pool that exists but is untracked is treated as fully bonded rather
// than at zero, so a missing tracker never resets visible progress.
const DefaultBondingCurve = 100

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Reconcile derives the read model for one campaign. fees and market may
// be nil; a nil fees means the ledger could not be read and the view is
// marked degraded rather than reported as zero progress.
func Reconcile(c domain.Campaign, fees *domain.FeeSnapshot, market *domain.MarketSnapshot) domain.CampaignView {
	view := domain.CampaignView{
		Campaign:     c,
		BondingCurve: DefaultBondingCurve,
		Market:       market,
	}

	if fees == nil {
		view.FeesUnavailable = true
	} else {
		view.Raised = fees.Total()
		if c.Goal > 0 {
			view.Percentage = round2(view.Raised / c.Goal * 100)
		}
	}

	if market != nil {
		if market.BondingCurve != nil {
			view.BondingCurve = *market.BondingCurve
		}
		view.GraduatedPool = market.GraduatedPool
	}

	return view
}
