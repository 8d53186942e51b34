package reconcile

import (
	"testing"

	"curvefund/internal/domain"
)

func TestReconcileComputesPercentage(t *testing.T) {
	c := domain.Campaign{ID: "c1", Goal: 1000}
	fees := &domain.FeeSnapshot{BaseFee: 50, QuoteFee: 2_000_000}

	view := Reconcile(c, fees, nil)

	if view.Raised != 52 {
		t.Errorf("Raised = %v, want 52", view.Raised)
	}
	if view.Percentage != 5.2 {
		t.Errorf("Percentage = %v, want 5.2", view.Percentage)
	}
	if view.FeesUnavailable {
		t.Error("FeesUnavailable should be false")
	}
}

func TestReconcilePercentageUnclamped(t *testing.T) {
	c := domain.Campaign{ID: "c1", Goal: 100}
	fees := &domain.FeeSnapshot{BaseFee: 250}

	view := Reconcile(c, fees, nil)

	if view.Percentage != 250 {
		t.Errorf("Percentage = %v, want 250 (no clamping)", view.Percentage)
	}
}

func TestReconcileNonPositiveGoal(t *testing.T) {
	fees := &domain.FeeSnapshot{BaseFee: 50}

	for _, goal := range []float64{0, -10} {
		view := Reconcile(domain.Campaign{ID: "c1", Goal: goal}, fees, nil)
		if view.Percentage != 0 {
			t.Errorf("goal %v: Percentage = %v, want 0", goal, view.Percentage)
		}
		if view.Raised != 50 {
			t.Errorf("goal %v: Raised = %v, want 50", goal, view.Raised)
		}
	}
}

func TestReconcileRoundsToTwoDecimals(t *testing.T) {
	c := domain.Campaign{ID: "c1", Goal: 3}
	fees := &domain.FeeSnapshot{BaseFee: 1} // 1/3*100 = 33.333...

	view := Reconcile(c, fees, nil)

	if view.Percentage != 33.33 {
		t.Errorf("Percentage = %v, want 33.33", view.Percentage)
	}
}

func TestReconcileZeroFeesIsRealZero(t *testing.T) {
	c := domain.Campaign{ID: "c1", Goal: 1000}

	view := Reconcile(c, &domain.FeeSnapshot{}, nil)

	if view.FeesUnavailable {
		t.Error("zero fees must not be marked unavailable")
	}
	if view.Raised != 0 || view.Percentage != 0 {
		t.Errorf("Raised/Percentage = %v/%v, want 0/0", view.Raised, view.Percentage)
	}
}

func TestReconcileNilFeesIsDegraded(t *testing.T) {
	c := domain.Campaign{ID: "c1", Goal: 1000}

	view := Reconcile(c, nil, nil)

	if !view.FeesUnavailable {
		t.Error("nil fees must set FeesUnavailable")
	}
	if view.Raised != 0 || view.Percentage != 0 {
		t.Errorf("degraded view must zero Raised/Percentage, got %v/%v", view.Raised, view.Percentage)
	}
}

func TestReconcileBondingCurveDefault(t *testing.T) {
	c := domain.Campaign{ID: "c1", Goal: 1000}
	fees := &domain.FeeSnapshot{}

	view := Reconcile(c, fees, nil)
	if view.BondingCurve != DefaultBondingCurve {
		t.Errorf("no market: BondingCurve = %v, want %v", view.BondingCurve, DefaultBondingCurve)
	}

	// Tracked market without a curve value also keeps the default.
	view = Reconcile(c, fees, &domain.MarketSnapshot{PoolID: "p"})
	if view.BondingCurve != DefaultBondingCurve {
		t.Errorf("nil curve: BondingCurve = %v, want %v", view.BondingCurve, DefaultBondingCurve)
	}

	curve := 37.5
	view = Reconcile(c, fees, &domain.MarketSnapshot{BondingCurve: &curve})
	if view.BondingCurve != 37.5 {
		t.Errorf("BondingCurve = %v, want 37.5", view.BondingCurve)
	}
}

func TestReconcileGraduatedPool(t *testing.T) {
	c := domain.Campaign{ID: "c1", Goal: 1000}
	fees := &domain.FeeSnapshot{}

	view := Reconcile(c, fees, nil)
	if view.GraduatedPool != "" {
		t.Errorf("GraduatedPool = %q, want empty", view.GraduatedPool)
	}

	view = Reconcile(c, fees, &domain.MarketSnapshot{GraduatedPool: "GradXYZ"})
	if view.GraduatedPool != "GradXYZ" {
		t.Errorf("GraduatedPool = %q, want GradXYZ", view.GraduatedPool)
	}
}
