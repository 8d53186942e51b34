package market

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
)

const poolsBody = `{
  "pools": [
    {
      "id": "pool-aaa",
      "liquidity": 12500.5,
      "volume24h": 340.75,
      "bondingCurve": 42.7,
      "baseAsset": {
        "id": "MintAAA",
        "mcap": 98000,
        "graduatedPool": "",
        "stats24h": {"numBuys": 12, "numSells": 3, "priceChange": -4.2, "buyVolume": 210.5}
      }
    },
    {
      "id": "pool-bbb",
      "liquidity": 900000,
      "volume24h": 0,
      "bondingCurve": "graduated",
      "baseAsset": {
        "id": "MintBBB",
        "mcap": 4500000,
        "graduatedPool": "GradPoolXYZ",
        "stats24h": {"numBuys": 800, "numSells": 650, "priceChange": 12.1, "buyVolume": 55000}
      }
    }
  ]
}`

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFetchBatchParsesPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("assetIds"); got != "MintAAA,MintBBB" {
			t.Errorf("assetIds = %q, want %q", got, "MintAAA,MintBBB")
		}
		w.Write([]byte(poolsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	snapshots := c.FetchBatch(context.Background(), []string{"MintAAA", "MintBBB"})

	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snapshots))
	}

	a, ok := snapshots["MintAAA"]
	if !ok {
		t.Fatal("missing snapshot for MintAAA")
	}
	if a.PoolID != "pool-aaa" {
		t.Errorf("PoolID = %q, want pool-aaa", a.PoolID)
	}
	if a.BondingCurve == nil || *a.BondingCurve != 42.7 {
		t.Errorf("BondingCurve = %v, want 42.7", a.BondingCurve)
	}
	if a.Buys24h != 12 || a.Sells24h != 3 {
		t.Errorf("trades = %d/%d, want 12/3", a.Buys24h, a.Sells24h)
	}
	if a.Volume24h != 340.75 {
		t.Errorf("Volume24h = %v, want 340.75", a.Volume24h)
	}

	b := snapshots["MintBBB"]
	if b.BondingCurve != nil {
		t.Errorf("graduated pool should have nil BondingCurve, got %v", *b.BondingCurve)
	}
	if b.GraduatedPool != "GradPoolXYZ" {
		t.Errorf("GraduatedPool = %q, want GradPoolXYZ", b.GraduatedPool)
	}
	if b.Volume24h != 55000 {
		t.Errorf("Volume24h fallback = %v, want buyVolume 55000", b.Volume24h)
	}
}

func TestFetchBatchAbsentMintTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pools": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	snapshots := c.FetchBatch(context.Background(), []string{"Unknown"})
	if len(snapshots) != 0 {
		t.Fatalf("got %d snapshots, want 0", len(snapshots))
	}
}

func TestFetchBatchServerErrorIsBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	snapshots := c.FetchBatch(context.Background(), []string{"MintAAA"})
	if snapshots == nil {
		t.Fatal("expected non-nil empty map on server error")
	}
	if len(snapshots) != 0 {
		t.Fatalf("got %d snapshots, want 0", len(snapshots))
	}
}

func TestFetchBatchDecodeErrorIsBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	snapshots := c.FetchBatch(context.Background(), []string{"MintAAA"})
	if len(snapshots) != 0 {
		t.Fatalf("got %d snapshots, want 0", len(snapshots))
	}
}

func TestFetchBatchEmptyInput(t *testing.T) {
	c := NewClient("http://unreachable.invalid", testLogger())
	snapshots := c.FetchBatch(context.Background(), nil)
	if len(snapshots) != 0 {
		t.Fatalf("got %d snapshots, want 0", len(snapshots))
	}
}

func TestFetchOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(poolsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	s, ok := c.FetchOne(context.Background(), "MintAAA")
	if !ok {
		t.Fatal("expected snapshot for MintAAA")
	}
	if s.MarketCap != 98000 {
		t.Errorf("MarketCap = %v, want 98000", s.MarketCap)
	}

	_, ok = c.FetchOne(context.Background(), "Nope")
	if ok {
		t.Error("expected no snapshot for unknown mint")
	}
}
