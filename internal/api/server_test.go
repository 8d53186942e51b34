package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"curvefund/internal/domain"
	"curvefund/internal/ledger"
	"curvefund/internal/reconcile"
	"curvefund/internal/storage/memory"
)

type stubFees struct {
	snapshots map[string]domain.FeeSnapshot
	err       error
}

func (s *stubFees) FetchFees(_ context.Context, mint string) (domain.FeeSnapshot, error) {
	if s.err != nil {
		return domain.FeeSnapshot{}, s.err
	}
	return s.snapshots[mint], nil
}

type stubMarket struct {
	snapshots map[string]domain.MarketSnapshot
}

func (s *stubMarket) FetchBatch(_ context.Context, mints []string) map[string]domain.MarketSnapshot {
	out := make(map[string]domain.MarketSnapshot)
	for _, m := range mints {
		if snap, ok := s.snapshots[m]; ok {
			out[m] = snap
		}
	}
	return out
}

type testEnv struct {
	handler   *Handler
	campaigns *memory.CampaignStore
	users     *memory.UserStore
	fees      *stubFees
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	campaigns := memory.NewCampaignStore()
	users := memory.NewUserStore()
	fees := &stubFees{snapshots: map[string]domain.FeeSnapshot{}}
	logger := log.New(io.Discard, "", 0)

	svc, err := reconcile.NewService(reconcile.Options{
		CampaignStore: campaigns,
		UserStore:     users,
		FeeFetcher:    fees,
		MarketFetcher: &stubMarket{},
		HistoryStore:  memory.NewProgressHistoryStore(),
		Logger:        logger,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return &testEnv{
		handler:   NewHandler(campaigns, users, svc, logger),
		campaigns: campaigns,
		users:     users,
		fees:      fees,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.handler.Router().ServeHTTP(rec, req)
	return rec
}

func TestCreateCampaign(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/campaigns", map[string]interface{}{
		"userId": "u1",
		"name":   "Clean Water",
		"goal":   1000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var got campaignRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" {
		t.Error("expected generated id")
	}
	if got.Status != string(domain.StatusDrafted) {
		t.Errorf("Status = %q, want DRAFTED default", got.Status)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}
}

func TestCreateCampaignInvalidGoal(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/campaigns", map[string]interface{}{
		"userId": "u1",
		"name":   "Bad",
		"goal":   0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateCampaignDuplicateMint(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"userId": "u1", "name": "One", "goal": 100, "tokenMint": "MintA",
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/campaigns", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	body["name"] = "Two"
	if rec := env.do(t, http.MethodPost, "/api/v1/campaigns", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate mint status = %d, want 409", rec.Code)
	}
}

func TestGetCampaignReconciled(t *testing.T) {
	env := newTestEnv(t)
	c, err := env.campaigns.Create(context.Background(), &domain.Campaign{
		ID: "c1", UserID: "u1", Name: "Water", TokenMint: "MintA", Goal: 1000,
		Status: domain.StatusSuccess,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.fees.snapshots["MintA"] = domain.FeeSnapshot{BaseFee: 50, QuoteFee: 2_000_000}

	rec := env.do(t, http.MethodGet, "/api/v1/campaigns/"+c.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var got reconcile.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Raised != 52 || got.Percentage != 5.2 {
		t.Errorf("Raised/Percentage = %v/%v, want 52/5.2", got.Raised, got.Percentage)
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/campaigns/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetCampaignLedgerOutage(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.campaigns.Create(context.Background(), &domain.Campaign{
		ID: "c1", UserID: "u1", Name: "Water", TokenMint: "MintA", Goal: 1000,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.fees.err = ledger.ErrLedgerUnavailable

	rec := env.do(t, http.MethodGet, "/api/v1/campaigns/c1", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if want := "fee data unavailable"; !bytes.Contains(rec.Body.Bytes(), []byte(want)) {
		t.Errorf("body %q does not contain %q", rec.Body, want)
	}
}

func TestUpdateCampaign(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.campaigns.Create(context.Background(), &domain.Campaign{
		ID: "c1", UserID: "u1", Name: "Old", Goal: 100,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := env.do(t, http.MethodPatch, "/api/v1/campaigns/c1", map[string]interface{}{
		"name": "New", "status": "SUCCESS",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got campaignRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "New" || got.Status != "SUCCESS" {
		t.Errorf("got %q/%q, want New/SUCCESS", got.Name, got.Status)
	}
}

func TestUpdateCampaignInvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPatch, "/api/v1/campaigns/c1", map[string]interface{}{
		"status": "LAUNCHED",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteCampaignIdempotent(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.campaigns.Create(context.Background(), &domain.Campaign{
		ID: "c1", UserID: "u1", Name: "Water", Goal: 100,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if rec := env.do(t, http.MethodDelete, "/api/v1/campaigns/c1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("first delete = %d, want 204", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/v1/campaigns/c1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("second delete = %d, want 204", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/campaigns/c1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/v1/campaigns/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown = %d, want 404", rec.Code)
	}
}

func TestListCampaignsFilters(t *testing.T) {
	env := newTestEnv(t)
	seed := []*domain.Campaign{
		{ID: "c1", UserID: "u1", Name: "A", Goal: 1, CategoryID: "cat1", Status: domain.StatusSuccess},
		{ID: "c2", UserID: "u2", Name: "B", Goal: 1, CategoryID: "cat1"},
		{ID: "c3", UserID: "u1", Name: "C", Goal: 1, CategoryID: "cat2"},
	}
	for _, c := range seed {
		if _, err := env.campaigns.Create(context.Background(), c); err != nil {
			t.Fatalf("seed %s: %v", c.ID, err)
		}
	}

	var got []campaignRecord
	rec := env.do(t, http.MethodGet, "/api/v1/campaigns?userId=u1", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("userId filter: %d records, want 2", len(got))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/campaigns?categoryId=cat1&status=SUCCESS", nil)
	got = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("combined filter: %+v, want [c1]", got)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/campaigns?status=BOGUS", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status filter = %d, want 400", rec.Code)
	}
}

func TestLiveCampaigns(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.campaigns.Create(context.Background(), &domain.Campaign{
		ID: "c1", UserID: "u1", Name: "Water", TokenMint: "MintA", Goal: 1000,
		Status: domain.StatusSuccess,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.fees.snapshots["MintA"] = domain.FeeSnapshot{BaseFee: 100}

	rec := env.do(t, http.MethodGet, "/api/v1/campaigns/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got []reconcile.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Raised != 100 {
		t.Fatalf("got %+v, want one item with Raised 100", got)
	}
}

func TestUsersEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"username": "alice", "walletAddress": "Wallet1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user = %d: %s", rec.Code, rec.Body)
	}
	var created userRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing user = %d, want 404", rec.Code)
	}
}

func TestCampaignHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.campaigns.Create(context.Background(), &domain.Campaign{
		ID: "c1", UserID: "u1", Name: "Water", TokenMint: "MintA", Goal: 1000,
		Status: domain.StatusSuccess,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.fees.snapshots["MintA"] = domain.FeeSnapshot{BaseFee: 10}

	// A live read populates the history sink.
	if rec := env.do(t, http.MethodGet, "/api/v1/campaigns/live", nil); rec.Code != http.StatusOK {
		t.Fatalf("live = %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/campaigns/c1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history = %d: %s", rec.Code, rec.Body)
	}
	var points []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/campaigns/c1/history?from=bogus", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad from = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/campaigns/nope/history", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown campaign = %d, want 404", rec.Code)
	}
}
