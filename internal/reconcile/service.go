package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"curvefund/internal/domain"
	"curvefund/internal/ledger"
	"curvefund/internal/observability"
	"curvefund/internal/storage"
)

// DefaultLedgerConcurrency bounds parallel fee fetches in a batch run.
const DefaultLedgerConcurrency = 8

// DefaultFetchTimeout bounds one external fetch when no timeout is configured.
const DefaultFetchTimeout = 15 * time.Second

// FeeFetcher reads accumulated pool fees for a token mint.
type FeeFetcher interface {
	FetchFees(ctx context.Context, tokenMint string) (domain.FeeSnapshot, error)
}

// MarketFetcher provides best-effort market snapshots for token mints.
type MarketFetcher interface {
	FetchBatch(ctx context.Context, mints []string) map[string]domain.MarketSnapshot
}

// Service reconciles persisted campaigns against the ledger and market data.
type Service struct {
	campaigns storage.CampaignStore
	users     storage.UserStore
	history   storage.ProgressHistoryStore
	fees      FeeFetcher
	market    MarketFetcher

	ledgerConcurrency int
	ledgerTimeout     time.Duration
	marketTimeout     time.Duration

	logger *log.Logger
}

// Options for creating a Service.
type Options struct {
	// Required stores and fetchers
	CampaignStore storage.CampaignStore
	UserStore     storage.UserStore
	FeeFetcher    FeeFetcher
	MarketFetcher MarketFetcher

	// Optional analytics sink; batch results are appended when set.
	HistoryStore storage.ProgressHistoryStore

	// Tuning; zero values take the package defaults.
	LedgerConcurrency int
	LedgerTimeout     time.Duration
	MarketTimeout     time.Duration

	Logger *log.Logger
}

// NewService creates a reconciliation service.
func NewService(opts Options) (*Service, error) {
	if opts.CampaignStore == nil {
		return nil, errors.New("campaign store is required")
	}
	if opts.FeeFetcher == nil {
		return nil, errors.New("fee fetcher is required")
	}
	if opts.MarketFetcher == nil {
		return nil, errors.New("market fetcher is required")
	}
	if opts.LedgerConcurrency <= 0 {
		opts.LedgerConcurrency = DefaultLedgerConcurrency
	}
	if opts.LedgerTimeout <= 0 {
		opts.LedgerTimeout = DefaultFetchTimeout
	}
	if opts.MarketTimeout <= 0 {
		opts.MarketTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Service{
		campaigns:         opts.CampaignStore,
		users:             opts.UserStore,
		history:           opts.HistoryStore,
		fees:              opts.FeeFetcher,
		market:            opts.MarketFetcher,
		ledgerConcurrency: opts.LedgerConcurrency,
		ledgerTimeout:     opts.LedgerTimeout,
		marketTimeout:     opts.MarketTimeout,
		logger:            opts.Logger,
	}, nil
}

// Get reconciles a single campaign by id. The ledger and market fetches
// run concurrently once the record is loaded. A ledger outage is an error
// here: the single-campaign path never reports zero in place of unknown.
func (s *Service) Get(ctx context.Context, id string) (*domain.CampaignView, error) {
	started := time.Now()

	campaign, err := s.campaigns.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		fees     domain.FeeSnapshot
		feesErr  error
		snapshot *domain.MarketSnapshot
	)

	if campaign.TokenMint != "" {
		wg.Add(2)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
			defer cancel()
			fees, feesErr = s.fees.FetchFees(fctx, campaign.TokenMint)
		}()
		go func() {
			defer wg.Done()
			mctx, cancel := context.WithTimeout(ctx, s.marketTimeout)
			defer cancel()
			if m, ok := s.market.FetchBatch(mctx, []string{campaign.TokenMint})[campaign.TokenMint]; ok {
				snapshot = &m
			}
		}()
		wg.Wait()
	}

	if feesErr != nil {
		observability.RecordReconcileRun("single", "error", time.Since(started).Seconds())
		return nil, fmt.Errorf("reconcile campaign %s: %w", id, feesErr)
	}

	view := Reconcile(*campaign, &fees, snapshot)

	if s.users != nil && campaign.UserID != "" {
		user, err := s.users.GetByID(ctx, campaign.UserID)
		if err == nil {
			view.User = user
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load campaign owner: %w", err)
		}
	}

	observability.RecordReconcileRun("single", "ok", time.Since(started).Seconds())
	return &view, nil
}

// ReconcileAll reconciles every successful campaign that has a token mint.
// One market batch covers all mints; fee fetches fan out under a bounded
// semaphore. A single campaign's ledger failure degrades that item only.
// Results keep the store's listing order.
func (s *Service) ReconcileAll(ctx context.Context) ([]domain.CampaignView, error) {
	started := time.Now()

	campaigns, err := s.campaigns.ListActive(ctx, storage.CampaignFilter{Status: domain.StatusSuccess})
	if err != nil {
		observability.RecordReconcileRun("batch", "error", time.Since(started).Seconds())
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	listed := campaigns[:0]
	for _, c := range campaigns {
		if c.TokenMint != "" {
			listed = append(listed, c)
		}
	}
	if len(listed) == 0 {
		observability.RecordReconcileRun("batch", "ok", time.Since(started).Seconds())
		return []domain.CampaignView{}, nil
	}

	mints := make([]string, len(listed))
	for i, c := range listed {
		mints[i] = c.TokenMint
	}

	mctx, cancel := context.WithTimeout(ctx, s.marketTimeout)
	snapshots := s.market.FetchBatch(mctx, mints)
	cancel()

	views := make([]domain.CampaignView, len(listed))
	sem := make(chan struct{}, s.ledgerConcurrency)
	var wg sync.WaitGroup

	for i, c := range listed {
		wg.Add(1)
		go func(i int, c *domain.Campaign) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var market *domain.MarketSnapshot
			if m, ok := snapshots[c.TokenMint]; ok {
				market = &m
			}

			fctx, fcancel := context.WithTimeout(ctx, s.ledgerTimeout)
			fees, err := s.fees.FetchFees(fctx, c.TokenMint)
			fcancel()
			if err != nil {
				s.logger.Printf("reconcile: fees for campaign %s (mint %s): %v", c.ID, c.TokenMint, err)
				if errors.Is(err, ledger.ErrLedgerUnavailable) {
					observability.DefaultMetrics.ReconcileItemErrors.WithLabelValues("ledger").Inc()
				} else {
					observability.DefaultMetrics.ReconcileItemErrors.WithLabelValues("other").Inc()
				}
				views[i] = Reconcile(*c, nil, market)
				return
			}

			views[i] = Reconcile(*c, &fees, market)
		}(i, c)
	}
	wg.Wait()

	observability.DefaultMetrics.CampaignsReconciled.Add(float64(len(views)))
	s.appendHistory(ctx, views)

	observability.RecordReconcileRun("batch", "ok", time.Since(started).Seconds())
	return views, nil
}

// History returns progress observations for a campaign in [start, end].
func (s *Service) History(ctx context.Context, campaignID string, start, end time.Time) ([]storage.ProgressPoint, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.GetByCampaignID(ctx, campaignID, start, end)
}

// appendHistory records non-degraded batch results. Analytics writes are
// best-effort; a sink failure is logged and never fails the run.
func (s *Service) appendHistory(ctx context.Context, views []domain.CampaignView) {
	if s.history == nil {
		return
	}

	now := time.Now().UTC()
	points := make([]storage.ProgressPoint, 0, len(views))
	for _, v := range views {
		if v.FeesUnavailable {
			continue
		}
		points = append(points, storage.ProgressPoint{
			CampaignID:   v.Campaign.ID,
			Raised:       v.Raised,
			Percentage:   v.Percentage,
			BondingCurve: v.BondingCurve,
			ObservedAt:   now,
		})
	}
	if len(points) == 0 {
		return
	}

	if err := s.history.Append(ctx, points); err != nil {
		s.logger.Printf("reconcile: append progress history: %v", err)
		return
	}
	observability.DefaultMetrics.ProgressPointsAppended.Add(float64(len(points)))
}
