package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"curvefund/internal/domain"
	"curvefund/internal/lifecycle"
	"curvefund/internal/storage"
)

// CampaignStore is an in-memory implementation of storage.CampaignStore.
type CampaignStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Campaign // keyed by campaign id
	now  func() time.Time
}

// NewCampaignStore creates a new in-memory campaign store.
func NewCampaignStore() *CampaignStore {
	return &CampaignStore{
		data: make(map[string]*domain.Campaign),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Compile-time interface check.
var _ storage.CampaignStore = (*CampaignStore)(nil)

// Create validates and inserts a new campaign.
func (s *CampaignStore) Create(_ context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	if err := storage.ValidateCampaign(c); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ID]; exists {
		return nil, storage.ErrDuplicateKey
	}
	if c.TokenMint != "" {
		for _, other := range s.data {
			if other.TokenMint == c.TokenMint {
				return nil, storage.ErrDuplicateKey
			}
		}
	}

	ts := lifecycle.Create(s.now())
	// Store a copy to prevent external mutation
	stored := *c
	stored.CreatedAt = ts.CreatedAt
	stored.UpdatedAt = ts.UpdatedAt
	stored.DeletedAt = nil
	s.data[c.ID] = &stored

	result := stored
	return &result, nil
}

// GetByID retrieves a campaign; soft-deleted records are ErrNotFound
// unless includeDeleted is true.
func (s *CampaignStore) GetByID(_ context.Context, id string, includeDeleted bool) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	if !includeDeleted && !lifecycle.Active(c.DeletedAt) {
		return nil, storage.ErrNotFound
	}

	result := *c
	return &result, nil
}

// Update merges non-nil patch fields into the active record.
func (s *CampaignStore) Update(_ context.Context, id string, patch domain.CampaignPatch) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[id]
	if !exists || !lifecycle.Active(c.DeletedAt) {
		return nil, storage.ErrNotFound
	}

	applyPatch(c, patch)
	c.UpdatedAt = lifecycle.Update(s.now())

	result := *c
	return &result, nil
}

// SoftDelete marks the campaign deleted; idempotent for already-deleted ids.
func (s *CampaignStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	if !lifecycle.Active(c.DeletedAt) {
		return nil
	}

	ts := lifecycle.Delete(s.now())
	c.DeletedAt = ts.DeletedAt
	c.UpdatedAt = ts.UpdatedAt
	return nil
}

// ListActive returns active campaigns matching the filter, created_at DESC.
func (s *CampaignStore) ListActive(_ context.Context, filter storage.CampaignFilter) ([]*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Campaign
	for _, c := range s.data {
		if !lifecycle.Active(c.DeletedAt) {
			continue
		}
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		if filter.CategoryID != "" && c.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		campaignCopy := *c
		result = append(result, &campaignCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// applyPatch copies non-nil patch fields onto the campaign.
func applyPatch(c *domain.Campaign, p domain.CampaignPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.ShortDescription != nil {
		c.ShortDescription = *p.ShortDescription
	}
	if p.LongDescription != nil {
		c.LongDescription = *p.LongDescription
	}
	if p.BannerURL != nil {
		c.BannerURL = *p.BannerURL
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.WebsiteURL != nil {
		c.WebsiteURL = *p.WebsiteURL
	}
	if p.XHandle != nil {
		c.XHandle = *p.XHandle
	}
	if p.TelegramHandle != nil {
		c.TelegramHandle = *p.TelegramHandle
	}
	if p.TokenName != nil {
		c.TokenName = *p.TokenName
	}
	if p.TokenTicker != nil {
		c.TokenTicker = *p.TokenTicker
	}
	if p.TokenImageURL != nil {
		c.TokenImageURL = *p.TokenImageURL
	}
	if p.TokenMint != nil {
		c.TokenMint = *p.TokenMint
	}
	if p.CharityWallet != nil {
		c.CharityWallet = *p.CharityWallet
	}
	if p.Goal != nil {
		c.Goal = *p.Goal
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.CategoryID != nil {
		c.CategoryID = *p.CategoryID
	}
	if p.CategoryName != nil {
		c.CategoryName = *p.CategoryName
	}
}
