package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"curvefund/internal/storage"
)

// ProgressHistoryStore is an in-memory implementation of
// storage.ProgressHistoryStore.
type ProgressHistoryStore struct {
	mu   sync.RWMutex
	data []storage.ProgressPoint
}

// NewProgressHistoryStore creates a new in-memory progress history store.
func NewProgressHistoryStore() *ProgressHistoryStore {
	return &ProgressHistoryStore{}
}

// Compile-time interface check.
var _ storage.ProgressHistoryStore = (*ProgressHistoryStore)(nil)

// Append stores a batch of observations.
func (s *ProgressHistoryStore) Append(_ context.Context, points []storage.ProgressPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append(s.data, points...)
	return nil
}

// GetByCampaignID retrieves observations within [start, end], observed_at ASC.
func (s *ProgressHistoryStore) GetByCampaignID(_ context.Context, campaignID string, start, end time.Time) ([]storage.ProgressPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.ProgressPoint
	for _, p := range s.data {
		if p.CampaignID != campaignID {
			continue
		}
		if p.ObservedAt.Before(start) || p.ObservedAt.After(end) {
			continue
		}
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt.Before(result[j].ObservedAt)
	})

	return result, nil
}
