package clickhouse

import (
	"context"
	"fmt"
	"time"

	"curvefund/internal/storage"
)

// ProgressHistoryStore implements storage.ProgressHistoryStore using
// ClickHouse. Rows are append-only observations of reconciled campaign
// progress; the MergeTree table enforces nothing, callers only append.
type ProgressHistoryStore struct {
	conn *Conn
}

// NewProgressHistoryStore creates a new ProgressHistoryStore.
func NewProgressHistoryStore(conn *Conn) *ProgressHistoryStore {
	return &ProgressHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ProgressHistoryStore = (*ProgressHistoryStore)(nil)

// Append stores a batch of observations.
func (s *ProgressHistoryStore) Append(ctx context.Context, points []storage.ProgressPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO progress_history (
			campaign_id, raised, percentage, bonding_curve, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(
			p.CampaignID, p.Raised, p.Percentage, p.BondingCurve, p.ObservedAt,
		); err != nil {
			return fmt.Errorf("append progress point: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send progress batch: %w", err)
	}
	return nil
}

// GetByCampaignID retrieves observations within [start, end], observed_at ASC.
func (s *ProgressHistoryStore) GetByCampaignID(ctx context.Context, campaignID string, start, end time.Time) ([]storage.ProgressPoint, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT campaign_id, raised, percentage, bonding_curve, observed_at
		FROM progress_history
		WHERE campaign_id = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`, campaignID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query progress history: %w", err)
	}
	defer rows.Close()

	var result []storage.ProgressPoint
	for rows.Next() {
		var p storage.ProgressPoint
		if err := rows.Scan(&p.CampaignID, &p.Raised, &p.Percentage, &p.BondingCurve, &p.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan progress point: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress history: %w", err)
	}
	return result, nil
}
