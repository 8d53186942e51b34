package storage

import (
	"context"
	"time"

	"curvefund/internal/domain"
)

// CampaignFilter selects campaigns by equality on a single dimension.
// Zero-value fields are ignored.
type CampaignFilter struct {
	UserID     string
	CategoryID string
	Status     domain.CampaignStatus
}

// CampaignStore provides access to campaign storage. All reads exclude
// soft-deleted records unless stated otherwise; nothing is ever
// physically deleted.
type CampaignStore interface {
	// Create validates and inserts a new campaign, stamping its
	// timestamps. Returns ErrInvalidInput on missing required fields or
	// non-positive goal, ErrDuplicateKey on id or token mint collision.
	Create(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error)

	// GetByID retrieves a campaign. A soft-deleted record is ErrNotFound
	// unless includeDeleted is true.
	GetByID(ctx context.Context, id string, includeDeleted bool) (*domain.Campaign, error)

	// Update merges non-nil patch fields into the active record and
	// stamps updatedAt. Returns ErrNotFound for missing or deleted ids.
	Update(ctx context.Context, id string, patch domain.CampaignPatch) (*domain.Campaign, error)

	// SoftDelete marks the campaign deleted. Deleting an already-deleted
	// campaign is a no-op success; ErrNotFound only for unknown ids.
	SoftDelete(ctx context.Context, id string) error

	// ListActive returns active campaigns matching the filter,
	// ordered by created_at DESC.
	ListActive(ctx context.Context, filter CampaignFilter) ([]*domain.Campaign, error)
}

// UserStore provides access to user storage with the same soft-delete
// discipline as CampaignStore.
type UserStore interface {
	// Create inserts a new user. Returns ErrInvalidInput on missing id,
	// ErrDuplicateKey on id collision.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)

	// GetByID retrieves an active user. Returns ErrNotFound for missing
	// or soft-deleted ids.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ProgressPoint is one observed reconciliation result, kept for trend
// analytics. Append-only; never a source of truth for raised amounts.
type ProgressPoint struct {
	CampaignID   string
	Raised       float64
	Percentage   float64
	BondingCurve float64
	ObservedAt   time.Time
}

// ProgressHistoryStore records reconciled progress observations.
type ProgressHistoryStore interface {
	// Append stores a batch of observations.
	Append(ctx context.Context, points []ProgressPoint) error

	// GetByCampaignID retrieves observations for a campaign within
	// [start, end], ordered by observed_at ASC.
	GetByCampaignID(ctx context.Context, campaignID string, start, end time.Time) ([]ProgressPoint, error)
}
