package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"curvefund/internal/domain"
	"curvefund/internal/lifecycle"
	"curvefund/internal/storage"
)

// campaignColumns is the column list shared by all campaign queries.
const campaignColumns = `
	id, user_id, name, short_description, long_description,
	banner_url, image_url, website_url, x_handle, telegram_handle,
	token_name, token_ticker, token_image_url, token_mint, charity_wallet,
	goal, raised_legacy, status, category_id, category_name,
	created_at, updated_at, deleted_at`

// CampaignStore implements storage.CampaignStore using PostgreSQL.
type CampaignStore struct {
	pool *Pool
}

// NewCampaignStore creates a new CampaignStore.
func NewCampaignStore(pool *Pool) *CampaignStore {
	return &CampaignStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CampaignStore = (*CampaignStore)(nil)

// Create validates and inserts a new campaign.
func (s *CampaignStore) Create(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	if err := storage.ValidateCampaign(c); err != nil {
		return nil, err
	}

	ts := lifecycle.Create(time.Now().UTC())

	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, NULL
		)
	`

	_, err := s.pool.Exec(ctx, query,
		c.ID, c.UserID, c.Name, c.ShortDescription, c.LongDescription,
		c.BannerURL, c.ImageURL, c.WebsiteURL, c.XHandle, c.TelegramHandle,
		c.TokenName, c.TokenTicker, c.TokenImageURL, c.TokenMint, c.CharityWallet,
		c.Goal, c.RaisedLegacy, string(c.Status), c.CategoryID, c.CategoryName,
		ts.CreatedAt, ts.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert campaign: %w", err)
	}

	stored := *c
	stored.CreatedAt = ts.CreatedAt
	stored.UpdatedAt = ts.UpdatedAt
	stored.DeletedAt = nil
	return &stored, nil
}

// GetByID retrieves a campaign; soft-deleted records are ErrNotFound
// unless includeDeleted is true.
func (s *CampaignStore) GetByID(ctx context.Context, id string, includeDeleted bool) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	row := s.pool.QueryRow(ctx, query, id)
	c, err := scanCampaign(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get campaign by id: %w", err)
	}
	return c, nil
}

// campaignPatchColumns maps patch fields to their columns in a stable order.
func campaignPatchColumns(p domain.CampaignPatch) ([]string, []interface{}) {
	var cols []string
	var args []interface{}

	add := func(col string, v interface{}) {
		cols = append(cols, col)
		args = append(args, v)
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.ShortDescription != nil {
		add("short_description", *p.ShortDescription)
	}
	if p.LongDescription != nil {
		add("long_description", *p.LongDescription)
	}
	if p.BannerURL != nil {
		add("banner_url", *p.BannerURL)
	}
	if p.ImageURL != nil {
		add("image_url", *p.ImageURL)
	}
	if p.WebsiteURL != nil {
		add("website_url", *p.WebsiteURL)
	}
	if p.XHandle != nil {
		add("x_handle", *p.XHandle)
	}
	if p.TelegramHandle != nil {
		add("telegram_handle", *p.TelegramHandle)
	}
	if p.TokenName != nil {
		add("token_name", *p.TokenName)
	}
	if p.TokenTicker != nil {
		add("token_ticker", *p.TokenTicker)
	}
	if p.TokenImageURL != nil {
		add("token_image_url", *p.TokenImageURL)
	}
	if p.TokenMint != nil {
		add("token_mint", *p.TokenMint)
	}
	if p.CharityWallet != nil {
		add("charity_wallet", *p.CharityWallet)
	}
	if p.Goal != nil {
		add("goal", *p.Goal)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.CategoryID != nil {
		add("category_id", *p.CategoryID)
	}
	if p.CategoryName != nil {
		add("category_name", *p.CategoryName)
	}

	return cols, args
}

// Update merges non-nil patch fields into the active record.
func (s *CampaignStore) Update(ctx context.Context, id string, patch domain.CampaignPatch) (*domain.Campaign, error) {
	cols, args := campaignPatchColumns(patch)

	// Always stamp updated_at, even for an empty patch.
	cols = append(cols, "updated_at")
	args = append(args, lifecycle.Update(time.Now().UTC()))

	setParts := make([]string, len(cols))
	for i, col := range cols {
		setParts[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE campaigns SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(setParts, ", "), len(args), campaignColumns)

	row := s.pool.QueryRow(ctx, query, args...)
	c, err := scanCampaign(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		if isDuplicateKeyError(err) {
			return nil, storage.ErrDuplicateKey
		}
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return c, nil
}

// SoftDelete marks the campaign deleted; idempotent for already-deleted ids.
func (s *CampaignStore) SoftDelete(ctx context.Context, id string) error {
	ts := lifecycle.Delete(time.Now().UTC())

	tag, err := s.pool.Exec(ctx, `
		UPDATE campaigns SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`, ts.DeletedAt, ts.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("soft delete campaign: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing updated: either already deleted (no-op success) or unknown id.
	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("soft delete campaign: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return nil
}

// ListActive returns active campaigns matching the filter, created_at DESC.
func (s *CampaignStore) ListActive(ctx context.Context, filter storage.CampaignFilter) ([]*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE deleted_at IS NULL`
	var args []interface{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	defer rows.Close()

	return scanCampaigns(rows)
}

// scanCampaign scans a single row into a Campaign.
func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	var status string

	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.ShortDescription, &c.LongDescription,
		&c.BannerURL, &c.ImageURL, &c.WebsiteURL, &c.XHandle, &c.TelegramHandle,
		&c.TokenName, &c.TokenTicker, &c.TokenImageURL, &c.TokenMint, &c.CharityWallet,
		&c.Goal, &c.RaisedLegacy, &status, &c.CategoryID, &c.CategoryName,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = domain.CampaignStatus(status)
	return &c, nil
}

// scanCampaigns scans multiple rows into a slice of Campaign.
func scanCampaigns(rows pgx.Rows) ([]*domain.Campaign, error) {
	var result []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return result, nil
}
