package domain

import "time"

// CampaignStatus enumerates campaign lifecycle states.
// DRAFTED transitions to SUCCESS or FAILED on token/pool creation;
// both are terminal. Soft delete is orthogonal to status.
type CampaignStatus string

const (
	StatusDrafted CampaignStatus = "DRAFTED"
	StatusSuccess CampaignStatus = "SUCCESS"
	StatusFailed  CampaignStatus = "FAILED"
)

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusDrafted, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Campaign represents a fundraising campaign tied to a tradable token.
// Corresponds to the campaigns table in PostgreSQL.
type Campaign struct {
	ID     string // PRIMARY KEY, uuid
	UserID string // owning user id

	Name             string
	ShortDescription string
	LongDescription  string
	BannerURL        string
	ImageURL         string
	WebsiteURL       string
	XHandle          string
	TelegramHandle   string

	TokenName     string
	TokenTicker   string
	TokenImageURL string
	TokenMint     string // unique once assigned; empty until token creation
	CharityWallet string

	Goal         float64 // fundraising goal in quote currency units, > 0
	RaisedLegacy float64 // last persisted raised hint; ledger is authoritative
	Status       CampaignStatus
	CategoryID   string
	CategoryName string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // nil means active
}

// Active reports whether the campaign has not been soft-deleted.
func (c *Campaign) Active() bool {
	return c.DeletedAt == nil
}

// CampaignPatch carries partial updates for Campaign. Nil fields are
// left untouched. Status transitions go through the same path.
type CampaignPatch struct {
	Name             *string
	ShortDescription *string
	LongDescription  *string
	BannerURL        *string
	ImageURL         *string
	WebsiteURL       *string
	XHandle          *string
	TelegramHandle   *string
	TokenName        *string
	TokenTicker      *string
	TokenImageURL    *string
	TokenMint        *string
	CharityWallet    *string
	Goal             *float64
	Status           *CampaignStatus
	CategoryID       *string
	CategoryName     *string
}
