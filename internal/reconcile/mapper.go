package reconcile

import (
	"time"

	"curvefund/internal/domain"
)

// Response is the externally consumed JSON shape of a reconciled campaign.
type Response struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Name             string `json:"name"`
	ShortDescription string `json:"shortDescription,omitempty"`
	LongDescription  string `json:"longDescription,omitempty"`
	BannerURL        string `json:"bannerUrl,omitempty"`
	ImageURL         string `json:"imageUrl,omitempty"`
	WebsiteURL       string `json:"websiteUrl,omitempty"`
	XHandle          string `json:"xHandle,omitempty"`
	TelegramHandle   string `json:"telegramHandle,omitempty"`

	TokenName     string `json:"tokenName,omitempty"`
	TokenTicker   string `json:"tokenTicker,omitempty"`
	TokenImageURL string `json:"tokenImageUrl,omitempty"`
	TokenMint     string `json:"tokenMint"`
	CharityWallet string `json:"charityWallet,omitempty"`

	Goal         float64 `json:"goal"`
	Raised       float64 `json:"raised"`
	Percentage   float64 `json:"percentage"`
	BondingCurve float64 `json:"bondingCurve"`
	GraduatedPool string `json:"graduatedPool"`
	Status       string  `json:"status"`
	CategoryID   string  `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`

	FeesUnavailable bool `json:"feesUnavailable,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User   *UserResponse   `json:"user,omitempty"`
	Market *MarketResponse `json:"market,omitempty"`
}

// UserResponse is the embedded owner shape.
type UserResponse struct {
	ID             string `json:"id"`
	WalletAddress  string `json:"walletAddress,omitempty"`
	Username       string `json:"username,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	XHandle        string `json:"xHandle,omitempty"`
	TelegramHandle string `json:"telegramHandle,omitempty"`
}

// MarketResponse is the embedded market stats shape.
type MarketResponse struct {
	PoolID      string  `json:"poolId,omitempty"`
	Volume24h   float64 `json:"volume24h"`
	Trades24h   int64   `json:"trades24h"`
	PriceChange float64 `json:"priceChange"`
	Liquidity   float64 `json:"liquidity"`
	MarketCap   float64 `json:"marketCap"`
}

// ToResponse flattens a reconciled view into the wire shape.
func ToResponse(v domain.CampaignView) Response {
	c := v.Campaign
	resp := Response{
		ID:               c.ID,
		UserID:           c.UserID,
		Name:             c.Name,
		ShortDescription: c.ShortDescription,
		LongDescription:  c.LongDescription,
		BannerURL:        c.BannerURL,
		ImageURL:         c.ImageURL,
		WebsiteURL:       c.WebsiteURL,
		XHandle:          c.XHandle,
		TelegramHandle:   c.TelegramHandle,
		TokenName:        c.TokenName,
		TokenTicker:      c.TokenTicker,
		TokenImageURL:    c.TokenImageURL,
		TokenMint:        c.TokenMint,
		CharityWallet:    c.CharityWallet,
		Goal:             c.Goal,
		Raised:           v.Raised,
		Percentage:       v.Percentage,
		BondingCurve:     v.BondingCurve,
		GraduatedPool:    v.GraduatedPool,
		Status:           string(c.Status),
		CategoryID:       c.CategoryID,
		CategoryName:     c.CategoryName,
		FeesUnavailable:  v.FeesUnavailable,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}

	if v.User != nil {
		resp.User = &UserResponse{
			ID:             v.User.ID,
			WalletAddress:  v.User.WalletAddress,
			Username:       v.User.Username,
			AvatarURL:      v.User.AvatarURL,
			XHandle:        v.User.XHandle,
			TelegramHandle: v.User.TelegramHandle,
		}
	}

	if v.Market != nil {
		resp.Market = &MarketResponse{
			PoolID:      v.Market.PoolID,
			Volume24h:   v.Market.Volume24h,
			Trades24h:   v.Market.Trades24h(),
			PriceChange: v.Market.PriceChange,
			Liquidity:   v.Market.Liquidity,
			MarketCap:   v.Market.MarketCap,
		}
	}

	return resp
}

// ToResponses maps a batch of views preserving order.
func ToResponses(views []domain.CampaignView) []Response {
	out := make([]Response, len(views))
	for i, v := range views {
		out[i] = ToResponse(v)
	}
	return out
}
