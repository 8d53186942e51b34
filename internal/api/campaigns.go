package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"curvefund/internal/domain"
	"curvefund/internal/reconcile"
	"curvefund/internal/storage"
)

// createCampaignRequest is the POST body. The id is generated when absent.
type createCampaignRequest struct {
	ID               string  `json:"id"`
	UserID           string  `json:"userId"`
	Name             string  `json:"name"`
	ShortDescription string  `json:"shortDescription"`
	LongDescription  string  `json:"longDescription"`
	BannerURL        string  `json:"bannerUrl"`
	ImageURL         string  `json:"imageUrl"`
	WebsiteURL       string  `json:"websiteUrl"`
	XHandle          string  `json:"xHandle"`
	TelegramHandle   string  `json:"telegramHandle"`
	TokenName        string  `json:"tokenName"`
	TokenTicker      string  `json:"tokenTicker"`
	TokenImageURL    string  `json:"tokenImageUrl"`
	TokenMint        string  `json:"tokenMint"`
	CharityWallet    string  `json:"charityWallet"`
	Goal             float64 `json:"goal"`
	Status           string  `json:"status"`
	CategoryID       string  `json:"categoryId"`
	CategoryName     string  `json:"categoryName"`
}

// updateCampaignRequest is the PATCH body; absent fields stay untouched.
type updateCampaignRequest struct {
	Name             *string  `json:"name"`
	ShortDescription *string  `json:"shortDescription"`
	LongDescription  *string  `json:"longDescription"`
	BannerURL        *string  `json:"bannerUrl"`
	ImageURL         *string  `json:"imageUrl"`
	WebsiteURL       *string  `json:"websiteUrl"`
	XHandle          *string  `json:"xHandle"`
	TelegramHandle   *string  `json:"telegramHandle"`
	TokenName        *string  `json:"tokenName"`
	TokenTicker      *string  `json:"tokenTicker"`
	TokenImageURL    *string  `json:"tokenImageUrl"`
	TokenMint        *string  `json:"tokenMint"`
	CharityWallet    *string  `json:"charityWallet"`
	Goal             *float64 `json:"goal"`
	Status           *string  `json:"status"`
	CategoryID       *string  `json:"categoryId"`
	CategoryName     *string  `json:"categoryName"`
}

// campaignRecord is the persisted-fields-only response shape used by the
// write endpoints and plain listings. Derived fields (raised, percentage)
// appear only on reconciled reads.
type campaignRecord struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	LongDescription  string    `json:"longDescription,omitempty"`
	BannerURL        string    `json:"bannerUrl,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	WebsiteURL       string    `json:"websiteUrl,omitempty"`
	XHandle          string    `json:"xHandle,omitempty"`
	TelegramHandle   string    `json:"telegramHandle,omitempty"`
	TokenName        string    `json:"tokenName,omitempty"`
	TokenTicker      string    `json:"tokenTicker,omitempty"`
	TokenImageURL    string    `json:"tokenImageUrl,omitempty"`
	TokenMint        string    `json:"tokenMint"`
	CharityWallet    string    `json:"charityWallet,omitempty"`
	Goal             float64   `json:"goal"`
	Status           string    `json:"status"`
	CategoryID       string    `json:"categoryId,omitempty"`
	CategoryName     string    `json:"categoryName,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toCampaignRecord(c *domain.Campaign) campaignRecord {
	return campaignRecord{
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
		Status:           string(c.Status),
		CategoryID:       c.CategoryID,
		CategoryName:     c.CategoryName,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	c := &domain.Campaign{
		ID:               req.ID,
		UserID:           req.UserID,
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		BannerURL:        req.BannerURL,
		ImageURL:         req.ImageURL,
		WebsiteURL:       req.WebsiteURL,
		XHandle:          req.XHandle,
		TelegramHandle:   req.TelegramHandle,
		TokenName:        req.TokenName,
		TokenTicker:      req.TokenTicker,
		TokenImageURL:    req.TokenImageURL,
		TokenMint:        req.TokenMint,
		CharityWallet:    req.CharityWallet,
		Goal:             req.Goal,
		Status:           domain.CampaignStatus(req.Status),
		CategoryID:       req.CategoryID,
		CategoryName:     req.CategoryName,
	}

	created, err := h.campaigns.Create(r.Context(), c)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCampaignRecord(created))
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := statusFilter(q.Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := storage.CampaignFilter{
		UserID:     q.Get("userId"),
		CategoryID: q.Get("categoryId"),
		Status:     status,
	}

	list, err := h.campaigns.ListActive(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	records := make([]campaignRecord, len(list))
	for i, c := range list {
		records[i] = toCampaignRecord(c)
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleLiveCampaigns(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ReconcileAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reconcile.ToResponses(views))
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reconcile.ToResponse(*view))
}

func (h *Handler) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req updateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	patch := domain.CampaignPatch{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		BannerURL:        req.BannerURL,
		ImageURL:         req.ImageURL,
		WebsiteURL:       req.WebsiteURL,
		XHandle:          req.XHandle,
		TelegramHandle:   req.TelegramHandle,
		TokenName:        req.TokenName,
		TokenTicker:      req.TokenTicker,
		TokenImageURL:    req.TokenImageURL,
		TokenMint:        req.TokenMint,
		CharityWallet:    req.CharityWallet,
		Goal:             req.Goal,
		CategoryID:       req.CategoryID,
		CategoryName:     req.CategoryName,
	}
	if req.Status != nil {
		s := domain.CampaignStatus(*req.Status)
		if !s.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		patch.Status = &s
	}

	updated, err := h.campaigns.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignRecord(updated))
}

func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCampaignHistory(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseTimeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.campaigns.GetByID(r.Context(), id, false); err != nil {
		h.writeError(w, err)
		return
	}

	points, err := h.svc.History(r.Context(), id, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if points == nil {
		points = []storage.ProgressPoint{}
	}

	type historyPoint struct {
		Raised       float64   `json:"raised"`
		Percentage   float64   `json:"percentage"`
		BondingCurve float64   `json:"bondingCurve"`
		ObservedAt   time.Time `json:"observedAt"`
	}
	out := make([]historyPoint, len(points))
	for i, p := range points {
		out[i] = historyPoint{
			Raised:       p.Raised,
			Percentage:   p.Percentage,
			BondingCurve: p.BondingCurve,
			ObservedAt:   p.ObservedAt,
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}
