package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"curvefund/internal/domain"
)

type createUserRequest struct {
	ID             string `json:"id"`
	WalletAddress  string `json:"walletAddress"`
	Username       string `json:"username"`
	AvatarURL      string `json:"avatarUrl"`
	XHandle        string `json:"xHandle"`
	TelegramHandle string `json:"telegramHandle"`
}

type userRecord struct {
	ID             string    `json:"id"`
	WalletAddress  string    `json:"walletAddress,omitempty"`
	Username       string    `json:"username,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	XHandle        string    `json:"xHandle,omitempty"`
	TelegramHandle string    `json:"telegramHandle,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:             u.ID,
		WalletAddress:  u.WalletAddress,
		Username:       u.Username,
		AvatarURL:      u.AvatarURL,
		XHandle:        u.XHandle,
		TelegramHandle: u.TelegramHandle,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	created, err := h.users.Create(r.Context(), &domain.User{
		ID:             req.ID,
		WalletAddress:  req.WalletAddress,
		Username:       req.Username,
		AvatarURL:      req.AvatarURL,
		XHandle:        req.XHandle,
		TelegramHandle: req.TelegramHandle,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toUserRecord(created))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserRecord(user))
}
