package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/account-service/internal/api/httpx"
	"github.com/example/account-service/internal/middleware"
	"github.com/example/account-service/internal/services"
)

type LinkedHandler struct {
	Linked *services.LinkedService
}

func NewLinkedHandler(linked *services.LinkedService) *LinkedHandler {
	return &LinkedHandler{Linked: linked}
}

func (h *LinkedHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	links, err := h.Linked.List(r.Context(), uid)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, links)
}

func (h *LinkedHandler) Connect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("OAuth flow initiated for %s", provider),
		"auth_url": h.Linked.Connect(provider),
	})
}

func (h *LinkedHandler) Callback(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	provider := chi.URLParam(r, "provider")
	var req struct {
		Code         string         `json:"code"`
		MockUserData map[string]any `json:"mock_user_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	la, err := h.Linked.Callback(r.Context(), uid, provider, req.MockUserData)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        fmt.Sprintf("%s account linked", provider),
		"linked_account": la,
	})
}

func (h *LinkedHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.Linked.Unlink(r.Context(), uid, id); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Linked account removed",
	})
}

func (h *LinkedHandler) ProviderData(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	provider := chi.URLParam(r, "provider")
	la, data, err := h.Linked.ProviderData(r.Context(), uid, provider)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"provider":     provider,
		"account_info": la.AccountData,
		"data":         data,
	})
}
