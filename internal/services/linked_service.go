package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/account-service/internal/models"
	repo "github.com/example/account-service/internal/repository"
)

// LinkedService simulates third-party account linking. There is no real
// OAuth exchange anywhere: Connect hands back a fake authorization URL
// and Callback upserts mock tokens and profile data.
type LinkedService struct {
	links repo.LinkedAccounts
}

func NewLinkedService(links repo.LinkedAccounts) *LinkedService {
	return &LinkedService{links: links}
}

func (s *LinkedService) List(ctx context.Context, userID string) ([]models.LinkedAccount, error) {
	return s.links.ListByUser(ctx, userID)
}

// Connect returns the URL a real integration would redirect to.
func (s *LinkedService) Connect(provider string) string {
	return fmt.Sprintf("/mock-oauth/%s?state=abc123", provider)
}

// Callback stands in for the code-for-token exchange. At most one link
// exists per (user, provider); a repeat callback refreshes it.
func (s *LinkedService) Callback(ctx context.Context, userID, provider string, mockUserData map[string]any) (models.LinkedAccount, error) {
	providerUserID := fmt.Sprintf("mock-%s-user-%d", provider, time.Now().UnixMilli())
	if id, ok := mockUserData["id"].(string); ok && id != "" {
		providerUserID = id
	}
	accountData := mockUserData
	if len(accountData) == 0 {
		accountData = map[string]any{
			"username": fmt.Sprintf("%sUser%d", provider, rand.Intn(1000)),
			"email":    fmt.Sprintf("mock-%s-user@example.com", provider),
			"avatar":   nil,
		}
	}
	return s.links.Upsert(ctx, models.LinkedAccount{
		UserID:         userID,
		Provider:       provider,
		ProviderUserID: providerUserID,
		AccessToken:    "mock-access-token",
		RefreshToken:   "mock-refresh-token",
		TokenExpiresAt: time.Now().Add(time.Hour),
		AccountData:    accountData,
	})
}

func (s *LinkedService) Unlink(ctx context.Context, userID, id string) error {
	return s.links.Delete(ctx, id, userID)
}

// ProviderData returns canned provider payloads in place of a real API
// call with the stored access token.
func (s *LinkedService) ProviderData(ctx context.Context, userID, provider string) (models.LinkedAccount, map[string]any, error) {
	la, err := s.links.GetByProvider(ctx, userID, provider)
	if err != nil {
		return models.LinkedAccount{}, nil, err
	}

	var data map[string]any
	switch provider {
	case "yahoo":
		data = map[string]any{
			"teams": []map[string]any{
				{"name": "Fantasy Team 1", "league": "Fantasy Football", "rank": 3},
				{"name": "Fantasy Team 2", "league": "Fantasy Basketball", "rank": 1},
			},
			"stats": map[string]any{"wins": 10, "losses": 4, "draws": 0},
		}
	case "twitter":
		data = map[string]any{
			"tweets":    253,
			"followers": 1204,
			"following": 567,
			"recent_tweets": []map[string]any{
				{"text": "Just posted a new blog article!", "likes": 12},
				{"text": "Having fun with the new API!", "likes": 5},
			},
		}
	default:
		data = map[string]any{
			"message":   fmt.Sprintf("Mock data for %s", provider),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
	}
	return la, data, nil
}
