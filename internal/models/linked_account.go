package models

import "time"

// LinkedAccount is a mock third-party identity link. The token fields
// are opaque placeholders; no real OAuth exchange happens anywhere.
type LinkedAccount struct {
	ID             string         `json:"id"`
	UserID         string         `json:"-"`
	Provider       string         `json:"provider"`
	ProviderUserID string         `json:"provider_user_id"`
	AccessToken    string         `json:"-"`
	RefreshToken   string         `json:"-"`
	TokenExpiresAt time.Time      `json:"-"`
	AccountData    map[string]any `json:"account_data"`
	CreatedAt      time.Time      `json:"created_at"`
}
