package models

import "time"

// Role names seeded by the initial migration. Exactly one role carries
// admin privilege.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  *string   `json:"phone_number,omitempty"`
	PasswordHash string    `json:"-"`
	RoleID       int       `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserUpdate is a partial update: nil means "leave unchanged". A
// present-but-empty PhoneNumber clears the stored number; truthiness is
// never used to decide whether a field was supplied.
type UserUpdate struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phone_number"`
	RoleID      *int    `json:"role_id"`
}

func (p UserUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Username == nil && p.PhoneNumber == nil && p.RoleID == nil
}
