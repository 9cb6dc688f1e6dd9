package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/models"
)

// In-memory stand-ins for the postgres repositories, mirroring their
// contracts: apperr translation, uniqueness, reset-token atomicity and
// the last-admin guard.

var testRoles = []models.Role{{ID: 1, Name: models.RoleAdmin}, {ID: 2, Name: models.RoleUser}}

func roleName(id int) string {
	for _, r := range testRoles {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}

type userRow struct {
	u            models.User
	resetToken   string
	resetExpires time.Time
}

type memUsers struct {
	mu    sync.Mutex
	rows  map[string]*userRow
	links *memLinks // for cascade on delete
}

func newMemUsers(links *memLinks) *memUsers {
	return &memUsers{rows: map[string]*userRow{}, links: links}
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.u.Email, u.Email) {
			return models.User{}, apperr.ErrDuplicateEmail
		}
		if row.u.Username == u.Username {
			return models.User{}, apperr.ErrDuplicateUsername
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Role = roleName(u.RoleID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.rows[u.ID] = &userRow{u: u}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return row.u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.u.Email, email) {
			return row.u, nil
		}
	}
	return models.User{}, apperr.ErrNotFound
}

func (m *memUsers) GetByLogin(_ context.Context, login string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.u.Username == login || strings.EqualFold(row.u.Email, login) {
			return row.u, nil
		}
	}
	return models.User{}, apperr.ErrNotFound
}

func (m *memUsers) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row.u)
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, id string, p models.UserUpdate) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	if p.Email != nil {
		for oid, other := range m.rows {
			if oid != id && strings.EqualFold(other.u.Email, *p.Email) {
				return models.User{}, apperr.ErrDuplicateEmail
			}
		}
	}
	if p.Username != nil {
		for oid, other := range m.rows {
			if oid != id && other.u.Username == *p.Username {
				return models.User{}, apperr.ErrDuplicateUsername
			}
		}
	}
	if p.RoleID != nil && *p.RoleID != row.u.RoleID {
		if roleName(*p.RoleID) == "" {
			return models.User{}, apperr.ErrInvalidRole
		}
		if row.u.Role == models.RoleAdmin && m.adminCountLocked() <= 1 {
			return models.User{}, apperr.ErrLastAdmin
		}
		row.u.RoleID = *p.RoleID
		row.u.Role = roleName(*p.RoleID)
	}
	if p.Name != nil {
		row.u.Name = *p.Name
	}
	if p.Email != nil {
		row.u.Email = *p.Email
	}
	if p.Username != nil {
		row.u.Username = *p.Username
	}
	if p.PhoneNumber != nil {
		if *p.PhoneNumber == "" {
			row.u.PhoneNumber = nil
		} else {
			v := *p.PhoneNumber
			row.u.PhoneNumber = &v
		}
	}
	row.u.UpdatedAt = time.Now()
	return row.u, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	row.u.PasswordHash = hash
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, email, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.u.Email, email) {
			row.resetToken = token
			row.resetExpires = expires
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *memUsers) ConsumeResetToken(_ context.Context, token, hash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.rows {
		if row.resetToken == token && row.resetToken != "" && time.Now().Before(row.resetExpires) {
			row.u.PasswordHash = hash
			row.resetToken = ""
			row.resetExpires = time.Time{}
			return id, nil
		}
	}
	return "", apperr.ErrInvalidOrExpiredToken
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if row.u.Role == models.RoleAdmin && m.adminCountLocked() <= 1 {
		return apperr.ErrLastAdmin
	}
	delete(m.rows, id)
	if m.links != nil {
		m.links.deleteByUser(id)
	}
	return nil
}

func (m *memUsers) adminCountLocked() int {
	n := 0
	for _, row := range m.rows {
		if row.u.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

// expire forces an existing reset token past its window.
func (m *memUsers) expire(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.u.Email, email) {
			row.resetExpires = time.Now().Add(-time.Minute)
		}
	}
}

func (m *memUsers) resetTokenFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.u.Email, email) {
			return row.resetToken
		}
	}
	return ""
}

type memRoles struct{}

func (memRoles) GetByID(_ context.Context, id int) (models.Role, error) {
	for _, r := range testRoles {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Role{}, apperr.ErrNotFound
}

func (memRoles) GetByName(_ context.Context, name string) (models.Role, error) {
	for _, r := range testRoles {
		if r.Name == name {
			return r, nil
		}
	}
	return models.Role{}, apperr.ErrNotFound
}

func (memRoles) List(_ context.Context) ([]models.Role, error) { return testRoles, nil }

type memLinks struct {
	mu   sync.Mutex
	rows map[string]models.LinkedAccount
}

func newMemLinks() *memLinks { return &memLinks{rows: map[string]models.LinkedAccount{}} }

func (m *memLinks) ListByUser(_ context.Context, userID string) ([]models.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LinkedAccount
	for _, la := range m.rows {
		if la.UserID == userID {
			out = append(out, la)
		}
	}
	return out, nil
}

func (m *memLinks) GetByProvider(_ context.Context, userID, provider string) (models.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, la := range m.rows {
		if la.UserID == userID && la.Provider == provider {
			return la, nil
		}
	}
	return models.LinkedAccount{}, apperr.ErrNotFound
}

func (m *memLinks) Upsert(_ context.Context, la models.LinkedAccount) (models.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.rows {
		if existing.UserID == la.UserID && existing.Provider == la.Provider {
			la.ID = id
			la.CreatedAt = existing.CreatedAt
			m.rows[id] = la
			return la, nil
		}
	}
	if la.ID == "" {
		la.ID = uuid.NewString()
	}
	la.CreatedAt = time.Now()
	m.rows[la.ID] = la
	return la, nil
}

func (m *memLinks) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	la, ok := m.rows[id]
	if !ok || la.UserID != userID {
		return apperr.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memLinks) deleteByUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, la := range m.rows {
		if la.UserID == userID {
			delete(m.rows, id)
		}
	}
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *memAudit) Create(_ context.Context, l models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, l)
	return nil
}
