package services

import (
	"context"
	"errors"
	"strings"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/api/validate"
	"github.com/example/account-service/internal/auth"
	"github.com/example/account-service/internal/metrics"
	"github.com/example/account-service/internal/models"
	repo "github.com/example/account-service/internal/repository"
)

// AccountService orchestrates registration, login and profile
// lifecycle. All failures surface as apperr sentinels or
// validate.Errs; raw storage errors never leave the repository layer.
type AccountService struct {
	users repo.Users
	roles repo.Roles
	links repo.LinkedAccounts
	audit repo.AuditLogs
	tm    *auth.TokenManager
}

func NewAccountService(users repo.Users, roles repo.Roles, links repo.LinkedAccounts, audit repo.AuditLogs, tm *auth.TokenManager) *AccountService {
	return &AccountService{users: users, roles: roles, links: links, audit: audit, tm: tm}
}

type RegisterParams struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
}

func (p *RegisterParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Username = strings.TrimSpace(p.Username)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
}

func (p RegisterParams) validate() error {
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.Required("name", p.Name),
		validate.Username(p.Username),
		validate.Email(p.Email),
		validate.Password(p.Password),
		validate.Phone(p.PhoneNumber),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Register creates a user with the default role and logs them straight
// in. Uniqueness races are settled by the store's constraints, not by a
// lookup beforehand.
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (models.User, string, error) {
	return s.register(ctx, p, models.RoleUser)
}

// CreateAdmin is the admin-scoped bootstrap variant of Register.
func (s *AccountService) CreateAdmin(ctx context.Context, p RegisterParams) (models.User, string, error) {
	return s.register(ctx, p, models.RoleAdmin)
}

func (s *AccountService) register(ctx context.Context, p RegisterParams, roleName string) (models.User, string, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return models.User{}, "", err
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return models.User{}, "", err
	}
	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return models.User{}, "", err
	}

	u := models.User{
		Username:     p.Username,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	if p.PhoneNumber != "" {
		u.PhoneNumber = &p.PhoneNumber
	}
	u, err = s.users.Create(ctx, u)
	if err != nil {
		return models.User{}, "", err
	}

	token, _, err := s.tm.Issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	metrics.RegistrationsTotal.Inc()
	s.record(ctx, u.ID, "registered", map[string]any{"role": roleName})
	return u, token, nil
}

// Login accepts a username or an email as the single login identifier.
// Unknown identifier and wrong password are indistinguishable to the
// caller.
func (s *AccountService) Login(ctx context.Context, login, password string) (models.User, string, error) {
	login = strings.TrimSpace(login)
	u, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, apperr.ErrNotFound) {
		// burn a compare so an unknown login costs the same as a wrong password
		auth.VerifyPassword(password, dummyHash)
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return models.User{}, "", apperr.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.record(ctx, u.ID, "login_failed", nil)
		return models.User{}, "", apperr.ErrInvalidCredentials
	}
	token, _, err := s.tm.Issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return u, token, nil
}

// dummyHash is a valid bcrypt digest of an unguessable value, used only
// to equalize login timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *AccountService) Get(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AccountService) GetWithLinks(ctx context.Context, id string) (models.User, []models.LinkedAccount, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, nil, err
	}
	links, err := s.links.ListByUser(ctx, id)
	if err != nil {
		return models.User{}, nil, err
	}
	return u, links, nil
}

// UpdateProfile is the self-service partial update; the role field is
// not reachable from here.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, p models.UserUpdate) (models.User, error) {
	p.RoleID = nil
	return s.update(ctx, userID, p)
}

// AdminUpdate may additionally change the role. Demoting the last
// admin fails with apperr.ErrLastAdmin.
func (s *AccountService) AdminUpdate(ctx context.Context, actorID, userID string, p models.UserUpdate) (models.User, error) {
	if p.RoleID != nil {
		if _, err := s.roles.GetByID(ctx, *p.RoleID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return models.User{}, apperr.ErrInvalidRole
			}
			return models.User{}, err
		}
	}
	u, err := s.update(ctx, userID, p)
	if err != nil {
		return models.User{}, err
	}
	s.record(ctx, userID, "admin_updated", map[string]any{"by": actorID})
	return u, nil
}

func (s *AccountService) update(ctx context.Context, userID string, p models.UserUpdate) (models.User, error) {
	var errs validate.Errs
	if p.Empty() {
		errs = append(errs, validate.ErrField{Field: "body", Msg: "no fields to update"})
		return models.User{}, errs
	}
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
		if e := validate.Required("name", trimmed); e != nil {
			errs = append(errs, *e)
		}
	}
	if p.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &normalized
		if e := validate.Email(normalized); e != nil {
			errs = append(errs, *e)
		}
	}
	if p.Username != nil {
		trimmed := strings.TrimSpace(*p.Username)
		p.Username = &trimmed
		if e := validate.Username(trimmed); e != nil {
			errs = append(errs, *e)
		}
	}
	if p.PhoneNumber != nil {
		trimmed := strings.TrimSpace(*p.PhoneNumber)
		p.PhoneNumber = &trimmed
		if e := validate.Phone(trimmed); e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		return models.User{}, errs
	}
	return s.users.Update(ctx, userID, p)
}

// ChangePassword requires the current password before accepting a new
// one.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(current, u.PasswordHash) {
		return apperr.ErrInvalidCredentials
	}
	if e := validate.Password(next); e != nil {
		return validate.Errs{*e}
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.record(ctx, userID, "password_changed", nil)
	return nil
}

// AdminResetPassword sets a new password without the old one; admin
// access is enforced a layer up.
func (s *AccountService) AdminResetPassword(ctx context.Context, actorID, userID, next string) error {
	if e := validate.Password(next); e != nil {
		return validate.Errs{*e}
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.record(ctx, userID, "admin_password_reset", map[string]any{"by": actorID})
	return nil
}

// DeleteAccount re-verifies the password immediately before the
// irreversible delete. Linked accounts go with the user via the store's
// cascade.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, password string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return apperr.ErrInvalidCredentials
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.record(ctx, userID, "account_deleted", nil)
	return nil
}

// AdminDelete removes any user except the last remaining admin.
func (s *AccountService) AdminDelete(ctx context.Context, actorID, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.record(ctx, userID, "admin_deleted", map[string]any{"by": actorID})
	return nil
}

func (s *AccountService) record(ctx context.Context, userID, action string, details map[string]any) {
	id := userID
	_ = s.audit.Create(ctx, models.AuditLog{
		EntityType: "user",
		EntityID:   &id,
		Action:     action,
		Details:    details,
	})
}
