// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth registers, authenticates and resolves users, partners and admins.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	authctx "codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/obs"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/email"
	"codeberg.org/skillnaav/portal/internal/services/recovery"
	"codeberg.org/skillnaav/portal/internal/services/token"
)

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidCode    = errors.New("invalid or expired reset code")
	ErrAdminBootstrap = errors.New("admin bootstrap needs email and password")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service implements registration, login and identity resolution for all roles.
type Service struct {
	repo              *repository.Repository
	config            *config.AuthConfig
	tokens            *token.Service
	policy            authctx.Policy
	notifier          email.Notifier
	metrics           *obs.Metrics
	recovery          *recovery.Service
	passwordValidator *PasswordValidator
	now               func() time.Time
}

// NewService wires the auth service. notifier and metrics may be nil.
func NewService(repo *repository.Repository, cfg *config.AuthConfig, tokens *token.Service,
	notifier email.Notifier, metrics *obs.Metrics,
) *Service {
	if notifier == nil {
		notifier = email.LogNotifier{}
	}
	return &Service{
		repo:              repo,
		config:            cfg,
		tokens:            tokens,
		policy:            authctx.PolicyFromConfig(cfg),
		notifier:          notifier,
		metrics:           metrics,
		recovery:          recovery.NewService(),
		passwordValidator: passwordValidatorFor(cfg),
		now:               time.Now,
	}
}

// Policy returns the approval policy derived from the configuration.
func (s *Service) Policy() authctx.Policy {
	return s.policy
}

// Tokens returns the token service used for issuing and verifying.
func (s *Service) Tokens() *token.Service {
	return s.tokens
}

// Session is the result of a successful registration or login.
type Session struct {
	Account   models.Identity
	Token     string
	ExpiresAt time.Time
}

// RegisterParams holds the registration fields of all roles.
// Fields that do not belong to the role are ignored.
type RegisterParams struct {
	Role     models.Role
	Name     string
	Email    string
	Password string

	UniversityName  string
	DOB             string
	EducationLevel  string
	FieldOfInterest string

	CompanyName   string
	InstitutionID string

	Pic string
}

func (p *RegisterParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.InstitutionID = strings.TrimSpace(p.InstitutionID)
}

func (p *RegisterParams) validate() error {
	required := map[string]string{"name": p.Name, "email": p.Email, "password": p.Password}
	order := []string{"name", "email", "password"}
	if p.Role == models.RolePartner {
		required["company_name"] = p.CompanyName
		required["institution_id"] = p.InstitutionID
		order = append(order, "company_name", "institution_id")
	}
	for _, field := range order {
		if required[field] == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Register creates a pending account of params.Role and returns it with a token.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	if !params.Role.Valid() {
		return nil, models.ErrUnknownRole
	}
	params.normalize()
	if err := params.validate(); err != nil {
		return nil, err
	}

	if err := s.passwordValidator.Validate(params.Password, params.Email, params.Name, params.CompanyName); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, params.Role, params.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := s.hashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	account, err := s.create(ctx, params, passwordHash)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", params.Role, err)
	}

	slog.Info("register_success", "role", params.Role, "id", account.Base().ID, "email", params.Email)

	return s.session(account)
}

func (s *Service) create(ctx context.Context, p RegisterParams, passwordHash string) (models.Identity, error) {
	base := models.Account{Name: p.Name, Email: p.Email, PasswordHash: passwordHash}
	switch p.Role {
	case models.RoleUser:
		return s.repo.CreateUser(ctx, &models.User{
			Account:         base,
			UniversityName:  p.UniversityName,
			DOB:             p.DOB,
			EducationLevel:  p.EducationLevel,
			FieldOfInterest: p.FieldOfInterest,
		})
	case models.RolePartner:
		return s.repo.CreatePartner(ctx, &models.Partner{
			Account:       base,
			CompanyName:   p.CompanyName,
			InstitutionID: p.InstitutionID,
		})
	case models.RoleAdmin:
		return s.repo.CreateAdmin(ctx, &models.Admin{Account: base, Pic: p.Pic})
	}
	return nil, models.ErrUnknownRole
}

// Login authenticates an account of role and returns it with a token.
// Accounts whose role requires approval cannot log in before an admin approved them.
func (s *Service) Login(ctx context.Context, role models.Role, emailAddr, password string) (*Session, error) {
	account, err := s.repo.GetIdentityByEmail(ctx, role, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "role", role, "email", emailAddr, "reason", "not_found")
			s.metrics.Login(string(role), "invalid")
			return nil, authctx.ErrInvalidCredentials
		}
		if errors.Is(err, models.ErrUnknownRole) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get %s: %w", role, err)
	}

	base := account.Base()
	if err := bcrypt.CompareHashAndPassword([]byte(base.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "role", role, "email", emailAddr, "reason", "invalid_password")
		s.metrics.Login(string(role), "invalid")
		return nil, authctx.ErrInvalidCredentials
	}

	if !s.policy.Permits(authctx.FromModel(account)) {
		slog.Warn("login_failed", "role", role, "id", base.ID, "reason", "not_approved")
		s.metrics.Login(string(role), "not_approved")
		return nil, authctx.ErrNotApproved
	}

	slog.Info("login_success", "role", role, "id", base.ID, "email", base.Email)
	s.metrics.Login(string(role), "success")
	return s.session(account)
}

func (s *Service) session(account models.Identity) (*Session, error) {
	raw, expires, err := s.tokens.Issue(authctx.FromModel(account))
	if err != nil {
		return nil, err
	}
	return &Session{Account: account, Token: raw, ExpiresAt: expires}, nil
}

// Resolve loads the identity a verified token refers to.
func (s *Service) Resolve(ctx context.Context, role models.Role, id int64) (*authctx.Identity, error) {
	account, err := s.repo.GetIdentityByID(ctx, role, id)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, models.ErrUnknownRole) {
		return nil, authctx.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", role, err)
	}
	return authctx.FromModel(account), nil
}

// Account loads the full record of an identity.
func (s *Service) Account(ctx context.Context, id *authctx.Identity) (models.Identity, error) {
	account, err := s.repo.GetIdentityByID(ctx, id.Role, id.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, authctx.ErrIdentityNotFound
	}
	return account, err
}

// EmailExists reports whether an account of role is registered with emailAddr.
func (s *Service) EmailExists(ctx context.Context, role models.Role, emailAddr string) (bool, error) {
	if strings.TrimSpace(emailAddr) == "" {
		return false, fmt.Errorf("%w: email", ErrMissingField)
	}
	return s.repo.EmailExists(ctx, role, emailAddr)
}

// ProfileParams holds the editable profile fields. Empty fields are left unchanged.
type ProfileParams struct {
	Name            string
	CompanyName     string
	InstitutionID   string
	UniversityName  string
	DOB             string
	EducationLevel  string
	FieldOfInterest string
}

func keep(current, update string) string {
	if v := strings.TrimSpace(update); v != "" {
		return v
	}
	return current
}

// UpdatePartnerProfile updates the profile of a partner.
func (s *Service) UpdatePartnerProfile(ctx context.Context, id int64, p ProfileParams) (*models.Partner, error) {
	partner, err := s.repo.GetPartnerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	partner.Name = keep(partner.Name, p.Name)
	partner.CompanyName = keep(partner.CompanyName, p.CompanyName)
	partner.InstitutionID = keep(partner.InstitutionID, p.InstitutionID)

	if err := s.repo.UpdatePartnerProfile(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}
	return s.repo.GetPartnerByID(ctx, id)
}

// UpdateUserProfile updates the profile of a student.
func (s *Service) UpdateUserProfile(ctx context.Context, id int64, p ProfileParams) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = keep(user.Name, p.Name)
	user.UniversityName = keep(user.UniversityName, p.UniversityName)
	user.DOB = keep(user.DOB, p.DOB)
	user.EducationLevel = keep(user.EducationLevel, p.EducationLevel)
	user.FieldOfInterest = keep(user.FieldOfInterest, p.FieldOfInterest)

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.repo.GetUserByID(ctx, id)
}

// EnsureAdmin makes sure an approved admin with emailAddr exists.
func (s *Service) EnsureAdmin(ctx context.Context, emailAddr, password, name string) error {
	if emailAddr == "" || password == "" {
		return ErrAdminBootstrap
	}

	existing, err := s.repo.GetAdminByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		if existing.Approved {
			return nil
		}
		if err := s.repo.SetApproval(ctx, repository.KindAdmin, existing.ID, existing.Version, true); err != nil {
			return fmt.Errorf("failed to approve admin: %w", err)
		}
		slog.Info("admin_bootstrap_approved", "id", existing.ID, "email", existing.Email)
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to get admin: %w", err)
	}

	if name == "" {
		name = "Administrator"
	}
	params := RegisterParams{Role: models.RoleAdmin, Name: name, Email: emailAddr, Password: password}
	params.normalize()
	if err := params.validate(); err != nil {
		return err
	}
	if err := s.passwordValidator.Validate(password, params.Email); err != nil {
		return err
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	admin, err := s.repo.CreateAdmin(ctx, &models.Admin{Account: models.Account{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Approval:     models.Approval{Approved: true, Reviewed: true},
	}})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("admin_bootstrap_created", "id", admin.ID, "email", admin.Email)
	return nil
}

// RequestPasswordReset mails a reset code to the account of role with emailAddr.
// Unknown addresses are not reported to the caller.
func (s *Service) RequestPasswordReset(ctx context.Context, role models.Role, emailAddr string) error {
	account, err := s.repo.GetIdentityByEmail(ctx, role, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("password_reset_unknown_email", "role", role, "email", emailAddr)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", role, err)
	}
	base := account.Base()

	code, codeHash, err := s.recovery.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.repo.SavePasswordReset(ctx, role, base.ID, codeHash, s.now().Add(recovery.CodeExpiry)); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	to := email.Recipient{Name: base.Name, Email: base.Email}
	if err := s.notifier.SendPasswordReset(ctx, to, code, recovery.CodeExpiry); err != nil {
		s.metrics.NotificationFailed("password_reset")
		return fmt.Errorf("failed to send reset code: %w", err)
	}

	slog.Info("password_reset_requested", "role", role, "id", base.ID)
	return nil
}

// ResetPassword replaces the password if code is the pending reset code of the account.
func (s *Service) ResetPassword(ctx context.Context, role models.Role, emailAddr, code, newPassword string) error {
	account, err := s.repo.GetIdentityByEmail(ctx, role, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", role, err)
	}
	base := account.Base()

	tok, err := s.repo.GetPasswordReset(ctx, role, base.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("failed to get reset code: %w", err)
	}

	if tok.Expired(s.now()) || tok.Attempts >= recovery.MaxAttempts {
		_ = s.repo.DeletePasswordReset(ctx, role, base.ID)
		return ErrInvalidCode
	}
	if !s.recovery.Verify(tok.CodeHash, code) {
		if err := s.repo.IncrementPasswordResetAttempts(ctx, tok.ID); err != nil {
			return fmt.Errorf("failed to count attempt: %w", err)
		}
		slog.Warn("password_reset_failed", "role", role, "id", base.ID, "attempts", tok.Attempts+1)
		return ErrInvalidCode
	}

	if err := s.passwordValidator.Validate(newPassword, base.Email, base.Name); err != nil {
		return err
	}
	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, role, base.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.repo.DeletePasswordReset(ctx, role, base.ID); err != nil {
		return fmt.Errorf("failed to delete reset code: %w", err)
	}

	slog.Info("password_reset_success", "role", role, "id", base.ID)
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	cost := s.config.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
