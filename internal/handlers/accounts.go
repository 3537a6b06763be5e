// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/models"
	authsvc "codeberg.org/skillnaav/portal/internal/services/auth"
)

// RegisterRequest is the body of the register endpoints.
// Fields that do not belong to the role are ignored.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`

	UniversityName  string `json:"university_name"`
	DOB             string `json:"dob"`
	EducationLevel  string `json:"education_level"`
	FieldOfInterest string `json:"field_of_interest"`

	CompanyName   string `json:"company_name"`
	InstitutionID string `json:"institution_id"`

	Pic string `json:"pic"`
}

// LoginRequest is the body of the login endpoints.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// sessionInfo is merged into the account JSON on register and login.
type sessionInfo struct {
	Role      models.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// sessionBody renders an account with its token as one flat object.
func sessionBody(s *authsvc.Session) any {
	info := sessionInfo{Role: s.Account.Role(), Token: s.Token, ExpiresAt: s.ExpiresAt}
	switch a := s.Account.(type) {
	case *models.User:
		return struct {
			*models.User
			sessionInfo
		}{a, info}
	case *models.Partner:
		return struct {
			*models.Partner
			sessionInfo
		}{a, info}
	case *models.Admin:
		return struct {
			*models.Admin
			sessionInfo
		}{a, info}
	}
	return info
}

// Register returns the register handler for role.
func (h *Handlers) Register(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req RegisterRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, "", err)
		}
		if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
			return c.JSON(http.StatusBadRequest, message("Passwords do not match."))
		}

		session, err := h.auth.Register(c.Request().Context(), authsvc.RegisterParams{
			Role:            role,
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			UniversityName:  req.UniversityName,
			DOB:             req.DOB,
			EducationLevel:  req.EducationLevel,
			FieldOfInterest: req.FieldOfInterest,
			CompanyName:     req.CompanyName,
			InstitutionID:   req.InstitutionID,
			Pic:             req.Pic,
		})
		if err != nil {
			return writeError(c, "", err)
		}
		return c.JSON(http.StatusCreated, sessionBody(session))
	}
}

// Login returns the login handler for role. The generic login passes an
// empty role and reads it from the body instead, defaulting to user.
func (h *Handlers) Login(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req LoginRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, "", err)
		}
		if req.Email == "" || req.Password == "" {
			return writeError(c, "", fmt.Errorf("%w: email and password are required", errInvalidRequest))
		}

		r := role
		if r == "" {
			r = models.RoleUser
			if req.Role != "" {
				parsed, err := models.ParseRole(req.Role)
				if err != nil {
					return writeError(c, "", err)
				}
				r = parsed
			}
		}

		session, err := h.auth.Login(c.Request().Context(), r, req.Email, req.Password)
		if err != nil {
			return writeError(c, "", err)
		}
		return c.JSON(http.StatusOK, sessionBody(session))
	}
}

// Me returns the account of the caller.
func (h *Handlers) Me(c echo.Context) error {
	account, err := h.auth.Account(c.Request().Context(), caller(c))
	if err != nil {
		return writeError(c, "Account", err)
	}
	return c.JSON(http.StatusOK, account)
}

// CheckEmail reports whether an account of role uses the email.
func (h *Handlers) CheckEmail(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := bind(c, &req); err != nil {
			return writeError(c, "", err)
		}
		exists, err := h.auth.EmailExists(c.Request().Context(), role, req.Email)
		if err != nil {
			return writeError(c, "", err)
		}
		return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
	}
}

// ProfileRequest is the body of the profile update endpoints.
type ProfileRequest struct {
	Name            string `json:"name"`
	CompanyName     string `json:"company_name"`
	InstitutionID   string `json:"institution_id"`
	UniversityName  string `json:"university_name"`
	DOB             string `json:"dob"`
	EducationLevel  string `json:"education_level"`
	FieldOfInterest string `json:"field_of_interest"`
}

func (r ProfileRequest) params() authsvc.ProfileParams {
	return authsvc.ProfileParams(r)
}

// UpdatePartnerProfile updates the profile of the calling partner.
func (h *Handlers) UpdatePartnerProfile(c echo.Context) error {
	var req ProfileRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, "", err)
	}
	partner, err := h.auth.UpdatePartnerProfile(c.Request().Context(), caller(c).ID, req.params())
	if err != nil {
		return writeError(c, "Partner", err)
	}
	return c.JSON(http.StatusOK, partner)
}

// UpdateUserProfile updates the profile of the calling student.
func (h *Handlers) UpdateUserProfile(c echo.Context) error {
	var req ProfileRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, "", err)
	}
	user, err := h.auth.UpdateUserProfile(c.Request().Context(), caller(c).ID, req.params())
	if err != nil {
		return writeError(c, "User", err)
	}
	return c.JSON(http.StatusOK, user)
}

// RequestPasswordReset mails a one-time code to an account of role.
// The answer is the same whether the account exists or not.
func (h *Handlers) RequestPasswordReset(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := bind(c, &req); err != nil {
			return writeError(c, "", err)
		}
		if req.Email == "" {
			return writeError(c, "", fmt.Errorf("%w: email", authsvc.ErrMissingField))
		}
		if err := h.auth.RequestPasswordReset(c.Request().Context(), role, req.Email); err != nil {
			return writeError(c, "", err)
		}
		return c.JSON(http.StatusOK, message("If the account exists, a reset code has been sent."))
	}
}

// ResetPasswordRequest is the body of the OTP verification endpoint.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// ResetPassword verifies the one-time code and replaces the password.
func (h *Handlers) ResetPassword(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req ResetPasswordRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, "", err)
		}
		err := h.auth.ResetPassword(c.Request().Context(), role, req.Email, req.OTP, req.NewPassword)
		if err != nil {
			return writeError(c, "", err)
		}
		return c.JSON(http.StatusOK, message("Password reset successfully."))
	}
}

// ListPartners returns all partners for admin review.
func (h *Handlers) ListPartners(c echo.Context) error {
	partners, err := h.repo.ListPartners(c.Request().Context())
	if err != nil {
		return writeError(c, "", err)
	}
	if len(partners) == 0 {
		return c.JSON(http.StatusNotFound, message("No partners found."))
	}
	return c.JSON(http.StatusOK, partners)
}

// ListAdmins returns all admins.
func (h *Handlers) ListAdmins(c echo.Context) error {
	admins, err := h.repo.ListAdmins(c.Request().Context())
	if err != nil {
		return writeError(c, "", err)
	}
	if len(admins) == 0 {
		return c.JSON(http.StatusNotFound, message("No admins found."))
	}
	return c.JSON(http.StatusOK, admins)
}
