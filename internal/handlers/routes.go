// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/middleware"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/services/approval"
)

// Routes registers the API under g. credentials guards the endpoints that
// accept passwords or reset codes, typically with a rate limiter.
func (h *Handlers) Routes(g *echo.Group, credentials ...echo.MiddlewareFunc) {
	authn := middleware.Authenticate(h.auth.Tokens(), h.auth)
	approved := middleware.RequireApproved(h.auth.Policy())
	admin := []echo.MiddlewareFunc{authn, middleware.RequireRole(models.RoleAdmin), approved}
	partner := []echo.MiddlewareFunc{authn, middleware.RequireRole(models.RolePartner), approved}
	student := []echo.MiddlewareFunc{authn, middleware.RequireRole(models.RoleUser), approved}
	manager := []echo.MiddlewareFunc{authn, middleware.RequireRole(models.RolePartner, models.RoleAdmin), approved}

	g.POST("/login", h.Login(""), credentials...)
	g.GET("/me", h.Me, authn)

	users := g.Group("/users")
	users.POST("/register", h.Register(models.RoleUser), credentials...)
	users.POST("/login", h.Login(models.RoleUser), credentials...)
	users.POST("/check-email", h.CheckEmail(models.RoleUser))
	users.POST("/profile", h.UpdateUserProfile, authn, middleware.RequireRole(models.RoleUser))
	users.POST("/request-password-reset", h.RequestPasswordReset(models.RoleUser), credentials...)
	users.POST("/verify-otp-reset-password", h.ResetPassword(models.RoleUser), credentials...)
	users.PATCH("/approve/:userId", h.Decide(approval.SubjectUser, approval.Approve, "userId"), admin...)
	users.PATCH("/reject/:userId", h.Decide(approval.SubjectUser, approval.Reject, "userId"), admin...)

	partners := g.Group("/partners")
	partners.POST("/register", h.Register(models.RolePartner), credentials...)
	partners.POST("/login", h.Login(models.RolePartner), credentials...)
	partners.POST("/check-email", h.CheckEmail(models.RolePartner))
	partners.POST("/profile", h.UpdatePartnerProfile, authn, middleware.RequireRole(models.RolePartner))
	partners.POST("/request-password-reset", h.RequestPasswordReset(models.RolePartner), credentials...)
	partners.POST("/verify-otp-reset-password", h.ResetPassword(models.RolePartner), credentials...)
	partners.GET("/partners", h.ListPartners, admin...)
	partners.PATCH("/approve/:partnerId", h.Decide(approval.SubjectPartner, approval.Approve, "partnerId"), admin...)
	partners.PATCH("/reject/:partnerId", h.Decide(approval.SubjectPartner, approval.Reject, "partnerId"), admin...)

	admins := g.Group("/admins")
	admins.POST("/register", h.Register(models.RoleAdmin), credentials...)
	admins.POST("/login", h.Login(models.RoleAdmin), credentials...)
	admins.GET("", h.ListAdmins, admin...)
	admins.PATCH("/approve/:adminId", h.Decide(approval.SubjectAdmin, approval.Approve, "adminId"), admin...)
	admins.PATCH("/reject/:adminId", h.Decide(approval.SubjectAdmin, approval.Reject, "adminId"), admin...)

	internships := g.Group("/internships")
	internships.GET("", h.ListInternships)
	internships.GET("/mine", h.MyInternships, partner...)
	internships.GET("/review", h.ReviewInternships, admin...)
	internships.GET("/:id", h.GetInternship)
	internships.POST("", h.CreateInternship, partner...)
	internships.PUT("/:id", h.UpdateInternship, partner...)
	internships.DELETE("/:id", h.DeleteInternship, partner...)
	internships.PATCH("/:id/approve", h.Decide(approval.SubjectInternship, approval.Approve, "id"), admin...)
	internships.PATCH("/:id/reject", h.Decide(approval.SubjectInternship, approval.Reject, "id"), admin...)

	internships.POST("/:id/apply", h.Apply, student...)
	internships.GET("/:id/applications", h.ListApplications, manager...)
	g.GET("/applications/:id/resume", h.Resume, authn)

	internships.GET("/:id/messages", h.ListMessages, manager...)
	internships.POST("/:id/messages", h.SendMessage, manager...)
	internships.GET("/:id/messages/stream", h.StreamMessages,
		append([]echo.MiddlewareFunc{middleware.QueryToken("token")}, manager...)...)
}
