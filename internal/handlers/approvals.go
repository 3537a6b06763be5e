// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/services/approval"
)

// resources names each approval subject in response messages.
var resources = map[approval.Subject]string{
	approval.SubjectUser:       "User",
	approval.SubjectPartner:    "Partner",
	approval.SubjectAdmin:      "Admin",
	approval.SubjectInternship: "Internship",
}

// DecisionRequest is the optional body of the reject endpoints.
type DecisionRequest struct {
	Reason string `json:"reason"`
}

// Decide returns the handler applying t to the subject identified by the
// path parameter param.
func (h *Handlers) Decide(subject approval.Subject, t approval.Transition, param string) echo.HandlerFunc {
	resource := resources[subject]

	return func(c echo.Context) error {
		id, err := paramID(c, param)
		if err != nil {
			return writeError(c, resource, err)
		}

		var req DecisionRequest
		if t == approval.Reject {
			if err := bind(c, &req); err != nil {
				return writeError(c, resource, err)
			}
		}

		res, err := h.approvals.Apply(c.Request().Context(), subject, id, t, req.Reason)
		if err != nil {
			return writeError(c, resource, err)
		}

		switch {
		case res.Removed:
			return c.JSON(http.StatusOK, message(resource+" rejected and removed."))
		case t == approval.Approve:
			return c.JSON(http.StatusOK, message(resource+" approved successfully."))
		default:
			return c.JSON(http.StatusOK, message(resource+" rejected successfully."))
		}
	}
}
