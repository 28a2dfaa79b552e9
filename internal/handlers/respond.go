package handlers

import (
	"errors"
	"strings"

	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

var validate = validator.New()

// bindAndValidate decodes the body into dst and checks its validate tags.
// It writes the 400 itself and reports whether the handler may continue.
func bindAndValidate(c *drift.Context, dst any) bool {
	if err := c.BindJSON(dst); err != nil {
		c.BadRequest("invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
			}
			c.BadRequest("invalid fields: " + strings.Join(fields, ", "))
			return false
		}
		c.BadRequest("invalid request body")
		return false
	}
	return true
}

func paramID(c *drift.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + name)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto HTTP statuses. fallback is the
// message of the 500.
func respondError(c *drift.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.NotFound("not found")
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden("insufficient permissions")
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("invalid email or password")
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidType),
		errors.Is(err, services.ErrInvalidPreferences):
		c.BadRequest(err.Error())
	default:
		c.InternalServerError(fallback)
	}
}
