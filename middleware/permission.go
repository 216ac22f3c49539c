package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// RequireRole checks the caller's stored profile, not the token claim, for role.
func RequireRole(st store.Store, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := AuthToken(c)
		if tok == nil {
			return callable.WriteError(c, callable.NewError(callable.Unauthenticated, "Not logged in"))
		}

		user, err := st.GetUser(c.UserContext(), tok.UID)
		if errors.Is(err, store.ErrNotFound) {
			return callable.WriteError(c, callable.NewError(callable.PermissionDenied, "User not found"))
		}
		if err != nil {
			return callable.WriteError(c, err)
		}
		if user.Role != role {
			return callable.WriteError(c, callable.NewError(callable.PermissionDenied, "You don't have the required role to perform this action"))
		}

		return c.Next()
	}
}
