package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/identity"
)

// Protected verifies a bearer ID token when one is sent and stores the
// resulting *identity.Token under callable.AuthLocal. Requests without an
// Authorization header pass through unauthenticated so each operation can
// decide how to reject them.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return jwtError(c, nil)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return jwtError(c, nil)
			}
			tok, err := identity.TokenFromClaims(claims)
			if err != nil {
				return jwtError(c, err)
			}
			c.Locals(callable.AuthLocal, tok)
			return c.Next()
		},
	})
}

// jwtError handles JWT errors
func jwtError(c *fiber.Ctx, _ error) error {
	return callable.WriteError(c, callable.NewError(callable.Unauthenticated, "Invalid or expired token"))
}

// AuthToken returns the verified token for the request, or nil.
func AuthToken(c *fiber.Ctx) *identity.Token {
	tok, _ := c.Locals(callable.AuthLocal).(*identity.Token)
	return tok
}
