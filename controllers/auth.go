package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/identity"
)

type SignInProvider interface {
	SignIn(ctx context.Context, email, password string) (string, *identity.UserRecord, error)
	TTL() time.Duration
}

type Auth struct {
	provider SignInProvider
}

func NewAuth(provider SignInProvider) *Auth {
	return &Auth{provider: provider}
}

// SignIn exchanges email and password for an ID token.
func (h *Auth) SignIn(c *fiber.Ctx) error {
	type SignInInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(SignInInput)
	if err := c.BodyParser(input); err != nil {
		return callable.WriteError(c, callable.NewError(callable.InvalidArgument, "Cannot parse JSON"))
	}
	if input.Email == "" || input.Password == "" {
		return callable.WriteError(c, callable.NewError(callable.InvalidArgument, "Missing email or password"))
	}

	token, rec, err := h.provider.SignIn(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return callable.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"idToken":   token,
		"uid":       rec.UID,
		"expiresIn": int(h.provider.TTL().Seconds()),
	})
}
