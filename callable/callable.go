// Package callable implements the callable-function wire protocol on Fiber:
// requests are {"data": ...}, responses {"result": ...} or
// {"error": {"status", "message"}}.
package callable

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/identity"
)

// AuthLocal is the fiber.Ctx locals key holding the verified *identity.Token.
const AuthLocal = "auth"

type Request struct {
	// Auth is nil when the request carried no bearer token.
	Auth *identity.Token
	Data json.RawMessage
}

// Bind decodes Data into v. Malformed payloads are INVALID_ARGUMENT.
func (r *Request) Bind(v interface{}) error {
	if len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return NewError(InvalidArgument, "malformed request data: %v", err)
	}
	return nil
}

// Func is one callable operation. The returned map is sent as "result".
type Func func(ctx context.Context, req *Request) (map[string]interface{}, error)

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler adapts fn to a Fiber handler.
func Handler(name string, fn Func, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var env envelope
		if len(c.Body()) > 0 {
			if err := json.Unmarshal(c.Body(), &env); err != nil {
				return writeError(c, NewError(InvalidArgument, "request body must be a JSON object with a data field"))
			}
		}

		req := &Request{Data: env.Data}
		if tok, ok := c.Locals(AuthLocal).(*identity.Token); ok {
			req.Auth = tok
		}

		result, err := fn(c.UserContext(), req)
		if err != nil {
			ce := FromError(err)
			evt := log.Warn()
			if ce.Code == Internal {
				evt = log.Error()
			}
			evt.Err(err).Str("callable", name).Str("code", string(ce.Code)).Msg("callable failed")
			return writeError(c, ce)
		}
		if result == nil {
			result = map[string]interface{}{}
		}
		return c.JSON(fiber.Map{"result": result})
	}
}

// WriteError sends err in the callable error envelope.
func WriteError(c *fiber.Ctx, err error) error {
	return writeError(c, FromError(err))
}

func writeError(c *fiber.Ctx, ce *Error) error {
	return c.Status(ce.Code.HTTPStatus()).JSON(fiber.Map{
		"error": errorBody{Status: ce.Code.Status(), Message: ce.Message},
	})
}
