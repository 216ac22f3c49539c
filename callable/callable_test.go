package callable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/store"
)

func TestCode_Status(t *testing.T) {
	if got := PermissionDenied.Status(); got != "PERMISSION_DENIED" {
		t.Errorf("status = %q", got)
	}
	if got := InvalidArgument.HTTPStatus(); got != 400 {
		t.Errorf("http status = %d", got)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{NewError(PermissionDenied, "Admin only"), PermissionDenied},
		{fmt.Errorf("wrapped: %w", NewError(InvalidArgument, "x")), InvalidArgument},
		{fmt.Errorf("update user: %w", store.ErrNotFound), NotFound},
		{identity.ErrUserNotFound, NotFound},
		{identity.ErrEmailExists, AlreadyExists},
		{identity.ErrInvalidPassword, InvalidArgument},
		{errors.New("connection refused"), Internal},
	}
	for _, tt := range tests {
		if got := FromError(tt.err).Code; got != tt.want {
			t.Errorf("FromError(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestFromError_HidesInternalDetail(t *testing.T) {
	ce := FromError(errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	if strings.Contains(ce.Message, "10.0.0.1") {
		t.Errorf("internal message leaked: %q", ce.Message)
	}
}

func newTestApp(fn Func, tok *identity.Token) *fiber.App {
	app := fiber.New()
	app.Post("/fn", func(c *fiber.Ctx) error {
		if tok != nil {
			c.Locals(AuthLocal, tok)
		}
		return c.Next()
	}, Handler("fn", fn, zerolog.Nop()))
	return app
}

func TestHandler_Success(t *testing.T) {
	var gotUID string
	var payload struct {
		Name string `json:"name"`
	}
	app := newTestApp(func(ctx context.Context, req *Request) (map[string]interface{}, error) {
		gotUID = req.Auth.UID
		if err := req.Bind(&payload); err != nil {
			return nil, err
		}
		return map[string]interface{}{"success": true}, nil
	}, &identity.Token{UID: "caller"})

	req := httptest.NewRequest("POST", "/fn", strings.NewReader(`{"data":{"name":"x"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Result["success"] != true {
		t.Errorf("result = %v", out.Result)
	}
	if gotUID != "caller" || payload.Name != "x" {
		t.Errorf("uid=%q name=%q", gotUID, payload.Name)
	}
}

func TestHandler_Error(t *testing.T) {
	app := newTestApp(func(ctx context.Context, req *Request) (map[string]interface{}, error) {
		return nil, NewError(PermissionDenied, "Admin only")
	}, nil)

	req := httptest.NewRequest("POST", "/fn", strings.NewReader(`{"data":{}}`))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"status":"PERMISSION_DENIED"`) {
		t.Errorf("body = %s", body)
	}
}

func TestHandler_MalformedBody(t *testing.T) {
	app := newTestApp(func(ctx context.Context, req *Request) (map[string]interface{}, error) {
		t.Fatal("handler should not run")
		return nil, nil
	}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/fn", strings.NewReader(`not json`)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRequest_BindRejectsWrongTypes(t *testing.T) {
	req := &Request{Data: json.RawMessage(`{"disabled":"yes"}`)}
	var v struct {
		Disabled *bool `json:"disabled"`
	}
	if err := req.Bind(&v); !IsCode(err, InvalidArgument) {
		t.Fatalf("expected invalid-argument, got %v", err)
	}
}
