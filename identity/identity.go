// Package identity is the account provider: credentials, the disabled flag
// and custom claims that are copied into every issued ID token.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("identity: no user record for the given identifier")
	ErrEmailExists        = errors.New("identity: email address is already in use")
	ErrInvalidEmail       = errors.New("identity: email address is malformed")
	ErrInvalidPassword    = errors.New("identity: password must be at least 6 characters")
	ErrReservedClaim      = errors.New("identity: custom claims may not use a reserved key")
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
	ErrUserDisabled       = errors.New("identity: user account is disabled")
)

// Provider is the account lifecycle surface the admin callables depend on.
type Provider interface {
	CreateUser(ctx context.Context, params UserToCreate) (*UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	UpdateUser(ctx context.Context, uid string, params UserToUpdate) (*UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

type UserToCreate struct {
	Email       string
	Password    string
	DisplayName string
}

// UserToUpdate carries only the fields to change; nil leaves a field as is.
type UserToUpdate struct {
	Disabled    *bool
	DisplayName *string
}

type UserRecord struct {
	UID          string                 `json:"uid"`
	Email        string                 `json:"email"`
	DisplayName  string                 `json:"displayName"`
	Disabled     bool                   `json:"disabled"`
	CustomClaims map[string]interface{} `json:"customClaims,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// Token is a verified ID token.
type Token struct {
	UID    string
	Claims map[string]interface{}
}

// Role returns the "role" custom claim, or "" when unset.
func (t *Token) Role() string {
	if t == nil {
		return ""
	}
	role, _ := t.Claims["role"].(string)
	return role
}
