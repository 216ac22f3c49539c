// Package services holds the admin operations behind the callable endpoints.
// Every operation authorizes the caller before validating input, and
// validates input before its first side effect.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// requireAdmin checks the caller's profile, not the token claim, so a role
// change takes effect before the caller's token is refreshed.
func requireAdmin(ctx context.Context, st store.Store, caller *identity.Token, unauthMsg string) error {
	if caller == nil || caller.UID == "" {
		return callable.NewError(callable.Unauthenticated, "%s", unauthMsg)
	}
	profile, err := st.GetUser(ctx, caller.UID)
	if errors.Is(err, store.ErrNotFound) {
		return callable.NewError(callable.PermissionDenied, "Admin only")
	}
	if err != nil {
		return fmt.Errorf("load caller profile: %w", err)
	}
	if profile.Role != models.RoleAdmin {
		return callable.NewError(callable.PermissionDenied, "Admin only")
	}
	return nil
}

// RequireAdmin is the admin gate used by non-callable admin routes.
func RequireAdmin(ctx context.Context, st store.Store, caller *identity.Token) error {
	return requireAdmin(ctx, st, caller, "Not logged in")
}
