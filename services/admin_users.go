package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// AdminUsers manages identity accounts and their mirrored profiles. The two
// writes of each operation are not transactional: a failure after the first
// leaves the account and profile out of sync until an admin retries.
type AdminUsers struct {
	store store.Store
	auth  identity.Provider
	log   zerolog.Logger
	now   func() time.Time
}

func NewAdminUsers(st store.Store, auth identity.Provider, log zerolog.Logger) *AdminUsers {
	return &AdminUsers{
		store: st,
		auth:  auth,
		log:   log.With().Str("component", "admin_users").Logger(),
		now:   time.Now,
	}
}

type CreateUserInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role"`
}

type ChangeRoleInput struct {
	UID  string      `json:"uid"`
	Role models.Role `json:"role"`
}

type ToggleDisabledInput struct {
	UID      string `json:"uid"`
	Disabled *bool  `json:"disabled"`
}

type DeleteUserInput struct {
	UID string `json:"uid"`
}

type RegisterPushTokenInput struct {
	Token string `json:"token"`
}

// CreateUser creates the account and then the profile, returning the new uid.
func (s *AdminUsers) CreateUser(ctx context.Context, caller *identity.Token, in CreateUserInput) (string, error) {
	if err := requireAdmin(ctx, s.store, caller, "You must be logged in"); err != nil {
		return "", err
	}
	if in.Email == "" || in.Password == "" || in.FullName == "" || in.Role == "" {
		return "", callable.NewError(callable.InvalidArgument, "Missing required fields")
	}
	if !in.Role.Valid() {
		return "", callable.NewError(callable.InvalidArgument, "Invalid role")
	}

	rec, err := s.auth.CreateUser(ctx, identity.UserToCreate{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.FullName,
	})
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	profile := &models.User{
		ID:        rec.UID,
		FullName:  in.FullName,
		Email:     in.Email,
		Role:      in.Role,
		DoctorID:  nil,
		Disabled:  false,
		CreatedAt: s.now(),
	}
	if err := s.store.SetUser(ctx, profile); err != nil {
		s.log.Error().Err(err).Str("uid", rec.UID).Msg("account created but profile write failed")
		return "", fmt.Errorf("create profile: %w", err)
	}

	s.log.Info().Str("uid", rec.UID).Str("role", string(in.Role)).Str("by", caller.UID).Msg("user created")
	return rec.UID, nil
}

// ChangeRole sets the role claim and then mirrors it into the profile.
func (s *AdminUsers) ChangeRole(ctx context.Context, caller *identity.Token, in ChangeRoleInput) error {
	if err := requireAdmin(ctx, s.store, caller, "Not authenticated"); err != nil {
		return err
	}
	if !in.Role.Valid() {
		return callable.NewError(callable.InvalidArgument, "Invalid role")
	}
	if in.UID == "" {
		return callable.NewError(callable.InvalidArgument, "Missing uid")
	}

	if err := s.auth.SetCustomUserClaims(ctx, in.UID, map[string]interface{}{"role": string(in.Role)}); err != nil {
		return fmt.Errorf("set role claim: %w", err)
	}
	if err := s.store.UpdateUserRole(ctx, in.UID, in.Role, s.now()); err != nil {
		s.log.Error().Err(err).Str("uid", in.UID).Msg("role claim set but profile update failed")
		return fmt.Errorf("update profile role: %w", err)
	}

	s.log.Info().Str("uid", in.UID).Str("role", string(in.Role)).Str("by", caller.UID).Msg("role changed")
	return nil
}

// ToggleDisabled sets the account's disabled flag and mirrors it. Repeating
// the call with the same value is a no-op apart from updatedAt.
func (s *AdminUsers) ToggleDisabled(ctx context.Context, caller *identity.Token, in ToggleDisabledInput) error {
	if err := requireAdmin(ctx, s.store, caller, "Not logged in"); err != nil {
		return err
	}
	if in.UID == "" {
		return callable.NewError(callable.InvalidArgument, "Missing uid")
	}
	if in.Disabled == nil {
		return callable.NewError(callable.InvalidArgument, "Missing disabled flag")
	}

	if _, err := s.auth.UpdateUser(ctx, in.UID, identity.UserToUpdate{Disabled: in.Disabled}); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if err := s.store.UpdateUserDisabled(ctx, in.UID, *in.Disabled, s.now()); err != nil {
		s.log.Error().Err(err).Str("uid", in.UID).Msg("account updated but profile update failed")
		return fmt.Errorf("update profile disabled: %w", err)
	}

	s.log.Info().Str("uid", in.UID).Bool("disabled", *in.Disabled).Str("by", caller.UID).Msg("user disabled flag set")
	return nil
}

// DeleteUser removes the profile first, then the account.
func (s *AdminUsers) DeleteUser(ctx context.Context, caller *identity.Token, in DeleteUserInput) error {
	if err := requireAdmin(ctx, s.store, caller, "Not logged in"); err != nil {
		return err
	}
	if in.UID == "" {
		return callable.NewError(callable.InvalidArgument, "Missing uid")
	}

	if err := s.store.DeleteUser(ctx, in.UID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if err := s.auth.DeleteUser(ctx, in.UID); err != nil {
		s.log.Error().Err(err).Str("uid", in.UID).Msg("profile deleted but account delete failed")
		return fmt.Errorf("delete account: %w", err)
	}

	s.log.Info().Str("uid", in.UID).Str("by", caller.UID).Msg("user deleted")
	return nil
}

// RegisterPushToken stores the caller's own device token. Any signed-in user
// may call it.
func (s *AdminUsers) RegisterPushToken(ctx context.Context, caller *identity.Token, in RegisterPushTokenInput) error {
	if caller == nil || caller.UID == "" {
		return callable.NewError(callable.Unauthenticated, "Not logged in")
	}
	if in.Token == "" {
		return callable.NewError(callable.InvalidArgument, "Missing token")
	}
	if err := s.store.UpdateUserPushToken(ctx, caller.UID, in.Token, s.now()); err != nil {
		return fmt.Errorf("update push token: %w", err)
	}
	return nil
}
