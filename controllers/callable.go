package controllers

import (
	"context"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/services"
)

// Callables binds request data to the admin services.
type Callables struct {
	users   *services.AdminUsers
	doctors *services.AdminDoctors
}

func NewCallables(users *services.AdminUsers, doctors *services.AdminDoctors) *Callables {
	return &Callables{users: users, doctors: doctors}
}

// Funcs maps each callable name to its operation.
func (h *Callables) Funcs() map[string]callable.Func {
	return map[string]callable.Func{
		"adminCreateUser":         h.CreateUser,
		"adminChangeUserRole":     h.ChangeUserRole,
		"adminToggleUserDisabled": h.ToggleUserDisabled,
		"adminDeleteUser":         h.DeleteUser,
		"adminCreateDoctor":       h.CreateDoctor,
		"registerPushToken":       h.RegisterPushToken,
	}
}

var success = map[string]interface{}{"success": true}

func (h *Callables) CreateUser(ctx context.Context, req *callable.Request) (map[string]interface{}, error) {
	var in services.CreateUserInput
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	uid, err := h.users.CreateUser(ctx, req.Auth, in)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "uid": uid}, nil
}

func (h *Callables) ChangeUserRole(ctx context.Context, req *callable.Request) (map[string]interface{}, error) {
	var in services.ChangeRoleInput
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if err := h.users.ChangeRole(ctx, req.Auth, in); err != nil {
		return nil, err
	}
	return success, nil
}

func (h *Callables) ToggleUserDisabled(ctx context.Context, req *callable.Request) (map[string]interface{}, error) {
	var in services.ToggleDisabledInput
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if err := h.users.ToggleDisabled(ctx, req.Auth, in); err != nil {
		return nil, err
	}
	return success, nil
}

func (h *Callables) DeleteUser(ctx context.Context, req *callable.Request) (map[string]interface{}, error) {
	var in services.DeleteUserInput
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if err := h.users.DeleteUser(ctx, req.Auth, in); err != nil {
		return nil, err
	}
	return success, nil
}

func (h *Callables) CreateDoctor(ctx context.Context, req *callable.Request) (map[string]interface{}, error) {
	var in services.CreateDoctorInput
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	id, err := h.doctors.CreateDoctor(ctx, req.Auth, in)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "doctorId": id}, nil
}

func (h *Callables) RegisterPushToken(ctx context.Context, req *callable.Request) (map[string]interface{}, error) {
	var in services.RegisterPushTokenInput
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if err := h.users.RegisterPushToken(ctx, req.Auth, in); err != nil {
		return nil, err
	}
	return success, nil
}
