package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/identity/identitytest"
	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store/storetest"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

var (
	adminCaller    = &identity.Token{UID: "admin-1"}
	customerCaller = &identity.Token{UID: "customer-1"}
)

func setup() (*storetest.Memory, *identitytest.Fake, *AdminUsers) {
	st := storetest.New()
	st.PutUser(models.User{ID: "admin-1", Role: models.RoleAdmin})
	st.PutUser(models.User{ID: "customer-1", Role: models.RoleCustomer})
	auth := identitytest.New()
	svc := NewAdminUsers(st, auth, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return st, auth, svc
}

func boolPtr(b bool) *bool { return &b }

func TestAdminOperations_RequireAdmin(t *testing.T) {
	ctx := context.Background()
	st, auth, svc := setup()
	doctors := NewAdminDoctors(st, "USD", zerolog.Nop())

	ops := map[string]func(*identity.Token) error{
		"createUser": func(c *identity.Token) error {
			_, err := svc.CreateUser(ctx, c, CreateUserInput{Email: "a@b.co", Password: "secret1", FullName: "A", Role: models.RoleCustomer})
			return err
		},
		"changeRole": func(c *identity.Token) error {
			return svc.ChangeRole(ctx, c, ChangeRoleInput{UID: "customer-1", Role: models.RoleAdmin})
		},
		"toggleDisabled": func(c *identity.Token) error {
			return svc.ToggleDisabled(ctx, c, ToggleDisabledInput{UID: "customer-1", Disabled: boolPtr(true)})
		},
		"deleteUser": func(c *identity.Token) error {
			return svc.DeleteUser(ctx, c, DeleteUserInput{UID: "customer-1"})
		},
		"createDoctor": func(c *identity.Token) error {
			_, err := doctors.CreateDoctor(ctx, c, CreateDoctorInput{FullName: "Dr"})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(nil); !callable.IsCode(err, callable.Unauthenticated) {
				t.Errorf("no caller: got %v, want unauthenticated", err)
			}
			if err := op(customerCaller); !callable.IsCode(err, callable.PermissionDenied) {
				t.Errorf("customer: got %v, want permission-denied", err)
			}
			if err := op(&identity.Token{UID: "ghost"}); !callable.IsCode(err, callable.PermissionDenied) {
				t.Errorf("no profile: got %v, want permission-denied", err)
			}
		})
	}

	if len(auth.Calls) != 0 {
		t.Errorf("identity provider was called: %v", auth.Calls)
	}
	if u, _ := st.User("customer-1"); u.Role != models.RoleCustomer || u.Disabled {
		t.Errorf("customer profile was modified: %+v", u)
	}
	if len(st.Doctors()) != 0 {
		t.Error("doctor was created")
	}
}

func TestCreateUser(t *testing.T) {
	st, auth, svc := setup()

	uid, err := svc.CreateUser(context.Background(), adminCaller, CreateUserInput{
		Email: "new@clinic.test", Password: "secret1", FullName: "New Person", Role: models.RoleDoctor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, ok := auth.Get(uid)
	if !ok || rec.DisplayName != "New Person" {
		t.Errorf("account = %+v, ok=%v", rec, ok)
	}
	u, ok := st.User(uid)
	if !ok {
		t.Fatal("profile not written")
	}
	if u.Role != models.RoleDoctor || u.Disabled || u.DoctorID != nil || !u.CreatedAt.Equal(fixedNow) {
		t.Errorf("profile = %+v", u)
	}
}

func TestCreateUser_InvalidInput(t *testing.T) {
	valid := CreateUserInput{Email: "x@y.test", Password: "secret1", FullName: "X", Role: models.RoleCustomer}
	tests := map[string]func(*CreateUserInput){
		"missing email":    func(in *CreateUserInput) { in.Email = "" },
		"missing password": func(in *CreateUserInput) { in.Password = "" },
		"missing name":     func(in *CreateUserInput) { in.FullName = "" },
		"missing role":     func(in *CreateUserInput) { in.Role = "" },
		"bad role":         func(in *CreateUserInput) { in.Role = "superuser" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			st, auth, svc := setup()
			in := valid
			mutate(&in)

			_, err := svc.CreateUser(context.Background(), adminCaller, in)
			if !callable.IsCode(err, callable.InvalidArgument) {
				t.Fatalf("got %v, want invalid-argument", err)
			}
			if auth.Len() != 0 {
				t.Error("account created")
			}
			if _, ok := st.User("uid-1"); ok {
				t.Error("profile created")
			}
		})
	}
}

func TestCreateUser_ProfileWriteFailureKeepsAccount(t *testing.T) {
	st, auth, svc := setup()
	st.ErrSetUser = errors.New("store down")

	_, err := svc.CreateUser(context.Background(), adminCaller, CreateUserInput{
		Email: "x@y.test", Password: "secret1", FullName: "X", Role: models.RoleCustomer,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if auth.Len() != 1 {
		t.Errorf("account count = %d, want 1 (no rollback)", auth.Len())
	}
}

func TestChangeRole(t *testing.T) {
	st, auth, svc := setup()
	auth.Put(identity.UserRecord{UID: "customer-1"})

	if err := svc.ChangeRole(context.Background(), adminCaller, ChangeRoleInput{UID: "customer-1", Role: models.RoleDoctor}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := auth.Get("customer-1")
	if rec.CustomClaims["role"] != "doctor" {
		t.Errorf("claims = %v", rec.CustomClaims)
	}
	u, _ := st.User("customer-1")
	if u.Role != models.RoleDoctor || u.UpdatedAt == nil || !u.UpdatedAt.Equal(fixedNow) {
		t.Errorf("profile = %+v", u)
	}
}

func TestChangeRole_InvalidRole(t *testing.T) {
	_, auth, svc := setup()
	err := svc.ChangeRole(context.Background(), adminCaller, ChangeRoleInput{UID: "customer-1", Role: "root"})
	if !callable.IsCode(err, callable.InvalidArgument) {
		t.Fatalf("got %v, want invalid-argument", err)
	}
	if len(auth.Calls) != 0 {
		t.Errorf("identity provider was called: %v", auth.Calls)
	}
}

func TestChangeRole_UnknownAccount(t *testing.T) {
	_, _, svc := setup()
	err := svc.ChangeRole(context.Background(), adminCaller, ChangeRoleInput{UID: "nobody", Role: models.RoleDoctor})
	if got := callable.FromError(err).Code; got != callable.NotFound {
		t.Fatalf("code = %s, want not-found", got)
	}
}

func TestToggleDisabled_Idempotent(t *testing.T) {
	st, auth, svc := setup()
	auth.Put(identity.UserRecord{UID: "customer-1"})

	for i := 0; i < 2; i++ {
		if err := svc.ToggleDisabled(context.Background(), adminCaller, ToggleDisabledInput{UID: "customer-1", Disabled: boolPtr(true)}); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	rec, _ := auth.Get("customer-1")
	u, _ := st.User("customer-1")
	if !rec.Disabled || !u.Disabled {
		t.Errorf("account disabled=%v profile disabled=%v", rec.Disabled, u.Disabled)
	}
}

func TestToggleDisabled_MissingFields(t *testing.T) {
	_, auth, svc := setup()
	ctx := context.Background()

	if err := svc.ToggleDisabled(ctx, adminCaller, ToggleDisabledInput{Disabled: boolPtr(true)}); !callable.IsCode(err, callable.InvalidArgument) {
		t.Errorf("missing uid: got %v", err)
	}
	if err := svc.ToggleDisabled(ctx, adminCaller, ToggleDisabledInput{UID: "customer-1"}); !callable.IsCode(err, callable.InvalidArgument) {
		t.Errorf("missing disabled: got %v", err)
	}
	if len(auth.Calls) != 0 {
		t.Errorf("identity provider was called: %v", auth.Calls)
	}
}

func TestDeleteUser(t *testing.T) {
	st, auth, svc := setup()
	auth.Put(identity.UserRecord{UID: "customer-1"})

	if err := svc.DeleteUser(context.Background(), adminCaller, DeleteUserInput{UID: "customer-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := st.User("customer-1"); ok {
		t.Error("profile still present")
	}
	if _, ok := auth.Get("customer-1"); ok {
		t.Error("account still present")
	}
	if got := auth.Calls; len(got) != 1 || got[0] != "DeleteUser" {
		t.Errorf("calls = %v", got)
	}
}

func TestDeleteUser_MissingUID(t *testing.T) {
	_, _, svc := setup()
	err := svc.DeleteUser(context.Background(), adminCaller, DeleteUserInput{})
	if !callable.IsCode(err, callable.InvalidArgument) {
		t.Fatalf("got %v, want invalid-argument", err)
	}
}

func TestDeleteUser_AccountFailureAfterProfileDelete(t *testing.T) {
	st, auth, svc := setup()
	auth.Put(identity.UserRecord{UID: "customer-1"})
	auth.ErrDelete = errors.New("provider down")

	if err := svc.DeleteUser(context.Background(), adminCaller, DeleteUserInput{UID: "customer-1"}); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := st.User("customer-1"); ok {
		t.Error("profile should already be deleted")
	}
}

func TestRegisterPushToken(t *testing.T) {
	st, _, svc := setup()
	ctx := context.Background()

	if err := svc.RegisterPushToken(ctx, nil, RegisterPushTokenInput{Token: "t"}); !callable.IsCode(err, callable.Unauthenticated) {
		t.Errorf("no caller: got %v", err)
	}
	if err := svc.RegisterPushToken(ctx, customerCaller, RegisterPushTokenInput{}); !callable.IsCode(err, callable.InvalidArgument) {
		t.Errorf("empty token: got %v", err)
	}
	if err := svc.RegisterPushToken(ctx, customerCaller, RegisterPushTokenInput{Token: "device-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := st.User("customer-1")
	if u.PushToken() != "device-1" {
		t.Errorf("token = %q", u.PushToken())
	}
}

func TestCreateDoctor(t *testing.T) {
	st, _, _ := setup()
	svc := NewAdminDoctors(st, "USD", zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }

	id, err := svc.CreateDoctor(context.Background(), adminCaller, CreateDoctorInput{
		FullName: "Ada Lee", Email: "ada@clinic.test", CategoryID: "cardio", ConsultationPrice: 40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := st.Doctors()
	if len(docs) != 1 || docs[0].ID != id {
		t.Fatalf("doctors = %+v", docs)
	}
	d := docs[0]
	if d.UserID != nil || d.Available || d.Activated {
		t.Errorf("doctor should be unlinked and inactive: %+v", d)
	}
	if d.Currency != "USD" || d.Name != "Ada Lee" || !d.CreatedAt.Equal(fixedNow) {
		t.Errorf("doctor = %+v", d)
	}
	if len(d.Availability) != 7 {
		t.Errorf("availability days = %d, want 7", len(d.Availability))
	}
	for day, slots := range d.Availability {
		if slots == nil || len(slots) != 0 {
			t.Errorf("%s slots = %v, want empty", day, slots)
		}
	}
}

func TestCreateDoctor_KeepsGivenCurrency(t *testing.T) {
	st, _, _ := setup()
	svc := NewAdminDoctors(st, "USD", zerolog.Nop())
	if _, err := svc.CreateDoctor(context.Background(), adminCaller, CreateDoctorInput{Currency: "EUR"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Doctors()[0].Currency; got != "EUR" {
		t.Errorf("currency = %q", got)
	}
}
