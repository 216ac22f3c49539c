// Package identitytest provides an in-memory identity.Provider for tests.
package identitytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/meinhoongagan/doctor-appointment/identity"
)

// Fake records every call. The Err* fields make the matching call fail.
type Fake struct {
	mu    sync.Mutex
	users map[string]*identity.UserRecord
	seq   int
	Calls []string

	ErrCreate    error
	ErrSetClaims error
	ErrUpdate    error
	ErrDelete    error
}

var _ identity.Provider = (*Fake)(nil)

func New() *Fake {
	return &Fake{users: make(map[string]*identity.UserRecord)}
}

// Put seeds an account.
func (f *Fake) Put(rec identity.UserRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[rec.UID] = &rec
}

func (f *Fake) Get(uid string) (identity.UserRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.users[uid]
	if !ok {
		return identity.UserRecord{}, false
	}
	return *rec, true
}

func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *Fake) CreateUser(_ context.Context, params identity.UserToCreate) (*identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "CreateUser")
	if f.ErrCreate != nil {
		return nil, f.ErrCreate
	}
	for _, u := range f.users {
		if u.Email == params.Email {
			return nil, identity.ErrEmailExists
		}
	}
	f.seq++
	rec := &identity.UserRecord{
		UID:         fmt.Sprintf("uid-%d", f.seq),
		Email:       params.Email,
		DisplayName: params.DisplayName,
	}
	f.users[rec.UID] = rec
	cp := *rec
	return &cp, nil
}

func (f *Fake) SetCustomUserClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "SetCustomUserClaims")
	if f.ErrSetClaims != nil {
		return f.ErrSetClaims
	}
	rec, ok := f.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	rec.CustomClaims = claims
	return nil
}

func (f *Fake) UpdateUser(_ context.Context, uid string, params identity.UserToUpdate) (*identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "UpdateUser")
	if f.ErrUpdate != nil {
		return nil, f.ErrUpdate
	}
	rec, ok := f.users[uid]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	if params.Disabled != nil {
		rec.Disabled = *params.Disabled
	}
	if params.DisplayName != nil {
		rec.DisplayName = *params.DisplayName
	}
	cp := *rec
	return &cp, nil
}

func (f *Fake) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "DeleteUser")
	if f.ErrDelete != nil {
		return f.ErrDelete
	}
	if _, ok := f.users[uid]; !ok {
		return identity.ErrUserNotFound
	}
	delete(f.users, uid)
	return nil
}
