package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var reservedClaims = map[string]bool{
	"sub": true, "uid": true, "email": true, "exp": true, "iat": true,
	"nbf": true, "iss": true, "aud": true, "jti": true, "auth_time": true,
}

// Local stores accounts with bcrypt hashes and issues HS256 ID tokens.
type Local struct {
	accounts AccountStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

var _ Provider = (*Local)(nil)

func NewLocal(accounts AccountStore, secret string, ttl time.Duration) *Local {
	return &Local{
		accounts: accounts,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (l *Local) CreateUser(ctx context.Context, params UserToCreate) (*UserRecord, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(params.Password) < 6 {
		return nil, ErrInvalidPassword
	}

	// Check if an account already uses this email
	if _, err := l.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := l.now()
	account := &Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  params.DisplayName,
		CustomClaims: map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := l.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account.record(), nil
}

// SetCustomUserClaims replaces the account's custom claims.
func (l *Local) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	for k := range claims {
		if reservedClaims[k] {
			return fmt.Errorf("%w: %q", ErrReservedClaim, k)
		}
	}
	account, err := l.accounts.Get(ctx, uid)
	if err != nil {
		return err
	}
	account.CustomClaims = claims
	account.UpdatedAt = l.now()
	return l.accounts.Save(ctx, account)
}

func (l *Local) UpdateUser(ctx context.Context, uid string, params UserToUpdate) (*UserRecord, error) {
	account, err := l.accounts.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if params.Disabled != nil {
		account.Disabled = *params.Disabled
	}
	if params.DisplayName != nil {
		account.DisplayName = *params.DisplayName
	}
	account.UpdatedAt = l.now()
	if err := l.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return account.record(), nil
}

func (l *Local) DeleteUser(ctx context.Context, uid string) error {
	return l.accounts.Delete(ctx, uid)
}

// SignIn checks credentials and returns a signed ID token carrying the
// account's custom claims.
func (l *Local) SignIn(ctx context.Context, email, password string) (string, *UserRecord, error) {
	account, err := l.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if account.Disabled {
		return "", nil, ErrUserDisabled
	}

	now := l.now()
	claims := jwt.MapClaims{}
	for k, v := range account.CustomClaims {
		claims[k] = v
	}
	claims["sub"] = account.UID
	claims["uid"] = account.UID
	claims["email"] = account.Email
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(l.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(l.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, account.record(), nil
}

// TTL is the lifetime of tokens issued by SignIn.
func (l *Local) TTL() time.Duration {
	return l.ttl
}

// TokenFromClaims converts verified JWT claims into a Token.
func TokenFromClaims(claims jwt.MapClaims) (*Token, error) {
	uid, _ := claims["sub"].(string)
	if uid == "" {
		uid, _ = claims["uid"].(string)
	}
	if uid == "" {
		return nil, errors.New("identity: token has no subject")
	}
	return &Token{UID: uid, Claims: map[string]interface{}(claims)}, nil
}
