package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Account is the stored credential record.
type Account struct {
	UID          string                 `gorm:"primaryKey"`
	Email        string                 `gorm:"uniqueIndex"`
	PasswordHash string
	DisplayName  string
	Disabled     bool
	CustomClaims map[string]interface{} `gorm:"serializer:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Account) TableName() string {
	return "auth_accounts"
}

func (a *Account) record() *UserRecord {
	return &UserRecord{
		UID:          a.UID,
		Email:        a.Email,
		DisplayName:  a.DisplayName,
		Disabled:     a.Disabled,
		CustomClaims: a.CustomClaims,
		CreatedAt:    a.CreatedAt,
	}
}

// AccountStore persists accounts. Lookups of a missing account return ErrUserNotFound.
type AccountStore interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, uid string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Save(ctx context.Context, a *Account) error
	Delete(ctx context.Context, uid string) error
}

type GormAccounts struct {
	db *gorm.DB
}

func NewGormAccounts(db *gorm.DB) *GormAccounts {
	return &GormAccounts{db: db}
}

func (g *GormAccounts) Create(ctx context.Context, a *Account) error {
	if err := g.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (g *GormAccounts) Get(ctx context.Context, uid string) (*Account, error) {
	var a Account
	if err := g.db.WithContext(ctx).First(&a, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get account %s: %w", uid, err)
	}
	return &a, nil
}

func (g *GormAccounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := g.db.WithContext(ctx).First(&a, "email = ?", strings.ToLower(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

func (g *GormAccounts) Save(ctx context.Context, a *Account) error {
	if err := g.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("save account %s: %w", a.UID, err)
	}
	return nil
}

func (g *GormAccounts) Delete(ctx context.Context, uid string) error {
	res := g.db.WithContext(ctx).Where("uid = ?", uid).Delete(&Account{})
	if res.Error != nil {
		return fmt.Errorf("delete account %s: %w", uid, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
