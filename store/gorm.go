package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/meinhoongagan/doctor-appointment/models"
)

// GormStore keeps each collection in its own Postgres table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	return &user, nil
}

func (s *GormStore) SetUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("set user %s: %w", user.ID, err)
	}
	return nil
}

func (s *GormStore) updateUser(ctx context.Context, uid string, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", uid, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpdateUserRole(ctx context.Context, uid string, role models.Role, at time.Time) error {
	return s.updateUser(ctx, uid, map[string]interface{}{"role": role, "updated_at": at})
}

func (s *GormStore) UpdateUserDisabled(ctx context.Context, uid string, disabled bool, at time.Time) error {
	return s.updateUser(ctx, uid, map[string]interface{}{"disabled": disabled, "updated_at": at})
}

func (s *GormStore) UpdateUserPushToken(ctx context.Context, uid, token string, at time.Time) error {
	return s.updateUser(ctx, uid, map[string]interface{}{"fcm_token": token, "updated_at": at})
}

func (s *GormStore) DeleteUser(ctx context.Context, uid string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", uid).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("delete user %s: %w", uid, err)
	}
	return nil
}

func (s *GormStore) AddDoctor(ctx context.Context, doctor *models.Doctor) (string, error) {
	if doctor.ID == "" {
		doctor.ID = NewID()
	}
	if err := s.db.WithContext(ctx).Create(doctor).Error; err != nil {
		return "", fmt.Errorf("add doctor: %w", err)
	}
	return doctor.ID, nil
}

func (s *GormStore) AddNotification(ctx context.Context, n *models.Notification) (string, error) {
	if n.ID == "" {
		n.ID = NewID()
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return "", fmt.Errorf("add notification: %w", err)
	}
	return n.ID, nil
}

func (s *GormStore) DueReminders(ctx context.Context, threshold time.Time, limit int) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status = ? AND reminder_sent = ? AND appointment_at <= ?", models.StatusApproved, false, threshold).
		Order("appointment_at asc").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	return appointments, nil
}

func (s *GormStore) Commit(ctx context.Context, b *Batch) error {
	if b.Len() == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(b.Notifications) > 0 {
			if err := tx.Create(b.Notifications).Error; err != nil {
				return fmt.Errorf("insert notifications: %w", err)
			}
		}
		for _, id := range b.ReminderSent {
			res := tx.Model(&models.Appointment{}).Where("id = ?", id).Update("reminder_sent", true)
			if res.Error != nil {
				return fmt.Errorf("mark reminder sent %s: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("mark reminder sent %s: %w", id, ErrNotFound)
			}
		}
		return nil
	})
}

// Close is a no-op; the connection pool belongs to the db package.
func (s *GormStore) Close(context.Context) error {
	return nil
}
