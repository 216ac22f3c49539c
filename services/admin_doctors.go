package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
)

type AdminDoctors struct {
	store           store.Store
	defaultCurrency string
	log             zerolog.Logger
	now             func() time.Time
}

func NewAdminDoctors(st store.Store, defaultCurrency string, log zerolog.Logger) *AdminDoctors {
	return &AdminDoctors{
		store:           st,
		defaultCurrency: defaultCurrency,
		log:             log.With().Str("component", "admin_doctors").Logger(),
		now:             time.Now,
	}
}

// CreateDoctorInput fields are stored as given; none are required.
type CreateDoctorInput struct {
	FullName          string  `json:"fullName"`
	Email             string  `json:"email"`
	Experience        string  `json:"experience"`
	AboutMe           string  `json:"aboutMe"`
	CategoryID        string  `json:"categoryId"`
	CategoryName      string  `json:"categoryName"`
	PhotoURL          string  `json:"photoUrl"`
	ConsultationPrice float64 `json:"consultationPrice"`
	Currency          string  `json:"currency"`
}

// CreateDoctor inserts an unlinked, inactive doctor with an empty week and
// returns its id.
func (s *AdminDoctors) CreateDoctor(ctx context.Context, caller *identity.Token, in CreateDoctorInput) (string, error) {
	if err := requireAdmin(ctx, s.store, caller, "Login required"); err != nil {
		return "", err
	}

	currency := in.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	doctor := &models.Doctor{
		UserID:            nil,
		Name:              in.FullName,
		Email:             in.Email,
		Experience:        in.Experience,
		AboutMe:           in.AboutMe,
		CategoryID:        in.CategoryID,
		CategoryName:      in.CategoryName,
		PhotoURL:          in.PhotoURL,
		ConsultationPrice: in.ConsultationPrice,
		Currency:          currency,
		Availability:      models.EmptyWeek(),
		Available:         false,
		Activated:         false,
		CreatedAt:         s.now(),
	}
	id, err := s.store.AddDoctor(ctx, doctor)
	if err != nil {
		return "", fmt.Errorf("add doctor: %w", err)
	}

	s.log.Info().Str("doctor_id", id).Str("by", caller.UID).Msg("doctor created")
	return id, nil
}
