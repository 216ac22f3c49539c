package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/callable"
)

type PhotoUploader interface {
	Upload(ctx context.Context, file interface{}, publicID string) (string, error)
}

type Media struct {
	uploader PhotoUploader
	log      zerolog.Logger
}

func NewMedia(uploader PhotoUploader, log zerolog.Logger) *Media {
	return &Media{uploader: uploader, log: log}
}

// UploadDoctorPhoto stores the multipart "photo" field and returns its URL
// for use as adminCreateDoctor's photoUrl.
func (h *Media) UploadDoctorPhoto(c *fiber.Ctx) error {
	fh, err := c.FormFile("photo")
	if err != nil {
		return callable.WriteError(c, callable.NewError(callable.InvalidArgument, "Missing photo file"))
	}
	f, err := fh.Open()
	if err != nil {
		return callable.WriteError(c, callable.NewError(callable.InvalidArgument, "Unreadable photo file"))
	}
	defer f.Close()

	url, err := h.uploader.Upload(c.UserContext(), f, uuid.NewString())
	if err != nil {
		h.log.Error().Err(err).Str("filename", fh.Filename).Msg("photo upload failed")
		return callable.WriteError(c, err)
	}
	return c.JSON(fiber.Map{"photoUrl": url})
}

// Health reports liveness.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}
