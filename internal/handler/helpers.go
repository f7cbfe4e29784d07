package handler

import (
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helpers for reading the caller set by the auth middleware
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return "system"
	}
	return userID
}

// currentUser returns the authenticated user's id, if any
func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// respondError maps service errors onto HTTP responses
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var verr *service.ValidationError
	var dup *service.DuplicateKeyError
	var ext *service.ExternalServiceError

	switch {
	case errors.As(err, &verr):
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "fields": verr.Fields})
	case errors.As(err, &dup):
		return c.Status(409).JSON(fiber.Map{"error": dup.Message, "fields": fiber.Map{dup.Field: dup.Message}})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "You do not have permission to perform this action"})
	case errors.As(err, &ext):
		log.Printf("%s failure: %v", ext.Service, err)
		return c.Status(502).JSON(fiber.Map{"error": ext.Message})
	default:
		log.Printf("%s: %v", fallback, err)
		return c.Status(500).JSON(fiber.Map{"error": fallback})
	}
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// formPhoto opens the optional "photo" file of a multipart request.
// The returned close func is never nil.
func formPhoto(c *fiber.Ctx) (*service.PhotoUpload, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, err
	}
	files := form.File["photo"]
	if len(files) == 0 {
		return nil, noop, nil
	}

	fh := files[0]
	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, noop, err
	}
	return &service.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Body:        f,
	}, func() { f.Close() }, nil
}
