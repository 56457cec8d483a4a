package models

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       any             `json:"data,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta is attached to list responses.
type PaginationMeta struct {
	Page  int   `json:"page"`
	Total int64 `json:"total"`
	Limit int   `json:"limit"`
}

func statusText(status int) string {
	switch status {
	case fiber.StatusOK:
		return "Success"
	default:
		return http.StatusText(status)
	}
}

// Respond writes data in the envelope with the given status.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Status:     statusText(status),
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// RespondPaginated writes a list page in the envelope.
func RespondPaginated(c *fiber.Ctx, message string, data any, meta PaginationMeta) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Status:     statusText(fiber.StatusOK),
		StatusCode: fiber.StatusOK,
		Message:    message,
		Data:       data,
		Pagination: &meta,
	})
}
