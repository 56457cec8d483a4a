// Package validation turns raw request input into typed values, rejecting
// anything malformed with a VALIDATION_ERROR.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"bookmarket/internal/models"
)

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", models.NewValidationError(field + " is required")
	}
	return v, nil
}

func parseNumber(field, value string) (float64, error) {
	v, err := required(field, value)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, models.NewValidationError(field + " must be a number")
	}
	if n < 0 {
		return 0, models.NewValidationError(field + " must not be negative")
	}
	return n, nil
}

func parseInt(field, value string) (int, error) {
	v, err := required(field, value)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, models.NewValidationError(fmt.Sprintf("%s must be an integer", field))
	}
	return n, nil
}
