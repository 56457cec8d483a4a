package validation

import (
	"strconv"
	"strings"

	"bookmarket/internal/models"
)

// ParsePageParams reads the page and limit query values. Missing values come
// back as zero so the repository defaults apply.
func ParsePageParams(page, limit string) (int, int, error) {
	p, err := optionalPositive("page", page)
	if err != nil {
		return 0, 0, err
	}
	l, err := optionalPositive("limit", limit)
	if err != nil {
		return 0, 0, err
	}
	return p, l, nil
}

func optionalPositive(field, value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, models.NewValidationError(field + " must be a positive integer")
	}
	return n, nil
}
