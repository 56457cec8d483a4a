package validation

import (
	"time"

	"bookmarket/internal/models"
)

// ListingForm holds the raw multipart text fields of a listing request.
type ListingForm struct {
	Title       string
	Author      string
	Publisher   string
	PublishYear string
	BuyPrice    string
	FinalPrice  string
	ISBN        string
	Language    string
	Description string
}

// ListingInput is a validated listing form.
type ListingInput struct {
	Title       string
	Author      string
	Publisher   string
	PublishYear int
	BuyPrice    float64
	FinalPrice  float64
	ISBN        string
	Language    string
	Description string
}

// ParseListingForm validates a create form. withFinalPrice also requires
// the seller-set final price, which only exists on updates.
func ParseListingForm(form ListingForm, withFinalPrice bool) (*ListingInput, error) {
	var (
		in  ListingInput
		err error
	)
	if in.Title, err = required("title", form.Title); err != nil {
		return nil, err
	}
	if in.Author, err = required("author", form.Author); err != nil {
		return nil, err
	}
	if in.Publisher, err = required("publisher", form.Publisher); err != nil {
		return nil, err
	}
	if in.PublishYear, err = parseInt("publishYear", form.PublishYear); err != nil {
		return nil, err
	}
	if in.PublishYear < 1 || in.PublishYear > time.Now().Year()+1 {
		return nil, models.NewValidationError("publishYear is out of range")
	}
	if in.BuyPrice, err = ParseBuyPrice(form.BuyPrice); err != nil {
		return nil, err
	}
	if withFinalPrice {
		if in.FinalPrice, err = parseNumber("finalPrice", form.FinalPrice); err != nil {
			return nil, err
		}
	}
	if in.ISBN, err = required("ISBN", form.ISBN); err != nil {
		return nil, err
	}
	if in.Language, err = required("language", form.Language); err != nil {
		return nil, err
	}
	if in.Description, err = required("description", form.Description); err != nil {
		return nil, err
	}
	return &in, nil
}

// ParseBuyPrice validates the declared purchase price sent with an image.
func ParseBuyPrice(value string) (float64, error) {
	return parseNumber("buyPrice", value)
}
