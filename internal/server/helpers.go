package server

import (
	"errors"
	"io"

	"bookmarket/internal/models"
	"bookmarket/internal/repository"
	"bookmarket/internal/service"
	"bookmarket/internal/session"
	"bookmarket/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the caller set by AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func currentClaims(c *fiber.Ctx) (*session.Claims, bool) {
	claims, ok := c.Locals("claims").(*session.Claims)
	return claims, ok
}

// pageQuery reads ?page and ?limit.
func pageQuery(c *fiber.Ctx) (repository.PageQuery, error) {
	page, limit, err := validation.ParsePageParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		return repository.PageQuery{}, err
	}
	return repository.PageQuery{Page: page, Limit: limit}, nil
}

func respondPage(c *fiber.Ctx, message string, page *repository.Page) error {
	return models.RespondPaginated(c, message, page.Items, page.Meta())
}

// readImage loads the multipart "file" part. A missing part yields an empty
// input, which the image service rejects.
func readImage(c *fiber.Ctx) (service.ImageInput, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return service.ImageInput{}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return service.ImageInput{}, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.ImageInput{}, models.NewValidationError("Unable to read uploaded file")
	}
	return service.ImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

func listingForm(c *fiber.Ctx) validation.ListingForm {
	return validation.ListingForm{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Publisher:   c.FormValue("publisher"),
		PublishYear: c.FormValue("publishYear"),
		BuyPrice:    c.FormValue("buyPrice"),
		FinalPrice:  c.FormValue("finalPrice"),
		ISBN:        c.FormValue("ISBN"),
		Language:    c.FormValue("language"),
		Description: c.FormValue("description"),
	}
}

// parseListing reads and validates the multipart listing fields and the image.
func parseListing(c *fiber.Ctx, withFinalPrice bool) (*validation.ListingInput, service.ImageInput, error) {
	in, err := validation.ParseListingForm(listingForm(c), withFinalPrice)
	if err != nil {
		return nil, service.ImageInput{}, err
	}
	img, err := readImage(c)
	if err != nil {
		return nil, service.ImageInput{}, err
	}
	return in, img, nil
}

var errMissingClaims = errors.New("session claims missing from request")
