package server

import (
	"strings"

	"bookmarket/internal/models"
	"bookmarket/internal/service"
	"bookmarket/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PredictBook handles POST /book/predict
// @Summary Grade a book image
// @Description Runs the condition model on the image and prices the book without saving anything
// @Tags book
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG or PNG image"
// @Param buyPrice formData number true "Price the seller paid"
// @Success 200 {object} models.Envelope{data=models.PredictionResult}
// @Failure 400 {object} models.Envelope
// @Failure 415 {object} models.Envelope
// @Router /book/predict [post]
func (s *Server) PredictBook(c *fiber.Ctx) error {
	buyPrice, err := validation.ParseBuyPrice(c.FormValue("buyPrice"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	img, err := readImage(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	result, err := s.listingService.Predict(c.UserContext(), service.PredictInput{Image: img, BuyPrice: buyPrice})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Prediction completed", result)
}

// GetOpenListings handles GET /book
// @Summary List open listings
// @Tags book
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.Envelope{data=[]models.TransactionPost}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /book [get]
func (s *Server) GetOpenListings(c *fiber.Ctx) error {
	q, err := pageQuery(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	page, err := s.listingService.ListOpen(c.UserContext(), currentUserID(c), q)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, "Listings retrieved", page)
}

// SearchListings handles GET /book/search
// @Summary Search open listings by title
// @Tags book
// @Produce json
// @Security BearerAuth
// @Param title query string false "Title substring, case-insensitive"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.Envelope{data=[]models.TransactionPost}
// @Failure 400 {object} models.Envelope
// @Router /book/search [get]
func (s *Server) SearchListings(c *fiber.Ctx) error {
	q, err := pageQuery(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	title := strings.TrimSpace(c.Query("title"))
	page, err := s.listingService.Search(c.UserContext(), currentUserID(c), title, q)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, "Listings retrieved", page)
}

// GetListing handles GET /book/:id
// @Summary Get a listing
// @Description Counts one view of the listing
// @Tags book
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Envelope{data=models.TransactionPost}
// @Failure 404 {object} models.Envelope
// @Router /book/{id} [get]
func (s *Server) GetListing(c *fiber.Ctx) error {
	post, err := s.listingService.GetByID(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Listing retrieved", post)
}

// GetMyListings handles GET /book/author
// @Summary List own listings
// @Tags book
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.Envelope{data=[]models.TransactionPost}
// @Failure 400 {object} models.Envelope
// @Router /book/author [get]
func (s *Server) GetMyListings(c *fiber.Ctx) error {
	q, err := pageQuery(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	page, err := s.listingService.ListMine(c.UserContext(), currentUserID(c), q)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, "Listings retrieved", page)
}

// GetMyListing handles GET /book/author/post/:id
// @Summary Get own listing
// @Tags book
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Envelope{data=models.TransactionPost}
// @Failure 404 {object} models.Envelope
// @Router /book/author/post/{id} [get]
func (s *Server) GetMyListing(c *fiber.Ctx) error {
	post, err := s.listingService.GetMine(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Listing retrieved", post)
}

// CreateListing handles POST /book/author/post
// @Summary Create a listing
// @Description Grades the image, prices the book and publishes the listing
// @Tags book
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG or PNG image"
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param publisher formData string true "Publisher"
// @Param publishYear formData int true "Publish year"
// @Param buyPrice formData number true "Price the seller paid"
// @Param ISBN formData string true "ISBN"
// @Param language formData string true "Language"
// @Param description formData string true "Description"
// @Success 201 {object} models.Envelope{data=models.TransactionPost}
// @Failure 400 {object} models.Envelope
// @Failure 415 {object} models.Envelope
// @Failure 500 {object} models.Envelope
// @Router /book/author/post [post]
func (s *Server) CreateListing(c *fiber.Ctx) error {
	listing, img, err := parseListing(c, false)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.listingService.CreateListing(c.UserContext(), service.CreateListingInput{
		UserID:  currentUserID(c),
		Listing: *listing,
		Image:   img,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Listing created", post)
}

// UpdateListing handles PUT /book/author/post/:id
// @Summary Update own listing
// @Description Re-grades the new image and replaces the listing fields
// @Tags book
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param file formData file true "JPEG or PNG image"
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param publisher formData string true "Publisher"
// @Param publishYear formData int true "Publish year"
// @Param buyPrice formData number true "Price the seller paid"
// @Param finalPrice formData number true "Asking price"
// @Param ISBN formData string true "ISBN"
// @Param language formData string true "Language"
// @Param description formData string true "Description"
// @Success 200 {object} models.Envelope{data=models.TransactionPost}
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Failure 415 {object} models.Envelope
// @Router /book/author/post/{id} [put]
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	listing, img, err := parseListing(c, true)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.listingService.UpdateListing(c.UserContext(), service.UpdateListingInput{
		UserID:  currentUserID(c),
		PostID:  c.Params("id"),
		Listing: *listing,
		Image:   img,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Listing updated", post)
}

// MarkListingSold handles PATCH /book/author/post/:id/sold
// @Summary Mark own listing as sold
// @Tags book
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Envelope{data=models.TransactionPost}
// @Failure 404 {object} models.Envelope
// @Router /book/author/post/{id}/sold [patch]
func (s *Server) MarkListingSold(c *fiber.Ctx) error {
	post, err := s.listingService.MarkSold(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Listing marked as sold", post)
}

// DeleteListing handles DELETE /book/author/post/:id
// @Summary Delete own listing
// @Tags book
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /book/author/post/{id} [delete]
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	if err := s.listingService.DeleteListing(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Listing deleted", nil)
}
