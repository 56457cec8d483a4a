package validation

import (
	"testing"

	"bookmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.AsAppError(err).Code)
}

func validForm() ListingForm {
	return ListingForm{
		Title:       "  Laskar Pelangi ",
		Author:      "Andrea Hirata",
		Publisher:   "Bentang Pustaka",
		PublishYear: "2005",
		BuyPrice:    "100000",
		FinalPrice:  "85000",
		ISBN:        "979-3062-79-7",
		Language:    "Indonesian",
		Description: "Cover slightly worn",
	}
}

func TestParseListingForm(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		mutate         func(*ListingForm)
		withFinalPrice bool
		wantErr        bool
	}{
		{"Valid Create", func(*ListingForm) {}, false, false},
		{"Valid Update", func(*ListingForm) {}, true, false},
		{"Create Ignores Final Price", func(f *ListingForm) { f.FinalPrice = "" }, false, false},
		{"Update Requires Final Price", func(f *ListingForm) { f.FinalPrice = "" }, true, true},
		{"Missing Title", func(f *ListingForm) { f.Title = "   " }, false, true},
		{"Missing ISBN", func(f *ListingForm) { f.ISBN = "" }, false, true},
		{"Missing Description", func(f *ListingForm) { f.Description = "" }, false, true},
		{"Non Numeric Price", func(f *ListingForm) { f.BuyPrice = "cheap" }, false, true},
		{"Negative Price", func(f *ListingForm) { f.BuyPrice = "-1" }, false, true},
		{"Decimal Year", func(f *ListingForm) { f.PublishYear = "2005.5" }, false, true},
		{"Future Year", func(f *ListingForm) { f.PublishYear = "3000" }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			in, err := ParseListingForm(form, tt.withFinalPrice)
			if tt.wantErr {
				assertValidationError(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Laskar Pelangi", in.Title)
			assert.Equal(t, 2005, in.PublishYear)
			assert.Equal(t, 100000.0, in.BuyPrice)
		})
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"081234567890", "+6281234567890"},
		{"6281234567890", "+6281234567890"},
		{"+6281234567890", "+6281234567890"},
		{"0812-3456-7890", "+6281234567890"},
		{"", ""},
		{"81234567890", "81234567890"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhoneNumber(tt.in), tt.in)
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	t.Parallel()
	_, err := ValidatePhoneNumber("0812345")
	assertValidationError(t, err)

	_, err = ValidatePhoneNumber("+14155552671")
	assertValidationError(t, err)

	got, err := ValidatePhoneNumber("081234567890")
	require.NoError(t, err)
	assert.Equal(t, "+6281234567890", got)
}

func TestRegisterInput_Validate(t *testing.T) {
	t.Parallel()
	in := RegisterInput{
		FirebaseTokenID:    "token",
		PhoneNumber:        "081234567890",
		City:               " Surabaya ",
		AdministrationArea: "Jawa Timur",
		Address:            "Jl. Raya Darmo Permai III",
	}
	require.NoError(t, in.Validate())
	assert.Equal(t, "+6281234567890", in.PhoneNumber)
	assert.Equal(t, "Surabaya", in.City)

	missing := in
	missing.Address = ""
	assertValidationError(t, missing.Validate())

	noToken := in
	noToken.FirebaseTokenID = ""
	assertValidationError(t, noToken.Validate())
}

func TestProfileUpdate_Columns(t *testing.T) {
	t.Parallel()
	cols, err := ProfileUpdate{Name: "Budi", PhoneNumber: "6281234567890", Address: "  "}.Columns()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Budi", "phone_number": "+6281234567890"}, cols)

	cols, err = ProfileUpdate{}.Columns()
	require.NoError(t, err)
	assert.Empty(t, cols)

	_, err = ProfileUpdate{PhoneNumber: "12"}.Columns()
	assertValidationError(t, err)
}

func TestParsePageParams(t *testing.T) {
	t.Parallel()
	page, limit, err := ParsePageParams("", "")
	require.NoError(t, err)
	assert.Zero(t, page)
	assert.Zero(t, limit)

	page, limit, err = ParsePageParams("2", "25")
	require.NoError(t, err)
	assert.Equal(t, 2, page)
	assert.Equal(t, 25, limit)

	_, _, err = ParsePageParams("0", "")
	assertValidationError(t, err)
	_, _, err = ParsePageParams("1", "ten")
	assertValidationError(t, err)
}
