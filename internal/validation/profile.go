package validation

import (
	"regexp"
	"strings"

	"bookmarket/internal/models"
)

var phoneRegex = regexp.MustCompile(`^\+62\d{10,12}$`)

// NormalizePhoneNumber rewrites local Indonesian numbers into the +62 form.
// "+..." is kept, "62..." gains a plus and a leading "0" becomes "+62".
func NormalizePhoneNumber(value string) string {
	v := strings.TrimSpace(value)
	v = strings.NewReplacer(" ", "", "-", "").Replace(v)
	switch {
	case v == "", strings.HasPrefix(v, "+"):
		return v
	case strings.HasPrefix(v, "62"):
		return "+" + v
	case strings.HasPrefix(v, "0"):
		return "+62" + v[1:]
	default:
		return v
	}
}

// ValidatePhoneNumber normalizes value and checks it is an Indonesian number.
func ValidatePhoneNumber(value string) (string, error) {
	v := NormalizePhoneNumber(value)
	if v == "" {
		return "", models.NewValidationError("phoneNumber is required")
	}
	if !phoneRegex.MatchString(v) {
		return "", models.NewValidationError("phoneNumber must be a valid Indonesian phone number")
	}
	return v, nil
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	FirebaseTokenID    string `json:"firebaseTokenId"`
	PhoneNumber        string `json:"phoneNumber"`
	City               string `json:"city"`
	AdministrationArea string `json:"administrationArea"`
	Address            string `json:"address"`
}

// Validate trims every field, normalizes the phone number and checks required values.
func (in *RegisterInput) Validate() error {
	var err error
	if in.FirebaseTokenID, err = required("firebaseTokenId", in.FirebaseTokenID); err != nil {
		return err
	}
	if in.PhoneNumber, err = ValidatePhoneNumber(in.PhoneNumber); err != nil {
		return err
	}
	if in.City, err = required("city", in.City); err != nil {
		return err
	}
	if in.AdministrationArea, err = required("administrationArea", in.AdministrationArea); err != nil {
		return err
	}
	in.Address, err = required("address", in.Address)
	return err
}

// ProfileUpdate carries optional profile fields. Empty fields keep their stored value.
type ProfileUpdate struct {
	Name              string `json:"name"`
	PhoneNumber       string `json:"phoneNumber"`
	CityLocality      string `json:"cityLocality"`
	AdminAreaLocality string `json:"adminAreaLocality"`
	Address           string `json:"address"`
}

// Columns validates the update and returns the profile columns to write.
func (u ProfileUpdate) Columns() (map[string]any, error) {
	cols := map[string]any{}
	set := func(column, value string) {
		if v := strings.TrimSpace(value); v != "" {
			cols[column] = v
		}
	}
	set("name", u.Name)
	set("city_locality", u.CityLocality)
	set("admin_area_locality", u.AdminAreaLocality)
	set("address", u.Address)

	if strings.TrimSpace(u.PhoneNumber) != "" {
		phone, err := ValidatePhoneNumber(u.PhoneNumber)
		if err != nil {
			return nil, err
		}
		cols["phone_number"] = phone
	}
	return cols, nil
}
