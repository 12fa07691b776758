package domain

import (
	"regexp"
	"strings"

	"easyrent/internal/domain/models"
	"easyrent/internal/utils"
)

const (
	MinDriverAge     = 18
	MinLicenseLength = 6
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// NormalizePhone drops spaces and dashes.
func NormalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

// NormalizeDriver trims the driver snapshot and checks name, contact, age
// and license in that order. The first bad field is reported.
func NormalizeDriver(d models.Driver) (models.Driver, error) {
	d.Name = utils.NormalizeSpace(d.Name)
	d.Contact = NormalizePhone(d.Contact)
	d.License = strings.TrimSpace(d.License)

	if d.Name == "" {
		return models.Driver{}, ValidationError{Field: "name", Msg: "please enter the driver's name"}
	}
	if !phonePattern.MatchString(d.Contact) {
		return models.Driver{}, ValidationError{Field: "contact", Msg: "please enter a valid contact number"}
	}
	if d.Age < MinDriverAge {
		return models.Driver{}, ValidationError{Field: "age", Msg: "driver must be at least 18 years old"}
	}
	if len(d.License) < MinLicenseLength {
		return models.Driver{}, ValidationError{Field: "license", Msg: "license number must be at least 6 characters"}
	}
	return d, nil
}
