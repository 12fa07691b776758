package workflow

import (
	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
)

// DriverForm is what the user types into the driver details form.
type DriverForm struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Age     int    `json:"age"`
	License string `json:"license"`
	Captcha string `json:"captcha"`
}

func validateDriver(f DriverForm) (models.Driver, error) {
	return domain.NormalizeDriver(models.Driver{
		Name:    f.Name,
		Contact: f.Contact,
		Age:     f.Age,
		License: f.License,
	})
}
