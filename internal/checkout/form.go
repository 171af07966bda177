package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/01moynul/storefront-golang/internal/apperr"
)

// ShippingForm is the shipping half of the checkout form. The payment
// fields shown in the UI are placeholders and never reach the server.
// The binding tags serve gin; the validate tags serve client-side checks.
type ShippingForm struct {
	FullName   string `json:"fullName" binding:"required,max=255" validate:"required,max=255"`
	Email      string `json:"email" binding:"required,email" validate:"required,email"`
	Address    string `json:"address" binding:"required,max=255" validate:"required,max=255"`
	City       string `json:"city" binding:"required,max=128" validate:"required,max=128"`
	PostalCode string `json:"postalCode" binding:"required,max=16" validate:"required,max=16"`
	Country    string `json:"country" binding:"required,max=64" validate:"required,max=64"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the form before the confirm dialog opens.
func (f ShippingForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.New(apperr.ErrValidation, "%v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperr.New(apperr.ErrValidation, "Please check: %s", strings.Join(fields, ", "))
}
