package intent

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	hexAddressPattern    = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	rawAmountHexPattern  = regexp.MustCompile(`^0x?[0-9a-fA-F]+$`)
)

// newValidator registers the two domain-specific validators this intent
// request needs beyond go-playground/validator's built-ins, grounded on
// the binding-tag style seen in Aigen6-preworker's quote_service.go DTOs.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hexaddress", func(fl validator.FieldLevel) bool {
		return hexAddressPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("rawamounthex", func(fl validator.FieldLevel) bool {
		return rawAmountHexPattern.MatchString(fl.Field().String())
	})
	return v
}
