package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New creates a new validator instance.
func New() *validator.Validate {
	valid := validator.New()
	if err := RegisterPINValidation(valid); err != nil {
		panic(fmt.Sprintf("validator initialization; error: %s", err))
	}
	if err := RegisterImageValidation(valid); err != nil {
		panic(fmt.Sprintf("validator initialization; error: %s", err))
	}

	return valid
}

// RegisterPINValidation registers the "pin" field validator with the
// validator instance.
func RegisterPINValidation(validator *validator.Validate) error {
	return validator.RegisterValidation("pin", pin)
}

var pinRE = regexp.MustCompile(`^[0-9]{6}$`)

// IsPIN checks if val is a login PIN, exactly six ASCII digits.
func IsPIN(val string) bool {
	return pinRE.MatchString(val)
}

func pin(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return IsPIN(val)
}

// RegisterImageValidation registers the "image" field validator with the
// validator instance.
func RegisterImageValidation(validator *validator.Validate) error {
	return validator.RegisterValidation("image", image)
}

// IsImage checks if the media type val is an image type, e.g. image/png.
func IsImage(val string) bool {
	val = strings.ToLower(strings.TrimSpace(val))
	return strings.HasPrefix(val, "image/") && len(val) > len("image/")
}

func image(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return IsImage(val)
}
