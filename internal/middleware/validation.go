package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/caretide/hospital-api/internal/mrn"
)

// RegisterValidators installs domain validation tags on gin's binding
// engine. Call once before any routes are registered.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Report field names from json tags so validation errors match the
	// wire format clients actually send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("mrn", validMRN)
}

func validMRN(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != mrn.Length {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(mrn.Alphabet, r) {
			return false
		}
	}
	return true
}
