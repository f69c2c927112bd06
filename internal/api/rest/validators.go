package rest

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

var registerValidatorsOnce sync.Once

// RegisterValidators installs the custom tags on gin's validator and makes
// field errors report json or form names instead of Go field names
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})

		_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseDate(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("isoweek", func(fl validator.FieldLevel) bool {
			_, _, err := domain.ParseISOWeek(fl.Field().String())
			return err == nil
		})
	})
}
