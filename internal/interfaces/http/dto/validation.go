package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// RegisterValidators installs the custom binding validators on gin's
// validator engine. Call once at startup before serving requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("watermarkunit", func(fl validator.FieldLevel) bool {
		return syncdomain.ValidUnit(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("importpath", func(fl validator.FieldLevel) bool {
		return syncdomain.ImportPath(fl.Field().String()).IsValid()
	})
}
