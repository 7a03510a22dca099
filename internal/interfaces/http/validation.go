package http

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidations installs custom binding rules on gin's validator
// engine. Registration is idempotent per engine instance.
func registerValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("future", futureTime)
}

// futureTime accepts time fields strictly after now. Zero values pass so the
// rule composes with an explicit required tag.
func futureTime(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	if t.IsZero() {
		return true
	}
	return t.After(time.Now())
}
