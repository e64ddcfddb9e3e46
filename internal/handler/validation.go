package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Usernames become URL slugs; the service lowercases them before
// storage, so the rule is case-insensitive here.
var usernameRe = regexp.MustCompile(`^(?i)[a-z0-9][a-z0-9._]{2,29}$`)

// RegisterValidators installs custom binding rules on gin's validator
// engine. Call once at startup before routes are served.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
}
