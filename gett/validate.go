package gett

import (
	"errors"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Ge.tt only asks for something that looks like user@host.
var emailPattern = regexp.MustCompile(`\w+@\w+`)

type credentials struct {
	APIKey   string `param:"apikey" validate:"required"`
	Email    string `param:"email" validate:"required,gettemail"`
	Password string `param:"password" validate:"required"`
}

var credentialValidator = newCredentialValidator()

func newCredentialValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("param")
	})
	// Registration only fails for an empty tag name or a nil func.
	_ = v.RegisterValidation("gettemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateCredentials returns a *ConfigurationError for the first invalid credential.
func validateCredentials(apiKey, email, password string) error {
	err := credentialValidator.Struct(credentials{
		APIKey:   apiKey,
		Email:    email,
		Password: password,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	reason := "is invalid"
	switch fe.Tag() {
	case "required":
		reason = "must not be empty"
	case "gettemail":
		reason = "must be an email address"
	}
	return &ConfigurationError{Param: fe.Field(), Reason: reason}
}
