package users

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	_ = validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return ValidatePasswordStrength(fl.Field().String()) == nil
	})
}

// Registration is the sign-up form. ConfirmPassword never leaves the portal.
type Registration struct {
	Username        string `json:"username" label:"Username" validate:"required,max=150"`
	Email           string `json:"email" label:"Email" validate:"required,email"`
	Password        string `json:"password" label:"Password" validate:"required,password_strength"`
	ConfirmPassword string `json:"-" label:"Confirm password" validate:"required,eqfield=Password"`
	TenantName      string `json:"tenant_name" label:"Tenant name" validate:"required,max=100"`
	IsTenantOwner   bool   `json:"is_tenant_owner"`
}

// Credentials is the login form. AsAdmin asks for the administrative site.
type Credentials struct {
	Username string `json:"username" label:"Username" validate:"required"`
	Password string `json:"password" label:"Password" validate:"required"`
	AsAdmin  bool   `json:"-"`
}

// FieldErrors maps a form field to its messages, first message first
type FieldErrors map[string][]string

// First returns the first message for field
func (f FieldErrors) First(field string) string {
	if msgs := f[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ValidationError is a form that failed validation
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, ", ")))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (r Registration) Validate() error {
	return check(r)
}

func (c Credentials) Validate() error {
	return check(c)
}

// check validates form and reports the first failing field as the user message
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("[users check] %w", err)
	}

	fields := FieldErrors{}
	var first string
	for _, fe := range fieldErrs {
		msg := fieldMessage(fe)
		fields[fe.StructField()] = append(fields[fe.StructField()], msg)
		if first == "" {
			first = msg
		}
	}
	return portalerrors.NewUserError(portalerrors.ErrValidation, first, &ValidationError{Fields: fields})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Enter a valid email address"
	case "eqfield":
		return "Passwords must match"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "password_strength":
		if err := ValidatePasswordStrength(fmt.Sprint(fe.Value())); err != nil {
			msg := err.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return fe.Field() + " is invalid"
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
