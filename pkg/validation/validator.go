package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Password policy shared by signup and reset.
const (
	StrongPasswordMinLen = 12
	LoginPasswordMinLen  = 6
)

var initOnce sync.Once

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the password rules.
func Init() {
	initOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register installs tag name handling and custom rules on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", fmt.Sprintf("min=%d", LoginPasswordMinLen))
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
}

// StrongPassword reports whether pw has at least 12 characters including a
// lowercase letter, an uppercase letter, a digit and a non-alphanumeric character.
func StrongPassword(pw string) bool {
	if utf8.RuneCountInString(pw) < StrongPasswordMinLen {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// ValidEmail applies the same "email" rule used by request binding.
func ValidEmail(email string) bool {
	return emailChecker().Var(email, "required,email") == nil
}

var (
	checkerOnce sync.Once
	checker     *validator.Validate
)

func emailChecker() *validator.Validate {
	checkerOnce.Do(func() { checker = validator.New() })
	return checker
}

// ValidationsError represents a structured validation error
type ValidationsError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ToDetails converts validation/binding errors into a list suitable for the
// "errors" field of an API response.
func ToDetails(err error) []ValidationsError {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []ValidationsError{{Field: "payload", Message: "invalid json"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationsError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, ValidationsError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Value:   redact(fe),
				Message: formatFieldError(fe),
			})
		}
		return out
	}

	return []ValidationsError{{Field: "payload", Message: "invalid payload"}}
}

// redact never echoes secrets back to the client.
func redact(fe validator.FieldError) string {
	switch strings.ToLower(fe.Field()) {
	case "password", "newpassword", "token", "otp":
		return ""
	}
	if s, ok := fe.Value().(string); ok {
		return s
	}
	return ""
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "numeric":
		return "must be numeric"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "pwd":
		return fmt.Sprintf("must be at least %d characters long", LoginPasswordMinLen)
	case "strongpwd":
		return fmt.Sprintf("must be at least %d characters with uppercase, lowercase, number and special character", StrongPasswordMinLen)
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
