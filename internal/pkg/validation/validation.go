package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"garaadka-laundry/internal/pkg/rest_err"
)

// DateLayout is the wire format of calendar dates (close_date, from, to).
const DateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	registerOnce sync.Once
)

// Register installs the custom rules and json field naming on gin's binding validator.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("two_words", twoWords)
		_ = v.RegisterValidation("phone", phone)
		_ = v.RegisterValidation("ymd", ymd)
		_ = v.RegisterValidation("oneof_fold", oneOfFold)
	})
}

func twoWords(fl validator.FieldLevel) bool {
	return len(strings.Fields(fl.Field().String())) >= 2
}

func phone(fl validator.FieldLevel) bool {
	return IsPhone(fl.Field().String())
}

func ymd(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// oneOfFold is oneof ignoring letter case.
func oneOfFold(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, allowed := range strings.Fields(fl.Param()) {
		if strings.EqualFold(value, allowed) {
			return true
		}
	}
	return false
}

// IsPhone accepts 7 to 15 digits with an optional leading plus; spaces, dashes and parentheses are ignored.
func IsPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

func NormalizePhone(s string) string {
	return phoneNoise.Replace(strings.TrimSpace(s))
}

// Struct runs the same rules used by request binding against any value.
func Struct(s any) error {
	Register()
	return binding.Validator.ValidateStruct(s)
}

// Translate turns a binding error into the uniform 400 envelope.
func Translate(err error) *rest_err.RestErr {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		causes := make([]rest_err.Causes, 0, len(ve))
		for _, fe := range ve {
			causes = append(causes, rest_err.NewCause(fieldPath(fe), message(fe)))
		}
		return rest_err.NewBadRequestValidationError("Invalid request payload", causes)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return rest_err.NewBadRequestValidationError("Invalid request payload", []rest_err.Causes{
			rest_err.NewCause(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type)),
		})
	}

	return rest_err.NewBadRequestError("invalid json body")
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "two_words":
		return "must contain at least two words"
	case "phone":
		return "must be a valid phone number"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	case "email":
		return "must be a valid email address"
	case "oneof", "oneof_fold":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "ltefield":
		return fmt.Sprintf("must not exceed %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
