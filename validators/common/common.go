package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"policyportal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON / form names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Struct validates s and returns a field -> message map, empty when valid.
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["body"] = "Invalid request body!"
		return errs
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		errs[field] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", name)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at least %s items!", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at most %s items!", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must contain exactly %s items!", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid ID!", name)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format!", name)
	case "eq":
		return fmt.Sprintf("%s must be %s!", name, fe.Param())
	}
	return fmt.Sprintf("%s is invalid!", name)
}

// UUIDParam parses a path parameter as a uuid.
func UUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return uuid.Nil, errors.New("missing id")
	}
	return uuid.Parse(raw)
}

// DocumentID validates the :id path parameter and stores it as "documentID".
func DocumentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := UUIDParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Document ID!", nil)
		}
		c.Locals("documentID", id)
		return c.Next()
	}
}

// ParseDate parses an optional YYYY-MM-DD value; "" means no date.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
