// ABOUTME: Struct-tag validation of Settings via go-playground/validator
// ABOUTME: Field errors are reported by their config key, e.g. thresholds.comment_ratio

package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pilog "github.com/mauromedda/intentd/internal/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, ok := pilog.ParseLevel(fl.Field().String())
		return ok
	})
	return v
}

// describe turns a field error into a message keyed by the config path.
func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}

	switch fe.Tag() {
	case "loglevel":
		return fmt.Sprintf("unknown %s %q", key, fe.Value())
	case "gte":
		if fe.Param() == "0" {
			return key + " must not be negative"
		}
		return fmt.Sprintf("%s %v must be at least %s", key, fe.Value(), fe.Param())
	case "min":
		return fmt.Sprintf("%s %v must be at least %s", key, fe.Value(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s %v must be at most %s", key, fe.Value(), fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s %q must be host:port", key, fe.Value())
	default:
		return fmt.Sprintf("%s fails %s", key, fe.Tag())
	}
}
