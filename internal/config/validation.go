package config

import (
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "required_if":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "source_name":
		return "must consist only of lowercase letters, numbers, underscores and hyphens [a-z0-9_-]"
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	case "upstream_url":
		return "must be a valid upstream URL (udp://ip:port or doh://host/path)"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // For sources: the name of the item (e.g., "stevenblack")
	FieldPath string // Dot-notation field path (e.g., "dns.listen", "filtering.refresh_interval_hours")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validators
	if err := validate.RegisterValidation("hostport_or_empty", validateHostPortOrEmpty); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("upstream_url", validateUpstreamURLTag); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("source_name", validateSourceName); err != nil {
		panic(err)
	}

	// Register function to get field name from "toml" tag
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validator: host:port format or empty
func validateHostPortOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.SplitHostPort(value)
	return err == nil
}

// Custom validator: upstream URL format
func validateUpstreamURLTag(fl validator.FieldLevel) bool {
	upstream := fl.Field().String()
	return ValidateUpstreamURL(upstream) == nil
}

// Custom validator: source name format
func validateSourceName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return sourceNameRegexp.MatchString(name)
}

// ValidateUpstreamURL validates DNS upstream URL format
func ValidateUpstreamURL(upstream string) error {
	if upstream == "" {
		return fmt.Errorf("upstream URL cannot be empty")
	}

	if strings.HasPrefix(upstream, "udp://") {
		addr := strings.TrimPrefix(upstream, "udp://")
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("invalid UDP upstream format (expected udp://ip:port)")
		}
		return nil
	}

	if strings.HasPrefix(upstream, "doh://") {
		url := strings.TrimPrefix(upstream, "doh://")
		if url == "" || !strings.Contains(url, "/") {
			return fmt.Errorf("invalid DoH upstream format (expected doh://host/path)")
		}
		return nil
	}

	return fmt.Errorf("unsupported upstream scheme (supported: udp://, doh://)")
}
