package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dnsblockd/dnsblockd/internal/rules"
)

// Names reserved for the built-in filter lists. User-defined sources must not
// shadow them, otherwise stats and refresh reports become ambiguous.
var builtinSourceNames = map[string]bool{
	"easylist":    true,
	"easyprivacy": true,
	"malware":     true,
	"social":      true,
	"tracking":    true,
	"custom":      true,
}

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	// Validate general config
	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}

	// Validate DNS config
	if c.DNS == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "dns",
			Message:   "configuration must contain 'dns' section",
		})
	} else {
		if err := validate.Struct(c.DNS); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "dns", "")...)
		}
	}

	// Validate filtering config
	if c.Filtering == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "filtering",
			Message:   "configuration must contain 'filtering' section",
		})
	} else {
		if err := validate.Struct(c.Filtering); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "filtering", "")...)
		}
		validationErrors = append(validationErrors, c.validateCustomFilters()...)
	}

	if c.API != nil {
		if err := validate.Struct(c.API); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "api", "")...)
		}
	}

	if c.Redirect != nil {
		if err := validate.Struct(c.Redirect); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "redirect", "")...)
		}
	}

	// Validate extra sources
	validationErrors = append(validationErrors, c.validateSources()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateSources() ValidationErrors {
	var validationErrors ValidationErrors
	seenNames := make(map[string]bool)

	for i, src := range c.Sources {
		itemName := src.Name
		if itemName == "" {
			itemName = fmt.Sprintf("source[%d]", i)
		}

		// Validate struct fields
		if err := validate.Struct(src); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("source.%d", i), itemName)...)
		}

		// Check duplicate source name
		if seenNames[src.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate source name: %s", src.Name),
			})
		}
		seenNames[src.Name] = true

		if builtinSourceNames[src.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("source name %q is reserved for a built-in list", src.Name),
			})
		}

		// Validate that exactly one origin is specified
		if src.URL == "" && src.File == "" {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "url",
				Message:   "source must specify either 'url' or 'file'",
			})
		}
		if src.URL != "" && src.File != "" {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "url",
				Message:   "source must specify only one of 'url' or 'file'",
			})
		}
	}

	return validationErrors
}

// validateCustomFilters warns about inline rules the rule parser would drop.
// A dropped rule is not fatal during compilation, but a config author almost
// certainly wants to know their rule is inert.
func (c *Config) validateCustomFilters() ValidationErrors {
	var validationErrors ValidationErrors

	for i, line := range c.Filtering.CustomFilters {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "!") {
			continue
		}
		if _, ok := rules.ParseLine(line, rules.SourceCustom); !ok {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fmt.Sprintf("filtering.custom_filters.%d", i),
				Message:   fmt.Sprintf("rule %q is not a supported filter rule", line),
			})
		}
	}

	return validationErrors
}

func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// e.Field() returns the TOML tag name because we registered TagNameFunc
				fieldName := e.Field()

				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + fieldName
				} else {
					fieldPath = fieldName
				}
			}

			message := getValidationMessage(e)

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   message,
			})
		}
	}

	return validationErrors
}
