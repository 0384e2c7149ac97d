package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	// Run struct tag validation
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// A burst without a sustained rate is a misconfiguration: burst only
	// means something on top of a rate.
	if cfg.Engine.ExportBurst > 0 && cfg.Engine.ExportsPerSecond == 0 {
		return fmt.Errorf("engine: export_burst is set but exports_per_second is 0 (unlimited)")
	}

	// The runner would silently replace negative sizes with its defaults;
	// reject them here instead.
	if cfg.Tasks.Workers < 0 {
		return fmt.Errorf("tasks: workers cannot be negative (got %d)", cfg.Tasks.Workers)
	}
	if cfg.Tasks.QueueSize < 0 {
		return fmt.Errorf("tasks: queue_size cannot be negative (got %d)", cfg.Tasks.QueueSize)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
