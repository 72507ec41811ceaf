package parser

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"pyrun/pkg/settings"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load reads and validates a settings YAML file, returning the defaults when
// the file does not exist. A present-but-malformed file is an error.
func Load(filePath string) (*settings.Settings, error) {
	s := settings.Default()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return s, nil
	}

	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", filePath, err)
	}

	// Unmarshal on top of the defaults so omitted keys keep their values
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file - malformed YAML: %w", err)
	}

	if err := validate.Struct(s); err != nil {
		return nil, formatValidationError(err)
	}

	return s, nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, formatFieldError(e))
		}

		if len(errorMessages) == 1 {
			return fmt.Errorf("validation error: %s", errorMessages[0])
		}

		result := "validation errors:\n"
		for _, msg := range errorMessages {
			result += fmt.Sprintf("  - %s\n", msg)
		}
		return fmt.Errorf("%s", result)
	}
	return fmt.Errorf("validation failed: %w", err)
}

// formatFieldError formats a single validation error into a user-friendly message.
func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("field '%s' is required but missing", field)
	case "startswith":
		return fmt.Sprintf("field '%s' must start with '%s'", field, e.Param())
	default:
		return fmt.Sprintf("field '%s' failed validation (%s)", field, tag)
	}
}
