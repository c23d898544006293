package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/devotional/internal/models"
	"github.com/benvon/devotional/internal/restoration"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("journal_type", validateJournalType); err != nil {
		panic(fmt.Sprintf("failed to register journal_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("restoration_area", validateRestorationArea); err != nil {
		panic(fmt.Sprintf("failed to register restoration_area validator: %v", err))
	}
}

func validateJournalType(fl validator.FieldLevel) bool {
	return ValidateJournalType(fl.Field().String()) == nil
}

func validateRestorationArea(fl validator.FieldLevel) bool {
	return restoration.IsArea(fl.Field().String())
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateJournalType validates a JournalType string value. Empty is allowed
// and defaults to prayer when the entry is built.
func ValidateJournalType(value string) error {
	switch models.JournalType(value) {
	case "", models.JournalTypeVoice, models.JournalTypePrayer, models.JournalTypeGratitude:
		return nil
	default:
		return fmt.Errorf("invalid type: %s (must be 'voice', 'prayer', or 'gratitude')", value)
	}
}

// FieldErrors flattens validator errors into "field: tag" messages
func FieldErrors(err error) []string {
	var out []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out = append(out, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		return out
	}
	if err != nil {
		out = append(out, err.Error())
	}
	return out
}
