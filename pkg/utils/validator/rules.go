package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags for form-fill request payloads.
const (
	TagTenantID     = "tenantid"     // Tenant identifier (letters, digits, dot, underscore, hyphen)
	TagCSSSelector  = "cssselector"  // Plausible CSS selector
	TagFieldType    = "fieldtype"    // Known form field type
	TagSafeString   = "safestring"   // No SQL injection / XSS patterns
	TagNoWhitespace = "nowhitespace" // No whitespace characters
	TagTrimmed      = "trimmed"      // No leading/trailing spaces
	TagSlug         = "slug"         // URL slug (lowercase alphanumeric and hyphens)
)

var (
	tenantIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)
	slugRegex     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	// knownFieldTypes mirrors the field types the fill pipeline accepts.
	knownFieldTypes = map[string]bool{
		"text": true, "email": true, "tel": true, "url": true, "number": true,
		"date": true, "password": true, "textarea": true, "select": true,
		"checkbox": true, "radio": true, "hidden": true, "submit": true,
		"button": true, "image": true, "reset": true, "file": true,
	}

	dangerousPatterns = []string{
		"<script", "</script>", "javascript:",
		"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "DROP ",
		"UNION ", "OR 1=1", "' OR '", "-- ", "/*", "*/",
	}
)

// registerCustomRules registers all custom validation rules.
func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagTenantID, validateTenantID)
	_ = v.validate.RegisterValidation(TagCSSSelector, validateCSSSelector)
	_ = v.validate.RegisterValidation(TagFieldType, validateFieldType)
	_ = v.validate.RegisterValidation(TagSafeString, validateSafeString)
	_ = v.validate.RegisterValidation(TagNoWhitespace, validateNoWhitespace)
	_ = v.validate.RegisterValidation(TagTrimmed, validateTrimmed)
	_ = v.validate.RegisterValidation(TagSlug, validateSlug)
}

// validateTenantID validates tenant identifiers. Empty values are
// accepted here so `required` stays responsible for presence.
func validateTenantID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return tenantIDRegex.MatchString(value)
}

// validateCSSSelector does a shallow sanity check on selectors coming
// from browser extensions. Full CSS grammar is out of scope; the goal
// is rejecting whitespace-only and control-character garbage early.
func validateCSSSelector(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if strings.TrimSpace(value) == "" {
		return false
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// validateFieldType accepts only the field types the pipeline knows.
func validateFieldType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return knownFieldTypes[strings.ToLower(value)]
}

// validateSafeString checks for potentially dangerous patterns.
func validateSafeString(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	upperValue := strings.ToUpper(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(upperValue, strings.ToUpper(pattern)) {
			return false
		}
	}
	return true
}

// validateNoWhitespace validates that the string contains no whitespace.
func validateNoWhitespace(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, char := range value {
		if unicode.IsSpace(char) {
			return false
		}
	}
	return true
}

// validateTrimmed validates that the string has no surrounding whitespace.
func validateTrimmed(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == strings.TrimSpace(value)
}

// validateSlug validates URL slug format.
func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slugRegex.MatchString(value)
}
