// Package model provides data models for the formfill service.
package model

// FieldType classifies a form field by its HTML input type.
type FieldType string

// Known field types. Unlisted types behave like text.
const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeURL      FieldType = "url"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypePassword FieldType = "password"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"

	FieldTypeHidden FieldType = "hidden"
	FieldTypeSubmit FieldType = "submit"
	FieldTypeButton FieldType = "button"
	FieldTypeImage  FieldType = "image"
	FieldTypeReset  FieldType = "reset"
)

// IsInert reports whether the field type carries no user-visible value and
// therefore never participates in resolution.
func (t FieldType) IsInert() bool {
	switch t {
	case FieldTypeHidden, FieldTypeSubmit, FieldTypeButton, FieldTypeImage, FieldTypeReset:
		return true
	}
	return false
}

// IsBoolean reports whether the field resolves to a true/false answer.
func (t FieldType) IsBoolean() bool {
	return t == FieldTypeCheckbox || t == FieldTypeRadio
}

// Field describes a single form field on a page.
type Field struct {
	// Selector locates the field in the page (CSS selector or XPath).
	Selector string `json:"selector" binding:"required"`

	// Type is the field's input type.
	Type FieldType `json:"type" binding:"required"`

	// Label is the human-visible label, may be empty.
	Label string `json:"label"`

	// Name is the form control name attribute.
	Name string `json:"name"`

	// Options lists the option labels of a select field.
	Options []string `json:"options,omitempty"`
}

// DisplayName returns the label when present, otherwise the name.
func (f *Field) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// SkipValue is the sentinel the chat model answers when the CV does not
// contain the requested information. Comparison is exact after trimming.
const SkipValue = "SKIP"

// ResolvedValue is the outcome of resolving one field.
type ResolvedValue struct {
	// Value is the trimmed model answer, empty when skipped.
	Value string `json:"value"`

	// Skip indicates the field has no answer and yields no action.
	Skip bool `json:"skip"`
}
