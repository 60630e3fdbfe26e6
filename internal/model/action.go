package model

// ActionKind identifies the kind of browser action synthesized for a field.
type ActionKind string

const (
	// ActionFill types a literal value into a text-like field.
	ActionFill ActionKind = "fill"
	// ActionCheck checks a checkbox or radio button.
	ActionCheck ActionKind = "check"
	// ActionSelect picks an option of a select field by its label.
	ActionSelect ActionKind = "select"
)

// Action is a browser-agnostic instruction for filling one field.
type Action struct {
	// Selector locates the target field.
	Selector string `json:"selector"`

	// Kind is the action to perform.
	Kind ActionKind `json:"kind"`

	// Value is the payload: the literal text for fill, "true" for check,
	// the option label for select.
	Value string `json:"value"`

	// FieldType is the type of the field the action targets.
	FieldType FieldType `json:"field_type"`
}
