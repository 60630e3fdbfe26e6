package validator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoFieldErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: []FieldError{
			{Field: "tenant_id", Tag: "required", Message: "tenant_id is required"},
			{Field: "selector", Tag: "cssselector", Message: "selector is invalid"},
		},
	}
}

func TestValidationErrorsError(t *testing.T) {
	var nilErrs *ValidationErrors
	assert.Equal(t, "", nilErrs.Error())
	assert.Equal(t, "", (&ValidationErrors{}).Error())

	single := &ValidationErrors{Errors: []FieldError{
		{Field: "tenant_id", Tag: "required", Message: "tenant_id is required"},
	}}
	assert.Equal(t, "validation failed: tenant_id is required", single.Error())

	assert.Equal(t,
		"validation failed: tenant_id is required; selector is invalid",
		twoFieldErrors().Error())
}

func TestValidationErrorsAccessors(t *testing.T) {
	var nilErrs *ValidationErrors
	assert.Equal(t, 0, nilErrs.Count())
	assert.Equal(t, "", nilErrs.First())
	assert.Equal(t, "", nilErrs.FirstField())
	assert.Nil(t, nilErrs.Messages())

	errs := twoFieldErrors()
	assert.Equal(t, 2, errs.Count())
	assert.Equal(t, "tenant_id is required", errs.First())
	assert.Equal(t, "tenant_id", errs.FirstField())
	assert.Equal(t, []string{"tenant_id is required", "selector is invalid"}, errs.Messages())
}

func TestValidationErrorsByField(t *testing.T) {
	var nilErrs *ValidationErrors
	assert.Nil(t, nilErrs.ByField())
	assert.Nil(t, (&ValidationErrors{}).ByField())

	errs := &ValidationErrors{Errors: []FieldError{
		{Field: "source_id", Message: "required"},
		{Field: "source_id", Message: "contains whitespace"},
		{Field: "tenant_id", Message: "required"},
	}}

	byField := errs.ByField()
	assert.Equal(t, map[string][]string{
		"source_id": {"required", "contains whitespace"},
		"tenant_id": {"required"},
	}, byField)
}

func TestValidationErrorsForField(t *testing.T) {
	errs := &ValidationErrors{Errors: []FieldError{
		{Field: "source_id", Message: "required"},
		{Field: "source_id", Message: "contains whitespace"},
		{Field: "tenant_id", Message: "required"},
	}}

	var nilErrs *ValidationErrors
	assert.Nil(t, nilErrs.ForField("source_id"))
	assert.Equal(t, []string{"required", "contains whitespace"}, errs.ForField("source_id"))
	assert.Equal(t, []string{"required"}, errs.ForField("tenant_id"))
	assert.Nil(t, errs.ForField("top_k"))
}

func TestValidationErrorsToMap(t *testing.T) {
	var nilErrs *ValidationErrors
	assert.Nil(t, nilErrs.ToMap())
	assert.Nil(t, (&ValidationErrors{}).ToMap())

	m := twoFieldErrors().ToMap()
	require.NotNil(t, m)
	assert.Equal(t, 2, m["count"])
}

func TestValidationErrorsFormat(t *testing.T) {
	errs := twoFieldErrors()
	plain := "validation failed: tenant_id is required; selector is invalid"

	assert.Equal(t, plain, fmt.Sprintf("%v", errs))
	assert.Equal(t, plain, fmt.Sprintf("%s", errs))
	assert.Equal(t, plain, errs.String())
	assert.Equal(t, `"`+plain+`"`, fmt.Sprintf("%q", errs))

	detailed := fmt.Sprintf("%+v", errs)
	assert.Contains(t, detailed, "ValidationErrors")
	assert.Contains(t, detailed, "tenant_id")
	assert.Contains(t, detailed, "selector")
	assert.Contains(t, detailed, "tag=")
}

func TestValidationErrorsAppend(t *testing.T) {
	errs := NewValidationErrors()
	require.NotNil(t, errs)
	assert.Equal(t, 0, errs.Count())
	assert.False(t, errs.HasErrors())

	errs.Append("tenant_id", "required", "tenant_id is required")
	assert.Equal(t, 1, errs.Count())
	assert.Equal(t, "tenant_id", errs.FirstField())

	errs.AppendError(FieldError{Field: "selector", Tag: "cssselector", Message: "invalid", Value: " "})
	assert.Equal(t, 2, errs.Count())
	assert.Equal(t, " ", errs.Errors[1].Value)
}

func TestNewValidationError(t *testing.T) {
	errs := NewValidationError("tenant_id", "tenantid", "invalid tenant id")
	require.NotNil(t, errs)
	assert.Equal(t, 1, errs.Count())
	assert.Equal(t, "tenant_id", errs.FirstField())
	assert.Equal(t, "invalid tenant id", errs.First())
}

func TestRegisterTranslator(t *testing.T) {
	v := New()

	enTrans := v.GetTranslator(LangEN)
	require.NotNil(t, enTrans)

	v.RegisterTranslator("test-lang", enTrans)
	assert.NotNil(t, v.GetTranslator("test-lang"))
}

func TestRegisterTranslationOverrides(t *testing.T) {
	v := New()

	overrides := []TranslationOverride{
		{Tag: "custom1", Message: "Custom message 1 for {0}"},
		{Tag: "custom2", Message: "Custom message 2 for {0}"},
	}

	assert.NotPanics(t, func() {
		v.RegisterTranslations(LangEN, overrides)
		v.RegisterTranslations("non-existent", overrides)
		v.RegisterTranslation(LangEN, "custom_tag", "Custom message for {0}")
		v.RegisterTranslation("non-existent", "custom_tag", "Message")
	})
}
