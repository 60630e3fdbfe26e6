package biz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/formfill/internal/formfill/biz"
	"github.com/kart-io/formfill/internal/model"
)

func TestSynthesizeSkip(t *testing.T) {
	synthesizer := biz.NewSynthesizer()

	field := &model.Field{Selector: "#name", Type: model.FieldTypeText}
	assert.Nil(t, synthesizer.Synthesize(field, &model.ResolvedValue{Skip: true}))
	assert.Nil(t, synthesizer.Synthesize(field, nil))
}

func TestSynthesizeSelect(t *testing.T) {
	synthesizer := biz.NewSynthesizer()

	field := &model.Field{
		Selector: "#degree",
		Type:     model.FieldTypeSelect,
		Options:  []string{"Bachelor's", "Master's", "PhD"},
	}

	action := synthesizer.Synthesize(field, &model.ResolvedValue{Value: "Master's"})
	require.NotNil(t, action)
	assert.Equal(t, model.ActionSelect, action.Kind)
	assert.Equal(t, "Master's", action.Value)
	assert.Equal(t, "#degree", action.Selector)
	assert.Equal(t, model.FieldTypeSelect, action.FieldType)

	// 不合语法的回答原样传递，下游匹配失败由交互层容忍
	malformed := synthesizer.Synthesize(field, &model.ResolvedValue{Value: "Doctorate"})
	require.NotNil(t, malformed)
	assert.Equal(t, "Doctorate", malformed.Value)
}

func TestSynthesizeBoolean(t *testing.T) {
	synthesizer := biz.NewSynthesizer()

	tests := []struct {
		name      string
		fieldType model.FieldType
		value     string
		wantCheck bool
	}{
		{"checkbox true", model.FieldTypeCheckbox, "true", true},
		{"大小写不敏感 True", model.FieldTypeCheckbox, "True", true},
		{"大小写不敏感 TRUE", model.FieldTypeCheckbox, "TRUE", true},
		{"radio true", model.FieldTypeRadio, "true", true},
		{"checkbox false 不产生动作", model.FieldTypeCheckbox, "false", false},
		{"radio false 不产生动作", model.FieldTypeRadio, "False", false},
		{"非布尔回答不产生动作", model.FieldTypeCheckbox, "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := &model.Field{Selector: "#box", Type: tt.fieldType}
			action := synthesizer.Synthesize(field, &model.ResolvedValue{Value: tt.value})
			if !tt.wantCheck {
				assert.Nil(t, action)
				return
			}
			require.NotNil(t, action)
			assert.Equal(t, model.ActionCheck, action.Kind)
			// 动作值归一化为 "true"
			assert.Equal(t, "true", action.Value)
		})
	}
}

func TestSynthesizeFill(t *testing.T) {
	synthesizer := biz.NewSynthesizer()

	tests := []struct {
		fieldType model.FieldType
	}{
		{model.FieldTypeText},
		{model.FieldTypeEmail},
		{model.FieldTypeTextarea},
		{model.FieldTypeDate},
		{model.FieldTypeNumber},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			field := &model.Field{Selector: "#v", Type: tt.fieldType}
			action := synthesizer.Synthesize(field, &model.ResolvedValue{Value: "some value"})
			require.NotNil(t, action)
			assert.Equal(t, model.ActionFill, action.Kind)
			assert.Equal(t, "some value", action.Value)
		})
	}
}
