package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// registerCustomTranslations registers translations for custom validation rules.
func (v *Validator) registerCustomTranslations() {
	if enTrans := v.GetTranslator(LangEN); enTrans != nil {
		v.registerEnglishTranslations(enTrans)
	}
	if zhTrans := v.GetTranslator(LangZH); zhTrans != nil {
		v.registerChineseTranslations(zhTrans)
	}
}

func (v *Validator) registerEnglishTranslations(trans ut.Translator) {
	translations := map[string]string{
		TagTenantID:     "{0} must be a valid tenant identifier (letters, numbers, dot, underscore, hyphen)",
		TagCSSSelector:  "{0} must be a valid CSS selector",
		TagFieldType:    "{0} must be a supported form field type",
		TagSafeString:   "{0} contains potentially unsafe content",
		TagNoWhitespace: "{0} must not contain whitespace characters",
		TagTrimmed:      "{0} must not have leading or trailing spaces",
		TagSlug:         "{0} must be a valid URL slug (lowercase letters, numbers, and hyphens)",
	}

	for tag, message := range translations {
		registerTranslation(v.validate, trans, tag, message)
	}
}

func (v *Validator) registerChineseTranslations(trans ut.Translator) {
	translations := map[string]string{
		TagTenantID:     "{0}必须是有效的租户标识（字母、数字、点、下划线、连字符）",
		TagCSSSelector:  "{0}必须是有效的 CSS 选择器",
		TagFieldType:    "{0}必须是受支持的表单字段类型",
		TagSafeString:   "{0}包含潜在的不安全内容",
		TagNoWhitespace: "{0}不能包含空白字符",
		TagTrimmed:      "{0}不能有前导或尾随空格",
		TagSlug:         "{0}必须是有效的URL别名（小写字母、数字和连字符）",
	}

	for tag, message := range translations {
		registerTranslation(v.validate, trans, tag, message)
	}
}

// registerTranslation registers a single translation.
func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}

// TranslationOverride represents a translation override for a specific tag.
type TranslationOverride struct {
	Tag     string
	Message string
}

// RegisterTranslations registers multiple translation overrides for a language.
func (v *Validator) RegisterTranslations(lang string, overrides []TranslationOverride) {
	trans := v.GetTranslator(lang)
	if trans == nil {
		return
	}
	for _, override := range overrides {
		registerTranslation(v.validate, trans, override.Tag, override.Message)
	}
}

// RegisterTranslation registers a single translation override.
func (v *Validator) RegisterTranslation(lang, tag, message string) {
	trans := v.GetTranslator(lang)
	if trans == nil {
		return
	}
	registerTranslation(v.validate, trans, tag, message)
}
