package biz

import (
	"strings"

	"github.com/kart-io/formfill/internal/model"
)

// Synthesizer 将解析结果映射为 UI 动作。
type Synthesizer struct{}

// NewSynthesizer 创建动作合成器实例。
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize 按字段类型将解析值映射为动作，返回 nil 表示不产生动作。
// 映射规则按优先级：
//  1. SKIP 不产生动作；
//  2. 下拉字段产生 select 动作，选项文本原样传递；
//  3. 勾选类字段按布尔值（忽略大小写）判定，true 产生 check 动作，
//     false 不产生动作——当前设计只合成显式勾选，从不合成取消勾选；
//  4. 其余字段产生 fill 动作，值原样传递。
func (s *Synthesizer) Synthesize(field *model.Field, value *model.ResolvedValue) *model.Action {
	if value == nil || value.Skip {
		return nil
	}

	switch {
	case field.Type == model.FieldTypeSelect:
		return &model.Action{
			Selector:  field.Selector,
			Kind:      model.ActionSelect,
			Value:     value.Value,
			FieldType: field.Type,
		}

	case field.Type.IsBoolean():
		if strings.EqualFold(strings.TrimSpace(value.Value), "true") {
			return &model.Action{
				Selector:  field.Selector,
				Kind:      model.ActionCheck,
				Value:     "true",
				FieldType: field.Type,
			}
		}
		return nil

	default:
		return &model.Action{
			Selector:  field.Selector,
			Kind:      model.ActionFill,
			Value:     value.Value,
			FieldType: field.Type,
		}
	}
}
