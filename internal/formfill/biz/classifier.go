package biz

import (
	"fmt"

	"github.com/kart-io/formfill/internal/model"
)

// Classification 字段分类结果。
type Classification struct {
	// Resolve 该字段是否需要走解析流程。
	Resolve bool
	// Question 检索与提问使用的问题文本。
	Question string
}

// Classifier 负责判断字段是否需要解析并生成提问模板。
type Classifier struct{}

// NewClassifier 创建分类器实例。
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify 对单个字段分类。
// 惰性字段（hidden/submit/button/image/reset）直接短路，
// 不触发任何检索或 LLM 调用；勾选类字段使用是非问句，
// 其余字段使用信息查询问句。
func (c *Classifier) Classify(field *model.Field) *Classification {
	if field.Type.IsInert() {
		return &Classification{Resolve: false}
	}

	// 缺少 label 和 name 的字段退化用 selector 标识,不会被丢弃
	ident := field.DisplayName()
	if ident == "" {
		ident = field.Selector
	}

	if field.Type.IsBoolean() {
		return &Classification{
			Resolve:  true,
			Question: fmt.Sprintf("Should I check the box for %s?", ident),
		}
	}

	return &Classification{
		Resolve:  true,
		Question: fmt.Sprintf("What is the %s?", ident),
	}
}
