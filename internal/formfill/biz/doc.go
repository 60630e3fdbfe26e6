// Package biz 提供表单填写服务的业务逻辑。
//
// 核心流程：字段分类 → 租户范围检索 → LLM 解析 → 动作合成，
// 由 Pipeline 按输入字段顺序驱动。
package biz
