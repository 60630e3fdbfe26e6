// Package store 提供表单填写服务的数据存储层。
//
// 该包包含两类存储：基于 Milvus 的简历块向量存储，
// 以及基于关系型数据库的文档登记表。
package store
