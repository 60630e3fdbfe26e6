package errors

import "google.golang.org/grpc/codes"

// FormFill service code: 21 (business service range 20-79)
// Error code format: AABBCCC
// - AA: 21 (FormFill service)
// - BB: category code
// - CCC: sequence

const (
	// ServiceFormFill is for the form-fill service.
	ServiceFormFill = 21
)

var (
	// Request errors (category 01)
	ErrFillInvalidRequest = Register(New(MakeCode(ServiceFormFill, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid request parameters", "请求参数无效"))
	ErrFillEmptyDocument  = Register(New(MakeCode(ServiceFormFill, CategoryRequest, 2), 400, codes.InvalidArgument, "Document text is empty", "文档内容为空"))
	ErrFillNoFields       = Register(New(MakeCode(ServiceFormFill, CategoryRequest, 3), 400, codes.InvalidArgument, "Field list is empty", "表单字段列表为空"))
	ErrFillInvalidMode    = Register(New(MakeCode(ServiceFormFill, CategoryRequest, 4), 400, codes.InvalidArgument, "Invalid indexing mode", "索引模式无效"))

	// Resource errors (category 04)
	ErrFillDocumentNotFound = Register(New(MakeCode(ServiceFormFill, CategoryResource, 1), 404, codes.NotFound, "Document not found", "文档不存在"))

	// Indexing and resolution errors (category 07 - Internal)
	// 检索失败不设专用错误码：检索降级为空上下文，不会作为
	// API 错误暴露出去。
	ErrFillIndexFailed      = Register(New(MakeCode(ServiceFormFill, CategoryInternal, 1), 500, codes.Internal, "Document indexing failed", "文档索引失败"))
	ErrFillResolveFailed    = Register(New(MakeCode(ServiceFormFill, CategoryInternal, 3), 500, codes.Internal, "Field resolution failed", "字段解析失败"))
	ErrFillStatsUnavailable = Register(New(MakeCode(ServiceFormFill, CategoryInternal, 4), 500, codes.Internal, "Statistics unavailable", "统计信息不可用"))

	// Registry errors (category 08 - Database)
	ErrFillRegistryFailed = Register(New(MakeCode(ServiceFormFill, CategoryDatabase, 1), 500, codes.Internal, "Document registry operation failed", "文档登记操作失败"))

	// Service errors (category 10 - Network)
	ErrFillProviderUnavailable = Register(New(MakeCode(ServiceFormFill, CategoryNetwork, 1), 503, codes.Unavailable, "LLM provider unavailable", "LLM 服务不可用"))
	ErrFillStoreUnavailable    = Register(New(MakeCode(ServiceFormFill, CategoryNetwork, 2), 503, codes.Unavailable, "Vector store unavailable", "向量存储不可用"))

	// Timeout errors (category 11)
	ErrFillResolveTimeout = Register(New(MakeCode(ServiceFormFill, CategoryTimeout, 1), 408, codes.DeadlineExceeded, "Field resolution timeout", "字段解析超时"))
)
