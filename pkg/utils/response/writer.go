package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/validator"
)

// headerRequestID is set on the response by the request-id middleware.
const headerRequestID = "X-Request-ID"

// Writer provides convenient methods to write responses to a gin context.
// All write paths draw the envelope from the pool and release it after the
// body is serialized.
type Writer struct {
	ctx       *gin.Context
	withTime  bool
	requestID string
	lang      string
}

// NewWriter creates a new response writer for the given context.
func NewWriter(c *gin.Context) *Writer {
	return &Writer{ctx: c}
}

// WithTimestamp enables automatic timestamp in responses.
func (w *Writer) WithTimestamp() *Writer {
	w.withTime = true
	return w
}

// WithRequestID sets the request ID for responses.
func (w *Writer) WithRequestID(requestID string) *Writer {
	w.requestID = requestID
	return w
}

// WithLang sets the language for error messages.
func (w *Writer) WithLang(lang string) *Writer {
	w.lang = lang
	return w
}

// prepare adds optional fields to the response.
func (w *Writer) prepare(r *Response) *Response {
	if w.withTime && r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
	if r.RequestID == "" {
		r.RequestID = w.requestID
		if r.RequestID == "" && w.ctx != nil {
			r.RequestID = w.ctx.Writer.Header().Get(headerRequestID)
		}
	}
	return r
}

// write serializes the response and returns it to the pool.
func (w *Writer) write(status int, resp *Response) {
	w.ctx.JSON(status, w.prepare(resp))
	Release(resp)
}

// OK sends a successful response with data.
func (w *Writer) OK(data interface{}) {
	resp := Success(data)
	w.write(resp.HTTPStatus(), resp)
}

// OKWithMessage sends a successful response with custom message.
func (w *Writer) OKWithMessage(message string, data interface{}) {
	resp := SuccessWithMessage(message, data)
	w.write(resp.HTTPStatus(), resp)
}

// Fail sends an error response using Errno and aborts the handler chain.
func (w *Writer) Fail(e *errors.Errno) {
	if e == nil {
		e = errors.ErrUnknown
	}
	var resp *Response
	if w.lang != "" {
		resp = ErrWithLang(e, w.lang)
	} else {
		resp = Err(e)
	}
	w.ctx.Abort()
	w.write(e.HTTPStatus(), resp)
}

// FailWithLang sends an error response with language-specific message.
func (w *Writer) FailWithLang(e *errors.Errno, lang string) {
	if e == nil {
		e = errors.ErrUnknown
	}
	resp := ErrWithLang(e, lang)
	w.ctx.Abort()
	w.write(e.HTTPStatus(), resp)
}

// FailWithCode sends an error response with code and message.
func (w *Writer) FailWithCode(code int, message string) {
	resp := ErrorWithCode(code, message)
	w.ctx.Abort()
	w.write(resp.HTTPStatus(), resp)
}

// FailWithError converts a standard error and sends it.
// If the error is an Errno, it uses it directly.
// Otherwise, it wraps it as ErrInternal.
func (w *Writer) FailWithError(err error) {
	w.Fail(errors.FromError(err))
}

// FailWithValidation sends a validation error response.
// It includes detailed validation error information in the response data.
func (w *Writer) FailWithValidation(verr *validator.ValidationErrors) {
	resp := Acquire()
	resp.Code = errors.ErrValidationFailed.Code
	resp.HTTPCode = http.StatusBadRequest
	resp.Message = verr.First()
	resp.Data = verr.ToMap()
	w.ctx.Abort()
	w.write(http.StatusBadRequest, resp)
}

// FailWithBindOrValidation handles binding or validation errors appropriately.
// If err is a ValidationErrors, sends detailed validation error response.
// Otherwise, sends a generic invalid parameter error.
func (w *Writer) FailWithBindOrValidation(err error) {
	if verr, ok := err.(*validator.ValidationErrors); ok {
		w.FailWithValidation(verr)
		return
	}
	w.Fail(errors.ErrInvalidParam.WithMessage("invalid request body: " + err.Error()))
}

// PageOK sends a paginated response.
func (w *Writer) PageOK(list interface{}, total int64, page, pageSize int) {
	resp := Page(list, total, page, pageSize)
	w.write(resp.HTTPStatus(), resp)
}

// Send sends a custom response and releases it.
func (w *Writer) Send(r *Response) {
	if r == nil {
		return
	}
	w.write(r.HTTPStatus(), r)
}

// ============================================================================
// Convenience functions that work directly with *gin.Context
// ============================================================================

// OK sends a successful response.
func OK(c *gin.Context, data interface{}) {
	NewWriter(c).OK(data)
}

// OKWithMessage sends a successful response with message.
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	NewWriter(c).OKWithMessage(message, data)
}

// Fail sends an error response and aborts the handler chain.
// The error is resolved through the errno registry; non-Errno errors map to
// ErrInternal with the original message preserved.
func Fail(c *gin.Context, err error) {
	NewWriter(c).FailWithError(err)
}

// FailWithLang sends an error response with language-specific message.
func FailWithLang(c *gin.Context, e *errors.Errno, lang string) {
	NewWriter(c).FailWithLang(e, lang)
}

// FailWithCode sends an error response with code and message.
func FailWithCode(c *gin.Context, code int, message string) {
	NewWriter(c).FailWithCode(code, message)
}

// PageOK sends a paginated response.
func PageOK(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	NewWriter(c).PageOK(list, total, page, pageSize)
}

// FailWithValidation sends a validation error response.
func FailWithValidation(c *gin.Context, verr *validator.ValidationErrors) {
	NewWriter(c).FailWithValidation(verr)
}

// FailWithBindOrValidation handles binding or validation errors.
// If err is a ValidationErrors, sends detailed validation error response.
// Otherwise, sends a generic invalid parameter error.
func FailWithBindOrValidation(c *gin.Context, err error) {
	NewWriter(c).FailWithBindOrValidation(err)
}
