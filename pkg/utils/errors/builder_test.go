package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestRegisterService(t *testing.T) {
	RegisterService(99, "test-service")

	name, ok := GetServiceName(99)
	require.True(t, ok)
	assert.Equal(t, "test-service", name)

	// same code + same name is idempotent
	RegisterService(99, "test-service")

	assert.Panics(t, func() {
		RegisterService(99, "different-service")
	})
}

func TestGetAllServicesReturnsCopy(t *testing.T) {
	RegisterService(98, "another-test-service")

	all := GetAllServices()
	assert.Contains(t, all, 98)

	all[97] = "modified"
	_, ok := GetServiceName(97)
	assert.False(t, ok, "mutating the snapshot must not touch the registry")
}

func TestQuickCreationFunctions(t *testing.T) {
	tests := []struct {
		name     string
		errno    *Errno
		wantHTTP int
		wantGRPC codes.Code
	}{
		{"request", NewRequestErr(81, 1, "Request", "请求"), http.StatusBadRequest, codes.InvalidArgument},
		{"auth", NewAuthErr(81, 2, "Auth", "认证"), http.StatusUnauthorized, codes.Unauthenticated},
		{"permission", NewPermissionErr(81, 3, "Permission", "权限"), http.StatusForbidden, codes.PermissionDenied},
		{"not found", NewNotFoundErr(81, 4, "Not found", "未找到"), http.StatusNotFound, codes.NotFound},
		{"conflict", NewConflictErr(81, 5, "Conflict", "冲突"), http.StatusConflict, codes.AlreadyExists},
		{"rate limit", NewRateLimitErr(81, 6, "Rate limit", "限流"), http.StatusTooManyRequests, codes.ResourceExhausted},
		{"internal", NewInternalErr(81, 7, "Internal", "内部"), http.StatusInternalServerError, codes.Internal},
		{"database", NewDatabaseErr(81, 8, "Database", "数据库"), http.StatusInternalServerError, codes.Internal},
		{"cache", NewCacheErr(81, 9, "Cache", "缓存"), http.StatusInternalServerError, codes.Internal},
		{"network", NewNetworkErr(81, 10, "Network", "网络"), http.StatusServiceUnavailable, codes.Unavailable},
		{"timeout", NewTimeoutErr(81, 11, "Timeout", "超时"), http.StatusGatewayTimeout, codes.DeadlineExceeded},
		{"config", NewConfigErr(81, 12, "Config", "配置"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantHTTP, tt.errno.HTTP)
			assert.Equal(t, tt.wantGRPC, tt.errno.GRPCCode)
		})
	}
}

func TestNewErrorRegisters(t *testing.T) {
	errno := NewError(82, CategoryRequest, 1, http.StatusTeapot, codes.Aborted, "Custom error", "自定义错误")

	wantCode := MakeCode(82, CategoryRequest, 1)
	assert.Equal(t, wantCode, errno.Code)
	assert.Equal(t, http.StatusTeapot, errno.HTTP)
	assert.Equal(t, "Custom error", errno.MessageEN)
	assert.Equal(t, "自定义错误", errno.MessageZH)

	got, ok := Lookup(wantCode)
	require.True(t, ok)
	assert.Same(t, errno, got)
}

func TestNewErrorDuplicatePanics(t *testing.T) {
	_ = NewRequestErr(83, 1, "First", "第一")
	assert.Panics(t, func() {
		_ = NewRequestErr(83, 1, "Second", "第二")
	})
}

func TestNewErrorEmptyMessagePanics(t *testing.T) {
	assert.Panics(t, func() {
		_ = NewError(84, CategoryRequest, 1, http.StatusBadRequest, codes.InvalidArgument, "", "")
	})
}

func TestNewErrorBoundaryValidation(t *testing.T) {
	tests := []struct {
		name      string
		service   int
		category  int
		sequence  int
		wantPanic bool
	}{
		{"valid min", 85, 1, 100, false},
		{"valid max", 96, 98, 998, false},
		{"service negative", -1, 0, 0, true},
		{"service too large", 100, 0, 0, true},
		{"category too large", 87, 100, 100, true},
		{"sequence too large", 89, 1, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build := func() {
				_ = NewError(tt.service, tt.category, tt.sequence, http.StatusBadRequest, codes.InvalidArgument, "Test", "测试")
			}
			if tt.wantPanic {
				assert.Panics(t, build)
			} else {
				assert.NotPanics(t, build)
			}
		})
	}
}

func TestHelpersUnwrapChain(t *testing.T) {
	wrapped := fmt.Errorf("indexing tenant: %w", ErrFillIndexFailed)

	assert.True(t, IsCode(wrapped, ErrFillIndexFailed.Code))
	assert.Equal(t, ErrFillIndexFailed.Code, GetCode(wrapped))
	assert.Equal(t, ErrFillIndexFailed.Code, FromError(wrapped).Code)

	plain := fmt.Errorf("boom")
	assert.Equal(t, -1, GetCode(plain))
	assert.Equal(t, ErrInternal.Code, FromError(plain).Code)
	assert.Nil(t, FromError(nil))
}
