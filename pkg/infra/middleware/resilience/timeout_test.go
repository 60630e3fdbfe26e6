package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

// serveTimeout 通过给定的超时中间件跑一次 GET 请求。
func serveTimeout(mw gin.HandlerFunc, path string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	r.Use(mw)
	r.GET(path, handler)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestTimeoutFastRequest(t *testing.T) {
	handlerCalled := false
	w := serveTimeout(Timeout(100*time.Millisecond), "/api/v1/fill", func(_ *gin.Context) {
		handlerCalled = true
		time.Sleep(10 * time.Millisecond)
	})

	if !handlerCalled {
		t.Error("handler not called for a fast request")
	}
	if w.Code == http.StatusRequestTimeout {
		t.Error("fast request reported as timed out")
	}
}

func TestTimeoutSlowRequest(t *testing.T) {
	var started sync.WaitGroup
	started.Add(1)

	w := serveTimeout(Timeout(50*time.Millisecond), "/api/v1/fill", func(_ *gin.Context) {
		started.Done()
		time.Sleep(200 * time.Millisecond)
	})
	started.Wait()

	if w.Code != http.StatusRequestTimeout {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestTimeout)
	}
}

func TestTimeoutSkipPaths(t *testing.T) {
	mw := TimeoutWithOptions(mwopts.TimeoutOptions{
		Timeout:   50 * time.Millisecond,
		SkipPaths: []string{"/health", "/metrics"},
	})

	tests := []struct {
		name        string
		path        string
		wantTimeout bool
	}{
		{"health endpoint exempt", "/health", false},
		{"metrics endpoint exempt", "/metrics", false},
		{"fill endpoint enforced", "/api/v1/fill", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveTimeout(mw, tt.path, func(_ *gin.Context) {
				time.Sleep(100 * time.Millisecond)
			})

			timedOut := w.Code == http.StatusRequestTimeout
			if timedOut != tt.wantTimeout {
				t.Errorf("timed out = %v, want %v (status %d)", timedOut, tt.wantTimeout, w.Code)
			}
		})
	}
}

func TestTimeoutZeroUsesDefault(t *testing.T) {
	// Timeout 零值落回默认超时，普通请求应正常通过。
	handlerCalled := false
	serveTimeout(TimeoutWithOptions(mwopts.TimeoutOptions{}), "/api/v1/fill", func(_ *gin.Context) {
		handlerCalled = true
	})

	if !handlerCalled {
		t.Error("handler not called under the default timeout")
	}
}

func TestTimeoutSetsContextDeadline(t *testing.T) {
	timeout := 100 * time.Millisecond

	var deadline time.Time
	var hasDeadline bool
	serveTimeout(Timeout(timeout), "/api/v1/fill", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
	})

	if !hasDeadline {
		t.Fatal("request context has no deadline")
	}

	diff := time.Until(deadline) - timeout
	if diff < 0 {
		diff = -diff
	}
	if diff > 100*time.Millisecond {
		t.Errorf("deadline off by %v", diff)
	}
}

func TestTimeoutCancelsContext(t *testing.T) {
	resultCh := make(chan error, 1)

	serveTimeout(Timeout(50*time.Millisecond), "/api/v1/fill", func(c *gin.Context) {
		time.Sleep(100 * time.Millisecond)
		resultCh <- c.Request.Context().Err()
	})

	select {
	case contextErr := <-resultCh:
		if contextErr != context.DeadlineExceeded {
			t.Errorf("context error = %v, want %v", contextErr, context.DeadlineExceeded)
		}
	case <-time.After(200 * time.Millisecond):
		t.Error("handler never observed the cancelled context")
	}
}

func TestTimeoutConcurrentRequests(t *testing.T) {
	mw := Timeout(50 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := serveTimeout(mw, "/api/v1/fill", func(_ *gin.Context) {
				time.Sleep(100 * time.Millisecond)
			})
			if w.Code != http.StatusRequestTimeout {
				t.Errorf("status = %d, want %d", w.Code, http.StatusRequestTimeout)
			}
		}()
	}
	wg.Wait()
}

func TestTimeoutHandlerPanic(_ *testing.T) {
	// panic 由 done channel 机制回收，不应外泄到 ServeHTTP 之上。
	serveTimeout(Timeout(100*time.Millisecond), "/api/v1/fill", func(_ *gin.Context) {
		panic("handler exploded")
	})

	// 给后台 goroutine 一点清理时间
	time.Sleep(50 * time.Millisecond)
}

func TestTimeoutVeryShort(t *testing.T) {
	w := serveTimeout(Timeout(1*time.Millisecond), "/api/v1/fill", func(_ *gin.Context) {
		time.Sleep(10 * time.Millisecond)
	})

	if w.Code != http.StatusRequestTimeout {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestTimeout)
	}
}
