// Package httpclient 封装带重试与追踪传播的 HTTP 客户端，供 LLM 供应商等
// 出站调用方复用。
package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kart-io/formfill/pkg/utils/json"
)

// retryBaseDelay 为首次重试的等待时间，之后按次数线性递增。
const retryBaseDelay = 500 * time.Millisecond

// Client 在 http.Client 之上叠加重试和 W3C Trace Context 注入。
type Client struct {
	httpClient *http.Client
	maxRetries int
}

// NewClient 创建 HTTP 客户端，timeout 作用于整个请求生命周期。
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

// DoRequest 执行请求并在 5xx 或网络错误时重试。
// 请求体会先读入内存，以便每次重试重放；嵌入与补全的请求体都很小，
// 这个代价可以接受。
func (c *Client) DoRequest(req *http.Request) (*http.Response, error) {
	c.injectTraceContext(req)

	replay, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if replay != nil {
			req.Body = replay()
		}

		resp, doErr := c.httpClient.Do(req)
		switch {
		case doErr != nil:
			lastErr = doErr
		case resp.StatusCode >= 500:
			// 服务端错误可重试，先释放连接。
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error, status code %d", resp.StatusCode)
		default:
			return resp, nil
		}

		if attempt == c.maxRetries {
			break
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(time.Duration(attempt+1) * retryBaseDelay):
		}
	}
	return nil, lastErr
}

// bufferBody 将请求体读入内存并返回重放函数；无请求体时返回 nil。
func bufferBody(req *http.Request) (func() io.ReadCloser, error) {
	if req.Body == nil {
		return nil, nil
	}
	payload, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	_ = req.Body.Close()
	return func() io.ReadCloser {
		return io.NopCloser(bytes.NewReader(payload))
	}, nil
}

// DoJSON 执行请求并将 JSON 响应解码到 v，保证响应体被关闭。
// 4xx/5xx 响应会连同响应体内容一起返回错误，便于定位上游拒绝原因。
func (c *Client) DoJSON(req *http.Request, v interface{}) error {
	resp, err := c.DoRequest(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// injectTraceContext 将当前 Span 的 W3C Trace Context 头注入请求，
// 使追踪链路延续到下游服务。请求或其 Context 为 nil、全局传播器
// 未设置时直接跳过。
func (c *Client) injectTraceContext(req *http.Request) {
	if req == nil || req.Context() == nil {
		return
	}
	propagator := otel.GetTextMapPropagator()
	if propagator == nil {
		return
	}
	propagator.Inject(req.Context(), propagation.HeaderCarrier(req.Header))
}
