package json

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/bytedance/sonic"
)

// Benchmark payloads mirror the wire shapes the API actually serves:
// a single fill response and a paginated document listing.

type fillEnvelope struct {
	Code      int         `json:"code"`
	HTTPCode  int         `json:"http_code,omitempty"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

type fieldResult struct {
	Name       string   `json:"name"`
	Value      string   `json:"value"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	Filled     bool     `json:"filled"`
}

type documentEntry struct {
	ID        string   `json:"id"`
	TenantID  string   `json:"tenant_id"`
	Title     string   `json:"title"`
	Chunks    int      `json:"chunks"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

type documentPage struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	List     []documentEntry `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func fillResponsePayload() *fillEnvelope {
	return &fillEnvelope{
		Code:      0,
		HTTPCode:  200,
		Message:   "success",
		RequestID: "req-12345678-abcd-1234-efgh-123456789abc",
		Timestamp: 1703001234567,
		Data: map[string]interface{}{
			"fill_id":   "fill-20260830-001",
			"tenant_id": "tenant-acme",
			"fields": []fieldResult{
				{Name: "full_name", Value: "Jane Doe", Confidence: 0.97, Sources: []string{"doc-1"}, Filled: true},
				{Name: "email", Value: "jane@example.com", Confidence: 0.95, Sources: []string{"doc-1"}, Filled: true},
				{Name: "years_experience", Value: "5", Confidence: 0.82, Sources: []string{"doc-1", "doc-2"}, Filled: true},
				{Name: "expected_salary", Value: "", Confidence: 0, Sources: nil, Filled: false},
			},
			"filled":  3,
			"skipped": 1,
		},
	}
}

func documentPagePayload() *documentPage {
	docs := make([]documentEntry, 20)
	for i := range docs {
		docs[i] = documentEntry{
			ID:        fmt.Sprintf("doc-%04d", i),
			TenantID:  "tenant-acme",
			Title:     fmt.Sprintf("resume-%02d.pdf", i),
			Chunks:    12 + i,
			Tags:      []string{"resume", "engineering"},
			CreatedAt: 1703001234567 + int64(i*1000),
			UpdatedAt: 1703001234567 + int64(i*2000),
		}
	}
	return &documentPage{
		Code:     0,
		Message:  "success",
		List:     docs,
		Total:    200,
		Page:     1,
		PageSize: 20,
	}
}

type codec struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func codecs() []codec {
	return []codec{
		{"Sonic", Marshal, Unmarshal},
		{"SonicDirect", sonic.Marshal, sonic.Unmarshal},
		{"Stdlib", stdjson.Marshal, stdjson.Unmarshal},
	}
}

func BenchmarkMarshalFillResponse(b *testing.B) {
	data := fillResponsePayload()
	for _, c := range codecs() {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = c.marshal(data)
			}
		})
	}
}

func BenchmarkMarshalDocumentPage(b *testing.B) {
	data := documentPagePayload()
	for _, c := range codecs() {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = c.marshal(data)
			}
		})
	}
}

func BenchmarkUnmarshalFillResponse(b *testing.B) {
	for _, c := range codecs() {
		b.Run(c.name, func(b *testing.B) {
			jsonBytes, _ := c.marshal(fillResponsePayload())
			var result fillEnvelope
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = c.unmarshal(jsonBytes, &result)
			}
		})
	}
}

func BenchmarkUnmarshalDocumentPage(b *testing.B) {
	for _, c := range codecs() {
		b.Run(c.name, func(b *testing.B) {
			jsonBytes, _ := c.marshal(documentPagePayload())
			var result documentPage
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = c.unmarshal(jsonBytes, &result)
			}
		})
	}
}

func BenchmarkRoundTripFillResponse(b *testing.B) {
	for _, c := range codecs() {
		b.Run(c.name, func(b *testing.B) {
			data := fillResponsePayload()
			var result fillEnvelope
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				jsonBytes, _ := c.marshal(data)
				_ = c.unmarshal(jsonBytes, &result)
			}
		})
	}
}

// Streaming encoder/decoder comparison only covers this package's
// wrapper and the stdlib, since sonic's streaming API is what the
// wrapper delegates to.

func BenchmarkEncoderFillResponse(b *testing.B) {
	data := fillResponsePayload()

	b.Run("Sonic", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			_ = NewEncoder(&buf).Encode(data)
		}
	})

	b.Run("Stdlib", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			_ = stdjson.NewEncoder(&buf).Encode(data)
		}
	})
}

func BenchmarkDecoderFillResponse(b *testing.B) {
	jsonBytes, _ := Marshal(fillResponsePayload())

	b.Run("Sonic", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var result fillEnvelope
			_ = NewDecoder(bytes.NewReader(jsonBytes)).Decode(&result)
		}
	})

	b.Run("Stdlib", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var result fillEnvelope
			_ = stdjson.NewDecoder(bytes.NewReader(jsonBytes)).Decode(&result)
		}
	})
}

// BenchmarkServeDocumentPage simulates encoding straight onto an HTTP
// connection, the hottest path in the API process.
func BenchmarkServeDocumentPage(b *testing.B) {
	data := documentPagePayload()

	b.Run("Sonic", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			_ = NewEncoder(&buf).Encode(data)
			_, _ = io.Copy(io.Discard, &buf)
		}
	})

	b.Run("Stdlib", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			_ = stdjson.NewEncoder(&buf).Encode(data)
			_, _ = io.Copy(io.Discard, &buf)
		}
	})
}
