package json

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type responseEnvelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func TestMarshalProducesValidJSON(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
	}{
		{
			name: "envelope",
			data: responseEnvelope{
				Code:    0,
				Message: "success",
				Data:    map[string]interface{}{"resolved": 3, "skipped": 1},
			},
		},
		{
			name: "embedding vector",
			data: []float32{0.12, -0.53, 0.99, 0},
		},
		{
			name: "nested map",
			data: map[string]interface{}{
				"actions": []map[string]string{
					{"selector": "#name", "kind": "fill", "value": "Jane"},
					{"selector": "#relocate", "kind": "check", "value": "true"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.data)
			require.NoError(t, err)

			var result interface{}
			assert.NoError(t, stdjson.Unmarshal(got, &result))
		})
	}
}

func TestUnmarshal(t *testing.T) {
	var env responseEnvelope
	require.NoError(t, Unmarshal([]byte(`{"code":0,"message":"success","data":{"total":2}}`), &env))
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "success", env.Message)

	assert.Error(t, Unmarshal([]byte(`{broken`), &env))
}

func TestEncoderDecoderRoundtrip(t *testing.T) {
	in := responseEnvelope{Code: 0, Message: "ok"}

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(in))

	var out responseEnvelope
	require.NoError(t, NewDecoder(strings.NewReader(buf.String())).Decode(&out))
	assert.Equal(t, in, out)
}

func TestConfigModeSwitch(t *testing.T) {
	ConfigFastestMode()
	defer ConfigStandardMode()

	data, err := Marshal(responseEnvelope{Code: 0, Message: "ok"})
	require.NoError(t, err)

	ConfigStandardMode()
	var env responseEnvelope
	assert.NoError(t, Unmarshal(data, &env))
}

// 并发 Marshal/Unmarshal 不应出现数据竞争或串扰。
func TestConcurrentMarshalUnmarshal(t *testing.T) {
	const goroutines = 50
	const iterations = 100

	in := responseEnvelope{Code: 0, Message: "success"}

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				data, err := Marshal(in)
				if err != nil {
					errs <- err
					return
				}
				var out responseEnvelope
				if err := Unmarshal(data, &out); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent marshal/unmarshal: %v", err)
	}
}

func BenchmarkMarshalEnvelope(b *testing.B) {
	data := responseEnvelope{
		Code:    0,
		Message: "success",
		Data:    map[string]interface{}{"resolved": 12, "skipped": 3, "failed": 0},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(data)
	}
}

func BenchmarkUnmarshalEnvelope(b *testing.B) {
	raw, _ := Marshal(responseEnvelope{Code: 0, Message: "success"})
	var out responseEnvelope
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Unmarshal(raw, &out)
	}
}
