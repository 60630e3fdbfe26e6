// Package json wraps JSON serialization behind a swappable implementation.
// On amd64/arm64 it binds to sonic; elsewhere it falls back to the
// standard library so the module still builds on exotic platforms.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v interface{}) error

	// NewEncoder creates a streaming encoder for w.
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder creates a streaming decoder for r.
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

// Encoder is the subset of json encoders this package exposes.
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder is the subset of json decoders this package exposes.
type Decoder interface {
	Decode(v interface{}) error
}

func bindSonic(api sonic.API) {
	Marshal = api.Marshal
	Unmarshal = api.Unmarshal
	NewEncoder = func(w io.Writer) Encoder { return api.NewEncoder(w) }
	NewDecoder = func(r io.Reader) Decoder { return api.NewDecoder(r) }
}

func bindStdlib() {
	Marshal = stdjson.Marshal
	Unmarshal = stdjson.Unmarshal
	NewEncoder = func(w io.Writer) Encoder { return stdjson.NewEncoder(w) }
	NewDecoder = func(r io.Reader) Decoder { return stdjson.NewDecoder(r) }
}

func init() {
	// sonic only ships amd64/arm64 assembly
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		bindSonic(sonic.ConfigDefault)
		usingSonic = true
		return
	}
	bindStdlib()
}

// ConfigFastestMode switches to sonic's fastest mode. It skips some
// safety checks, so only use it on trusted input. No-op on the
// stdlib fallback.
func ConfigFastestMode() {
	if usingSonic {
		bindSonic(sonic.ConfigFastest)
	}
}

// ConfigStandardMode restores sonic's default mode. No-op on the
// stdlib fallback.
func ConfigStandardMode() {
	if usingSonic {
		bindSonic(sonic.ConfigDefault)
	}
}

// IsUsingSonic reports whether sonic is the active implementation.
func IsUsingSonic() bool {
	return usingSonic
}
