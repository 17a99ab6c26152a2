package output

import (
	"fmt"
	"io"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/AlejandroRM-DEV/RM-Hasher/scan"
)

// JSONLines writes one JSON object per record, each on
// its own line.
type JSONLines struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONLines returns a JSONLines writing to out.
func NewJSONLines(out io.Writer) *JSONLines {
	return &JSONLines{out: out}
}

// Publish writes rec as a single line.
func (jl *JSONLines) Publish(rec scan.Record) error {
	const errCtx = "writing json record"

	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	buf = append(buf, '\n')

	jl.mu.Lock()
	defer jl.mu.Unlock()

	if _, err := jl.out.Write(buf); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// YAMLStream writes each record as one YAML document.
// Documents after the first are preceded by a "---"
// separator.
type YAMLStream struct {
	mu      sync.Mutex
	out     io.Writer
	started bool
}

// NewYAMLStream returns a YAMLStream writing to out.
func NewYAMLStream(out io.Writer) *YAMLStream {
	return &YAMLStream{out: out}
}

// Publish writes rec as a YAML document.
func (ys *YAMLStream) Publish(rec scan.Record) error {
	const errCtx = "writing yaml record"

	buf, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ys.mu.Lock()
	defer ys.mu.Unlock()

	if ys.started {
		buf = append([]byte("---\n"), buf...)
	}

	if _, err := ys.out.Write(buf); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ys.started = true

	return nil
}
