package output

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/valyala/fasttemplate"

	"github.com/AlejandroRM-DEV/RM-Hasher/digest"
	"github.com/AlejandroRM-DEV/RM-Hasher/scan"
)

const (
	startTag = "{"
	endTag   = "}"
)

var errEmptyTemplate = errors.New("empty template")

// Template renders every record through a {tag}
// template and writes the result as one line. The tags
// are "path" and the algorithm names; a tag for a kind
// absent from the record renders empty and unknown tags
// are kept as-is.
type Template struct {
	mu  sync.Mutex
	out io.Writer
	tpl *fasttemplate.Template
}

// SumTemplate returns the coreutils-style template
// "{<kind>}  {path}".
func SumTemplate(kind digest.Kind) string {
	return startTag + kind.String() + endTag + "  " +
		startTag + "path" + endTag
}

// NewTemplate parses format and returns a Template
// writing to out.
func NewTemplate(out io.Writer, format string) (*Template, error) {
	const errCtx = "parsing output template"

	if format == "" {
		return nil, fmt.Errorf("%s: %w", errCtx, errEmptyTemplate)
	}

	tpl, err := fasttemplate.NewTemplate(format, startTag, endTag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &Template{out: out, tpl: tpl}, nil
}

// Publish renders rec and writes the line.
func (te *Template) Publish(rec scan.Record) error {
	const errCtx = "writing template record"

	line := te.tpl.ExecuteStringStd(templateVars(rec))
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	te.mu.Lock()
	defer te.mu.Unlock()

	if _, err := io.WriteString(te.out, line); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// templateVars builds the substitution map for rec.
func templateVars(rec scan.Record) map[string]interface{} {
	vars := map[string]interface{}{"path": rec.Path}

	for _, k := range digest.All() {
		sum, _ := rec.Digest(k)
		vars[k.String()] = sum
	}

	return vars
}
