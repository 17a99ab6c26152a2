package scan

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/AlejandroRM-DEV/RM-Hasher/digest"
)

// Record holds every requested digest of one file. Path
// is the path as encountered during traversal.
type Record struct {
	Path    string
	Digests map[digest.Kind]string
}

// recordWire is the serialized shape of a Record. Field
// names mirror the algorithm names.
type recordWire struct {
	Path     string  `json:"path"               yaml:"path"`
	SHA256   *string `json:"sha256,omitempty"   yaml:"sha256,omitempty"`
	SHA512   *string `json:"sha512,omitempty"   yaml:"sha512,omitempty"`
	SHA3_256 *string `json:"sha3_256,omitempty" yaml:"sha3_256,omitempty"`
	SHA3_512 *string `json:"sha3_512,omitempty" yaml:"sha3_512,omitempty"`
	SHA1     *string `json:"sha1,omitempty"     yaml:"sha1,omitempty"`
	MD5      *string `json:"md5,omitempty"      yaml:"md5,omitempty"`
	BLAKE3   *string `json:"blake3,omitempty"   yaml:"blake3,omitempty"`
}

// Digest returns the digest for kind and whether it is
// present.
func (r Record) Digest(kind digest.Kind) (string, bool) {
	sum, ok := r.Digests[kind]

	return sum, ok
}

// Kinds returns the kinds present in r in canonical
// order.
func (r Record) Kinds() []digest.Kind {
	kinds := make([]digest.Kind, 0, len(r.Digests))

	for _, k := range digest.All() {
		if _, ok := r.Digests[k]; ok {
			kinds = append(kinds, k)
		}
	}

	return kinds
}

// MarshalJSON encodes r with one key per present kind.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	const errCtx = "decoding record"

	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	r.fromWire(w)

	return nil
}

// MarshalYAML encodes r with the same keys as
// MarshalJSON.
func (r Record) MarshalYAML() (interface{}, error) {
	return r.wire(), nil
}

// slot maps a kind to its field in the wire struct.
func (w *recordWire) slot(kind digest.Kind) **string {
	switch kind {
	case digest.SHA256:
		return &w.SHA256
	case digest.SHA512:
		return &w.SHA512
	case digest.SHA3_256:
		return &w.SHA3_256
	case digest.SHA3_512:
		return &w.SHA3_512
	case digest.SHA1:
		return &w.SHA1
	case digest.MD5:
		return &w.MD5
	case digest.BLAKE3:
		return &w.BLAKE3
	default:
		return nil
	}
}

func (r Record) wire() recordWire {
	w := recordWire{Path: r.Path}

	for kind, sum := range r.Digests {
		if p := w.slot(kind); p != nil {
			s := sum
			*p = &s
		}
	}

	return w
}

func (r *Record) fromWire(w recordWire) {
	r.Path = w.Path
	r.Digests = make(map[digest.Kind]string)

	for _, kind := range digest.All() {
		if p := w.slot(kind); *p != nil {
			r.Digests[kind] = **p
		}
	}
}
