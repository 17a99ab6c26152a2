package digest

import (
	"crypto/md5"  //nolint:gosec // md5 is a supported output, not a security primitive here
	"crypto/sha1" //nolint:gosec // sha1 is a supported output, not a security primitive here
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Kind identifies one supported digest algorithm. The
// declaration order is the canonical output order.
type Kind uint8

// Supported digest kinds.
const (
	SHA256 Kind = iota
	SHA512
	SHA3_256
	SHA3_512
	SHA1
	MD5
	BLAKE3

	numKinds = iota
)

// ErrInvalidAlgorithm is returned when an algorithm name
// does not match any supported Kind.
var ErrInvalidAlgorithm = errors.New("unsupported algorithm")

var kindNames = [numKinds]string{
	SHA256:   "sha256",
	SHA512:   "sha512",
	SHA3_256: "sha3_256",
	SHA3_512: "sha3_512",
	SHA1:     "sha1",
	MD5:      "md5",
	BLAKE3:   "blake3",
}

// All returns every supported kind in canonical order.
func All() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}

	return kinds
}

// String returns the wire name of the kind, e.g.
// "sha3_256".
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}

	return kindNames[k]
}

// HexLen returns the length of the kind's digest when
// rendered as hex.
func (k Kind) HexLen() int {
	switch k {
	case SHA256, SHA3_256, BLAKE3:
		return 64
	case SHA512, SHA3_512:
		return 128
	case SHA1:
		return 40
	case MD5:
		return 32
	default:
		return 0
	}
}

// New returns a fresh hash state for the kind. It panics
// on a value outside the enumeration.
func (k Kind) New() hash.Hash {
	switch k {
	case SHA256:
		return sha256.New()
	case SHA512:
		return sha512.New()
	case SHA3_256:
		return sha3.New256()
	case SHA3_512:
		return sha3.New512()
	case SHA1:
		return sha1.New() //nolint:gosec // see import
	case MD5:
		return md5.New() //nolint:gosec // see import
	case BLAKE3:
		return blake3.New()
	default:
		panic(fmt.Sprintf("digest: unknown kind %d", uint8(k)))
	}
}

func (k Kind) valid() bool {
	return k < numKinds
}

// ParseKind resolves a case-insensitive algorithm name.
func ParseKind(name string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(name))

	for i, n := range kindNames {
		if n == needle {
			return Kind(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, name)
}

// ParseKinds validates names and returns the distinct
// kinds in canonical order. It fails on the first name
// that is not supported. An empty list yields an empty
// set.
func ParseKinds(names []string) ([]Kind, error) {
	const errCtx = "validating algorithms"

	var seen [numKinds]bool

	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		seen[k] = true
	}

	kinds := make([]Kind, 0, numKinds)

	for i, ok := range seen {
		if ok {
			kinds = append(kinds, Kind(i))
		}
	}

	return kinds, nil
}

// JoinKinds renders kinds as a "+" separated list of
// names.
func JoinKinds(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}

	return strings.Join(names, "+")
}
