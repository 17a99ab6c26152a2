package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
)

// BufferSize is the chunk size used to stream a file
// through its hash states.
const BufferSize = 8 * 1024

// FileError reports a failure to open, read, or close a
// file while computing its digests. Kinds lists every
// algorithm whose result was lost.
type FileError struct {
	Path  string
	Kinds []Kind
	Op    string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf(
		"computing %s digest of %s: %s: %v",
		JoinKinds(e.Kinds), e.Path, e.Op, e.Err,
	)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// HashFile computes the kind digest of the file at path
// and returns it as lowercase hex.
func HashFile(path string, kind Kind) (string, error) {
	sums, err := hashFile(path, []Kind{kind})
	if err != nil {
		return "", err
	}

	return sums[kind], nil
}

// HashFileKinds computes the digests of the file at path
// for every kind in kinds using a single read of the
// file. The result equals calling HashFile once per kind.
func HashFileKinds(
	path string,
	kinds []Kind,
) (map[Kind]string, error) {
	return hashFile(path, kinds)
}

func hashFile(
	path string,
	kinds []Kind,
) (result map[Kind]string, retErr error) {
	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, &FileError{
			Path: path, Kinds: kinds, Op: "open", Err: err,
		}
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			result = nil
			retErr = &FileError{
				Path: path, Kinds: kinds, Op: "close", Err: closeErr,
			}
		}
	}()

	hashers := make([]hash.Hash, len(kinds))
	writers := make([]io.Writer, len(kinds))

	for i, k := range kinds {
		hashers[i] = k.New()
		writers[i] = hashers[i]
	}

	if err := stream(io.MultiWriter(writers...), fi); err != nil {
		return nil, &FileError{
			Path: path, Kinds: kinds, Op: "read", Err: err,
		}
	}

	result = make(map[Kind]string, len(kinds))

	for i, k := range kinds {
		result[k] = hex.EncodeToString(hashers[i].Sum(nil))
	}

	return result, nil
}

// stream copies r into w in BufferSize chunks, even when
// r implements io.WriterTo.
func stream(w io.Writer, r io.Reader) error {
	buf := make([]byte, BufferSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			// hash.Hash writes never fail.
			_, _ = w.Write(buf[:n])
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}
	}
}
