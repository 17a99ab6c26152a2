package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/AlejandroRM-DEV/RM-Hasher/digest"
)

// ErrPathAccess is returned for a top-level path that
// cannot be stat'd or is neither a regular file nor a
// directory.
var ErrPathAccess = errors.New(
	"path does not exist or cannot be accessed",
)

var errNilSink = errors.New("nil sink")

// Config holds settings for a Run.
type Config struct {
	// SinglePass reads each file once and feeds every
	// requested digest from that read. When false each
	// digest reads the file on its own goroutine.
	SinglePass bool
}

// scheduler is the state shared by all units of one Run.
// kinds and sink are read-only once the first unit has
// been submitted.
type scheduler struct {
	cfg   Config
	kinds []digest.Kind
	sink  Sink

	sem chan struct{}
	wg  sync.WaitGroup

	mu   sync.Mutex
	errs []error

	published atomic.Int64
}

// Run hashes every regular file reachable from paths
// with the named algorithms and publishes one Record per
// file to sink. Algorithm names are validated before any
// filesystem access; an unknown name fails the whole run.
//
// Path and file failures do not stop other work. After
// every unit has finished, Run returns an error wrapping
// the first failure observed, or nil.
func Run(
	ctx context.Context,
	cfg Config,
	paths []string,
	algorithms []string,
	sink Sink,
) error {
	return run(
		ctx, cfg, runtime.GOMAXPROCS(0),
		paths, algorithms, sink,
	)
}

func run(
	ctx context.Context,
	cfg Config,
	workers int,
	paths []string,
	algorithms []string,
	sink Sink,
) error {
	const errCtx = "scanning paths"

	kinds, err := digest.ParseKinds(algorithms)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if sink == nil {
		return fmt.Errorf("%s: %w", errCtx, errNilSink)
	}

	if workers <= 0 {
		workers = 1
	}

	s := &scheduler{
		cfg:   cfg,
		kinds: kinds,
		sink:  sink,
		sem:   make(chan struct{}, workers),
	}

	slog.Info(
		"scanning",
		"paths", len(paths),
		"algorithms", digest.JoinKinds(kinds),
		"workers", workers,
		"single_pass", cfg.SinglePass,
	)

	for _, path := range paths {
		s.submit(ctx, path, func() error {
			return s.processPath(ctx, path)
		})
	}

	s.wg.Wait()

	slog.Info(
		"scan finished",
		"records", s.published.Load(),
		"errors", len(s.errs),
	)

	if len(s.errs) > 0 {
		return fmt.Errorf(
			"%s: %d errors, first: %w",
			errCtx, len(s.errs), s.errs[0],
		)
	}

	return nil
}

// submit queues unit on the worker pool without blocking
// the caller. Units still waiting for a slot when ctx is
// done are skipped and recorded as failures.
func (s *scheduler) submit(
	ctx context.Context,
	name string,
	unit func() error,
) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		if err := ctx.Err(); err != nil {
			s.fail(fmt.Errorf("skipping %s: %w", name, err))

			return
		}

		if err := unit(); err != nil {
			s.fail(err)
		}
	}()
}

func (s *scheduler) fail(err error) {
	slog.Error("unit failed", "error", err)

	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// processPath classifies one top-level path. Files are
// hashed in place; directories are walked.
func (s *scheduler) processPath(
	ctx context.Context,
	path string,
) error {
	const errCtx = "processing path"

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf(
			"%s: %w: %s: %w", errCtx, ErrPathAccess, path, err,
		)
	}

	switch {
	case info.Mode().IsRegular():
		return s.hashFile(path)
	case info.IsDir():
		return s.walk(ctx, path)
	default:
		return fmt.Errorf(
			"%s: %w: %s: not a regular file or directory",
			errCtx, ErrPathAccess, path,
		)
	}
}

// walk submits every regular file below root. Symlinks
// and special files inside the tree are skipped, as are
// entries that cannot be read.
func (s *scheduler) walk(
	ctx context.Context,
	root string,
) error {
	const errCtx = "walking directory"

	found := 0

	err := fs.WalkDir(
		os.DirFS(root), ".",
		func(rel string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			path := entryPath(root, rel)

			if err != nil {
				slog.Warn(
					"skipping unreadable entry",
					"path", path,
					"error", err,
				)

				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}

			found++

			s.submit(ctx, path, func() error {
				return s.hashFile(path)
			})

			return nil
		},
	)

	slog.Debug("walked directory", "root", root, "files", found)

	if err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, root, err)
	}

	return nil
}

// entryPath appends the slash-separated rel to root
// without cleaning root, so records keep the prefix the
// caller gave.
func entryPath(root, rel string) string {
	if rel == "." {
		return root
	}

	sep := string(filepath.Separator)
	if root != "" && os.IsPathSeparator(root[len(root)-1]) {
		sep = ""
	}

	return root + sep + filepath.FromSlash(rel)
}

// hashFile computes every requested digest of path and
// publishes the record. Nothing is published unless all
// digests succeed.
func (s *scheduler) hashFile(path string) error {
	const errCtx = "hashing file"

	var (
		sums map[digest.Kind]string
		err  error
	)

	if s.cfg.SinglePass {
		sums, err = digest.HashFileKinds(path, s.kinds)
	} else {
		sums, err = s.hashEachKind(path)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	rec := Record{Path: path, Digests: sums}

	if err := s.sink.Publish(rec); err != nil {
		return fmt.Errorf(
			"%s: publishing %s: %w", errCtx, path, err,
		)
	}

	s.published.Add(1)

	slog.Debug("hashed", "path", path)

	return nil
}

// hashEachKind runs one HashFile per requested kind in
// parallel. The first failure in canonical kind order
// wins.
func (s *scheduler) hashEachKind(
	path string,
) (map[digest.Kind]string, error) {
	var wg sync.WaitGroup

	results := make([]string, len(s.kinds))
	errs := make([]error, len(s.kinds))

	for i, kind := range s.kinds {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], errs[i] = digest.HashFile(path, kind)
		}()
	}

	wg.Wait()

	sums := make(map[digest.Kind]string, len(s.kinds))

	for i, kind := range s.kinds {
		if errs[i] != nil {
			return nil, errs[i]
		}

		sums[kind] = results[i]
	}

	return sums, nil
}
