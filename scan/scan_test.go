package scan_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlejandroRM-DEV/RM-Hasher/digest"
	"github.com/AlejandroRM-DEV/RM-Hasher/scan"
)

const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// writeTree creates files (relative path -> content)
// under a fresh temp dir and returns the dir.
func writeTree(
	tb testing.TB,
	files map[string]string,
) string {
	tb.Helper()

	dir := tb.TempDir()

	for rel, content := range files {
		pa := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(tb, os.MkdirAll(filepath.Dir(pa), 0o755))
		require.NoError(
			tb, os.WriteFile(pa, []byte(content), 0o600),
		)
	}

	return dir
}

func paths(recs []scan.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Path
	}

	return out
}

func TestRun_empty_file_sha256(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"empty": ""})

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{filepath.Join(dir, "empty")},
		[]string{"SHA256"},
		&col,
	)

	require.NoError(t, err)

	recs := col.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, filepath.Join(dir, "empty"), recs[0].Path)

	sum, ok := recs[0].Digest(digest.SHA256)
	assert.True(t, ok)
	assert.Equal(t, emptySHA256, sum)
}

func TestRun_nested_directory_counts_files_only(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.txt":             "a",
		"sub/b.txt":         "b",
		"sub/deeper/c.txt":  "c",
		"sub/deeper/d.txt":  "d",
		"x/y/z/w/e.txt":     "e",
		"x/y/z/w/empty.bin": "",
	})
	require.NoError(
		t, os.MkdirAll(filepath.Join(dir, "emptydir"), 0o755),
	)

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{dir},
		[]string{"md5"},
		&col,
	)

	require.NoError(t, err)

	recs := col.Records()
	assert.Len(t, recs, 6)

	for _, r := range recs {
		info, statErr := os.Stat(r.Path)
		require.NoError(t, statErr)
		assert.True(t, info.Mode().IsRegular(), r.Path)
	}

	assert.Contains(
		t, paths(recs),
		filepath.Join(dir, "sub", "deeper", "c.txt"),
	)
}

func TestRun_record_has_exactly_requested_kinds(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"one": "1", "two": "22", "three": "333",
	})

	tests := []struct {
		name       string
		algorithms []string
		singlePass bool
	}{
		{name: "single", algorithms: []string{"sha1"}},
		{
			name:       "three kinds",
			algorithms: []string{"blake3", "sha3_512", "md5"},
		},
		{
			name:       "all kinds single pass",
			algorithms: []string{"sha256", "sha512", "sha3_256", "sha3_512", "sha1", "md5", "blake3"},
			singlePass: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			want, err := digest.ParseKinds(tt.algorithms)
			require.NoError(t, err)

			var col scan.Collector

			err = scan.Run(
				context.Background(),
				scan.Config{SinglePass: tt.singlePass},
				[]string{dir},
				tt.algorithms,
				&col,
			)
			require.NoError(t, err)

			recs := col.Records()
			require.Len(t, recs, 3)

			for _, r := range recs {
				assert.Equal(t, want, r.Kinds(), r.Path)

				for _, k := range want {
					sum, _ := r.Digest(k)
					assert.Len(t, sum, k.HexLen(), k.String())
				}
			}
		})
	}
}

func TestRun_two_kinds_one_record(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"hello": "hello"})
	pa := filepath.Join(dir, "hello")

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{pa},
		[]string{"md5", "sha256"},
		&col,
	)

	require.NoError(t, err)

	recs := col.Records()
	require.Len(t, recs, 1)
	assert.Equal(
		t,
		"5d41402abc4b2a76b9719d911017c592",
		recs[0].Digests[digest.MD5],
	)
	assert.Equal(
		t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		recs[0].Digests[digest.SHA256],
	)
}

func TestRun_single_pass_matches_independent_reads(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a": "alpha", "b/c": "gamma", "b/d": "",
	})
	algorithms := []string{"sha256", "sha3_256", "blake3"}

	var independent, single scan.Collector

	require.NoError(t, scan.Run(
		context.Background(), scan.Config{},
		[]string{dir}, algorithms, &independent,
	))
	require.NoError(t, scan.Run(
		context.Background(), scan.Config{SinglePass: true},
		[]string{dir}, algorithms, &single,
	))

	assert.Equal(t, independent.Records(), single.Records())
}

func TestRun_invalid_algorithm_fails_before_io(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a": "a"})

	var calls atomic.Int32

	sink := scan.SinkFunc(func(scan.Record) error {
		calls.Add(1)

		return nil
	})

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{dir, filepath.Join(dir, "missing")},
		[]string{"sha256", "sha999"},
		sink,
	)

	require.ErrorIs(t, err, digest.ErrInvalidAlgorithm)
	assert.NotErrorIs(t, err, scan.ErrPathAccess)
	assert.NotErrorIs(t, err, fs.ErrNotExist)

	var fe *digest.FileError
	assert.False(t, errors.As(err, &fe))
	assert.Zero(t, calls.Load())
}

func TestRun_missing_path_does_not_block_siblings(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"ok": "fine"})
	missing := filepath.Join(dir, "does-not-exist")

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{missing, filepath.Join(dir, "ok")},
		[]string{"sha256"},
		&col,
	)

	require.ErrorIs(t, err, scan.ErrPathAccess)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(
		t, err.Error(),
		"path does not exist or cannot be accessed: "+missing,
	)

	recs := col.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, filepath.Join(dir, "ok"), recs[0].Path)
}

func TestRun_special_file_is_path_error(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("no /dev/null")
	}

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{os.DevNull},
		[]string{"md5"},
		&scan.Collector{},
	)

	require.ErrorIs(t, err, scan.ErrPathAccess)
	assert.Contains(t, err.Error(), "not a regular file or directory")
}

func TestRun_counts_every_failure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{
			filepath.Join(dir, "x"),
			filepath.Join(dir, "y"),
			filepath.Join(dir, "z"),
		},
		[]string{"sha1"},
		&scan.Collector{},
	)

	require.ErrorIs(t, err, scan.ErrPathAccess)
	assert.Contains(t, err.Error(), "3 errors")
}

// Duplicate input paths are not deduplicated: each
// occurrence yields its own record.
func TestRun_duplicate_paths_produce_duplicate_records(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"dup": "twice"})
	pa := filepath.Join(dir, "dup")

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{pa, pa},
		[]string{"blake3"},
		&col,
	)

	require.NoError(t, err)

	recs := col.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, recs[0], recs[1])
}

func TestRun_symlinks_inside_tree_are_skipped(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"real": "data"})

	if err := os.Symlink(
		filepath.Join(dir, "real"), filepath.Join(dir, "link"),
	); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{dir},
		[]string{"sha256"},
		&col,
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{filepath.Join(dir, "real")},
		paths(col.Records()),
	)
}

func TestRun_single_worker_does_not_deadlock(t *testing.T) {
	t.Parallel()

	files := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d/e", "d/f", "g/h/i"} {
		files[name] = name
	}

	dir := writeTree(t, files)

	var col scan.Collector

	err := scan.RunWithWorkersForTest(
		context.Background(),
		scan.Config{},
		1,
		[]string{dir, filepath.Join(dir, "a")},
		[]string{"sha256", "md5"},
		&col,
	)

	require.NoError(t, err)
	assert.Equal(t, 7, col.Len())
}

func TestRun_sink_error_is_reported(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a": "a", "b": "b"})
	errSink := errors.New("sink closed")

	var delivered atomic.Int32

	sink := scan.SinkFunc(func(rec scan.Record) error {
		if filepath.Base(rec.Path) == "a" {
			return errSink
		}

		delivered.Add(1)

		return nil
	})

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{dir},
		[]string{"sha256"},
		sink,
	)

	require.ErrorIs(t, err, errSink)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestRun_canceled_context_publishes_nothing(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a": "a", "b/c": "c"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var col scan.Collector

	err := scan.Run(
		ctx,
		scan.Config{},
		[]string{dir, filepath.Join(dir, "a")},
		[]string{"sha256"},
		&col,
	)

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, col.Len())
}

func TestRun_nil_sink(t *testing.T) {
	t.Parallel()

	err := scan.Run(
		context.Background(),
		scan.Config{},
		nil,
		[]string{"sha256"},
		nil,
	)

	assert.ErrorIs(t, err, scan.ErrNilSinkForTest)
}

func TestRun_no_paths(t *testing.T) {
	t.Parallel()

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		nil,
		[]string{"sha256"},
		&col,
	)

	require.NoError(t, err)
	assert.Zero(t, col.Len())
}

func TestRun_unreadable_file_is_file_error(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 || runtime.GOOS == "windows" {
		t.Skip("permissions are not enforced")
	}

	dir := writeTree(t, map[string]string{
		"locked": "secret", "open": "public",
	})
	require.NoError(
		t, os.Chmod(filepath.Join(dir, "locked"), 0o000),
	)

	var col scan.Collector

	err := scan.Run(
		context.Background(),
		scan.Config{},
		[]string{dir},
		[]string{"sha256", "md5"},
		&col,
	)

	var fe *digest.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, filepath.Join(dir, "locked"), fe.Path)
	assert.Equal(
		t,
		[]string{filepath.Join(dir, "open")},
		paths(col.Records()),
	)
}

// Record paths keep the root exactly as given. Chdir is
// process-wide, so this test does not run in parallel.
func TestRun_walk_keeps_root_prefix(t *testing.T) {
	dir := writeTree(t, map[string]string{"d/f": "f"})
	t.Chdir(dir)

	sep := string(filepath.Separator)

	tests := []struct {
		root string
		want string
	}{
		{root: "." + sep + "d", want: "." + sep + "d" + sep + "f"},
		{root: "d" + sep, want: "d" + sep + "f"},
		{root: "d", want: "d" + sep + "f"},
		{root: "." + sep + "d" + sep + "f", want: "." + sep + "d" + sep + "f"},
	}

	for _, tt := range tests {
		var col scan.Collector

		err := scan.Run(
			context.Background(),
			scan.Config{},
			[]string{tt.root},
			[]string{"md5"},
			&col,
		)

		require.NoError(t, err, tt.root)
		assert.Equal(t, []string{tt.want}, paths(col.Records()), tt.root)
	}
}
