package scan

// Exported aliases for testing internal functions from
// the scan_test package.

// RunWithWorkersForTest exposes run with an explicit
// worker pool size.
var RunWithWorkersForTest = run

// ErrNilSinkForTest exposes errNilSink.
var ErrNilSinkForTest = errNilSink
