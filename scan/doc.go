// Package scan hashes every regular file reachable from a list of paths and
// streams one Record per file to a Sink as soon as the file is done.
//
// Run validates the requested algorithms, then classifies each path as a file
// or a directory, walks directories recursively, and hashes the discovered
// files on a bounded worker pool. Failures are local to the path or file they
// concern; Run reports the first one after all work has finished, while
// records for files that succeeded have already been published.
//
// Sink abstracts record delivery. SinkFunc adapts a plain function, ChanSink
// forwards to a channel, and Collector keeps records in memory.
package scan
