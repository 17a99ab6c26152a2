// Package digest computes file digests for a closed set of algorithms. Kind
// enumerates the supported algorithms and ParseKinds validates a list of
// case-insensitive names against it. HashFile streams one file through a
// fixed-size buffer for a single Kind; HashFileKinds produces the same
// digests for several kinds from a single read.
package digest
