// Package config loads rmhash defaults from an optional YAML file. Load
// applies the file on top of Default; command-line flags are expected to
// override the result.
package config
