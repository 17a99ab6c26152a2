// Package output provides scan.Sink implementations that serialize records
// to an io.Writer: JSON Lines, a multi-document YAML stream, and free-form
// lines rendered from a {tag} template. Every writer serializes concurrent
// Publish calls so that records never interleave.
package output
