package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/AlejandroRM-DEV/RM-Hasher/digest"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatTemplate = "template"
	FormatSum      = "sum"
)

var (
	errUnknownFormat = errors.New("unknown format")
	errNoTemplate    = errors.New("template format requires a template")
	errSumKinds      = errors.New("sum format requires exactly one algorithm")
)

// Config holds the settings of one rmhash invocation.
type Config struct {
	// Algorithms lists the digest names to compute.
	Algorithms []string `yaml:"algorithms"`

	// Format selects the output writer.
	Format string `yaml:"format"`

	// Template is the {tag} line template used by the
	// template format.
	Template string `yaml:"template"`

	// SinglePass reads each file once for all digests.
	SinglePass bool `yaml:"single_pass"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Algorithms: []string{"sha256"},
		Format:     FormatJSON,
	}
}

// Load reads the YAML file at path over Default. Unknown
// keys are rejected.
func Load(path string) (Config, error) {
	const errCtx = "loading config"

	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.UnmarshalWithOptions(
		data, &cfg, yaml.Strict(),
	); err != nil {
		return cfg, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return cfg, nil
}

// Validate checks the format settings. Algorithm names
// are only parsed here for the sum format, which needs
// exactly one distinct kind; otherwise they are validated
// when the scan starts.
func (c Config) Validate() error {
	const errCtx = "validating config"

	switch c.Format {
	case FormatJSON, FormatYAML:
	case FormatTemplate:
		if c.Template == "" {
			return fmt.Errorf("%s: %w", errCtx, errNoTemplate)
		}
	case FormatSum:
		kinds, err := digest.ParseKinds(c.Algorithms)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		if len(kinds) != 1 {
			return fmt.Errorf(
				"%s: %w, got %d",
				errCtx, errSumKinds, len(kinds),
			)
		}
	default:
		return fmt.Errorf(
			"%s: %w %q", errCtx, errUnknownFormat, c.Format,
		)
	}

	return nil
}
