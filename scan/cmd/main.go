// Package main provides the rmhash CLI that computes
// file digests for every regular file under the given
// paths and prints one record per file as it completes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/AlejandroRM-DEV/RM-Hasher/config"
	"github.com/AlejandroRM-DEV/RM-Hasher/digest"
	"github.com/AlejandroRM-DEV/RM-Hasher/output"
	"github.com/AlejandroRM-DEV/RM-Hasher/scan"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()

	switch {
	case err == nil:
	case errors.Is(err, pflag.ErrHelp):
	case errors.Is(err, errUsage):
		slog.Error(err.Error())
		os.Exit(2)
	default:
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	args []string,
	stdout io.Writer,
	stderr io.Writer,
) error {
	const errCtx = "rmhash"

	fs := pflag.NewFlagSet("rmhash", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: rmhash [flags] PATH...")
		fs.PrintDefaults()
	}

	algorithms := fs.StringSliceP(
		"algorithm", "a", nil,
		"digest algorithm: sha256, sha512, sha3_256, "+
			"sha3_512, sha1, md5, blake3 (repeatable)",
	)
	format := fs.StringP(
		"format", "f", config.FormatJSON,
		"output format: json, yaml, template, or sum",
	)
	template := fs.StringP(
		"template", "t", "",
		"line template for --format=template, "+
			"e.g. '{sha256}  {path}'",
	)
	singlePass := fs.Bool(
		"single-pass", false,
		"read each file once for all algorithms",
	)
	configFile := fs.StringP(
		"config", "c", "",
		"YAML config file with default settings",
	)
	verbose := fs.BoolP(
		"verbose", "v", false,
		"enable debug logging",
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}

		return fmt.Errorf("%s: %w: %w", errCtx, errUsage, err)
	}

	setupLogging(stderr, *verbose)

	cfg := config.Default()

	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		cfg = loaded
	}

	if fs.Changed("algorithm") {
		cfg.Algorithms = *algorithms
	}

	if fs.Changed("format") {
		cfg.Format = *format
	}

	if fs.Changed("template") {
		cfg.Template = *template
	}

	if fs.Changed("single-pass") {
		cfg.SinglePass = *singlePass
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w: %w", errCtx, errUsage, err)
	}

	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf(
			"%s: %w: at least one PATH is required",
			errCtx, errUsage,
		)
	}

	sink, err := newSink(cfg, stdout)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := scan.Run(
		ctx,
		scan.Config{SinglePass: cfg.SinglePass},
		paths,
		cfg.Algorithms,
		sink,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// setupLogging installs a text handler on stderr as the
// default slog logger.
func setupLogging(stderr io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		stderr, &slog.HandlerOptions{Level: level},
	)))
}

// newSink selects the record writer for cfg.Format.
// Pattern: Factory -- selects output implementation at
// runtime.
func newSink(
	cfg config.Config,
	out io.Writer,
) (scan.Sink, error) {
	const errCtx = "creating output"

	switch cfg.Format {
	case config.FormatYAML:
		return output.NewYAMLStream(out), nil

	case config.FormatTemplate:
		te, err := output.NewTemplate(out, cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return te, nil

	case config.FormatSum:
		kind, err := digest.ParseKind(cfg.Algorithms[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		te, err := output.NewTemplate(
			out, output.SumTemplate(kind),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return te, nil

	default:
		return output.NewJSONLines(out), nil
	}
}
