// Package main provides the CLI entrypoint for enricher.
//
// enricher reads a JSON array of targets, enriches them with the operations
// of one type of the definition file and writes them back as JSON:
//
//	enricher -c enricher.yaml -t order -i orders.json -o enriched.json
//	enricher -c enricher.yaml --check
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"enricher/internal/config"
	"enricher/internal/engine"
	"enricher/internal/logs"
	"enricher/internal/mapping"
)

const appName = "enricher"

// errFailures is returned when some dispatches failed; the output is still written.
var errFailures = errors.New("enrichment finished with failures")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)

	stop()

	switch {
	case err == nil:
	case errors.Is(err, pflag.ErrHelp):
	case errors.Is(err, errFailures):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

type options struct {
	config   string
	typeName string
	input    string
	output   string
	check    bool
}

func newFlagSet(stderr io.Writer) (*pflag.FlagSet, *options) {
	opts := &options{}

	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.config, "config", "c", "", "configuration file")
	fs.StringVarP(&opts.typeName, "type", "t", "", "type of the targets in the definition file")
	fs.StringVarP(&opts.input, "input", "i", "-", "targets file, - for stdin")
	fs.StringVarP(&opts.output, "output", "o", "-", "output file, - for stdout")
	fs.BoolVar(&opts.check, "check", false, "validate the definition file and exit")

	fs.String("operations", "", "operation definition file")
	fs.String("mode", "", "dispatch mode: disordered, ordered or concurrent")
	fs.Int("batch-size", 0, "maximum targets per execution")
	fs.Int("max-depth", 0, "maximum nesting depth, 0 for unbounded")
	fs.Int("parallelism", 0, "concurrent dispatches in concurrent mode")
	fs.StringSlice("groups", nil, "only run operations of these groups")
	fs.String("log-level", "", "log level")
	fs.String("log-file", "", "JSON log file")

	return fs, opts
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, opts := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	loader, err := config.NewLoader(opts.config, fs)
	if err != nil {
		return err
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger := logs.Init(appName, cfg.Log)
	defer func() { _ = logger.Sync() }()

	// the level may be changed while a long batch runs
	loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			logger.Warn("config reload", zap.Error(err))
			return
		}

		if err = logs.SetLevel(next.Log.Level); err != nil {
			logger.Warn("set log level", zap.Error(err))
		}
	})

	if opts.check {
		return check(cfg, stdout, logger)
	}

	if opts.typeName == "" {
		return errors.New("--type is required")
	}

	e, err := engine.FromConfig(ctx, cfg, logger).Build()
	if err != nil {
		return err
	}

	defer func() {
		if cerr := e.Close(context.Background()); cerr != nil {
			logger.Warn("close engine", zap.Error(cerr))
		}
	}()

	targets, err := readTargets(opts.input, stdin)
	if err != nil {
		return err
	}

	diags, err := e.Enrich(ctx, opts.typeName, targets, engine.Filter(cfg.Executor.Groups))
	if err != nil {
		return err
	}

	if err = writeTargets(opts.output, stdout, targets); err != nil {
		return err
	}

	printDiagnostics(stderr, diags)

	if diags.HasErrors() {
		return fmt.Errorf("%w: %d", errFailures, len(diags.Errors))
	}

	return nil
}

func check(cfg *config.Config, stdout io.Writer, logger *zap.Logger) error {
	if cfg.Operations == "" {
		return errors.New("no operation definition file configured")
	}

	f, err := mapping.LoadFile(cfg.Operations)
	if err != nil {
		return err
	}

	diags := mapping.Validate(f, mapping.DefaultRegistries(logger), nil)
	printDiagnostics(stdout, diags)

	if err = diags.Error(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d types ok\n", cfg.Operations, len(f.Types))

	return nil
}
