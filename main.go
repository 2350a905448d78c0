package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"

	"github.com/wildfunctions/lagrange/pkg/engine"
	"github.com/wildfunctions/lagrange/pkg/server"
)

const usage = `usage: lagrange [flags] [serve|build|eval]

  serve  run the HTTP API (default)
  build  interpolate a JSON array of {"x", "y"} points from -points or stdin
  eval   evaluate -poly at each of the comma-separated values in -x

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	points     string
	poly       string
	xs         string
	verbose    bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg := engine.DefaultConfig()
	var opts options

	fs := flag.NewFlagSet("lagrange", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "YAML config file; flags override it")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format (text, json, latex)")
	fs.DurationVar(&cfg.CompileCacheTTL, "cache-ttl", cfg.CompileCacheTTL, "compiled expression cache TTL (0 disables)")
	fs.IntVar(&cfg.MaxExprDepth, "max-depth", cfg.MaxExprDepth, "max parsed expression depth (0 = unlimited)")
	fs.IntVar(&cfg.MaxPoints, "max-points", cfg.MaxPoints, "max points per build (0 = unlimited)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of parallel workers for eval")
	fs.StringVar(&opts.points, "points", "", "build: JSON array of points (default: read stdin)")
	fs.StringVar(&opts.poly, "poly", "", "eval: polynomial string")
	fs.StringVar(&opts.xs, "x", "", "eval: comma-separated x values")
	fs.BoolVar(&opts.verbose, "verbose", false, "log to the console for build and eval")

	// The command may come before or after the flags.
	var command string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		if command != "" || fs.NArg() > 1 {
			return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		}
		command = fs.Arg(0)
	}
	if command == "" {
		command = "serve"
	}

	if opts.configPath != "" {
		fileCfg, err := engine.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = overrideSetFlags(fs, fileCfg, cfg)
	}

	var logger l.Wrapper = l.NewNopLoggerWrapper()
	if opts.verbose || command == "serve" {
		logger = l.NewConsoleLoggerWrapper()
	}

	e, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}

	switch command {
	case "serve":
		return server.New(e, logger).ListenAndServe(ctx)
	case "build":
		return runBuild(e, opts, stdin, stdout)
	case "eval":
		return runEval(e, opts, stdout)
	default:
		return fmt.Errorf("unknown command %q (want serve, build or eval)", command)
	}
}

// overrideSetFlags returns fileCfg with the values of every flag given on
// the command line taken from flagCfg.
func overrideSetFlags(fs *flag.FlagSet, fileCfg, flagCfg engine.Config) engine.Config {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			fileCfg.Listen = flagCfg.Listen
		case "format":
			fileCfg.Format = flagCfg.Format
		case "cache-ttl":
			fileCfg.CompileCacheTTL = flagCfg.CompileCacheTTL
		case "max-depth":
			fileCfg.MaxExprDepth = flagCfg.MaxExprDepth
		case "max-points":
			fileCfg.MaxPoints = flagCfg.MaxPoints
		case "workers":
			fileCfg.Workers = flagCfg.Workers
		}
	})
	return fileCfg
}

func runBuild(e *engine.Engine, opts options, stdin io.Reader, stdout io.Writer) error {
	var in io.Reader = strings.NewReader(opts.points)
	if opts.points == "" {
		in = stdin
	}

	points, err := server.DecodePoints(in)
	if err != nil {
		return err
	}

	report, err := e.Build(points)
	if err != nil {
		return err
	}

	return engine.WriteBuild(stdout, e.Config().Format, report)
}

func runEval(e *engine.Engine, opts options, stdout io.Writer) error {
	if opts.poly == "" {
		return errors.New("eval: -poly is required")
	}
	if opts.xs == "" {
		return errors.New("eval: -x is required")
	}

	var xs []float64
	for _, field := range strings.Split(opts.xs, ",") {
		x, err := cast.ToFloat64E(strings.TrimSpace(field))
		if err != nil {
			return fmt.Errorf("eval: bad -x value %q", field)
		}
		xs = append(xs, x)
	}

	reports, err := e.EvaluateBatch(opts.poly, xs)
	if err != nil {
		return err
	}

	return engine.WriteEvaluations(stdout, e.Config().Format, reports)
}
