// toolconf loads toolbox configuration files, applies environment
// overrides, validates the merged result and prints it.
//
// Files are merged in the order given, later files overriding earlier ones;
// environment variables (when --env-prefix is set) are applied last.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/Azhovan/toolconf"
	"github.com/Azhovan/toolconf/sourceenv"
	"github.com/Azhovan/toolconf/sourcefile"
)

// exitError carries a process exit code alongside the error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		scopes    []string
		envPrefix string
		format    string
		all       bool
		required  bool
		sources   bool
		snapshot  string
		verbose   bool
	)

	flagSet := pflag.NewFlagSet("toolconf", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringSliceVar(&scopes, "scope", nil, "register an additional scope (repeatable)")
	flagSet.StringVar(&envPrefix, "env-prefix", "", "apply environment overrides with this prefix (e.g. TOOLS_)")
	flagSet.StringVarP(&format, "format", "f", "text", "output format: text, json, or yaml")
	flagSet.BoolVar(&all, "all", false, "report every validation problem instead of the first")
	flagSet.BoolVar(&required, "required", true, "fail when a file does not exist")
	flagSet.BoolVar(&sources, "sources", false, "annotate text output with the source of each line")
	flagSet.StringVar(&snapshot, "snapshot", "", "write a JSON snapshot to this path ({{timestamp}} is expanded)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log merge progress to stderr")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet, stderr)
			return nil
		}
		return &exitError{code: 2, err: err}
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, stderr)
		return nil
	}

	files := flagSet.Args()
	if len(files) == 0 && envPrefix == "" {
		return &exitError{code: 2, err: errors.New("no configuration files given")}
	}

	var dumpOpts []toolconf.DumpOption
	switch format {
	case "text":
	case "json":
		dumpOpts = append(dumpOpts, toolconf.AsJSON())
	case "yaml":
		dumpOpts = append(dumpOpts, toolconf.AsYAML())
	default:
		return &exitError{code: 2, err: fmt.Errorf("unknown format %q (want text, json, or yaml)", format)}
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	recognized := toolconf.DefaultScopes()
	for _, scope := range scopes {
		if err := recognized.Add(scope); err != nil {
			return &exitError{code: 2, err: err}
		}
	}

	loader := toolconf.NewLoader().WithScopes(recognized).WithLogger(logger)
	for _, path := range files {
		loader.WithSource(sourcefile.New(path, sourcefile.Options{Required: required}))
	}
	if envPrefix != "" {
		loader.WithSource(sourceenv.New(sourceenv.Options{Prefix: envPrefix}))
	}

	ctx := context.Background()
	var cfg *toolconf.FactoryConfiguration
	var err error
	if all {
		cfg, err = loader.Merge(ctx)
		if err == nil {
			err = cfg.ValidateAll(recognized)
		}
	} else {
		cfg, err = loader.Load(ctx)
	}
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	if sources {
		dumpOpts = append(dumpOpts, toolconf.WithSources())
	}

	if snapshot != "" {
		snap, err := toolconf.CreateSnapshot(cfg)
		if err != nil {
			return &exitError{code: 1, err: err}
		}
		path, err := toolconf.WriteSnapshot(snap, snapshot)
		if err != nil {
			return &exitError{code: 1, err: fmt.Errorf("write snapshot: %w", err)}
		}
		logger.Info("snapshot written", "path", path)
	}

	return toolconf.Dump(stdout, cfg, dumpOpts...)
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `toolconf merges, validates and prints toolbox configuration.

Usage:
  toolconf [flags] FILE...

Examples:
  # Validate and print a single file
  toolconf tools.yaml

  # Layer deployment overrides on top of defaults, as JSON
  toolconf --format json defaults.yaml production.toml

  # Accept a custom scope and apply TOOLS_* environment overrides
  toolconf --scope portlet --env-prefix TOOLS_ tools.yaml

  # Show where each value came from and keep a timestamped snapshot
  toolconf --sources --snapshot 'snapshots/tools-{{timestamp}}.json' defaults.yaml site.yaml

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
