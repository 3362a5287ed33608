// modgen generates the export statements of a C++20 module interface from a
// translation unit's declarations.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/emit"
	"github.com/phobologic/modgen/internal/filter"
	"github.com/phobologic/modgen/internal/symbols"
)

var version = "dev"

// errUsage marks command-line mistakes; run prints the usage text for them.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	output      string
	namespaces  []string
	include     string
	exclude     string
	onlyNames   bool
	module      string
	parser      string
	configPath  string
	jobs        int
	update      bool
	verbose     bool
	showVersion bool
}

// logger writes diagnostics to stderr. It is shared by parse workers.
type logger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

func (l *logger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "Warning: "+format+"\n", args...)
}

func (l *logger) Debugf(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "modgen: "+format+"\n", args...)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if errors.Is(err, errUsage) {
		_, _ = fmt.Fprint(stderr, cmd.UsageString())
	}
	return err
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "modgen [flags] <ast.json | header | directory | ->",
		Short: "Generate C++20 module export statements from a translation unit",
		Long: `modgen walks the declarations of a translation unit and prints the export
statements of a module interface that re-exports them, grouped by namespace.

The input is a clang JSON AST (clang -Xclang -ast-dump=json -fsyntax-only),
a C or C++ header parsed directly, a directory of headers, or - for stdin.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("%w: expected one input, got %d", errUsage, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				_, _ = fmt.Fprintf(stdout, "modgen %s\n", version)
				return nil
			}
			return generate(cmd.Context(), cmd, opts, args[0], stdin, stdout, stderr)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "write output to `path` instead of stdout")
	f.StringSliceVarP(&opts.namespaces, "namespaces", "n", nil, "comma-separated namespaces to export")
	f.StringVarP(&opts.include, "filter", "f", "", "only export names matching this `regex`")
	f.StringVarP(&opts.exclude, "exclude", "e", "", "skip names matching this `regex`")
	f.BoolVarP(&opts.onlyNames, "names", "p", false, "print qualified names instead of export statements")
	f.StringVarP(&opts.module, "module", "m", "", "prefix the output with export module `name`;")
	f.StringVar(&opts.parser, "parser", "", "input parser: auto, json, source or clang")
	f.StringVar(&opts.configPath, "config", "", "config file (default .modgen.yaml)")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "parallel parse jobs for directory input (default GOMAXPROCS)")
	f.BoolVar(&opts.update, "update", false, "replace the generated block in the -o file, keeping the rest")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	f.BoolVarP(&opts.showVersion, "version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	return cmd
}

// settings merges the config file and environment with the flags set in f.
func settings(f *pflag.FlagSet, opts *options) (*config.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}
	loader := config.NewLoader(wd, opts.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, "", err
	}

	if f.Changed("namespaces") {
		cfg.Namespaces = opts.namespaces
	}
	if f.Changed("filter") {
		cfg.Filter = opts.include
	}
	if f.Changed("exclude") {
		cfg.Exclude = opts.exclude
	}
	if f.Changed("module") {
		cfg.Module = opts.module
	}
	if f.Changed("parser") {
		cfg.Parser = opts.parser
	}
	if f.Changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", fmt.Errorf("%w: %v", errUsage, err)
	}
	return cfg, loader.Used(), nil
}

func generate(ctx context.Context, cmd *cobra.Command, opts *options, input string, stdin io.Reader, stdout, stderr io.Writer) error {
	log := &logger{w: stderr, verbose: opts.verbose}

	if opts.update && (opts.output == "" || opts.output == "-") {
		return fmt.Errorf("%w: --update needs an -o file", errUsage)
	}

	cfg, used, err := settings(cmd.Flags(), opts)
	if err != nil {
		return err
	}
	if used != "" {
		log.Debugf("config %s", used)
	}

	// Compile the filters before reading input so a bad pattern fails fast.
	flt, err := filter.New(filter.Options{
		Namespaces: cfg.Namespaces,
		Include:    cfg.Filter,
		Exclude:    cfg.Exclude,
	})
	if err != nil {
		return err
	}
	include, exclude := flt.Describe()
	log.Debugf("include %q exclude %q", include, exclude)

	root, err := loadTree(ctx, input, cfg, stdin, log)
	if err != nil {
		return err
	}

	res := symbols.Walk(root)
	names := flt.Apply(res.Names, res.Aliases)
	log.Debugf("visited %d declarations (depth %d), %d exportable, %d after filtering",
		res.Visited, res.MaxDepth, res.Names.Len(), names.Len())

	var buf bytes.Buffer
	if err := emit.Render(&buf, names, res.Aliases, emit.Options{OnlyNames: opts.onlyNames, Module: cfg.Module}); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	return writeOutput(opts, buf.Bytes(), stdout)
}

// writeOutput writes the rendered text once everything else succeeded, so a
// failed run never truncates an existing file.
func writeOutput(opts *options, out []byte, stdout io.Writer) error {
	if opts.output == "" || opts.output == "-" {
		_, err := stdout.Write(out)
		return err
	}

	if opts.update {
		existing, err := os.ReadFile(opts.output)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", opts.output, err)
		}
		out = []byte(applyBlock(string(existing), string(out)))
	}

	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.output, err)
	}
	return nil
}
