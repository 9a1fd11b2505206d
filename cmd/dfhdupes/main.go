package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	dupefilehash "github.com/mattkeenan/dupefilehash/pkg"
)

const (
	appName    = "dfhdupes"
	appVersion = "0.1.0"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, setupSignalHandler()))
}

// options holds the parsed command line
type options struct {
	configPath string
	algorithm  string
	format     string
	workers    int
	minSize    string
	ignores    []string
	overrides  []string
	verbose    int
	debug      string
	version    bool
	root       string
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.configPath, "config", "c", "", "INI config file (created with defaults if missing)")
	fs.StringVarP(&opts.algorithm, "algorithm", "a", "", "hash algorithm: sha256, sha512_256, blake3")
	fs.StringVarP(&opts.format, "format", "f", "", "output format: human, json, fdupes")
	fs.IntVarP(&opts.workers, "workers", "j", 0, "number of concurrent index workers")
	fs.StringVar(&opts.minSize, "min-size", "", "ignore files smaller than this (e.g. 4K)")
	fs.StringArrayVarP(&opts.ignores, "ignore", "i", nil, "regexp of root-relative paths to skip (repeatable)")
	fs.StringArrayVar(&opts.overrides, "set", nil, "config override key:value (repeatable)")
	fs.CountVarP(&opts.verbose, "verbose", "v", "increase verbosity (repeatable)")
	fs.StringVar(&opts.debug, "debug", "", "comma-separated debug flags: scan, index, hash")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s - find files with identical content\n\n", appName)
		fmt.Fprintf(stderr, "Usage: %s [options] <directory>\n\n", appName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.version {
		return opts, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected exactly one directory argument, got %d", fs.NArg())
	}
	opts.root = fs.Arg(0)
	return opts, nil
}

// configOverrides turns dedicated flags into config overrides; they are
// applied after --set so the dedicated flags win
func (o *options) configOverrides() []string {
	overrides := append([]string(nil), o.overrides...)
	if o.algorithm != "" {
		overrides = append(overrides, "default:"+o.algorithm)
	}
	if o.format != "" {
		overrides = append(overrides, "format:"+o.format)
	}
	if o.workers > 0 {
		overrides = append(overrides, "hash_workers:"+strconv.Itoa(o.workers))
	}
	if o.minSize != "" {
		overrides = append(overrides, "min_size:"+o.minSize)
	}
	return overrides
}

func run(args []string, stdout, stderr io.Writer, shutdown <-chan struct{}) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintf(stdout, "%s %s\n", appName, appVersion)
		return exitOK
	}

	config, err := dupefilehash.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitError
	}
	if err := config.ApplyOverrides(opts.configOverrides()); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitUsage
	}

	dupefilehash.SetLogOutput(stderr)
	dupefilehash.ApplyVerboseConfig(config.GetVerboseConfig())
	if opts.verbose > 0 {
		dupefilehash.SetVerboseLevel(opts.verbose)
	}
	if opts.debug != "" {
		dupefilehash.SetDebugFlags(opts.debug)
	}

	finder, err := dupefilehash.NewDupeFinder(opts.root, config, nil)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitError
	}
	for _, pattern := range opts.ignores {
		if err := finder.AddIgnorePattern(pattern); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return exitUsage
		}
	}

	report, err := finder.FindDuplicates(shutdown)
	switch {
	case errors.Is(err, dupefilehash.ErrPathNotFound):
		fmt.Fprintf(stderr, "%s: directory not found: %s\n", appName, opts.root)
		return exitError
	case errors.Is(err, dupefilehash.ErrNotADirectory):
		fmt.Fprintf(stderr, "%s: you need to specify a directory to search through: %s\n", appName, opts.root)
		return exitError
	case errors.Is(err, dupefilehash.ErrInterrupted):
		fmt.Fprintf(stderr, "%s: scan interrupted, report is partial\n", appName)
	case err != nil:
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitError
	}

	if werr := dupefilehash.WriteReport(stdout, config.GetOutputConfig().Format, report); werr != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, werr)
		return exitError
	}

	if err != nil {
		return exitInterrupted
	}
	return exitOK
}
