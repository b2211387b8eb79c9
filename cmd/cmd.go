package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/thiagokokada/gitodb/internal/buildinfo"
	"github.com/thiagokokada/gitodb/internal/config"
	"github.com/thiagokokada/gitodb/internal/git"
	"github.com/thiagokokada/gitodb/internal/logging"
)

// app carries what every subcommand needs after global flags are resolved.
type app struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	repoPath  string
	backend   git.BackendKind
	cacheSize int
}

type command struct {
	usage string
	run   func(a *app, args []string) error
}

var commands = map[string]command{
	"parse":   {usage: "parse [file|-]          parse a raw commit object", run: runParse},
	"show":    {usage: "show [rev]              show a commit (default HEAD)", run: runShow},
	"log":     {usage: "log [rev]               walk history newest first", run: runLog},
	"diff":    {usage: "diff <rev> <rev>        diff two serialized commits", run: runDiff},
	"clone":   {usage: "clone <url> <dir>       clone a repository", run: runClone},
	"watch":   {usage: "watch [rev]             print rev whenever refs change", run: runWatch},
	"version": {usage: "version                 print version information", run: runVersion},
}

func Run() error {
	return run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gitodb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	repoPath := fs.String("repo", ".", "path to the repository")
	configPath := fs.String("config", config.DefaultPath(), "path to the YAML config file")
	backend := fs.String("backend", "", "object backend: native or gitcli (default "+string(git.DefaultBackend)+")")
	cacheSize := fs.Int("cache-size", git.DefaultCacheSize, "number of parsed commits to cache")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "log format: text or json")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	showVersion := fs.Bool("version", false, "print version information and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: gitodb [flags] <command> [args]\n\ncommands:\n")
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stderr, "  %s\n", commands[name].usage)
		}
		fmt.Fprintf(stderr, "\nflags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, buildinfo.VersionWithTags())
		return nil
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if !set["backend"] && cfg.Backend != "" {
		*backend = cfg.Backend
	}
	if !set["cache-size"] && cfg.CacheSize != 0 {
		*cacheSize = cfg.CacheSize
	}
	if !set["log-level"] && cfg.LogLevel != "" {
		*logLevel = cfg.LogLevel
	}
	if !set["log-format"] && cfg.LogFormat != "" {
		*logFormat = cfg.LogFormat
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	if *verbose {
		level = slog.LevelDebug
	}
	format, err := logging.ParseFormat(*logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(stderr, logging.Options{Level: level, Format: format}))

	kind, err := git.ParseBackendKind(*backend)
	if err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fs.Usage()
		return errors.New("no command given")
	}
	name := remaining[0]
	c, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
	a := &app{
		ctx:       ctx,
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		cfg:       cfg,
		repoPath:  *repoPath,
		backend:   kind,
		cacheSize: *cacheSize,
	}
	slog.Debug("running command", slog.String("command", name), slog.String("args", strings.Join(remaining[1:], " ")))
	return c.run(a, remaining[1:])
}

func (a *app) openRepo() (*git.Repository, error) {
	return git.Open(a.repoPath, git.Options{Backend: a.backend, CacheSize: a.cacheSize})
}

// newFlagSet builds a subcommand flag set that reports to stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("gitodb "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseSubcommand(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
