package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/thiagokokada/gitodb/internal/buildinfo"
	"github.com/thiagokokada/gitodb/internal/clone"
	"github.com/thiagokokada/gitodb/internal/git"
	"github.com/thiagokokada/gitodb/internal/highlight"
	"github.com/thiagokokada/gitodb/internal/object"
	"github.com/thiagokokada/gitodb/internal/watch"
)

func runParse(a *app, args []string) error {
	fs := a.newFlagSet("parse")
	if ok, err := parseSubcommand(fs, args); !ok {
		return err
	}
	var (
		data []byte
		err  error
	)
	switch path := fs.Arg(0); path {
	case "", "-":
		data, err = io.ReadAll(a.stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	c, err := object.ParseCommit(stripLooseHeader(data))
	if err != nil {
		return err
	}
	w := a.stdout
	fmt.Fprintf(w, "tree %s\n", c.TreeID())
	for _, p := range c.ParentIDs() {
		fmt.Fprintf(w, "parent %s\n", p)
	}
	fmt.Fprintf(w, "author %s\n", c.Author())
	fmt.Fprintf(w, "committer %s\n", c.Committer())
	fmt.Fprintf(w, "time %s\n", c.Time().Format(time.RFC3339))
	fmt.Fprintf(w, "encoding %s\n", c.Encoding())
	for _, h := range c.ExtraHeaders() {
		fmt.Fprintf(w, "header %s %q\n", h.Key, h.Value)
	}
	fmt.Fprintf(w, "summary %s\n", c.Summary())
	fmt.Fprintf(w, "message %q\n", c.Message())
	return nil
}

// stripLooseHeader drops the "commit <size>\x00" prefix of an inflated loose
// object so both forms are accepted.
func stripLooseHeader(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte("commit ")) {
		return data
	}
	nul := bytes.IndexByte(data, 0)
	if nul < 0 || nul > len("commit ")+20 {
		return data
	}
	return data[nul+1:]
}

func runShow(a *app, args []string) error {
	fs := a.newFlagSet("show")
	raw := fs.Bool("raw", false, "print the serialized commit object")
	color := fs.String("color", string(highlight.ColorAuto), "colorize output: auto, always or never")
	style := fs.String("style", highlight.DefaultStyle, "chroma style used for -color")
	if ok, err := parseSubcommand(fs, args); !ok {
		return err
	}
	mode, err := highlight.ParseColorMode(*color)
	if err != nil {
		return err
	}
	ctx := a.ctx
	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	id, err := repo.Resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if *raw {
		data, err := repo.ReadRaw(ctx, id)
		if err != nil {
			return err
		}
		if mode.Enabled(a.stdout) {
			return highlight.Commit(a.stdout, string(data), *style)
		}
		_, err = a.stdout.Write(data)
		return err
	}
	c, err := repo.LookupCommit(ctx, id)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.stdout, git.FormatCommitHeader(c))
	return err
}

func runLog(a *app, args []string) error {
	fs := a.newFlagSet("log")
	limit := fs.Int("n", 0, "limit the number of commits (0 for all)")
	firstParent := fs.Bool("first-parent", false, "follow only the first parent of merges")
	graph := fs.Bool("graph", false, "draw the history graph")
	decorate := fs.Bool("decorate", true, "show branch and tag names")
	if ok, err := parseSubcommand(fs, args); !ok {
		return err
	}
	ctx := a.ctx
	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	from, err := repo.Resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	var labels map[object.ID][]string
	if *decorate {
		if labels, err = repo.BranchLabels(ctx); err != nil {
			return err
		}
	}
	var builder *git.GraphBuilder
	if *graph {
		builder = git.NewGraphBuilder()
	}
	it := repo.Log(ctx, from, git.LogOptions{FirstParent: *firstParent, Limit: *limit})
	return it.ForEach(func(c *object.Commit) error {
		var b strings.Builder
		if builder != nil {
			b.WriteString(builder.Line(c))
			b.WriteByte(' ')
		}
		b.WriteString(git.FormatSummary(c))
		if names := labels[c.ID()]; len(names) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(names, ", "))
		}
		b.WriteByte('\n')
		_, err := io.WriteString(a.stdout, b.String())
		return err
	})
}

func runDiff(a *app, args []string) error {
	fs := a.newFlagSet("diff")
	contextLines := fs.Int("U", 3, "lines of context")
	color := fs.String("color", string(highlight.ColorAuto), "colorize output: auto, always or never")
	if ok, err := parseSubcommand(fs, args); !ok {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("diff needs exactly two revisions")
	}
	mode, err := highlight.ParseColorMode(*color)
	if err != nil {
		return err
	}
	ctx := a.ctx
	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	var objects [2][]byte
	for i := range objects {
		id, err := repo.Resolve(ctx, fs.Arg(i))
		if err != nil {
			return err
		}
		if objects[i], err = repo.ReadRaw(ctx, id); err != nil {
			return err
		}
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(objects[0])),
		B:        difflib.SplitLines(string(objects[1])),
		FromFile: fs.Arg(0),
		ToFile:   fs.Arg(1),
		Context:  *contextLines,
	})
	if err != nil {
		return err
	}
	if mode.Enabled(a.stdout) {
		return highlight.Diff(a.stdout, text, highlight.DefaultStyle)
	}
	_, err = io.WriteString(a.stdout, text)
	return err
}

func runClone(a *app, args []string) error {
	fs := a.newFlagSet("clone")
	bare := fs.Bool("bare", false, "create a bare repository")
	checkout := fs.String("checkout", clone.CheckoutSafeCreate.String(), "checkout strategy: none, safe, safe_create or force")
	timeout := fs.Duration("timeout", 0, "abort the clone after this long (0 for no limit)")
	quiet := fs.Bool("quiet", false, "do not print progress")
	if ok, err := parseSubcommand(fs, args); !ok {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("clone needs a url and a directory")
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cc := a.cfg.Clone
	if !set["bare"] && cc.Bare != nil {
		*bare = *cc.Bare
	}
	if !set["checkout"] && cc.CheckoutStrategy != "" {
		*checkout = cc.CheckoutStrategy
	}
	if !set["timeout"] && cc.Timeout != 0 {
		*timeout = time.Duration(cc.Timeout)
	}
	strategy, err := clone.ParseCheckoutStrategy(*checkout)
	if err != nil {
		return err
	}

	ctx := a.ctx
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	progress := a.stderr
	if *quiet {
		progress = io.Discard
	}
	opts := clone.Options{
		Bare:             *bare,
		CheckoutStrategy: strategy,
		FetchProgress: func(s clone.TransferStats) {
			fmt.Fprintf(progress, "%s: %3d%% (%d/%d)\n", s.Stage, s.Percent, s.Received, s.Total)
		},
		CheckoutProgress: func(path string, current, total int) {
			fmt.Fprintf(progress, "Checking out: %d/%d %s\n", current, total, path)
		},
		UpdateTips: func(refname string, _, target object.ID) int {
			fmt.Fprintf(progress, " * [new ref] %s -> %s\n", target.Short(), refname)
			return 0
		},
		CredentialAcquire: func(url string, allowed clone.CredentialType) (clone.Credential, error) {
			slog.Debug("credentials requested", slog.String("url", url), slog.String("allowed", allowed.String()))
			switch {
			case allowed&clone.CredentialSSHKey != 0 && cc.SSHKey != "":
				return clone.SSHKeyFromFile(cc.Username, cc.SSHKey, cc.Password()), nil
			case allowed&clone.CredentialUserPassPlaintext != 0 && cc.Username != "":
				return clone.UserPassPlaintext(cc.Username, cc.Password()), nil
			}
			return clone.Credential{}, fmt.Errorf("no %s credentials configured", allowed)
		},
	}
	res, err := clone.Clone(ctx, fs.Arg(0), fs.Arg(1), opts)
	if err != nil {
		return err
	}
	state := "HEAD -> " + res.HeadTarget()
	if res.IsEmpty() {
		state = "empty repository"
	}
	fmt.Fprintf(a.stdout, "Cloned into %s (%s)\n", res.Path(), state)
	return nil
}

func runWatch(a *app, args []string) error {
	fs := a.newFlagSet("watch")
	delay := fs.Duration("delay", watch.DefaultDelay, "quiet period before reporting a change")
	if ok, err := parseSubcommand(fs, args); !ok {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["delay"] && a.cfg.Watch.Delay > 0 {
		*delay = time.Duration(a.cfg.Watch.Delay)
	}
	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	if repo.Path() == "" {
		return errors.New("watch needs a repository on disk")
	}
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rev := fs.Arg(0)
	report := func() {
		id, err := repo.Resolve(ctx, rev)
		if err != nil {
			slog.Error("resolve revision", slog.String("rev", rev), slog.Any("error", err))
			return
		}
		c, err := repo.LookupCommit(ctx, id)
		if err != nil {
			slog.Error("lookup commit", slog.String("id", id.String()), slog.Any("error", err))
			return
		}
		fmt.Fprintln(a.stdout, git.FormatSummary(c))
	}
	report()
	w, err := watch.New(repo.Path(), *delay, report)
	if err != nil {
		return err
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runVersion(a *app, args []string) error {
	fs := a.newFlagSet("version")
	if ok, err := parseSubcommand(fs, args); !ok {
		return err
	}
	fmt.Fprintf(a.stdout, "gitodb %s\n", buildinfo.VersionWithTags())
	fmt.Fprintf(a.stdout, "default backend: %s\n", git.DefaultBackend)
	gitVersion, err := git.GitVersion()
	if err != nil {
		gitVersion = "unavailable"
	}
	fmt.Fprintf(a.stdout, "git: %s (gitcli backend needs >= %s)\n", gitVersion, git.MinGitVersion())
	return nil
}
