// Package clone copies a remote repository to a local path through go-git,
// reporting progress and asking for credentials through caller callbacks.
package clone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/thiagokokada/gitodb/internal/git"
	gitbackend "github.com/thiagokokada/gitodb/internal/git/backend"
	"github.com/thiagokokada/gitodb/internal/object"
)

const DefaultRemoteName = "origin"

var (
	ErrTransport    = errors.New("transport error")
	ErrAuth         = errors.New("authentication failed")
	ErrPathConflict = errors.New("destination path already exists and is not empty")
	ErrCallback     = errors.New("clone aborted by callback")
)

type Options struct {
	Bare             bool
	CheckoutStrategy CheckoutStrategy

	// CheckoutProgress is called once per file written by the checkout.
	CheckoutProgress func(path string, current, total int)
	// FetchProgress receives transfer updates; the last one has Stage
	// StageDone and the number of objects in the new repository.
	FetchProgress func(TransferStats)
	// CredentialAcquire is asked for credentials of one of the allowed types.
	CredentialAcquire func(url string, allowed CredentialType) (Credential, error)
	// UpdateTips is called for every remote-tracking branch and tag created by
	// the clone. A non-zero return aborts with ErrCallback.
	UpdateTips func(refname string, old, new object.ID) int

	RemoteName string
}

// Result is a freshly cloned repository.
type Result struct {
	Repository *git.Repository

	repo *gitlib.Repository
	path string
	bare bool
}

func (r *Result) Path() string { return r.path }

func (r *Result) IsBare() bool { return r.bare }

// IsEmpty reports whether HEAD has no commit yet.
func (r *Result) IsEmpty() bool {
	_, err := r.repo.Head()
	return errors.Is(err, plumbing.ErrReferenceNotFound)
}

// HeadTarget is the ref HEAD points to, or "" when HEAD is detached.
func (r *Result) HeadTarget() string {
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return ""
	}
	return ref.Target().String()
}

// Remote returns the URLs configured for the named remote.
func (r *Result) Remote(name string) ([]string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", name, err)
	}
	return slices.Clone(remote.Config().URLs), nil
}

// Clone fetches url into path. Callbacks in opts run on the calling goroutine.
func Clone(ctx context.Context, url, path string, opts Options) (*Result, error) {
	if err := checkDestination(path); err != nil {
		return nil, err
	}
	if opts.RemoteName == "" {
		opts.RemoteName = DefaultRemoteName
	}
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	progress := newProgressWriter(opts.FetchProgress)
	cloneOpts := &gitlib.CloneOptions{
		URL:        url,
		RemoteName: opts.RemoteName,
		NoCheckout: true,
		Tags:       gitlib.AllTags,
		Progress:   progress,
	}
	allowed := allowedCredentials(ep.Protocol)
	if ep.Protocol == "ssh" && opts.CredentialAcquire != nil {
		if cloneOpts.Auth, err = acquire(opts, url, allowed); err != nil {
			return nil, err
		}
	}

	slog.Debug("clone start", slog.String("url", url), slog.String("path", path), slog.Bool("bare", opts.Bare))
	repo, err := gitlib.PlainCloneContext(ctx, path, opts.Bare, cloneOpts)
	if isAuthError(err) && cloneOpts.Auth == nil && allowed == CredentialUserPassPlaintext && opts.CredentialAcquire != nil {
		slog.Debug("remote requires authentication", slog.String("url", url))
		if cloneOpts.Auth, err = acquire(opts, url, allowed); err != nil {
			return nil, err
		}
		repo, err = gitlib.PlainCloneContext(ctx, path, opts.Bare, cloneOpts)
	}
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		slog.Debug("remote is empty", slog.String("url", url))
		if repo, err = initEmpty(url, path, opts); err != nil {
			return nil, err
		}
	case isAuthError(err):
		return nil, fmt.Errorf("clone %s: %w: %w", url, ErrAuth, err)
	case ctx.Err() != nil:
		return nil, fmt.Errorf("clone %s: %w", url, ctx.Err())
	default:
		return nil, fmt.Errorf("clone %s: %w: %w", url, ErrTransport, err)
	}

	objects, err := countObjects(repo)
	if err != nil {
		return nil, err
	}
	progress.finish(objects)

	if err := updateTips(repo, opts.UpdateTips); err != nil {
		return nil, err
	}
	if !opts.Bare {
		if err := checkout(repo, opts.CheckoutStrategy, opts.CheckoutProgress); err != nil {
			return nil, err
		}
	}

	r, err := git.New(gitbackend.NewNative(repo), 0)
	if err != nil {
		return nil, err
	}
	slog.Info("cloned", slog.String("url", url), slog.String("path", path), slog.Int("objects", objects))
	return &Result{Repository: r, repo: repo, path: path, bare: opts.Bare}, nil
}

func acquire(opts Options, url string, allowed CredentialType) (transport.AuthMethod, error) {
	cred, err := opts.CredentialAcquire(url, allowed)
	if err != nil {
		return nil, fmt.Errorf("%w: credential callback: %w", ErrCallback, err)
	}
	auth, err := cred.authMethod(allowed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	return auth, nil
}

func isAuthError(err error) bool {
	return errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed)
}

// checkDestination accepts a missing path or an empty directory.
func checkDestination(path string) error {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrPathConflict)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != io.EOF {
		if err != nil {
			return err
		}
		return fmt.Errorf("%s: %w", path, ErrPathConflict)
	}
	return nil
}

// initEmpty sets up what a clone of a repository without commits looks like:
// the remote configured and HEAD on an unborn master.
func initEmpty(url, path string, opts Options) (*gitlib.Repository, error) {
	repo, err := gitlib.PlainInit(path, opts.Bare)
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", path, err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: opts.RemoteName, URLs: []string{url}}); err != nil {
		return nil, fmt.Errorf("create remote %s: %w", opts.RemoteName, err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.Master)
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("set HEAD: %w", err)
	}
	return repo, nil
}

func countObjects(repo *gitlib.Repository) (int, error) {
	iter, err := repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return 0, fmt.Errorf("count objects: %w", err)
	}
	n := 0
	err = iter.ForEach(func(plumbing.EncodedObject) error {
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count objects: %w", err)
	}
	return n, nil
}

// updateTips reports remote-tracking branches and tags in name order.
func updateTips(repo *gitlib.Repository, fn func(refname string, old, new object.ID) int) error {
	if fn == nil {
		return nil
	}
	iter, err := repo.References()
	if err != nil {
		return err
	}
	var refs []*plumbing.Reference
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && (ref.Name().IsRemote() || ref.Name().IsTag()) {
			refs = append(refs, ref)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortFunc(refs, func(a, b *plumbing.Reference) int {
		return strings.Compare(a.Name().String(), b.Name().String())
	})
	for _, ref := range refs {
		if rc := fn(ref.Name().String(), object.ZeroID, object.ID(ref.Hash())); rc != 0 {
			return fmt.Errorf("%w: update tips returned %d for %s", ErrCallback, rc, ref.Name())
		}
	}
	return nil
}
