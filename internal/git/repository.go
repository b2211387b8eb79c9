package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	gitbackend "github.com/thiagokokada/gitodb/internal/git/backend"
	"github.com/thiagokokada/gitodb/internal/object"
)

// DefaultCacheSize is the number of parsed commits kept per Repository.
const DefaultCacheSize = 1024

var (
	ErrNotFound   = errors.New("object not found")
	ErrNotCommit  = errors.New("object is not a commit")
	ErrUnbornHead = errors.New("HEAD does not point to a commit")
)

type BackendKind string

const (
	BackendNative BackendKind = "native"
	BackendGitCLI BackendKind = "gitcli"
)

// ParseBackendKind accepts "native" and "gitcli"; the empty string selects the
// build default.
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultBackend, nil
	case string(BackendNative), "go-git", "gogit":
		return BackendNative, nil
	case string(BackendGitCLI), "git", "cli":
		return BackendGitCLI, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want %s or %s)", s, BackendNative, BackendGitCLI)
	}
}

type Options struct {
	Backend   BackendKind
	CacheSize int
}

// Repository reads commits through a Backend and caches the parsed result.
// It is safe for concurrent use.
type Repository struct {
	backend gitbackend.Backend
	cache   *lru.Cache[object.ID, *object.Commit]
}

func Open(repoPath string, opts Options) (*Repository, error) {
	kind := opts.Backend
	if kind == "" {
		kind = DefaultBackend
	}
	var (
		b   gitbackend.Backend
		err error
	)
	switch kind {
	case BackendNative:
		b, err = gitbackend.OpenNative(repoPath)
	case BackendGitCLI:
		b, err = gitbackend.OpenCLI(context.Background(), repoPath)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("repository opened", slog.String("path", b.RepoPath()), slog.String("backend", string(kind)))
	return New(b, opts.CacheSize)
}

// New wraps b. A cacheSize of zero or less selects DefaultCacheSize.
func New(b gitbackend.Backend, cacheSize int) (*Repository, error) {
	if b == nil {
		return nil, fmt.Errorf("backend not specified")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[object.ID, *object.Commit](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create commit cache: %w", err)
	}
	return &Repository{backend: b, cache: cache}, nil
}

// Path returns the git directory of the repository, or "" when it is not
// backed by the filesystem.
func (r *Repository) Path() string {
	return r.backend.RepoPath()
}

func (r *Repository) LookupCommit(ctx context.Context, id object.ID) (*object.Commit, error) {
	if c, ok := r.cache.Get(id); ok {
		return c, nil
	}
	obj, err := r.backend.ReadObject(ctx, id.String())
	if err != nil {
		if errors.Is(err, gitbackend.ErrObjectNotFound) {
			return nil, fmt.Errorf("lookup %s: %w", id.Short(), ErrNotFound)
		}
		return nil, fmt.Errorf("lookup %s: %w", id.Short(), err)
	}
	if obj.Type != gitbackend.ObjectCommit {
		return nil, fmt.Errorf("lookup %s: %s: %w", id.Short(), obj.Type, ErrNotCommit)
	}
	c, err := object.ParseCommitWithID(id, obj.Data)
	if err != nil {
		return nil, fmt.Errorf("parse commit %s: %w", id, err)
	}
	r.cache.Add(id, c)
	slog.Debug("commit loaded", slog.String("id", id.String()), slog.Int("parents", c.ParentCount()))
	return c, nil
}

// ReadRaw returns the undecoded bytes of a commit object.
func (r *Repository) ReadRaw(ctx context.Context, id object.ID) ([]byte, error) {
	obj, err := r.backend.ReadObject(ctx, id.String())
	if err != nil {
		if errors.Is(err, gitbackend.ErrObjectNotFound) {
			return nil, fmt.Errorf("read %s: %w", id.Short(), ErrNotFound)
		}
		return nil, err
	}
	if obj.Type != gitbackend.ObjectCommit {
		return nil, fmt.Errorf("read %s: %s: %w", id.Short(), obj.Type, ErrNotCommit)
	}
	return obj.Data, nil
}

// Parent loads the n-th parent of c.
func (r *Repository) Parent(ctx context.Context, c *object.Commit, n int) (*object.Commit, error) {
	id, err := c.ParentID(n)
	if err != nil {
		return nil, err
	}
	return r.LookupCommit(ctx, id)
}

// Head returns the commit HEAD points to and the current branch name, or
// "HEAD" when detached.
func (r *Repository) Head(ctx context.Context) (object.ID, string, error) {
	hash, name, ok, err := r.backend.HeadState(ctx)
	if err != nil {
		return object.ZeroID, "", err
	}
	if !ok {
		return object.ZeroID, "", ErrUnbornHead
	}
	id, err := object.ParseID(hash)
	if err != nil {
		return object.ZeroID, "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return id, name, nil
}

func (r *Repository) Refs(ctx context.Context) ([]gitbackend.Ref, error) {
	return r.backend.ListRefs(ctx)
}

// Resolve turns a revision into a commit ID. It accepts HEAD, a full hex ID,
// or the short name of a branch, tag or remote-tracking branch, in that
// order of preference.
func (r *Repository) Resolve(ctx context.Context, rev string) (object.ID, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" || rev == "HEAD" {
		id, _, err := r.Head(ctx)
		return id, err
	}
	if len(rev) == object.IDHexSize {
		if id, err := object.ParseID(rev); err == nil {
			return id, nil
		}
	}
	refs, err := r.Refs(ctx)
	if err != nil {
		return object.ZeroID, err
	}
	for _, kind := range []gitbackend.RefKind{gitbackend.RefKindBranch, gitbackend.RefKindTag, gitbackend.RefKindRemoteBranch} {
		for _, ref := range refs {
			if ref.Kind == kind && ref.Name == rev {
				return object.ParseID(ref.Hash)
			}
		}
	}
	return object.ZeroID, fmt.Errorf("unknown revision %q: %w", rev, ErrNotFound)
}
