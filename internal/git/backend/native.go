package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// maxTagDepth bounds how many annotated tags are peeled before giving up.
const maxTagDepth = 8

type native struct {
	repo *gitlib.Repository
	path string
}

// OpenNative opens the repository containing path with go-git.
func OpenNative(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return NewNative(repo), nil
}

// NewNative wraps an already opened go-git repository. RepoPath is empty
// unless the repository is backed by the filesystem.
func NewNative(repo *gitlib.Repository) Backend {
	n := &native{repo: repo}
	if fs, ok := repo.Storer.(*filesystem.Storage); ok {
		n.path = fs.Filesystem().Root()
	}
	return n
}

func (n *native) RepoPath() string {
	if n == nil {
		return ""
	}
	return n.path
}

func (n *native) ReadObject(ctx context.Context, hash string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if !plumbing.IsHash(hash) {
		return Object{}, fmt.Errorf("invalid object name %q", hash)
	}
	obj, err := n.repo.Storer.EncodedObject(plumbing.AnyObject, plumbing.NewHash(hash))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return Object{}, fmt.Errorf("%s: %w", hash, ErrObjectNotFound)
		}
		return Object{}, fmt.Errorf("read object %s: %w", hash, err)
	}
	r, err := obj.Reader()
	if err != nil {
		return Object{}, fmt.Errorf("read object %s: %w", hash, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, fmt.Errorf("read object %s: %w", hash, err)
	}
	return Object{Type: ObjectType(obj.Type().String()), Data: data}, nil
}

func (n *native) HeadState(ctx context.Context) (hash string, headName string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", "", false, err
	}
	ref, err := n.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("resolve HEAD: %w", err)
	}
	headName = "HEAD"
	if ref.Name().IsBranch() {
		headName = ref.Name().Short()
	}
	return ref.Hash().String(), headName, true, nil
}

func (n *native) ListRefs(ctx context.Context) ([]Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter, err := n.repo.References()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var refs []Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		kind, short, ok := classifyRef(ref.Name().String())
		if !ok {
			return nil
		}
		hash := ref.Hash()
		if kind == RefKindTag {
			hash = n.peelTag(hash)
		}
		refs = append(refs, Ref{Hash: hash.String(), Kind: kind, Name: short})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// peelTag follows annotated tags down to the object they finally name.
// Lightweight tags and unreadable tag chains return hash unchanged.
func (n *native) peelTag(hash plumbing.Hash) plumbing.Hash {
	cur := hash
	for range maxTagDepth {
		tag, err := n.repo.TagObject(cur)
		if err != nil {
			return cur
		}
		if tag.TargetType != plumbing.TagObject {
			return tag.Target
		}
		cur = tag.Target
	}
	return hash
}
