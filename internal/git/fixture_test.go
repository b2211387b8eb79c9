package git

import (
	"context"
	"errors"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitobject "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	gitbackend "github.com/thiagokokada/gitodb/internal/git/backend"
	"github.com/thiagokokada/gitodb/internal/object"
)

// fixture is an in-memory repository built per test.
type fixture struct {
	t    *testing.T
	repo *gitlib.Repository
	tree plumbing.Hash
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := gitlib.Init(memory.NewStorage(), nil)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	obj := repo.Storer.NewEncodedObject()
	if err := (&gitobject.Tree{}).Encode(obj); err != nil {
		t.Fatalf("encode tree: %v", err)
	}
	tree, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		t.Fatalf("store tree: %v", err)
	}
	return &fixture{t: t, repo: repo, tree: tree}
}

// commit stores a commit by Scott Chacon committed at unix time ts.
func (f *fixture) commit(msg string, ts int64, parents ...object.ID) object.ID {
	f.t.Helper()
	sig := gitobject.Signature{
		Name:  "Scott Chacon",
		Email: "schacon@gmail.com",
		When:  time.Unix(ts, 0).In(time.FixedZone("", -7*60*60)),
	}
	hashes := make([]plumbing.Hash, len(parents))
	for i, p := range parents {
		hashes[i] = plumbing.Hash(p)
	}
	c := &gitobject.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     f.tree,
		ParentHashes: hashes,
	}
	obj := f.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		f.t.Fatalf("encode commit: %v", err)
	}
	hash, err := f.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		f.t.Fatalf("store commit: %v", err)
	}
	return object.ID(hash)
}

func (f *fixture) branch(name string, id object.ID) {
	f.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.Hash(id))
	if err := f.repo.Storer.SetReference(ref); err != nil {
		f.t.Fatalf("set branch %s: %v", name, err)
	}
}

func (f *fixture) checkout(name string) {
	f.t.Helper()
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(name))
	if err := f.repo.Storer.SetReference(ref); err != nil {
		f.t.Fatalf("set HEAD: %v", err)
	}
}

func (f *fixture) open() *Repository {
	f.t.Helper()
	r, err := New(gitbackend.NewNative(f.repo), 0)
	if err != nil {
		f.t.Fatalf("New() error = %v", err)
	}
	return r
}

// history builds seven commits with one merge, newest first in ids:
//
//	0 (merge of 1 and 2)
//	1 -> 3
//	2 -> 3
//	3 -> 4 -> 5 -> 6 (root)
func (f *fixture) history() []object.ID {
	f.t.Helper()
	ids := make([]object.ID, 7)
	ids[6] = f.commit("initial commit\n", 1273360386)
	ids[5] = f.commit("second commit\n\nwith a body\n", 1273360387, ids[6])
	ids[4] = f.commit("third\n", 1273360388, ids[5])
	ids[3] = f.commit("fourth\n", 1273360389, ids[4])
	ids[2] = f.commit("topic work\n", 1273360390, ids[3])
	ids[1] = f.commit("mainline work\n", 1273360391, ids[3])
	ids[0] = f.commit("Merge branch 'topic'\n", 1273360392, ids[1], ids[2])
	return ids
}

type fakeBackend struct {
	repoPath string

	readObjectFunc func(hash string) (gitbackend.Object, error)
	headStateFunc  func() (hash string, headName string, ok bool, err error)
	listRefsFunc   func() ([]gitbackend.Ref, error)

	reads int
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) ReadObject(_ context.Context, hash string) (gitbackend.Object, error) {
	f.reads++
	if f.readObjectFunc != nil {
		return f.readObjectFunc(hash)
	}
	return gitbackend.Object{}, errors.New("unexpected ReadObject call")
}

func (f *fakeBackend) HeadState(context.Context) (hash string, headName string, ok bool, err error) {
	if f.headStateFunc != nil {
		return f.headStateFunc()
	}
	return "", "", false, errors.New("unexpected HeadState call")
}

func (f *fakeBackend) ListRefs(context.Context) ([]gitbackend.Ref, error) {
	if f.listRefsFunc != nil {
		return f.listRefsFunc()
	}
	return nil, errors.New("unexpected ListRefs call")
}

func newWithBackend(t *testing.T, b gitbackend.Backend) *Repository {
	t.Helper()
	r, err := New(b, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}
