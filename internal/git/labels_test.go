package git

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"

	gitbackend "github.com/thiagokokada/gitodb/internal/git/backend"
	"github.com/thiagokokada/gitodb/internal/object"
)

func TestBranchLabels_IncludesHEADAndBranch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ids := f.history()
	f.branch("main", ids[0])
	f.branch("topic", ids[2])
	f.checkout("main")
	if err := f.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "main"), plumbing.Hash(ids[1]))); err != nil {
		t.Fatalf("set remote ref: %v", err)
	}
	if _, err := f.repo.CreateTag("v1", plumbing.Hash(ids[6]), nil); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	labels, err := f.open().BranchLabels(context.Background())
	if err != nil {
		t.Fatalf("BranchLabels() error = %v", err)
	}
	head := labels[ids[0]]
	if len(head) == 0 || head[0] != "HEAD -> main" {
		t.Fatalf("expected HEAD label first, got %+v", head)
	}
	if !slices.Contains(head, "main") {
		t.Fatalf("expected branch label in %+v", head)
	}
	if !slices.Contains(labels[ids[2]], "topic") {
		t.Fatalf("expected topic label, got %+v", labels[ids[2]])
	}
	if !slices.Contains(labels[ids[1]], "origin/main") {
		t.Fatalf("expected remote label, got %+v", labels[ids[1]])
	}
	if !slices.Contains(labels[ids[6]], "tag: v1") {
		t.Fatalf("expected tag label, got %+v", labels[ids[6]])
	}
}

func TestBranchLabels_Fake(t *testing.T) {
	t.Parallel()

	const (
		commit1 = "1111111111111111111111111111111111111111"
		commit2 = "2222222222222222222222222222222222222222"
	)

	tests := []struct {
		name    string
		refs    []gitbackend.Ref
		head    func() (string, string, bool, error)
		want    map[string][]string
		wantErr bool
	}{
		{
			name: "detached_head",
			refs: []gitbackend.Ref{{Hash: commit2, Kind: gitbackend.RefKindBranch, Name: "main"}},
			head: func() (string, string, bool, error) { return commit1, "HEAD", true, nil },
			want: map[string][]string{commit1: {"HEAD"}, commit2: {"main"}},
		},
		{
			name: "unborn_head",
			refs: nil,
			head: func() (string, string, bool, error) { return "", "", false, nil },
			want: map[string][]string{},
		},
		{
			name: "skips_remote_head_and_bad_hash",
			refs: []gitbackend.Ref{
				{Hash: commit1, Kind: gitbackend.RefKindRemoteBranch, Name: "origin/HEAD"},
				{Hash: commit1, Kind: gitbackend.RefKindRemoteBranch, Name: "origin/main"},
				{Hash: "zzz", Kind: gitbackend.RefKindBranch, Name: "broken"},
				{Hash: commit1, Kind: gitbackend.RefKindTag, Name: "v1"},
			},
			head: func() (string, string, bool, error) { return commit1, "main", true, nil },
			want: map[string][]string{commit1: {"HEAD -> main", "origin/main", "tag: v1"}},
		},
		{
			name:    "head_error",
			head:    func() (string, string, bool, error) { return "", "", false, errors.New("boom") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newWithBackend(t, &fakeBackend{
				listRefsFunc:  func() ([]gitbackend.Ref, error) { return tt.refs, nil },
				headStateFunc: tt.head,
			})
			got, err := repo.BranchLabels(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BranchLabels() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("BranchLabels() = %+v, want %+v", got, tt.want)
			}
			for hash, want := range tt.want {
				vals := got[object.MustParseID(hash)]
				if strings.Join(vals, ",") != strings.Join(want, ",") {
					t.Fatalf("labels for %s = %+v, want %+v", hash[:7], vals, want)
				}
			}
		})
	}
}
