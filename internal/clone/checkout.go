package clone

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-git/go-billy/v5"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CheckoutStrategy controls what a non-bare clone writes after fetching.
type CheckoutStrategy int

const (
	// CheckoutNone leaves only the repository.
	CheckoutNone CheckoutStrategy = iota
	// CheckoutSafe writes the index for HEAD but creates no files.
	CheckoutSafe
	// CheckoutSafeCreate materializes the HEAD tree.
	CheckoutSafeCreate
	// CheckoutForce materializes the HEAD tree, overwriting whatever is there.
	CheckoutForce
)

var checkoutNames = map[CheckoutStrategy]string{
	CheckoutNone:       "none",
	CheckoutSafe:       "safe",
	CheckoutSafeCreate: "safe_create",
	CheckoutForce:      "force",
}

func (s CheckoutStrategy) String() string {
	if name, ok := checkoutNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CheckoutStrategy(%d)", int(s))
}

func ParseCheckoutStrategy(s string) (CheckoutStrategy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for strategy, name := range checkoutNames {
		if name == norm {
			return strategy, nil
		}
	}
	return CheckoutNone, fmt.Errorf("unknown checkout strategy %q", s)
}

func checkout(repo *gitlib.Repository, strategy CheckoutStrategy, progress func(path string, current, total int)) error {
	if strategy == CheckoutNone {
		return nil
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil
		}
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	mode := gitlib.HardReset
	if strategy == CheckoutSafe {
		mode = gitlib.MixedReset
	}
	slog.Debug("checkout", slog.String("strategy", strategy.String()), slog.String("head", head.Hash().String()))
	if err := wt.Reset(&gitlib.ResetOptions{Commit: head.Hash(), Mode: mode}); err != nil {
		return fmt.Errorf("checkout %s: %w", head.Name().Short(), err)
	}
	if mode != gitlib.HardReset || progress == nil {
		return nil
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return err
	}
	tree, err := commit.Tree()
	if err != nil {
		return err
	}
	return reportCheckout(wt.Filesystem, tree, progress)
}

// reportCheckout calls progress once per file of tree that exists in fs, in
// tree order.
func reportCheckout(fs billy.Filesystem, tree *object.Tree, progress func(path string, current, total int)) error {
	var paths []string
	files := tree.Files()
	defer files.Close()
	for {
		f, err := files.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("walk tree: %w", err)
		}
		paths = append(paths, f.Name)
	}
	for i, path := range paths {
		if _, err := fs.Lstat(path); err != nil {
			return fmt.Errorf("checkout %s: %w", path, err)
		}
		progress(path, i+1, len(paths))
	}
	return nil
}
