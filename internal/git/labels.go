package git

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gitbackend "github.com/thiagokokada/gitodb/internal/git/backend"
	"github.com/thiagokokada/gitodb/internal/object"
)

// BranchLabels maps commit IDs to decorations such as "HEAD -> main",
// "origin/main" or "tag: v1". The HEAD label always comes first.
func (r *Repository) BranchLabels(ctx context.Context) (map[object.ID][]string, error) {
	labels := map[object.ID][]string{}

	refs, err := r.backend.ListRefs(ctx)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if ref.Hash == "" || ref.Name == "" {
			continue
		}
		if ref.Kind == gitbackend.RefKindRemoteBranch && strings.HasSuffix(ref.Name, "/HEAD") {
			continue
		}
		id, err := object.ParseID(ref.Hash)
		if err != nil {
			slog.Debug("skipping ref with invalid hash", slog.String("ref", ref.Name), slog.String("hash", ref.Hash))
			continue
		}
		label := ref.Name
		if ref.Kind == gitbackend.RefKindTag {
			label = fmt.Sprintf("tag: %s", ref.Name)
		}
		labels[id] = append(labels[id], label)
	}

	headID, headName, err := r.Head(ctx)
	switch {
	case err == nil:
		label := "HEAD"
		if headName != "" && headName != "HEAD" {
			label = fmt.Sprintf("HEAD -> %s", headName)
		}
		labels[headID] = append([]string{label}, labels[headID]...)
	case err != ErrUnbornHead:
		return nil, err
	}
	return labels, nil
}
