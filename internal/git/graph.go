package git

import (
	"slices"
	"strings"

	"github.com/thiagokokada/gitodb/internal/object"
)

// GraphBuilder renders one line of ASCII history graph per commit. Commits
// must be fed in the order they are printed.
type GraphBuilder struct {
	columns []object.ID
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// Line returns the graph prefix for c: "*" marks the column holding c and "|"
// every other open line of history.
func (g *GraphBuilder) Line(c *object.Commit) string {
	if c == nil {
		return ""
	}
	idx := slices.Index(g.columns, c.ID())
	if idx == -1 {
		g.columns = slices.Insert(g.columns, 0, c.ID())
		idx = 0
	}
	var b strings.Builder
	for i := range g.columns {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == idx {
			b.WriteByte('*')
		} else {
			b.WriteByte('|')
		}
	}
	g.advance(idx, c.ParentIDs())
	return b.String()
}

// Width is the number of open columns after the last Line call.
func (g *GraphBuilder) Width() int {
	return len(g.columns)
}

func (g *GraphBuilder) advance(idx int, parents []object.ID) {
	if len(parents) == 0 {
		g.columns = slices.Delete(g.columns, idx, idx+1)
		return
	}
	// Another column may already be waiting for the first parent; merge into it.
	if other := slices.Index(g.columns, parents[0]); other != -1 && other != idx {
		g.columns = slices.Delete(g.columns, idx, idx+1)
		if other > idx {
			other--
		}
		idx = other
	} else {
		g.columns[idx] = parents[0]
	}
	for i, parent := range parents[1:] {
		if slices.Contains(g.columns, parent) {
			continue
		}
		pos := min(idx+i+1, len(g.columns))
		g.columns = slices.Insert(g.columns, pos, parent)
	}
}
