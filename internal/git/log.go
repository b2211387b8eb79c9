package git

import (
	"context"
	"io"

	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/thiagokokada/gitodb/internal/object"
)

type LogOptions struct {
	// FirstParent follows only the first parent of merge commits.
	FirstParent bool
	// Limit stops the walk after this many commits when positive.
	Limit int
}

// LogIter walks history newest first by committer time. Commits with equal
// timestamps come out in the order they were discovered.
type LogIter struct {
	ctx   context.Context
	repo  *Repository
	opts  LogOptions
	queue *priorityqueue.Queue
	seen  map[object.ID]struct{}
	seq   int
	count int
	start object.ID
	began bool
	err   error
}

type logItem struct {
	commit *object.Commit
	seq    int
}

func byCommitterTime(a, b any) int {
	x, y := a.(logItem), b.(logItem)
	tx, ty := x.commit.Committer().When.Seconds, y.commit.Committer().When.Seconds
	switch {
	case tx > ty:
		return -1
	case tx < ty:
		return 1
	case x.seq < y.seq:
		return -1
	case x.seq > y.seq:
		return 1
	}
	return 0
}

// Log starts a walk at from. Errors, including a missing start commit, are
// reported by the first call to Next.
func (r *Repository) Log(ctx context.Context, from object.ID, opts LogOptions) *LogIter {
	return &LogIter{
		ctx:   ctx,
		repo:  r,
		opts:  opts,
		queue: priorityqueue.NewWith(byCommitterTime),
		seen:  map[object.ID]struct{}{},
		start: from,
	}
}

// Next returns the next commit, or io.EOF once the walk is done.
func (it *LogIter) Next() (*object.Commit, error) {
	if it.err != nil {
		return nil, it.err
	}
	if err := it.ctx.Err(); err != nil {
		return nil, err
	}
	if it.opts.Limit > 0 && it.count >= it.opts.Limit {
		it.err = io.EOF
		return nil, io.EOF
	}
	if !it.began {
		it.began = true
		if err := it.push(it.start); err != nil {
			it.err = err
			return nil, err
		}
	}
	v, ok := it.queue.Dequeue()
	if !ok {
		it.err = io.EOF
		return nil, io.EOF
	}
	c := v.(logItem).commit
	parents := c.ParentIDs()
	if it.opts.FirstParent && len(parents) > 1 {
		parents = parents[:1]
	}
	for _, p := range parents {
		if err := it.push(p); err != nil {
			it.err = err
			return nil, err
		}
	}
	it.count++
	return c, nil
}

// ForEach calls fn for every remaining commit. Returning an error from fn
// stops the walk and is passed through, except io.EOF which ends it cleanly.
func (it *LogIter) ForEach(fn func(*object.Commit) error) error {
	for {
		c, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (it *LogIter) push(id object.ID) error {
	if _, ok := it.seen[id]; ok {
		return nil
	}
	it.seen[id] = struct{}{}
	c, err := it.repo.LookupCommit(it.ctx, id)
	if err != nil {
		return err
	}
	it.queue.Enqueue(logItem{commit: c, seq: it.seq})
	it.seq++
	return nil
}
