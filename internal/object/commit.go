package object

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Header is a commit header line that the parser does not interpret, such as
// "encoding" or "gpgsig". Multi-line values are joined with '\n'.
type Header struct {
	Key   string
	Value string
}

// Commit is a parsed commit object. It is immutable once returned by
// ParseCommit or NewCommit.
type Commit struct {
	id        ID
	tree      ID
	parents   []ID
	author    Signature
	committer Signature
	extra     []Header
	message   string
}

// CommitFields holds the values for NewCommit.
type CommitFields struct {
	// ID is optional; it is what ID() reports.
	ID           ID
	Tree         ID
	Parents      []ID
	Author       Signature
	Committer    Signature
	ExtraHeaders []Header
	Message      string
}

// NewCommit builds a commit in memory. It fails with ErrInvalidField when a
// signature or extra header would not survive Encode followed by ParseCommit.
func NewCommit(f CommitFields) (*Commit, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &Commit{
		id:        f.ID,
		tree:      f.Tree,
		parents:   slices.Clone(f.Parents),
		author:    f.Author,
		committer: f.Committer,
		extra:     slices.Clone(f.ExtraHeaders),
		message:   f.Message,
	}, nil
}

// ParseCommit parses the body of a commit object (without the "commit <size>\0"
// loose object prefix).
func ParseCommit(data []byte) (*Commit, error) {
	return ParseCommitWithID(ZeroID, data)
}

// ParseCommitWithID is ParseCommit for a buffer loaded under a known id.
func ParseCommitWithID(id ID, data []byte) (*Commit, error) {
	p := commitParser{data: data, rest: data}
	c, err := p.parse()
	if err != nil {
		return nil, err
	}
	c.id = id
	return c, nil
}

type commitParser struct {
	data []byte
	rest []byte
}

func (p *commitParser) offset() int {
	return len(p.data) - len(p.rest)
}

func (p *commitParser) parse() (*Commit, error) {
	if len(p.data) == 0 {
		return nil, commitError(0, "empty buffer", nil)
	}
	var c Commit
	tree, rest, err := ParseHeaderID(p.rest, "tree ")
	if err != nil {
		return nil, commitError(p.offset(), "tree", err)
	}
	c.tree = tree
	p.rest = rest

	for bytes.HasPrefix(p.rest, []byte("parent ")) {
		parent, rest, err := ParseHeaderID(p.rest, "parent ")
		if err != nil {
			return nil, commitError(p.offset(), "parent", err)
		}
		c.parents = append(c.parents, parent)
		p.rest = rest
	}

	if c.author, err = p.signature("author "); err != nil {
		return nil, err
	}
	if c.committer, err = p.signature("committer "); err != nil {
		return nil, err
	}
	if c.extra, err = p.extraHeaders(); err != nil {
		return nil, err
	}
	c.message = string(p.rest)
	return &c, nil
}

func (p *commitParser) signature(header string) (Signature, error) {
	start := p.offset()
	sig, rest, err := ParseSignature(p.rest, header, '\n')
	if err != nil {
		return Signature{}, commitError(start, strings.TrimSpace(header), err)
	}
	line := p.rest[:len(p.rest)-len(rest)]
	if len(line) >= 2 && line[len(line)-2] == '\r' {
		return Signature{}, commitError(start+len(line)-2, "carriage return before newline", nil)
	}
	p.rest = rest
	return sig, nil
}

// extraHeaders consumes header lines up to and including the blank line that
// starts the message. A buffer ending right after the committer line has no
// message and no separator.
func (p *commitParser) extraHeaders() ([]Header, error) {
	var headers []Header
	if len(p.rest) == 0 {
		return nil, nil
	}
	for {
		if len(p.rest) == 0 {
			return nil, commitError(p.offset(), "missing blank line before message", nil)
		}
		if p.rest[0] == '\n' {
			p.rest = p.rest[1:]
			return headers, nil
		}
		eol := bytes.IndexByte(p.rest, '\n')
		if eol < 0 {
			return nil, commitError(p.offset(), "unterminated header line", nil)
		}
		line := p.rest[:eol]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			return nil, commitError(p.offset()+eol-1, "carriage return before newline", nil)
		}
		if line[0] == ' ' {
			if len(headers) == 0 {
				return nil, commitError(p.offset(), "continuation line without header", nil)
			}
			last := &headers[len(headers)-1]
			last.Value += "\n" + string(line[1:])
		} else {
			key, value, _ := bytes.Cut(line, []byte{' '})
			headers = append(headers, Header{Key: string(key), Value: string(value)})
		}
		p.rest = p.rest[eol+1:]
	}
}

// ID returns the id the commit was loaded under, or ZeroID when it was parsed
// from a bare buffer.
func (c *Commit) ID() ID {
	return c.id
}

func (c *Commit) TreeID() ID {
	return c.tree
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Author() Signature {
	return c.author
}

func (c *Commit) Committer() Signature {
	return c.committer
}

// Time is the author timestamp.
func (c *Commit) Time() time.Time {
	return c.author.When.Time()
}

func (c *Commit) ParentCount() int {
	return len(c.parents)
}

// ParentID returns the id of the n-th parent.
func (c *Commit) ParentID(n int) (ID, error) {
	if n < 0 || n >= len(c.parents) {
		return ZeroID, fmt.Errorf("parent %d of %d: %w", n, len(c.parents), ErrOutOfRange)
	}
	return c.parents[n], nil
}

func (c *Commit) ParentIDs() []ID {
	return slices.Clone(c.parents)
}

func (c *Commit) ExtraHeaders() []Header {
	return slices.Clone(c.extra)
}

// Header returns the value of the first extra header named key.
func (c *Commit) Header(key string) (string, bool) {
	for _, h := range c.extra {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

// Encoding returns the declared message encoding, UTF-8 when absent.
func (c *Commit) Encoding() string {
	if enc, ok := c.Header("encoding"); ok && enc != "" {
		return enc
	}
	return "UTF-8"
}

// Summary returns the first paragraph of the message on a single line.
func (c *Commit) Summary() string {
	msg := strings.TrimLeft(c.message, "\n")
	if para, _, found := strings.Cut(msg, "\n\n"); found {
		msg = para
	}
	return strings.Join(strings.Fields(msg), " ")
}

// Equal reports whether both commits carry the same content. The load id is
// not compared.
func (c *Commit) Equal(other *Commit) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.tree == other.tree &&
		slices.Equal(c.parents, other.parents) &&
		c.author == other.author &&
		c.committer == other.committer &&
		slices.Equal(c.extra, other.extra) &&
		c.message == other.message
}
