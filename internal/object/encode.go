package object

import (
	"bytes"
	"strings"
)

// Encode serializes c in the commit object format accepted by ParseCommit.
func (c *Commit) Encode() []byte {
	var b bytes.Buffer
	writeHeaderID(&b, "tree ", c.tree)
	for _, parent := range c.parents {
		writeHeaderID(&b, "parent ", parent)
	}
	b.WriteString("author ")
	b.WriteString(c.author.String())
	b.WriteByte('\n')
	b.WriteString("committer ")
	b.WriteString(c.committer.String())
	b.WriteByte('\n')
	for _, h := range c.extra {
		b.WriteString(h.Key)
		b.WriteByte(' ')
		b.WriteString(strings.ReplaceAll(h.Value, "\n", "\n "))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(c.message)
	return b.Bytes()
}

func writeHeaderID(b *bytes.Buffer, prefix string, id ID) {
	b.WriteString(prefix)
	b.WriteString(id.String())
	b.WriteByte('\n')
}
