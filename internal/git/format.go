package git

import (
	"fmt"
	"strings"

	"github.com/thiagokokada/gitodb/internal/object"
)

const summaryWidth = 80

// FormatCommitHeader renders c the way "git show --no-patch" does.
func FormatCommitHeader(c *object.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", c.ID())
	if c.ParentCount() > 1 {
		b.WriteString("Merge:")
		for _, p := range c.ParentIDs() {
			fmt.Fprintf(&b, " %s", p.Short())
		}
		b.WriteByte('\n')
	}
	appendSignatureLine(&b, "Author", c.Author())
	committer := c.Committer()
	if committer.Name == "" && committer.Email == "" && committer.When.IsZero() {
		committer = c.Author()
	}
	appendSignatureLine(&b, "Committer", committer)
	if enc := c.Encoding(); !strings.EqualFold(enc, "UTF-8") {
		fmt.Fprintf(&b, "Encoding: %s\n", enc)
	}
	b.WriteString("\n")
	message := strings.TrimRight(c.Message(), "\n")
	if message == "" {
		b.WriteString("    (no commit message)\n")
		return b.String()
	}
	for line := range strings.SplitSeq(message, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return b.String()
}

// FormatSummary is the one-line form used by log.
func FormatSummary(c *object.Commit) string {
	firstLine := c.Summary()
	if len(firstLine) > summaryWidth {
		firstLine = firstLine[:summaryWidth-3] + "..."
	}
	timestamp := c.Committer().When.Time().Format("2006-01-02 15:04")
	return fmt.Sprintf("%s  %s  %s", c.ID().Short(), timestamp, firstLine)
}

func appendSignatureLine(b *strings.Builder, label string, sig object.Signature) {
	fmt.Fprintf(b, "%s: %s <%s>", label, sig.Name, sig.Email)
	if !sig.When.IsZero() {
		fmt.Fprintf(b, "  %s", sig.When.Time().Format("2006-01-02 15:04:05 -0700"))
	}
	b.WriteByte('\n')
}
