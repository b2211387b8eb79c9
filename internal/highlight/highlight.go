// Package highlight colors commit objects and diffs for terminal output.
package highlight

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
)

const DefaultStyle = "github-dark"

// CommitLexer tokenizes raw commit objects: headers, signatures and message.
var CommitLexer = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "Git commit object",
		Aliases:   []string{"gitobject", "git-commit-object"},
		MimeTypes: []string{"application/x-git-commit-object"},
	},
	commitRules,
))

func commitRules() chroma.Rules {
	return chroma.Rules{
		"root": {
			{Pattern: `(tree|parent|object)( )([0-9a-fA-F]{40})(\n)`, Type: chroma.ByGroups(chroma.Keyword, chroma.Text, chroma.LiteralNumberHex, chroma.Text)},
			{Pattern: `(author|committer|tagger)( )([^<\n]*)(<)([^>\n]*)(>)([^\n]*)(\n)`, Type: chroma.ByGroups(
				chroma.Keyword, chroma.Text, chroma.NameEntity, chroma.Punctuation,
				chroma.LiteralStringOther, chroma.Punctuation, chroma.LiteralDate, chroma.Text,
			)},
			{Pattern: `( )([^\n]*)(\n)`, Type: chroma.ByGroups(chroma.Text, chroma.Comment, chroma.Text)},
			{Pattern: `([^ \n]+)( )([^\n]*)(\n)`, Type: chroma.ByGroups(chroma.NameAttribute, chroma.Text, chroma.LiteralString, chroma.Text)},
			{Pattern: `\n`, Type: chroma.Text, Mutator: chroma.Push("summary")},
		},
		"summary": {
			{Pattern: `[^\n]+\n?`, Type: chroma.GenericHeading, Mutator: chroma.Push("body")},
			{Pattern: `\n`, Type: chroma.Text, Mutator: chroma.Push("body")},
		},
		"body": {
			{Pattern: `[^\n]+`, Type: chroma.Text},
			{Pattern: `\n`, Type: chroma.Text},
		},
	}
}

// ColorMode selects when output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
}

// Enabled reports whether output to w should be colored under mode.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Commit writes raw highlighted with CommitLexer.
func Commit(w io.Writer, raw, style string) error {
	return write(w, CommitLexer, raw, style)
}

// Diff writes a unified diff highlighted with chroma's diff lexer.
func Diff(w io.Writer, text, style string) error {
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return write(w, lexer, text, style)
}

func write(w io.Writer, lexer chroma.Lexer, text, style string) error {
	st := styles.Get(style)
	if st == nil {
		st = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	return formatter.Format(w, st, it)
}
