package backend

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (g *gitCLI) HeadState(ctx context.Context) (hash string, headName string, ok bool, err error) {
	out, err := g.git(ctx, gitCommand{args: []string{"rev-parse", "-q", "--verify", "HEAD"}, notFoundOK: true})
	if err != nil {
		return "", "", false, err
	}
	hash = strings.TrimSpace(string(out))
	if hash == "" {
		return "", "", false, nil
	}
	ref, err := g.git(ctx, gitCommand{args: []string{"symbolic-ref", "-q", "--short", "HEAD"}, notFoundOK: true})
	if err != nil {
		return "", "", false, err
	}
	headName = strings.TrimSpace(string(ref))
	if headName == "" {
		headName = "HEAD"
	}
	return hash, headName, true, nil
}

func (g *gitCLI) ReadObject(ctx context.Context, hash string) (Object, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return Object{}, fmt.Errorf("object not specified")
	}
	out, err := g.git(ctx, gitCommand{args: []string{"cat-file", "--batch"}, stdin: strings.NewReader(hash + "\n")})
	if err != nil {
		return Object{}, err
	}
	return parseCatFileBatch(out)
}

// parseCatFileBatch decodes a single "git cat-file --batch" record:
//
//	<hash> <type> <size>\n<contents>\n
//
// or "<name> missing\n" when the object does not exist.
func parseCatFileBatch(out []byte) (Object, error) {
	header, body, found := bytes.Cut(out, []byte{'\n'})
	if !found {
		return Object{}, fmt.Errorf("unexpected cat-file output: %q", out)
	}
	fields := strings.Fields(string(header))
	if len(fields) == 2 && (fields[1] == "missing" || fields[1] == "ambiguous") {
		return Object{}, fmt.Errorf("%s: %w", fields[0], ErrObjectNotFound)
	}
	if len(fields) != 3 {
		return Object{}, fmt.Errorf("unexpected cat-file header: %q", header)
	}
	size, err := strconv.Atoi(fields[2])
	if err != nil || size < 0 {
		return Object{}, fmt.Errorf("unexpected cat-file size: %q", fields[2])
	}
	if len(body) < size+1 || body[size] != '\n' {
		return Object{}, fmt.Errorf("short cat-file output for %s: want %d bytes", fields[0], size)
	}
	return Object{Type: ObjectType(fields[1]), Data: body[:size]}, nil
}

func (g *gitCLI) ListRefs(ctx context.Context) ([]Ref, error) {
	out, err := g.git(ctx, gitCommand{args: []string{"show-ref", "--dereference"}, notFoundOK: true})
	if err != nil {
		return nil, err
	}
	return parseRefsFromShowRef(string(out))
}

func parseRefsFromShowRef(out string) ([]Ref, error) {
	type refEntry struct {
		hash string
		ref  string
	}

	peeledByTagRef := map[string]string{}
	var entries []refEntry

	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("unexpected show-ref output line: %q", rawLine)
		}
		hash := parts[0]
		refName := parts[1]
		if strings.HasSuffix(refName, "^{}") {
			base := strings.TrimSuffix(refName, "^{}")
			if base != "" {
				peeledByTagRef[base] = hash
			}
			continue
		}
		entries = append(entries, refEntry{hash: hash, ref: refName})
	}

	var refs []Ref
	for _, entry := range entries {
		kind, short, ok := classifyRef(entry.ref)
		if !ok {
			continue
		}
		hash := entry.hash
		if peeled, ok := peeledByTagRef[entry.ref]; ok && kind == RefKindTag && peeled != "" {
			hash = peeled
		}
		refs = append(refs, Ref{Hash: hash, Kind: kind, Name: short})
	}
	return refs, nil
}

// classifyRef maps a full ref name to its kind and short name. Refs outside
// heads, remotes and tags are skipped.
func classifyRef(name string) (RefKind, string, bool) {
	for _, prefix := range []struct {
		prefix string
		kind   RefKind
	}{
		{"refs/heads/", RefKindBranch},
		{"refs/remotes/", RefKindRemoteBranch},
		{"refs/tags/", RefKindTag},
	} {
		if short, ok := strings.CutPrefix(name, prefix.prefix); ok {
			if short == "" {
				return 0, "", false
			}
			return prefix.kind, short, true
		}
	}
	return 0, "", false
}
