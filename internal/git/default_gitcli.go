//go:build gitcli

package git

// DefaultBackend is selected when Options.Backend is empty.
const DefaultBackend = BackendGitCLI
