package backend

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Minimum supported git version for the CLI backend. Keep this aligned with the
// flags and subcommands used in this package (e.g.
// "git rev-parse --absolute-git-dir").
var minGitVersion = gitVersion{major: 2, minor: 13, patch: 0}

type gitVersion struct {
	major int
	minor int
	patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersionOutput understands "git version 2.44.0",
// "git version 2.39.3 (Apple Git-146)" and "git version 2.39.3.windows.1".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	if end := strings.IndexFunc(s, func(r rune) bool { return !isDigit(r) && r != '.' }); end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var nums [3]int
	for i := 0; i < len(parts) && i < len(nums); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			if i == 2 {
				break
			}
			return gitVersion{}, false
		}
		nums[i] = n
	}
	return gitVersion{major: nums[0], minor: nums[1], patch: nums[2]}, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; gitodb requires git >= %s", got, minGitVersion)
	}
	return nil
}

var gitVersionOutput = sync.OnceValues(func() (string, error) {
	outBytes, err := exec.Command("git", "--version").CombinedOutput()
	out := strings.TrimSpace(string(outBytes))
	if err != nil {
		if out != "" {
			return out, fmt.Errorf("git --version: %v: %s", err, out)
		}
		return out, fmt.Errorf("git --version: %w", err)
	}
	return out, nil
})

func GitVersion() (string, error) {
	return gitVersionOutput()
}

var ensureMinGitVersion = sync.OnceValue(func() error {
	out, err := gitVersionOutput()
	if err != nil {
		return err
	}
	return validateGitVersionOutput(out)
})
