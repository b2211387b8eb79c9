// Package buildinfo reports what the running binary was built from.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

var readBuildInfo = sync.OnceValues(debug.ReadBuildInfo)

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

func setting(key string) string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Tags returns the build tags recorded at compile time.
func Tags() string {
	return setting("-tags")
}

// Revision returns the abbreviated VCS revision, with a "+dirty" suffix for
// builds from a modified tree.
func Revision() string {
	rev := setting("vcs.revision")
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && setting("vcs.modified") == "true" {
		rev += "+dirty"
	}
	return rev
}

// VersionWithTags returns the version string plus revision and tags if present.
func VersionWithTags() string {
	return format(Version(), Revision(), Tags())
}

func format(version, revision, tags string) string {
	var extra []string
	if revision != "" {
		extra = append(extra, revision)
	}
	if tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if len(extra) == 0 {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, strings.Join(extra, ", "))
}
