package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const shortRevision = 12

var readBuildInfo = debug.ReadBuildInfo

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

// Revision returns the abbreviated VCS revision, suffixed with "+dirty" for
// builds from a modified tree.
func Revision() string {
	rev := setting("vcs.revision")
	if rev == "" {
		return ""
	}
	if len(rev) > shortRevision {
		rev = rev[:shortRevision]
	}
	if setting("vcs.modified") == "true" {
		rev += "+dirty"
	}
	return rev
}

// VersionWithTags returns the version followed by the revision and tags
// when they are known.
func VersionWithTags() string {
	var extra []string
	if rev := Revision(); rev != "" {
		extra = append(extra, "rev: "+rev)
	}
	if tags := Tags(); tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if len(extra) == 0 {
		return Version()
	}
	return fmt.Sprintf("%s (%s)", Version(), strings.Join(extra, ", "))
}
