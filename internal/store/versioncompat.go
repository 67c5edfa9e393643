package store

import (
	"strconv"
	"strings"
)

// breakingVersions lists producer-library versions that changed cached
// message semantics in a way incremental sync cannot repair: any cache
// whose Project.Version predates one of these, compared against a
// current version at or past it, must be rebuilt from scratch rather
// than synced incrementally.
var breakingVersions = []string{
	"0.3.0", // summary attachment switched from leafUuid-only to UUID map
	"0.5.0", // sidechain dedup notice text introduced
}

// RequiresFullRebuild reports whether moving from oldVersion to
// newVersion crosses a breaking-change boundary, per breakingVersions.
func RequiresFullRebuild(oldVersion, newVersion string) bool {
	if oldVersion == "" {
		return false // no prior cache to invalidate
	}
	for _, breaking := range breakingVersions {
		if compareVersions(oldVersion, breaking) < 0 && compareVersions(newVersion, breaking) >= 0 {
			return true
		}
	}
	return false
}

// compareVersions compares two dotted version strings numerically,
// component by component, treating a missing component as 0. There is
// no semantic-versioning library anywhere in the example pack's
// dependency graphs, so this small numeric comparator stands in for one.
func compareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av := versionPart(as, i)
		bv := versionPart(bs, i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, _ := strconv.Atoi(parts[i])
	return n
}
