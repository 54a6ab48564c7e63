package updater

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions compares two dotted version strings component-wise.
// Returns 1 if a > b, 0 if equal, -1 if a < b. Missing trailing components
// count as 0, so "1.0" equals "1.0.0". When a component is not a plain
// number and both strings are valid semver, semver precedence decides.
func CompareVersions(a, b string) int {
	a = strings.TrimPrefix(strings.TrimSpace(a), "v")
	b = strings.TrimPrefix(strings.TrimSpace(b), "v")

	pa, okA := splitNumeric(a)
	pb, okB := splitNumeric(b)
	if !okA || !okB {
		va, errA := semver.NewVersion(a)
		vb, errB := semver.NewVersion(b)
		if errA == nil && errB == nil {
			return va.Compare(vb)
		}
	}

	n := max(len(pa), len(pb))
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return 0
}

// IsUpdateAvailable returns true if latest is newer than current.
func IsUpdateAvailable(current, latest string) bool {
	return CompareVersions(latest, current) > 0
}

// splitNumeric parses each dotted component; unparsable components become 0
// and ok is false.
func splitNumeric(v string) ([]int, bool) {
	if v == "" {
		return nil, true
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	ok := true
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			ok = false
			continue
		}
		out[i] = n
	}
	return out, ok
}
