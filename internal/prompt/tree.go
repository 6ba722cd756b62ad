package prompt

import (
	"sort"
	"strings"
)

// Tree renders a sorted file listing for workspace context. Callers pass
// the key set of a tracker snapshot, so the listing is already filtered
// through the same ignore rules as change detection.
func Tree(paths []string) string {
	if len(paths) == 0 {
		return "(empty workspace)"
	}
	sorted := append([]string{}, paths...)
	sort.Strings(sorted)

	var b strings.Builder
	for _, p := range sorted {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
