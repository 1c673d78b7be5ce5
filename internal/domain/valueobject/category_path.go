// Package valueobject contains value objects for the domain layer.
package valueobject

import (
	"sort"
	"strconv"
	"strings"

	"github.com/media-shelf/backend/internal/domain/entity"
)

// PathSeparator separates sibling orders in a materialized category path.
const PathSeparator = "."

// RootPath returns the path of a root category with the given sort order.
func RootPath(sortOrder int) string {
	return strconv.Itoa(sortOrder)
}

// ChildPath returns the path of a child appended under parentPath.
func ChildPath(parentPath string, sortOrder int) string {
	return parentPath + PathSeparator + strconv.Itoa(sortOrder)
}

// PathLevel returns the depth encoded by a path (0 for roots).
func PathLevel(path string) int {
	return strings.Count(path, PathSeparator)
}

// IsDescendantPath reports whether candidate lies strictly below ancestor.
func IsDescendantPath(candidate, ancestor string) bool {
	return strings.HasPrefix(candidate, ancestor+PathSeparator)
}

// PathPrefixes returns every ancestor path of path, root first, including path itself.
// "3.1.2" yields ["3", "3.1", "3.1.2"].
func PathPrefixes(path string) []string {
	if path == "" {
		return nil
	}

	segments := strings.Split(path, PathSeparator)
	prefixes := make([]string, 0, len(segments))
	current := ""
	for i, segment := range segments {
		if i == 0 {
			current = segment
		} else {
			current = current + PathSeparator + segment
		}
		prefixes = append(prefixes, current)
	}
	return prefixes
}

// ComparePaths orders two materialized paths segment by segment as integers,
// so "2.9" < "2.10". A path sorts before its own descendants. Non-numeric
// segments fall back to string comparison.
func ComparePaths(a, b string) int {
	as := strings.Split(a, PathSeparator)
	bs := strings.Split(b, PathSeparator)

	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

func compareSegment(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// SortCategoriesByPath sorts categories in place by numeric path order.
func SortCategoriesByPath(categories []*entity.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return ComparePaths(categories[i].Path, categories[j].Path) < 0
	})
}
