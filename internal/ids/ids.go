// Package ids implements the identifier scheme: how permanent proposal ids
// are formatted, where they live on disk, and which number or id comes next.
package ids

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Width is the number of digits a permanent id is padded to.
const Width = 4

// MaxDepth is the deepest bucket nesting supported.
const MaxDepth = Width - 1

// ErrNoSeed is returned by NextID when the archive is empty and no seed id
// was configured.
var ErrNoSeed = errors.New("ids: archive is empty and no seed id is configured (run `promotor init --seed <id>`)")

// Format renders an id as zero-padded text.
func Format(id int) string {
	return fmt.Sprintf("%0*d", Width, id)
}

// BucketOf maps an id to its bucket path segments, coarsest first. With
// depth 2, id 1234 maps to ["1xxx", "12xx"]. Ids wider than Width keep
// their extra leading digits in every segment (12345 -> "12xxx").
func BucketOf(id, depth int) []string {
	if depth < 1 {
		return nil
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	digits := Format(id)
	segments := make([]string, 0, depth)
	for level := 1; level <= depth; level++ {
		masked := Width - level
		prefix := digits[:len(digits)-masked]
		segments = append(segments, prefix+strings.Repeat("x", masked))
	}
	return segments
}

// ParseBucket returns the digit prefix encoded in a bucket segment and the
// number of masked digits. ok is false for names that are not buckets.
func ParseBucket(name string) (prefix string, masked int, ok bool) {
	trimmed := strings.TrimRight(name, "x")
	masked = len(name) - len(trimmed)
	if masked == 0 || trimmed == "" {
		return "", 0, false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", 0, false
		}
	}
	return trimmed, masked, true
}

// NextID returns the id that follows the highest id in the archive. When
// the archive holds no ids, the seed is used; a seed of zero or less means
// no seed was configured.
func NextID(max int, ok bool, seed int) (int, error) {
	if ok {
		return max + 1, nil
	}
	if seed > 0 {
		return seed, nil
	}
	return 0, ErrNoSeed
}

// FirstMissing returns the smallest non-negative integer absent from
// numbers, so pool numbers are reused instead of growing forever.
func FirstMissing(numbers []int) int {
	if len(numbers) == 0 {
		return 0
	}
	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	next := 0
	for _, n := range sorted {
		if n < next {
			continue
		}
		if n > next {
			return next
		}
		next++
	}
	return next
}
