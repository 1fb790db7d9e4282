package ids

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFirstMissing(t *testing.T) {
	cases := []struct {
		name    string
		numbers []int
		want    int
	}{
		{"empty", nil, 0},
		{"dense", []int{0, 1, 2}, 3},
		{"gap", []int{0, 2}, 1},
		{"missing zero", []int{1, 2, 3}, 0},
		{"unsorted with duplicates", []int{3, 0, 1, 1, 4}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FirstMissing(tc.numbers); got != tc.want {
				t.Fatalf("FirstMissing(%v) = %d, want %d", tc.numbers, got, tc.want)
			}
		})
	}
}

func TestFirstMissingDoesNotReorderInput(t *testing.T) {
	numbers := []int{2, 0, 1}
	FirstMissing(numbers)
	if diff := cmp.Diff([]int{2, 0, 1}, numbers); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestBucketOf(t *testing.T) {
	cases := []struct {
		id    int
		depth int
		want  []string
	}{
		{1234, 1, []string{"1xxx"}},
		{1234, 2, []string{"1xxx", "12xx"}},
		{1234, 3, []string{"1xxx", "12xx", "123x"}},
		{42, 2, []string{"0xxx", "00xx"}},
		{12345, 1, []string{"12xxx"}},
		{1234, 0, nil},
	}
	for _, tc := range cases {
		got := BucketOf(tc.id, tc.depth)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("BucketOf(%d, %d) mismatch (-want +got):\n%s", tc.id, tc.depth, diff)
		}
	}
}

func TestBucketOfIsPure(t *testing.T) {
	for _, id := range []int{0, 7, 999, 1000, 1201, 9999} {
		first := BucketOf(id, 2)
		second := BucketOf(id, 2)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("BucketOf(%d) not reproducible:\n%s", id, diff)
		}
	}
}

func TestParseBucket(t *testing.T) {
	prefix, masked, ok := ParseBucket("12xx")
	if !ok || prefix != "12" || masked != 2 {
		t.Fatalf("ParseBucket(12xx) = %q, %d, %v", prefix, masked, ok)
	}
	for _, name := range []string{"xxxx", "1234", "ab", "1axx", ""} {
		if _, _, ok := ParseBucket(name); ok {
			t.Fatalf("ParseBucket(%q) should fail", name)
		}
	}
}

func TestNextID(t *testing.T) {
	id, err := NextID(1200, true, 0)
	if err != nil || id != 1201 {
		t.Fatalf("NextID(1200) = %d, %v", id, err)
	}
	id, err = NextID(0, false, 500)
	if err != nil || id != 500 {
		t.Fatalf("NextID seeded = %d, %v", id, err)
	}
	if _, err := NextID(0, false, 0); !errors.Is(err, ErrNoSeed) {
		t.Fatalf("expected ErrNoSeed, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(42); got != "0042" {
		t.Fatalf("Format(42) = %q", got)
	}
	if got := Format(12345); got != "12345" {
		t.Fatalf("Format(12345) = %q", got)
	}
}
