package selector

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/promotor/internal/proposal"
)

func poolOf(numbers ...int) []proposal.Proposal {
	out := make([]proposal.Proposal, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, proposal.Proposal{Number: n, Name: "p", Authors: []string{"a"}})
	}
	return out
}

func numbers(ps []proposal.Proposal) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Number)
	}
	return out
}

func TestSelectRange(t *testing.T) {
	res, err := Select(poolOf(2, 3, 4, 5, 6), "3-5", ByNumber)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]int{3, 4, 5}, numbers(res.Selected)); diff != "" {
		t.Fatalf("selected (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 6}, numbers(res.Remaining)); diff != "" {
		t.Fatalf("remaining (-want +got):\n%s", diff)
	}
}

func TestSelectFollowsSelectorOrderNotPoolOrder(t *testing.T) {
	res, err := Select(poolOf(6, 5, 3, 1), "1,5-6", ByNumber)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]int{1, 5, 6}, numbers(res.Selected)); diff != "" {
		t.Fatalf("selected (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, numbers(res.Remaining)); diff != "" {
		t.Fatalf("remaining (-want +got):\n%s", diff)
	}
}

func TestSelectSkipsAbsentNumbers(t *testing.T) {
	res, err := Select(poolOf(0, 1, 2), "1,7,0-9", ByNumber)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]int{1, 0, 2}, numbers(res.Selected)); diff != "" {
		t.Fatalf("selected (-want +got):\n%s", diff)
	}
	if len(res.Remaining) != 0 {
		t.Fatalf("expected empty remainder, got %v", numbers(res.Remaining))
	}
	if diff := cmp.Diff([]int{7}, res.Missing); diff != "" {
		t.Fatalf("missing (-want +got):\n%s", diff)
	}
}

func TestSelectEmptySelectorLeavesPool(t *testing.T) {
	pool := poolOf(4, 1, 2)
	for _, expr := range []string{"", "   "} {
		res, err := Select(pool, expr, ByNumber)
		if err != nil {
			t.Fatalf("select %q: %v", expr, err)
		}
		if len(res.Selected) != 0 {
			t.Fatalf("expected no selection for %q", expr)
		}
		if diff := cmp.Diff([]int{4, 1, 2}, numbers(res.Remaining)); diff != "" {
			t.Fatalf("remaining (-want +got):\n%s", diff)
		}
	}
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	pool := poolOf(0, 1, 2, 3)
	if _, err := Select(pool, "2,0", ByNumber); err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, numbers(pool)); diff != "" {
		t.Fatalf("pool mutated (-want +got):\n%s", diff)
	}
}

func TestSelectPartitionsPool(t *testing.T) {
	pool := poolOf(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	for _, expr := range []string{"0", "1-3", "9,0,4-5", "2,2,2-3", "0-9", "8-9,0-1,5"} {
		res, err := Select(pool, expr, ByNumber)
		if err != nil {
			t.Fatalf("select %q: %v", expr, err)
		}
		if len(res.Selected)+len(res.Remaining) != len(pool) {
			t.Fatalf("%q: sizes %d + %d != %d", expr, len(res.Selected), len(res.Remaining), len(pool))
		}
		seen := map[int]bool{}
		for _, n := range append(numbers(res.Selected), numbers(res.Remaining)...) {
			if seen[n] {
				t.Fatalf("%q: number %d appears twice", expr, n)
			}
			seen[n] = true
		}
		union := append(numbers(res.Selected), numbers(res.Remaining)...)
		sort.Ints(union)
		if diff := cmp.Diff(numbers(pool), union); diff != "" {
			t.Fatalf("%q: union differs from pool (-want +got):\n%s", expr, diff)
		}
	}
}

func TestSelectByID(t *testing.T) {
	pool := []proposal.Proposal{
		{Number: 0, ID: 1500},
		{Number: 1, ID: 1501},
		{Number: 2, ID: 1502},
	}
	res, err := Select(pool, "1501-1502", ByID)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2}, numbers(res.Selected)); diff != "" {
		t.Fatalf("selected (-want +got):\n%s", diff)
	}
}

func TestParseRejectsMalformedTerms(t *testing.T) {
	for _, expr := range []string{"a", "1,,2", "1-", "-3", "5-3", "1-2-3", "1.5", "1,", "x-2"} {
		_, err := Parse(expr)
		var syn *SyntaxError
		if !errors.As(err, &syn) {
			t.Fatalf("Parse(%q) error = %v, want SyntaxError", expr, err)
		}
		if syn.Expr != expr {
			t.Fatalf("SyntaxError.Expr = %q, want %q", syn.Expr, expr)
		}
	}
}

func TestParseAcceptsWhitespace(t *testing.T) {
	terms, err := Parse(" 1 , 3 - 4 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]Term{{1, 1}, {3, 4}}, terms); diff != "" {
		t.Fatalf("terms (-want +got):\n%s", diff)
	}
}

func TestWideRangeDoesNotEnumerateBeyondPool(t *testing.T) {
	res, err := Select(poolOf(1, 2), "0-2000000000", ByNumber)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2}, numbers(res.Selected)); diff != "" {
		t.Fatalf("selected (-want +got):\n%s", diff)
	}
}
