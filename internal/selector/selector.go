// Package selector parses selector expressions such as "1,4-6" and splits a
// pool into the selected proposals and the remainder.
//
// Grammar:
//
//	selector := term ("," term)*
//	term     := INTEGER | INTEGER "-" INTEGER
//
// Terms are applied left to right and ranges expand in ascending order.
// Integers that match no pool entry are skipped without error.
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kingrea/promotor/internal/proposal"
)

// SyntaxError reports a malformed selector term.
type SyntaxError struct {
	Expr   string
	Term   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("selector: invalid term %q in %q: %s", e.Term, e.Expr, e.Reason)
}

// Term is one parsed selector term; single integers have Start == End.
type Term struct {
	Start int
	End   int
}

// Single reports whether the term names one integer rather than a range.
func (t Term) Single() bool {
	return t.Start == t.End
}

// KeyFunc picks the integer a selector matches against.
type KeyFunc func(proposal.Proposal) int

// ByNumber matches pool numbers.
func ByNumber(p proposal.Proposal) int { return p.Number }

// ByID matches pre-assigned permanent ids.
func ByID(p proposal.Proposal) int { return p.ID }

// Parse validates expr and returns its terms. A blank expression yields no
// terms.
func Parse(expr string) ([]Term, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	var terms []Term
	for _, raw := range strings.Split(expr, ",") {
		term, err := parseTerm(expr, raw)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func parseTerm(expr, raw string) (Term, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Term{}, &SyntaxError{Expr: expr, Term: raw, Reason: "empty term"}
	}
	parts := strings.Split(text, "-")
	switch len(parts) {
	case 1:
		v, err := parseInt(expr, raw, parts[0])
		if err != nil {
			return Term{}, err
		}
		return Term{Start: v, End: v}, nil
	case 2:
		start, err := parseInt(expr, raw, parts[0])
		if err != nil {
			return Term{}, err
		}
		end, err := parseInt(expr, raw, parts[1])
		if err != nil {
			return Term{}, err
		}
		if start > end {
			return Term{}, &SyntaxError{Expr: expr, Term: raw, Reason: "range start is greater than range end"}
		}
		return Term{Start: start, End: end}, nil
	default:
		return Term{}, &SyntaxError{Expr: expr, Term: raw, Reason: "malformed range"}
	}
}

func parseInt(expr, raw, part string) (int, error) {
	text := strings.TrimSpace(part)
	if text == "" {
		return 0, &SyntaxError{Expr: expr, Term: raw, Reason: "malformed range"}
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, &SyntaxError{Expr: expr, Term: raw, Reason: "not a non-negative integer"}
		}
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, &SyntaxError{Expr: expr, Term: raw, Reason: err.Error()}
	}
	return v, nil
}

// Result is the outcome of applying a selector to a pool.
type Result struct {
	Selected  []proposal.Proposal
	Remaining []proposal.Proposal
	// Missing lists single-integer terms that matched no pool entry.
	Missing []int
}

// Select applies expr to pool. The pool slice is not modified; Selected
// follows selector order and Remaining keeps pool order.
func Select(pool []proposal.Proposal, expr string, key KeyFunc) (Result, error) {
	terms, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}
	return Apply(pool, terms, key), nil
}

// Apply splits pool according to already parsed terms.
func Apply(pool []proposal.Proposal, terms []Term, key KeyFunc) Result {
	if key == nil {
		key = ByNumber
	}
	index := make(map[int]int, len(pool))
	maxKey := -1
	for i, p := range pool {
		k := key(p)
		if _, dup := index[k]; !dup {
			index[k] = i
		}
		maxKey = max(maxKey, k)
	}
	taken := make([]bool, len(pool))
	var res Result
	for _, term := range terms {
		if term.Single() {
			if _, ok := index[term.Start]; !ok {
				res.Missing = append(res.Missing, term.Start)
			}
		}
		// Nothing above the largest key can match, so wide ranges stop early.
		for v := term.Start; v <= min(term.End, maxKey); v++ {
			i, ok := index[v]
			if !ok || taken[i] {
				continue
			}
			taken[i] = true
			res.Selected = append(res.Selected, pool[i])
		}
	}
	for i, p := range pool {
		if !taken[i] {
			res.Remaining = append(res.Remaining, p)
		}
	}
	return res
}
