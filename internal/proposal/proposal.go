// Package proposal defines the proposal record shared by the pool, the
// archive and the report, together with its YAML document format.
package proposal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kingrea/promotor/internal/ids"
)

// DemocraticThreshold separates ordinary proposals from democratic ones.
const DemocraticThreshold = 3.0

// Proposal is a single proposal, pooled or distributed.
type Proposal struct {
	// Number is the pool-local number. Meaningful only while pooled.
	Number int
	// ID is the permanent id; zero until distributed.
	ID      int
	Name    string
	Authors []string
	AI      float64
	Text    string
}

var (
	// ErrNoAuthors indicates a proposal without a primary author.
	ErrNoAuthors = errors.New("proposal: at least one author is required")
	// ErrBadAI indicates a negative or non-finite adoption index.
	ErrBadAI = errors.New("proposal: adoption index must be a non-negative number")
)

// Validate checks the record invariants.
func (p Proposal) Validate() error {
	if len(p.Authors) == 0 || strings.TrimSpace(p.Authors[0]) == "" {
		return ErrNoAuthors
	}
	if p.AI < 0 || math.IsNaN(p.AI) || math.IsInf(p.AI, 0) {
		return fmt.Errorf("%w (got %v)", ErrBadAI, p.AI)
	}
	return nil
}

// Distributed reports whether the proposal carries a permanent id.
func (p Proposal) Distributed() bool {
	return p.ID > 0
}

// Democratic reports whether the adoption index reaches the threshold.
func (p Proposal) Democratic() bool {
	return p.AI >= DemocraticThreshold
}

// Suffix is the class marker appended to ids in the report.
func (p Proposal) Suffix() string {
	if p.Democratic() {
		return "*"
	}
	return "~"
}

// Label renders the id with its class marker, e.g. "1201*".
func (p Proposal) Label() string {
	return ids.Format(p.ID) + p.Suffix()
}

// Author returns the primary author.
func (p Proposal) Author() string {
	if len(p.Authors) == 0 {
		return ""
	}
	return p.Authors[0]
}

// AuthorLabel is the primary author, marked with "+" when coauthors exist.
func (p Proposal) AuthorLabel() string {
	if len(p.Authors) > 1 {
		return p.Author() + "+"
	}
	return p.Author()
}

// Coauthors returns every author after the primary one.
func (p Proposal) Coauthors() []string {
	if len(p.Authors) < 2 {
		return nil
	}
	return append([]string(nil), p.Authors[1:]...)
}

// FormatAI renders an adoption index the way reports always have: the
// shortest decimal form, with a fractional part even for whole numbers.
func FormatAI(ai float64) string {
	s := strconv.FormatFloat(ai, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// SplitAuthors parses a comma-separated author list, dropping blanks.
func SplitAuthors(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ParseAI parses an operator-supplied adoption index.
func ParseAI(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAI, raw)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadAI, raw)
	}
	return value, nil
}
