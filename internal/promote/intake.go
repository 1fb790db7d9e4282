package promote

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kingrea/promotor/internal/prompt"
	"github.com/kingrea/promotor/internal/proposal"
	"github.com/kingrea/promotor/internal/store"
)

// InputError reports an unusable operator answer.
type InputError struct {
	Field string
	Value string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("promote: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Intake asks the operator for a new proposal and adds it to the pool. In
// fixed numbering the operator also supplies the proposal's id.
func Intake(pr prompt.Prompter, pool store.Pool, numbering Numbering) (proposal.Proposal, error) {
	name, err := pr.Ask("Title: ")
	if err != nil {
		return proposal.Proposal{}, err
	}
	rawAuthors, err := pr.Ask("authors (,-separated): ")
	if err != nil {
		return proposal.Proposal{}, err
	}
	authors := proposal.SplitAuthors(rawAuthors)
	if len(authors) == 0 {
		return proposal.Proposal{}, &InputError{Field: "authors", Value: rawAuthors, Err: proposal.ErrNoAuthors}
	}
	rawAI, err := pr.Ask("AI: ")
	if err != nil {
		return proposal.Proposal{}, err
	}
	ai, err := proposal.ParseAI(rawAI)
	if err != nil {
		return proposal.Proposal{}, &InputError{Field: "AI", Value: rawAI, Err: err}
	}
	p := proposal.Proposal{Name: strings.TrimSpace(name), Authors: authors, AI: ai}
	if numbering == NumberingFixed {
		rawID, err := pr.Ask("ID: ")
		if err != nil {
			return proposal.Proposal{}, err
		}
		id, convErr := strconv.Atoi(strings.TrimSpace(rawID))
		if convErr != nil || id <= 0 {
			return proposal.Proposal{}, &InputError{Field: "ID", Value: rawID, Err: fmt.Errorf("must be a positive integer")}
		}
		p.ID = id
	}
	text, err := pr.ReadText("Text:")
	if err != nil {
		return proposal.Proposal{}, err
	}
	p.Text = text
	number, err := pool.Add(p)
	if err != nil {
		return proposal.Proposal{}, err
	}
	p.Number = number
	return p, nil
}
