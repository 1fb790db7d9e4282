// Package report assembles the Promotor's Report from the proposals being
// distributed and the proposals left in the pool, and writes it to the
// reports directory.
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kingrea/promotor/internal/proposal"
)

// Fixed column widths of the report tables.
var (
	ColumnID     = Column{Header: "ID", Width: 8}
	ColumnAuthor = Column{Header: "Author", Width: 12}
	ColumnAI     = Column{Header: "AI", Width: 4}
	ColumnName   = Column{Header: "Name", Width: 30}
)

// gridIndent is the border and padding every grid line starts with.
const gridIndent = 2

const emptyReport = `
=================
PROMOTOR'S REPORT
=================

The proposal pool is empty.
`

const mainTemplate = `
=================
PROMOTOR'S REPORT
=================
%s
The proposal pool contains the following proposals (self-ratifying):
%s

Legend:
NNNN*: Democratic proposal
NNNN~: Ordinary proposal
NAME+: Coauthors listed below

The full text of all above mentioned proposal(s) is listed below. Where the information shown below differs from the information shown above, the information shown above shall control.
`

const distributionTemplate = `

I initiate a referendum on each of the following proposals, removing
them from the proposal pool. For each referendum the vote collector is the
Assessor, the quorum is %s, the adoption index is that of the associated
proposal, the voting method is AI-majority, and the valid options are FOR
and AGAINST. (PRESENT and conditional votes are also both valid options.)

%s

`

const listingTemplate = `
==========
%s (AI=%s)
author: %s
coauthors: %s


%s


`

// Input is everything a report is built from.
type Input struct {
	// Distributed proposals, already carrying their permanent ids.
	Distributed []proposal.Proposal
	// Pool holds the proposals left in the pool.
	Pool   []proposal.Proposal
	Quorum string
}

// Empty reports whether there is nothing to report on.
func (in Input) Empty() bool {
	return len(in.Distributed) == 0 && len(in.Pool) == 0
}

// Assemble renders the report text. The result starts with a newline;
// WriteNew strips it when persisting.
func Assemble(in Input) string {
	if in.Empty() {
		return emptyReport
	}
	distribution := ""
	if len(in.Distributed) > 0 {
		distribution = fmt.Sprintf(distributionTemplate, in.Quorum, DistributionTable(in.Distributed))
	}
	var b strings.Builder
	fmt.Fprintf(&b, mainTemplate, distribution, PoolTable(in.Pool))
	for _, p := range in.Distributed {
		b.WriteString(listing(p.Label()+" "+p.Name, p))
	}
	for _, p := range in.Pool {
		b.WriteString(listing(p.Name, p))
	}
	return b.String()
}

// DistributionTable renders the table of proposals being distributed.
func DistributionTable(ps []proposal.Proposal) string {
	g := NewGrid(ColumnID, ColumnAuthor, ColumnAI, ColumnName)
	for _, p := range ps {
		g.AddRow(p.Label(), p.AuthorLabel(), proposal.FormatAI(p.AI), p.Name)
	}
	return trimLeft(g.Lines(), gridIndent)
}

// PoolTable renders the table of proposals remaining in the pool.
func PoolTable(ps []proposal.Proposal) string {
	g := NewGrid(ColumnAuthor, ColumnAI, ColumnName)
	for _, p := range ps {
		g.AddRow(p.AuthorLabel(), proposal.FormatAI(p.AI), p.Name)
	}
	return trimLeft(g.Lines(), gridIndent)
}

func listing(title string, p proposal.Proposal) string {
	return fmt.Sprintf(listingTemplate,
		title,
		proposal.FormatAI(p.AI),
		p.Author(),
		strings.Join(p.Coauthors(), ", "),
		p.Text,
	)
}

// FileName names a report after the UTC date and the id range it
// distributed. last < first means nothing was distributed.
func FileName(now time.Time, first, last int) string {
	name := now.UTC().Format("2006-01-02")
	if last >= first && first > 0 {
		name += fmt.Sprintf(" %d-%d", first, last)
	}
	return name + ".txt"
}

// WriteNew writes text to dir/name, dropping one leading newline. It never
// replaces an existing report.
func WriteNew(dir, name, text string) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return path, fmt.Errorf("report: %s already exists: %w", path, err)
		}
		return path, fmt.Errorf("report: create %s: %w", path, err)
	}
	if _, err := f.WriteString(strings.TrimPrefix(text, "\n")); err != nil {
		f.Close()
		return path, fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("report: close %s: %w", path, err)
	}
	return path, nil
}
