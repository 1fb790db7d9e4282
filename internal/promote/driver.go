// Package promote runs a distribution: it loads the pool, applies the
// operator's selector, gives the selected proposals permanent ids, moves
// them into the archive and writes the Promotor's Report.
package promote

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/promotor/internal/ids"
	"github.com/kingrea/promotor/internal/logbook"
	"github.com/kingrea/promotor/internal/prompt"
	"github.com/kingrea/promotor/internal/proposal"
	"github.com/kingrea/promotor/internal/report"
	"github.com/kingrea/promotor/internal/selector"
	"github.com/kingrea/promotor/internal/store"
)

// State is the driver's position in a run.
type State string

const (
	StateIdle          State = "idle"
	StatePoolLoaded    State = "pool-loaded"
	StateSelectionMade State = "selection-made"
	StateIDsAssigned   State = "ids-assigned"
	StateReported      State = "reported"
)

// Numbering selects how distributed proposals get their ids.
type Numbering string

const (
	// NumberingSequential hands out ids after the highest archived id and
	// matches selectors against pool numbers.
	NumberingSequential Numbering = "sequential"
	// NumberingFixed keeps ids stored on the pooled proposals and matches
	// selectors against those ids.
	NumberingFixed Numbering = "fixed"
)

const (
	promptSelection = "Proposals to distribute: "
	promptQuorum    = "Enter the quorum: "
)

// ErrMissingFixedID is returned in fixed numbering when a selected pool
// entry carries no id.
var ErrMissingFixedID = errors.New("promote: pool entry has no pre-assigned id")

// Result describes a finished (or partially finished) run.
type Result struct {
	Report      string
	Path        string
	Distributed []proposal.Proposal
	Remaining   []proposal.Proposal
}

// Driver runs distributions against injected stores.
type Driver struct {
	pool       store.Pool
	archive    store.Archive
	prompter   prompt.Prompter
	reportsDir string

	out       io.Writer
	log       *zap.Logger
	ledger    *logbook.Logbook
	numbering Numbering
	seed      int
	now       func() time.Time

	state State
}

// Option customizes a Driver during construction.
type Option func(*Driver)

// WithClock overrides the clock used for report file names.
func WithClock(clock func() time.Time) Option {
	return func(d *Driver) {
		d.now = clock
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithLedger records every assignment and report in the distribution ledger.
func WithLedger(book *logbook.Logbook) Option {
	return func(d *Driver) {
		d.ledger = book
	}
}

// WithNumbering selects the numbering mode.
func WithNumbering(n Numbering) Option {
	return func(d *Driver) {
		d.numbering = n
	}
}

// WithSeed sets the first id used while the archive is empty.
func WithSeed(id int) Option {
	return func(d *Driver) {
		d.seed = id
	}
}

// WithOutput sets where the pool listing is shown to the operator.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.out = w
	}
}

// New builds a driver. Reports are written to reportsDir.
func New(pool store.Pool, archive store.Archive, prompter prompt.Prompter, reportsDir string, opts ...Option) *Driver {
	d := &Driver{
		pool:       pool,
		archive:    archive,
		prompter:   prompter,
		reportsDir: reportsDir,
		out:        io.Discard,
		log:        zap.NewNop(),
		numbering:  NumberingSequential,
		now:        time.Now,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the driver's current state.
func (d *Driver) State() State {
	return d.state
}

// Run performs one distribution. On failure the returned Result still lists
// proposals that were already archived; nothing is rolled back.
func (d *Driver) Run() (Result, error) {
	var res Result
	defer d.enter(StateIdle)

	d.enter(StatePoolLoaded)
	pool, err := d.pool.List()
	if err != nil {
		return res, d.fail(err)
	}
	d.log.Info("pool loaded", zap.Int("size", len(pool)))
	d.showPool(pool)

	d.enter(StateSelectionMade)
	expr, err := d.prompter.Ask(promptSelection)
	if err != nil {
		return res, d.fail(err)
	}
	sel, err := selector.Select(pool, expr, d.key())
	if err != nil {
		return res, d.fail(err)
	}
	for _, missing := range sel.Missing {
		d.log.Debug("selector entry not in pool", zap.Int("key", missing))
	}
	d.log.Info("selection made", zap.String("selector", expr), zap.Int("selected", len(sel.Selected)), zap.Int("remaining", len(sel.Remaining)))
	res.Remaining = sel.Remaining

	d.enter(StateIDsAssigned)
	assigned, err := d.assign(sel.Selected)
	res.Distributed = assigned
	if err != nil {
		if len(assigned) > 0 {
			first, last := idRange(assigned)
			if lerr := d.ledger.Warn("partial distribution kept %s-%s", ids.Format(first), ids.Format(last)); lerr != nil {
				d.log.Warn("ledger append failed", zap.Error(lerr))
			}
		}
		return res, d.fail(err)
	}

	d.enter(StateReported)
	in := report.Input{Distributed: assigned, Pool: sel.Remaining}
	if len(assigned) > 0 {
		quorum, err := d.prompter.Ask(promptQuorum)
		if err != nil {
			return res, d.fail(err)
		}
		in.Quorum = quorum
	}
	res.Report = report.Assemble(in)
	first, last := idRange(assigned)
	path, err := report.WriteNew(d.reportsDir, report.FileName(d.now(), first, last), res.Report)
	if err != nil {
		return res, d.fail(err)
	}
	res.Path = path
	d.log.Info("report written", zap.String("path", path))
	if err := d.ledger.Info("report %s", path); err != nil {
		d.log.Warn("ledger append failed", zap.Error(err))
	}
	return res, nil
}

func (d *Driver) key() selector.KeyFunc {
	if d.numbering == NumberingFixed {
		return selector.ByID
	}
	return selector.ByNumber
}

func (d *Driver) showPool(pool []proposal.Proposal) {
	for _, p := range pool {
		key := p.Number
		if d.numbering == NumberingFixed {
			key = p.ID
		}
		fmt.Fprintln(d.out, key, p.Name)
	}
}

// assign gives each selected proposal its id, archives it and removes it
// from the pool, one proposal at a time and in selection order.
func (d *Driver) assign(selected []proposal.Proposal) ([]proposal.Proposal, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	next := 0
	if d.numbering != NumberingFixed {
		highest, ok, err := d.archive.MaxID()
		if err != nil {
			return nil, err
		}
		if next, err = ids.NextID(highest, ok, d.seed); err != nil {
			return nil, err
		}
	}
	assigned := make([]proposal.Proposal, 0, len(selected))
	for _, p := range selected {
		if d.numbering == NumberingFixed {
			if !p.Distributed() {
				return assigned, fmt.Errorf("%w: pool number %d", ErrMissingFixedID, p.Number)
			}
		} else {
			p.ID = next
			next++
		}
		if err := d.archive.Dump(p); err != nil {
			return assigned, err
		}
		assigned = append(assigned, p)
		if err := d.pool.Remove(p.Number); err != nil {
			return assigned, err
		}
		d.log.Info("id assigned", zap.Int("id", p.ID), zap.Int("pool_number", p.Number), zap.String("name", p.Name))
		if err := d.ledger.Info("%s <- pool %d %q", ids.Format(p.ID), p.Number, p.Name); err != nil {
			d.log.Warn("ledger append failed", zap.Error(err))
		}
	}
	return assigned, nil
}

func (d *Driver) enter(next State) {
	if d.state == next {
		return
	}
	d.log.Debug("state", zap.String("from", string(d.state)), zap.String("to", string(next)))
	d.state = next
}

func (d *Driver) fail(err error) error {
	d.log.Error("run aborted", zap.String("state", string(d.state)), zap.Error(err))
	if lerr := d.ledger.Error("run aborted in %s: %v", d.state, err); lerr != nil {
		d.log.Warn("ledger append failed", zap.Error(lerr))
	}
	return fmt.Errorf("promote: %s: %w", d.state, err)
}

func idRange(ps []proposal.Proposal) (int, int) {
	if len(ps) == 0 {
		return 0, 0
	}
	first, last := ps[0].ID, ps[0].ID
	for _, p := range ps[1:] {
		first = min(first, p.ID)
		last = max(last, p.ID)
	}
	return first, last
}
