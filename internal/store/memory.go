package store

import (
	"fmt"
	"sort"

	"github.com/kingrea/promotor/internal/ids"
	"github.com/kingrea/promotor/internal/proposal"
)

// MemoryPool is an in-memory Pool.
type MemoryPool struct {
	records map[int]proposal.Proposal
}

// NewMemoryPool returns an empty in-memory pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{records: map[int]proposal.Proposal{}}
}

func (m *MemoryPool) path(number int) string {
	return fmt.Sprintf("memory://pool/%d", number)
}

// Put stores p at an explicit number, replacing whatever was there.
func (m *MemoryPool) Put(number int, p proposal.Proposal) {
	p.Number = number
	m.records[number] = cloneProposal(p)
}

func (m *MemoryPool) Numbers() ([]int, error) {
	numbers := make([]int, 0, len(m.records))
	for n := range m.records {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers, nil
}

func (m *MemoryPool) List() ([]proposal.Proposal, error) {
	numbers, _ := m.Numbers()
	out := make([]proposal.Proposal, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, cloneProposal(m.records[n]))
	}
	return out, nil
}

func (m *MemoryPool) Load(number int) (proposal.Proposal, error) {
	p, ok := m.records[number]
	if !ok {
		return proposal.Proposal{}, &ConsistencyError{Op: "load", Path: m.path(number), Err: ErrNotFound}
	}
	return cloneProposal(p), nil
}

func (m *MemoryPool) Add(p proposal.Proposal) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	numbers, _ := m.Numbers()
	number := ids.FirstMissing(numbers)
	if _, ok := m.records[number]; ok {
		return 0, &ConsistencyError{Op: "add", Path: m.path(number), Err: ErrExists}
	}
	m.Put(number, p)
	return number, nil
}

func (m *MemoryPool) Remove(number int) error {
	if _, ok := m.records[number]; !ok {
		return &ConsistencyError{Op: "remove", Path: m.path(number), Err: ErrNotFound}
	}
	delete(m.records, number)
	return nil
}

// MemoryArchive is an in-memory Archive.
type MemoryArchive struct {
	records map[int]proposal.Proposal
	// FailAt makes Dump fail for the given id; used to exercise partial runs.
	FailAt int
}

// NewMemoryArchive returns an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{records: map[int]proposal.Proposal{}}
}

func (m *MemoryArchive) path(id int) string {
	return "memory://proposals/" + ids.Format(id)
}

func (m *MemoryArchive) Load(id int) (proposal.Proposal, error) {
	p, ok := m.records[id]
	if !ok {
		return proposal.Proposal{}, &ConsistencyError{Op: "load", Path: m.path(id), Err: ErrNotFound}
	}
	return cloneProposal(p), nil
}

func (m *MemoryArchive) Dump(p proposal.Proposal) error {
	if !p.Distributed() {
		return fmt.Errorf("store: cannot archive %q without a permanent id", p.Name)
	}
	if m.FailAt != 0 && p.ID == m.FailAt {
		return fmt.Errorf("store: injected failure for %s", m.path(p.ID))
	}
	if _, ok := m.records[p.ID]; ok {
		return &ConsistencyError{Op: "dump", Path: m.path(p.ID), Err: ErrExists}
	}
	p.Number = 0
	m.records[p.ID] = cloneProposal(p)
	return nil
}

func (m *MemoryArchive) MaxID() (int, bool, error) {
	highest, found := 0, false
	for id := range m.records {
		if !found || id > highest {
			highest, found = id, true
		}
	}
	return highest, found, nil
}

// IDs returns the stored ids in ascending order.
func (m *MemoryArchive) IDs() []int {
	out := make([]int, 0, len(m.records))
	for id := range m.records {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func cloneProposal(p proposal.Proposal) proposal.Proposal {
	p.Authors = append([]string(nil), p.Authors...)
	return p
}
