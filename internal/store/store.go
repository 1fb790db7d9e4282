// Package store persists proposals: the pool of pending proposals keyed by
// pool number, and the archive of distributed proposals keyed by permanent
// id. Both have a filesystem implementation and an in-memory one.
package store

import (
	"errors"
	"fmt"

	"github.com/kingrea/promotor/internal/proposal"
)

var (
	// ErrNotFound indicates no record exists at the requested key.
	ErrNotFound = errors.New("store: record not found")
	// ErrExists indicates a record already occupies the requested key.
	ErrExists = errors.New("store: record already exists")
)

// ConsistencyError reports a storage state that should not happen under
// normal use: a duplicate key, a missing record, or an unreadable file.
// Path is the resolved location so the operator can repair it by hand.
type ConsistencyError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// Pool holds proposals awaiting distribution.
type Pool interface {
	// List returns every pooled proposal with Number set, ordered by number.
	List() ([]proposal.Proposal, error)
	// Numbers returns the pool numbers currently in use.
	Numbers() ([]int, error)
	// Load returns the proposal stored at number.
	Load(number int) (proposal.Proposal, error)
	// Add stores p under the lowest free number and returns that number.
	Add(p proposal.Proposal) (int, error)
	// Remove deletes the record at number.
	Remove(number int) error
}

// Archive holds distributed proposals.
type Archive interface {
	// Load returns the proposal with the given permanent id.
	Load(id int) (proposal.Proposal, error)
	// Dump stores p under p.ID. Existing records are never overwritten.
	Dump(p proposal.Proposal) error
	// MaxID returns the highest stored id; ok is false when empty.
	MaxID() (max int, ok bool, err error)
}
