package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kingrea/promotor/internal/ids"
	"github.com/kingrea/promotor/internal/proposal"
)

const recordExt = ".yml"

// FilePool stores one YAML document per pooled proposal as <dir>/<n>.yml.
type FilePool struct {
	dir string
}

// NewFilePool returns a pool rooted at dir.
func NewFilePool(dir string) *FilePool {
	return &FilePool{dir: filepath.Clean(dir)}
}

// Dir returns the directory backing the pool.
func (p *FilePool) Dir() string {
	return p.dir
}

// Path returns the file that holds the record for number.
func (p *FilePool) Path(number int) string {
	return filepath.Join(p.dir, strconv.Itoa(number)+recordExt)
}

// Numbers lists the pool numbers present on disk. Files that are not
// <n>.yml are ignored.
func (p *FilePool) Numbers() ([]int, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConsistencyError{Op: "list", Path: p.dir, Err: fmt.Errorf("pool directory missing (run `promotor init`): %w", err)}
		}
		return nil, fmt.Errorf("store: read %s: %w", p.dir, err)
	}
	var numbers []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if n, ok := recordKey(entry.Name(), strconv.Itoa); ok {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

// List loads every pooled proposal ordered by number.
func (p *FilePool) List() ([]proposal.Proposal, error) {
	numbers, err := p.Numbers()
	if err != nil {
		return nil, err
	}
	out := make([]proposal.Proposal, 0, len(numbers))
	for _, n := range numbers {
		prop, err := p.Load(n)
		if err != nil {
			return nil, err
		}
		out = append(out, prop)
	}
	return out, nil
}

// Load reads the proposal at number.
func (p *FilePool) Load(number int) (proposal.Proposal, error) {
	prop, err := readRecord("load", p.Path(number))
	if err != nil {
		return proposal.Proposal{}, err
	}
	prop.Number = number
	return prop, nil
}

// Add writes prop under the lowest unused number.
func (p *FilePool) Add(prop proposal.Proposal) (int, error) {
	numbers, err := p.Numbers()
	if err != nil {
		return 0, err
	}
	number := ids.FirstMissing(numbers)
	if err := writeRecord("add", p.Path(number), prop); err != nil {
		return 0, err
	}
	return number, nil
}

// Remove deletes the record at number.
func (p *FilePool) Remove(number int) error {
	path := p.Path(number)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConsistencyError{Op: "remove", Path: path, Err: ErrNotFound}
		}
		return fmt.Errorf("store: remove %s: %w", path, err)
	}
	return nil
}

// FileArchive stores distributed proposals under bucket directories derived
// from their id, e.g. <dir>/1xxx/1234.yml at depth 1.
type FileArchive struct {
	dir   string
	depth int
}

// NewFileArchive returns an archive rooted at dir using depth bucket levels.
func NewFileArchive(dir string, depth int) *FileArchive {
	return &FileArchive{dir: filepath.Clean(dir), depth: depth}
}

// Path returns the file that holds the record for id.
func (a *FileArchive) Path(id int) string {
	parts := append([]string{a.dir}, ids.BucketOf(id, a.depth)...)
	parts = append(parts, ids.Format(id)+recordExt)
	return filepath.Join(parts...)
}

// Load reads the proposal with the given id.
func (a *FileArchive) Load(id int) (proposal.Proposal, error) {
	return readRecord("load", a.Path(id))
}

// Dump writes prop at its bucket path, creating bucket directories as
// needed. An existing record is reported, never replaced.
func (a *FileArchive) Dump(prop proposal.Proposal) error {
	if !prop.Distributed() {
		return fmt.Errorf("store: cannot archive %q without a permanent id", prop.Name)
	}
	path := a.Path(prop.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: ensure %s: %w", filepath.Dir(path), err)
	}
	return writeRecord("dump", path, prop)
}

// MaxID scans the archive tree for the highest id. Only bucket
// directories are entered, and a record counts only when its id maps to
// the buckets it sits in.
func (a *FileArchive) MaxID() (int, bool, error) {
	if _, err := os.Stat(a.dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, &ConsistencyError{Op: "scan", Path: a.dir, Err: fmt.Errorf("archive directory missing (run `promotor init`): %w", err)}
		}
		return 0, false, fmt.Errorf("store: stat %s: %w", a.dir, err)
	}
	highest, found := 0, false
	err := filepath.WalkDir(a.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(a.dir, path)
		if err != nil || rel == "." {
			return err
		}
		segments := strings.Split(filepath.ToSlash(rel), "/")
		if d.IsDir() {
			level := len(segments)
			_, masked, ok := ids.ParseBucket(d.Name())
			if !ok || level > ids.MaxDepth || masked != ids.Width-level {
				return filepath.SkipDir
			}
			return nil
		}
		id, ok := recordKey(d.Name(), ids.Format)
		if !ok || len(segments) < 2 {
			return nil
		}
		buckets := segments[:len(segments)-1]
		if strings.Join(ids.BucketOf(id, len(buckets)), "/") != strings.Join(buckets, "/") {
			return nil
		}
		if !found || id > highest {
			highest, found = id, true
		}
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("store: scan %s: %w", a.dir, err)
	}
	return highest, found, nil
}

// recordKey parses a record file name, accepting only the spelling that
// format gives for the parsed number.
func recordKey(name string, format func(int) string) (int, bool) {
	if !strings.HasSuffix(name, recordExt) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(name, recordExt))
	if err != nil || n < 0 || format(n)+recordExt != name {
		return 0, false
	}
	return n, true
}

func readRecord(op, path string) (proposal.Proposal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return proposal.Proposal{}, &ConsistencyError{Op: op, Path: path, Err: ErrNotFound}
		}
		return proposal.Proposal{}, fmt.Errorf("store: read %s: %w", path, err)
	}
	prop, err := proposal.Decode(data)
	if err != nil {
		return proposal.Proposal{}, &ConsistencyError{Op: op, Path: path, Err: err}
	}
	return prop, nil
}

func writeRecord(op, path string, prop proposal.Proposal) error {
	data, err := proposal.Encode(prop)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &ConsistencyError{Op: op, Path: path, Err: ErrExists}
		}
		return fmt.Errorf("store: create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", path, err)
	}
	return nil
}
