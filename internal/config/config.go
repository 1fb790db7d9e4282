// internal/config/config.go
//
// This package handles configuration and the directory layout of a
// promotor project. A project root holds the pool, the archive of
// distributed proposals, the reports, and a .promotor/ folder with the
// config file and logs.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/promotor/internal/ids"
)

const (
	// StateDir is the name of the directory we keep tool state in
	StateDir = ".promotor"

	// NumberingSequential assigns fresh ids after the highest archived id.
	NumberingSequential = "sequential"
	// NumberingFixed keeps ids already present on pooled proposals.
	NumberingFixed = "fixed"
)

const defaultProjectConfigYAML = `# promotor project configuration
version: 1

# How distributed proposals get their ids:
#   sequential - next id after the highest archived one
#   fixed      - pooled proposals already carry an id; the selector matches it
numbering: sequential

# Number of bucket directory levels under the archive (1: 1xxx/, 2: 1xxx/12xx/)
bucket_depth: 1

# First id to hand out while the archive is still empty. 0 means unset.
seed_id: 0

dirs:
  pool: pool
  proposals: proposals
  reports: reports
`

// DirsConfig names the data directories relative to the project root.
type DirsConfig struct {
	Pool      string `yaml:"pool"`
	Proposals string `yaml:"proposals"`
	Reports   string `yaml:"reports"`
}

// ProjectConfig models .promotor/config.yaml.
type ProjectConfig struct {
	Version     int        `yaml:"version"`
	Numbering   string     `yaml:"numbering"`
	BucketDepth int        `yaml:"bucket_depth"`
	SeedID      int        `yaml:"seed_id"`
	Dirs        DirsConfig `yaml:"dirs"`
}

// Config holds the runtime configuration for a project.
type Config struct {
	// ProjectDir is the project root the pool and archive live in
	ProjectDir string

	// StateProjectDir is ProjectDir/.promotor
	StateProjectDir string

	Project ProjectConfig
}

// InitDir creates the project layout under projectDir and writes a default
// config file when none exists.
//
// Structure created:
// pool/         <- pending proposals, one <n>.yml each
// proposals/    <- distributed proposals, bucketed by id
// reports/      <- generated reports
// .promotor/
// ├── config.yaml
// └── logs/
func InitDir(projectDir string) (*Config, error) {
	stateDir := filepath.Join(projectDir, StateDir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return nil, err
	}
	if err := ensureProjectConfig(filepath.Join(stateDir, "config.yaml")); err != nil {
		return nil, err
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{cfg.PoolDir(), cfg.ProposalsDir(), cfg.ReportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// NewConfig loads the configuration for projectDir. A missing config file
// yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		StateProjectDir: filepath.Join(projectDir, StateDir),
		Project:         defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PoolDir returns the path to the pool directory
func (c *Config) PoolDir() string {
	return c.resolve(c.Project.Dirs.Pool)
}

// ProposalsDir returns the path to the archive of distributed proposals
func (c *Config) ProposalsDir() string {
	return c.resolve(c.Project.Dirs.Proposals)
}

// ReportsDir returns the path reports are written to
func (c *Config) ReportsDir() string {
	return c.resolve(c.Project.Dirs.Reports)
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateProjectDir, "logs")
}

// LedgerPath returns the distribution ledger file.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.StateProjectDir, "distributions.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateProjectDir, "config.yaml")
}

// Numbering returns the configured numbering mode.
func (c *Config) Numbering() string {
	return c.Project.Numbering
}

// BucketDepth returns the archive bucket depth.
func (c *Config) BucketDepth() int {
	return c.Project.BucketDepth
}

// SeedID returns the id used while the archive is empty; 0 when unset.
func (c *Config) SeedID() int {
	return c.Project.SeedID
}

// SetSeed records the first id to hand out and persists it.
func (c *Config) SetSeed(id int) error {
	if id <= 0 {
		return fmt.Errorf("config: seed id must be positive, got %d", id)
	}
	c.Project.SeedID = id
	return c.saveProjectConfig()
}

func (c *Config) resolve(dir string) string {
	return resolvePath(c.ProjectDir, dir)
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

// saveProjectConfig writes the current settings back into config.yaml,
// updating values in place so comments in the existing file survive.
func (c *Config) saveProjectConfig() error {
	var fresh yaml.Node
	if err := fresh.Encode(c.Project); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(c.StateProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure %s: %w", c.StateProjectDir, err)
	}
	path := c.ProjectConfigPath()
	out := &fresh
	if data, err := os.ReadFile(path); err == nil {
		var doc yaml.Node
		if yaml.Unmarshal(data, &doc) == nil && len(doc.Content) == 1 && doc.Content[0].Kind == yaml.MappingNode {
			mergeNode(doc.Content[0], &fresh)
			out = &doc
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// mergeNode copies the values of src into dst, keeping dst's comments and
// any keys src does not know about.
func mergeNode(dst, src *yaml.Node) {
	if dst.Kind != yaml.MappingNode || src.Kind != yaml.MappingNode {
		head, line, foot := dst.HeadComment, dst.LineComment, dst.FootComment
		*dst = *src
		dst.HeadComment, dst.LineComment, dst.FootComment = head, line, foot
		return
	}
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, value := src.Content[i], src.Content[i+1]
		if j := mappingIndex(dst, key.Value); j >= 0 {
			mergeNode(dst.Content[j+1], value)
			continue
		}
		dst.Content = append(dst.Content, key, value)
	}
}

func mappingIndex(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:     1,
		Numbering:   NumberingSequential,
		BucketDepth: 1,
		Dirs: DirsConfig{
			Pool:      "pool",
			Proposals: "proposals",
			Reports:   "reports",
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	defaults := defaultProjectConfig()
	if pc.Version == 0 {
		pc.Version = defaults.Version
	}
	if strings.TrimSpace(pc.Numbering) == "" {
		pc.Numbering = defaults.Numbering
	}
	if pc.BucketDepth == 0 {
		pc.BucketDepth = defaults.BucketDepth
	}
	if strings.TrimSpace(pc.Dirs.Pool) == "" {
		pc.Dirs.Pool = defaults.Dirs.Pool
	}
	if strings.TrimSpace(pc.Dirs.Proposals) == "" {
		pc.Dirs.Proposals = defaults.Dirs.Proposals
	}
	if strings.TrimSpace(pc.Dirs.Reports) == "" {
		pc.Dirs.Reports = defaults.Dirs.Reports
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Numbering = strings.ToLower(strings.TrimSpace(pc.Numbering))
	pc.Dirs.Pool = strings.TrimSpace(pc.Dirs.Pool)
	pc.Dirs.Proposals = strings.TrimSpace(pc.Dirs.Proposals)
	pc.Dirs.Reports = strings.TrimSpace(pc.Dirs.Reports)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Numbering {
	case NumberingSequential, NumberingFixed:
	default:
		return fmt.Errorf("numbering must be '%s' or '%s'", NumberingSequential, NumberingFixed)
	}
	if pc.BucketDepth < 1 || pc.BucketDepth > ids.MaxDepth {
		return fmt.Errorf("bucket_depth must be between 1 and %d", ids.MaxDepth)
	}
	if pc.SeedID < 0 {
		return fmt.Errorf("seed_id must not be negative")
	}
	dirs := map[string]string{
		"pool":      filepath.Clean(pc.Dirs.Pool),
		"proposals": filepath.Clean(pc.Dirs.Proposals),
		"reports":   filepath.Clean(pc.Dirs.Reports),
	}
	seen := map[string]string{}
	for _, name := range []string{"pool", "proposals", "reports"} {
		if other, dup := seen[dirs[name]]; dup {
			return fmt.Errorf("dirs.%s and dirs.%s must differ", other, name)
		}
		seen[dirs[name]] = name
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
