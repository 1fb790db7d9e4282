package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.Numbering() != NumberingSequential {
		t.Fatalf("expected default numbering %q, got %q", NumberingSequential, c.Numbering())
	}
	if c.BucketDepth() != 1 {
		t.Fatalf("expected bucket depth 1, got %d", c.BucketDepth())
	}
	if c.PoolDir() != filepath.Join(projectDir, "pool") {
		t.Fatalf("unexpected pool dir %s", c.PoolDir())
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	stateDir := filepath.Join(projectDir, StateDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
numbering: " Fixed "
bucket_depth: 2
seed_id: 1200
dirs:
  pool: data/pool
  proposals: /srv/archive
`)
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Numbering() != NumberingFixed {
		t.Fatalf("numbering not normalized: %q", c.Numbering())
	}
	if c.BucketDepth() != 2 || c.SeedID() != 1200 {
		t.Fatalf("unexpected depth/seed: %d/%d", c.BucketDepth(), c.SeedID())
	}
	if c.PoolDir() != filepath.Join(projectDir, "data", "pool") {
		t.Fatalf("expected pool path to be resolved, got %s", c.PoolDir())
	}
	if c.ProposalsDir() != "/srv/archive" {
		t.Fatalf("absolute archive path changed: %s", c.ProposalsDir())
	}
	if c.ReportsDir() != filepath.Join(projectDir, "reports") {
		t.Fatalf("reports dir default not applied: %s", c.ReportsDir())
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	cases := map[string]string{
		"numbering":  "numbering: random\n",
		"depth":      "bucket_depth: 9\n",
		"seed":       "seed_id: -4\n",
		"dup dirs":   "dirs:\n  pool: same\n  reports: same\n",
		"bad syntax": "version: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			stateDir := filepath.Join(projectDir, StateDir)
			if err := os.MkdirAll(stateDir, 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestInitDirCreatesLayoutAndKeepsExistingConfig(t *testing.T) {
	projectDir := t.TempDir()
	c, err := InitDir(projectDir)
	if err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	for _, dir := range []string{c.PoolDir(), c.ProposalsDir(), c.ReportsDir(), c.LogsDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if err := c.SetSeed(1201); err != nil {
		t.Fatalf("SetSeed: %v", err)
	}
	again, err := InitDir(projectDir)
	if err != nil {
		t.Fatalf("second InitDir: %v", err)
	}
	if again.SeedID() != 1201 {
		t.Fatalf("re-init dropped the seed: %d", again.SeedID())
	}
}

func TestSetSeedKeepsCommentsAndOtherSettings(t *testing.T) {
	projectDir := t.TempDir()
	c, err := InitDir(projectDir)
	if err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	path := c.ProjectConfigPath()
	edited := strings.Replace(defaultProjectConfigYAML, "bucket_depth: 1", "bucket_depth: 2 # deeper archive", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	if c, err = NewConfig(projectDir); err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if err := c.SetSeed(1201); err != nil {
		t.Fatalf("SetSeed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{
		"# First id to hand out while the archive is still empty.",
		"#   fixed      - pooled proposals already carry an id",
		"seed_id: 1201",
		"bucket_depth: 2 # deeper archive",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("config missing %q:\n%s", want, body)
		}
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.SeedID() != 1201 || reloaded.BucketDepth() != 2 {
		t.Fatalf("reloaded seed=%d depth=%d", reloaded.SeedID(), reloaded.BucketDepth())
	}
}

func TestSetSeedRejectsNonPositive(t *testing.T) {
	c, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetSeed(0); err == nil {
		t.Fatalf("expected error for zero seed")
	}
}
