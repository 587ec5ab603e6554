package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeLoadsDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyDatabasePath); got != "" {
		t.Fatalf("expected default %s to be empty, got %q", KeyDatabasePath, got)
	}
	if !GetBool(KeyAutoReload) {
		t.Fatalf("expected default %s to be true", KeyAutoReload)
	}
	if got := GetInt(KeyMaxDescriptionLines); got != DefaultMaxDescriptionLines {
		t.Fatalf("expected default %s to be %d, got %d", KeyMaxDescriptionLines, DefaultMaxDescriptionLines, got)
	}
	left := GetStringSlice(KeyLeftPanelContents)
	if len(left) != 2 || left[0] != "priority" || left[1] != "category" {
		t.Fatalf("unexpected default left panel contents: %v", left)
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "repo")
	mustMkdir(t, filepath.Join(projectDir, ".taskdeck"))
	projectCfg := filepath.Join(projectDir, ".taskdeck", "config.yaml")
	writeFile(t, projectCfg, `
database:
  path: /project/tasks.db
rows:
  max-description-lines: 6
`)

	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, `
database:
  path: /user/tasks.db
rows:
  max-description-lines: 2
`)

	if err := Initialize(
		WithWorkingDir(projectDir),
		WithUserConfig(userCfg),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyDatabasePath); got != "/project/tasks.db" {
		t.Fatalf("expected project database path, got %q", got)
	}
	if got := GetInt(KeyMaxDescriptionLines); got != 6 {
		t.Fatalf("expected project config to win for %s, got %d", KeyMaxDescriptionLines, got)
	}
}

func TestEnvironmentAndOverridesPrecedence(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "repo")
	mustMkdir(t, filepath.Join(projectDir, ".taskdeck"))
	projectCfg := filepath.Join(projectDir, ".taskdeck", "config.yaml")
	writeFile(t, projectCfg, `
database:
  path: /project/tasks.db
auto-reload: true
`)

	t.Setenv("TD_DATABASE_PATH", "/env/tasks.db")
	t.Setenv("TD_AUTO_RELOAD", "false")

	if err := Initialize(
		WithWorkingDir(projectDir),
		WithProjectConfig(projectCfg),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyDatabasePath); got != "/env/tasks.db" {
		t.Fatalf("expected env override for %s, got %q", KeyDatabasePath, got)
	}
	if GetBool(KeyAutoReload) {
		t.Fatalf("expected environment variable to override %s", KeyAutoReload)
	}

	overrides := map[string]any{
		KeyDatabasePath: "/flag/tasks.db",
	}
	if err := ApplyOverrides(overrides); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}

	if got := GetString(KeyDatabasePath); got != "/flag/tasks.db" {
		t.Fatalf("expected CLI override to win for %s, got %q", KeyDatabasePath, got)
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
