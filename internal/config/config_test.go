// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName+"."+FileType)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(LoadOptions{Path: writeConfig(t, "")})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ContainerEngine != "" {
		t.Errorf("expected auto-detect engine by default, got %q", cfg.ContainerEngine)
	}
	if cfg.UI.Verbose {
		t.Error("expected verbose off by default")
	}
	if cfg.Liveness.MaxAttempts != defaultMaxAttempts {
		t.Errorf("expected default max attempts %d, got %d",
			defaultMaxAttempts, cfg.Liveness.MaxAttempts)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
container_engine = "podman"

[ui]
verbose = true

[policy]
extra_deny = ["deno"]
extra_allow = ["jq"]

[liveness]
max_attempts = 3
`)

	cfg, err := Load(LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ContainerEngine != "podman" {
		t.Errorf("expected podman, got %q", cfg.ContainerEngine)
	}
	if !cfg.UI.Verbose {
		t.Error("expected verbose on")
	}
	if len(cfg.Policy.ExtraDeny) != 1 || cfg.Policy.ExtraDeny[0] != "deno" {
		t.Errorf("unexpected extra_deny: %v", cfg.Policy.ExtraDeny)
	}
	if len(cfg.Policy.ExtraAllow) != 1 || cfg.Policy.ExtraAllow[0] != "jq" {
		t.Errorf("unexpected extra_allow: %v", cfg.Policy.ExtraAllow)
	}
	if cfg.Liveness.MaxAttempts != 3 {
		t.Errorf("expected 3 max attempts, got %d", cfg.Liveness.MaxAttempts)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	// t.Setenv forbids t.Parallel.
	t.Setenv("CORRAL_CONTAINER_ENGINE", "docker")

	cfg, err := Load(LoadOptions{Path: writeConfig(t, `container_engine = "podman"`)})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ContainerEngine != "docker" {
		t.Errorf("expected env to override file, got %q", cfg.ContainerEngine)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	t.Parallel()

	_, err := Load(LoadOptions{Path: writeConfig(t, `container_engine = "lxc"`)})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected errors.Is(err, ErrInvalidConfig), got %v", err)
	}
}

func TestLoadRejectsZeroAttempts(t *testing.T) {
	t.Parallel()

	_, err := Load(LoadOptions{Path: writeConfig(t, "[liveness]\nmax_attempts = 0\n")})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected errors.Is(err, ErrInvalidConfig), got %v", err)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", FileName+"."+FileType)
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() failed: %v", err)
	}

	cfg, err := Load(LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("written default config must load back: %v", err)
	}
	if cfg.Liveness.MaxAttempts != defaultMaxAttempts {
		t.Errorf("expected default max attempts, got %d", cfg.Liveness.MaxAttempts)
	}

	if err := WriteDefault(path); err == nil {
		t.Error("expected WriteDefault to refuse overwriting an existing file")
	}
}

func TestSetGlobalRestores(t *testing.T) {
	injected := &Config{ContainerEngine: "docker", Liveness: LivenessConfig{MaxAttempts: 1}}
	restore := SetGlobal(injected)

	if Global() != injected {
		t.Error("expected Global() to return the injected config")
	}

	restore()
	if Global() == injected {
		t.Error("expected restore to drop the injected config")
	}
}
