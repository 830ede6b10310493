package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults failed validation: %v", err)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9090" {
		t.Errorf("listen address = %q, want default", cfg.Server.ListenAddress)
	}
	if cfg.Workflow.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", cfg.Workflow.MaxRetries)
	}
	if !cfg.Bureau.FallbackToSimulation {
		t.Error("bureau fallback should default to true")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
workflow:
  max_retries: 5
  step_timeout: 45s
fusion:
  approve_threshold: 0.8
store:
  backend: memory
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workflow.MaxRetries != 5 {
		t.Errorf("max retries = %d, want 5", cfg.Workflow.MaxRetries)
	}
	if cfg.Workflow.StepTimeout != 45*time.Second {
		t.Errorf("step timeout = %s, want 45s", cfg.Workflow.StepTimeout)
	}
	if cfg.Fusion.ApproveThreshold != 0.8 {
		t.Errorf("approve threshold = %v, want 0.8", cfg.Fusion.ApproveThreshold)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("store backend = %q, want memory", cfg.Store.Backend)
	}

	// Settings the file does not mention keep their defaults.
	if cfg.Workflow.RetryDelay != 2*time.Second {
		t.Errorf("retry delay = %s, want default 2s", cfg.Workflow.RetryDelay)
	}
	if cfg.Fusion.RejectThreshold != 0.4 {
		t.Errorf("reject threshold = %v, want default 0.4", cfg.Fusion.RejectThreshold)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
workflow:
  max_retries: 5
`)
	t.Setenv("MERIDIAN_WORKFLOW_MAX_RETRIES", "7")
	t.Setenv("MERIDIAN_FUSION_APPROVE_THRESHOLD", "0.75")
	t.Setenv("MERIDIAN_STORE_BACKEND", "memory")
	t.Setenv("MERIDIAN_BUREAU_FALLBACK", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workflow.MaxRetries != 7 {
		t.Errorf("max retries = %d, want env override 7", cfg.Workflow.MaxRetries)
	}
	if cfg.Fusion.ApproveThreshold != 0.75 {
		t.Errorf("approve threshold = %v, want 0.75", cfg.Fusion.ApproveThreshold)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("store backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Bureau.FallbackToSimulation {
		t.Error("bureau fallback should be disabled by env")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "{{{")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ListenAddress = "not-a-hostport"
	cfg.Workflow.StepTimeout = 0
	cfg.Fusion.ApproveThreshold = 0.3 // below reject threshold
	cfg.Store.Backend = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	msg := err.Error()
	for _, want := range []string{
		"server.listen_address",
		"workflow.step_timeout",
		"fusion.approve_threshold",
		"store.backend",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestValidate_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		approve float64
		reject  float64
		wantErr bool
	}{
		{"defaults", 0.7, 0.4, false},
		{"equal", 0.5, 0.5, true},
		{"inverted", 0.3, 0.6, true},
		{"approve above one", 1.2, 0.4, true},
		{"reject negative", 0.7, -0.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Fusion.ApproveThreshold = tt.approve
			cfg.Fusion.RejectThreshold = tt.reject
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Backends(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = "sqlite"
	cfg.Store.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("sqlite backend without a path should fail")
	}

	cfg = DefaultConfig()
	cfg.Audit.Backend = "memory"
	cfg.Audit.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory backend needs no path, got %v", err)
	}
}

func TestValidate_RulesPathMustExist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.Path = filepath.Join(t.TempDir(), "absent.yaml")
	if err := cfg.Validate(); err == nil {
		t.Error("expected inaccessible rules path to fail validation")
	}

	cfg.Rules.Path = writeConfig(t, "name: x\nrules: []")
	if err := cfg.Validate(); err != nil {
		t.Errorf("existing rules path should pass validation, got %v", err)
	}
}
