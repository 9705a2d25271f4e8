package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return path
	}

	validConfigFile := write("valid.yaml", `
log_level: debug
output: json
health:
  timeout_seconds: 2
`)
	partialConfigFile := write("partial.yaml", "output: yaml\n")
	invalidConfigFile := write("invalid.yaml", "output: [json\n")
	badOutputFile := write("bad_output.yaml", "output: xml\n")
	negativeTimeoutFile := write("negative.yaml", "health:\n  timeout_seconds: -1\n")

	tests := []struct {
		name       string
		configPath string
		wantErr    bool
		want       *AppConfig
	}{
		{
			name:       "Valid config file",
			configPath: validConfigFile,
			want:       &AppConfig{LogLevel: "debug", Output: OutputJSON, Health: HealthConfig{TimeoutSeconds: 2}},
		},
		{
			name:       "Defaults fill missing keys",
			configPath: partialConfigFile,
			want:       &AppConfig{LogLevel: "info", Output: OutputYAML, Health: HealthConfig{TimeoutSeconds: 5}},
		},
		{
			name:       "Invalid YAML",
			configPath: invalidConfigFile,
			wantErr:    true,
		},
		{
			name:       "Unsupported output",
			configPath: badOutputFile,
			wantErr:    true,
		},
		{
			name:       "Negative timeout",
			configPath: negativeTimeoutFile,
			wantErr:    true,
		},
		{
			name:       "Explicit path that does not exist",
			configPath: filepath.Join(tmpDir, "missing.yaml"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadConfig(tt.configPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigDefaultPathMissing(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	defer os.Chdir(wd)

	got, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
	if got.Health.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", got.Health.Timeout())
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	want := &AppConfig{LogLevel: "warn", Output: OutputText, Health: HealthConfig{TimeoutSeconds: 9}}
	if err := SaveConfig(want, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
