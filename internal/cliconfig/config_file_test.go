package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Backend:      "redis",
				DataDir:      "/var/lib/cart",
				RedisURL:     "redis://cache:6379/1",
				Key:          "shop:cart",
				ListenAddr:   ":9090",
				LogLevel:     "debug",
				WriteRetries: 5,
				RetryInitial: "100ms",
				RetryMax:     "5s",
				Watch:        &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Backend:      "redis",
				DataDir:      "/var/lib/cart",
				RedisURL:     "redis://cache:6379/1",
				Key:          "shop:cart",
				ListenAddr:   ":9090",
				LogLevel:     "debug",
				WriteRetries: 5,
				RetryInitial: 100 * time.Millisecond,
				RetryMax:     5 * time.Second,
				Watch:        true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				DataDir: "/config/data",
				Key:     "config:key",
			},
			changed: map[string]bool{"data-dir": true},
			initial: Config{
				DataDir: "/flag/data",
				Key:     "flag:key",
			},
			expected: Config{
				DataDir: "/flag/data", // unchanged because flag was set
				Key:     "config:key",
			},
		},
		{
			name:       "empty values keep defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    Config{Backend: "file", WriteRetries: 3},
			expected:   Config{Backend: "file", WriteRetries: 3},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{RetryInitial: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
backend = "file"
data_dir = "/srv/cart"
key = "cart:products"
write_retries = 4
retry_initial = "25ms"
watch = true
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error: %v", err)
	}

	if fc.Backend != "file" {
		t.Errorf("Backend = %v, want file", fc.Backend)
	}
	if fc.DataDir != "/srv/cart" {
		t.Errorf("DataDir = %v, want /srv/cart", fc.DataDir)
	}
	if fc.WriteRetries != 4 {
		t.Errorf("WriteRetries = %v, want 4", fc.WriteRetries)
	}
	if fc.RetryInitial != "25ms" {
		t.Errorf("RetryInitial = %v, want 25ms", fc.RetryInitial)
	}
	if fc.Watch == nil || !*fc.Watch {
		t.Errorf("Watch = %v, want true", fc.Watch)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() should fail for a missing file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(configPath, []byte(`backend = "file`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadFileConfig(configPath); err == nil {
		t.Error("LoadFileConfig() should fail for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("home directory not available")
	}
	if !strings.HasSuffix(path, filepath.Join(".cartkeeper", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %v, want suffix .cartkeeper/config.toml", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "exists.toml")
	if err := os.WriteFile(existing, nil, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if !FileExists(existing) {
		t.Error("FileExists() = false for an existing file")
	}
	if FileExists(filepath.Join(tmpDir, "missing.toml")) {
		t.Error("FileExists() = true for a missing file")
	}
}
