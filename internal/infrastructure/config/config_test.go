package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
device:
  bin_id: "bin-test"
  mode: "AUTH"
  threshold_cm: 40
  capacity_cm: 150
`
	cfg, err := Load(writeTestConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.Device.BinID != "bin-test" {
		t.Errorf("Device.BinID = %q, want %q", cfg.Device.BinID, "bin-test")
	}
	if cfg.Device.Mode != "AUTH" {
		t.Errorf("Device.Mode = %q, want %q", cfg.Device.Mode, "AUTH")
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	// Minimal config - everything else should come from defaults.
	content := `
database:
  path: "/tmp/test.db"
`
	cfg, err := Load(writeTestConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Device.Debounce != 2*time.Second {
		t.Errorf("Device.Debounce = %v, want 2s", cfg.Device.Debounce)
	}
	if cfg.Device.AutoClose != 10*time.Second {
		t.Errorf("Device.AutoClose = %v, want 10s", cfg.Device.AutoClose)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeTestConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "empty database path",
			content: `
database:
  path: ""
`,
		},
		{
			name: "invalid qos",
			content: `
database:
  path: "/tmp/test.db"
mqtt:
  qos: 3
`,
		},
		{
			name: "invalid device mode",
			content: `
database:
  path: "/tmp/test.db"
device:
  mode: "MANUAL"
`,
		},
		{
			name: "zero capacity",
			content: `
database:
  path: "/tmp/test.db"
device:
  capacity_cm: 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTestConfig(t, tt.content))
			if err == nil {
				t.Error("Load() expected validation error, got nil")
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "from-file"
`
	t.Setenv("SMARTBIN_MQTT_HOST", "from-env")
	t.Setenv("SMARTBIN_DEVICE_BIN_ID", "bin-env")

	cfg, err := Load(writeTestConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "from-env")
	}
	if cfg.Device.BinID != "bin-env" {
		t.Errorf("Device.BinID = %q, want env override %q", cfg.Device.BinID, "bin-env")
	}
}

func TestTimeoutHelpers(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.API.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.API.GetWriteTimeout(); got != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", got)
	}
	if got := cfg.API.GetIdleTimeout(); got != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", got)
	}
}
