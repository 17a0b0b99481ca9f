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
    port: 7983
    client_id: "test-client"
  qos: 1
scheduler:
  poll_interval: 15
api:
  host: "0.0.0.0"
  port: 8080
  page_size: 25
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
	if cfg.MQTT.Broker.Port != 7983 {
		t.Errorf("MQTT.Broker.Port = %d, want %d", cfg.MQTT.Broker.Port, 7983)
	}
	if cfg.Scheduler.PollInterval != 15 {
		t.Errorf("Scheduler.PollInterval = %d, want %d", cfg.Scheduler.PollInterval, 15)
	}
	if cfg.API.PageSize != 25 {
		t.Errorf("API.PageSize = %d, want %d", cfg.API.PageSize, 25)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, "mqtt:\n  broker:\n    host: localhost\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scheduler.PollInterval != 30 {
		t.Errorf("Scheduler.PollInterval = %d, want default 30", cfg.Scheduler.PollInterval)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.PageSize != 20 {
		t.Errorf("API.PageSize = %d, want default 20", cfg.API.PageSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ACSCONTROL_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("ACSCONTROL_MQTT_HOST", "env-broker")
	t.Setenv("ACSCONTROL_SCHEDULER_POLL_INTERVAL", "7")

	cfg, err := Load(writeTestConfig(t, "database:\n  path: /tmp/file.db\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.Scheduler.PollInterval != 7 {
		t.Errorf("Scheduler.PollInterval = %d, want env override 7", cfg.Scheduler.PollInterval)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"invalid qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"invalid broker port", func(c *Config) { c.MQTT.Broker.Port = 0 }},
		{"zero poll interval", func(c *Config) { c.Scheduler.PollInterval = 0 }},
		{"invalid page size", func(c *Config) { c.API.PageSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() expected error, got nil")
			}
		})
	}
}

func TestGetPollInterval(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scheduler.PollInterval = 45

	if got := cfg.Scheduler.GetPollInterval(); got != 45*time.Second {
		t.Errorf("GetPollInterval() = %v, want %v", got, 45*time.Second)
	}
}
