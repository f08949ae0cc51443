package config

import (
	"strings"
	"testing"
	"time"
)

// envMap adapts a map to LookupFunc.
func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), ":8080")
	}
	if cfg.Upload.MaxPayloadSize != 10*1024*1024 {
		t.Errorf("Upload.MaxPayloadSize = %d, want %d", cfg.Upload.MaxPayloadSize, 10*1024*1024)
	}
	if cfg.Upload.MaxConcurrent != 16 {
		t.Errorf("Upload.MaxConcurrent = %d, want 16", cfg.Upload.MaxConcurrent)
	}
	if cfg.Upload.Timeout != 2*time.Minute {
		t.Errorf("Upload.Timeout = %v, want 2m", cfg.Upload.Timeout)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if !cfg.Rate.Enabled {
		t.Error("Rate.Enabled = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"HTTP_PORT":               "9090",
		"HTTP_HOST":               "127.0.0.1",
		"UPLOAD_MAX_PAYLOAD_SIZE": "2048",
		"UPLOAD_MAX_WAIT_TIME":    "250ms",
		"CORS_ALLOWED_ORIGINS":    "https://a.example, https://b.example",
		"LOG_LEVEL":               "debug",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "127.0.0.1:9090")
	}
	if cfg.Upload.MaxPayloadSize != 2048 {
		t.Errorf("Upload.MaxPayloadSize = %d, want 2048", cfg.Upload.MaxPayloadSize)
	}
	if cfg.Upload.MaxWaitTime != 250*time.Millisecond {
		t.Errorf("Upload.MaxWaitTime = %v, want 250ms", cfg.Upload.MaxWaitTime)
	}
	if got := cfg.Security.CORSOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"SERVER_PORT": "7070"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}

	cfg, err = LoadFrom(envMap(map[string]string{"SERVER_PORT": "7070", "HTTP_PORT": "6060"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("primary var should win: Server.Port = %d, want 6060", cfg.Server.Port)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "non-numeric port", env: map[string]string{"HTTP_PORT": "eighty"}, wantErr: "invalid integer"},
		{name: "bad duration", env: map[string]string{"UPLOAD_TIMEOUT": "soon"}, wantErr: "invalid duration"},
		{name: "bad bool", env: map[string]string{"RATE_LIMIT_ENABLED": "maybe"}, wantErr: "invalid boolean"},
		{name: "port out of range", env: map[string]string{"HTTP_PORT": "70000"}, wantErr: "HTTP_PORT"},
		{name: "zero payload size", env: map[string]string{"UPLOAD_MAX_PAYLOAD_SIZE": "0"}, wantErr: "UPLOAD_MAX_PAYLOAD_SIZE"},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "LOG_LEVEL"},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envMap(tt.env))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Server.Port = 0
	cfg.Upload.MaxConcurrent = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"HTTP_PORT", "UPLOAD_MAX_CONCURRENT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestConfig_String(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	s := cfg.String()
	if !strings.Contains(s, `Addr: ":8080"`) || !strings.Contains(s, "MaxPayloadSize: 10485760") {
		t.Errorf("String() = %s", s)
	}
}
