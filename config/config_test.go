package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillsenselab/wirekit/logger"
)

func validSettings(name, env string) Settings {
	return Settings{
		Name:        name,
		Environment: env,
		Logging:     logger.Config{Level: "info", Format: "json"},
	}
}

func TestSettingsApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := Settings{Name: "app"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := Settings{Name: "app", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("logging defaults applied", func(t *testing.T) {
		cfg := Settings{Name: "app"}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging level 'info', got %q", cfg.Logging.Level)
		}
		if cfg.Logging.Format != "console" {
			t.Errorf("expected logging format 'console', got %q", cfg.Logging.Format)
		}
	})
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Settings
		wantErr bool
		errMsg  string
	}{
		{"valid development", validSettings("app", "development"), false, ""},
		{"valid staging", validSettings("app", "staging"), false, ""},
		{"valid production", validSettings("app", "production"), false, ""},
		{"missing name", validSettings("", "production"), true, "name: is required"},
		{"invalid environment", validSettings("app", "sandbox"), true, "environment: must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSettingsValidateBadLogging(t *testing.T) {
	cfg := validSettings("app", "production")
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for bad logging level")
	}
	if !strings.Contains(err.Error(), "settings.logging") {
		t.Errorf("expected wrapped logging error, got %q", err.Error())
	}
}

func TestValidateStruct(t *testing.T) {
	type serverSection struct {
		ListenAddr string `mapstructure:"listen_addr" validate:"required"`
		Mode       string `mapstructure:"mode" validate:"omitempty,oneof=debug release"`
	}

	t.Run("passes with valid values", func(t *testing.T) {
		err := ValidateStruct(serverSection{ListenAddr: ":8080", Mode: "release"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("reports fields by mapstructure name", func(t *testing.T) {
		err := ValidateStruct(serverSection{Mode: "verbose"})
		if err == nil {
			t.Fatal("expected error")
		}

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
		if len(verr.Fields) != 2 {
			t.Fatalf("expected 2 field errors, got %d: %v", len(verr.Fields), verr.Fields)
		}
		if verr.Fields[0].Field != "listen_addr" || verr.Fields[0].Message != "is required" {
			t.Errorf("unexpected first field error: %+v", verr.Fields[0])
		}
		if verr.Fields[1].Field != "mode" || !strings.Contains(verr.Fields[1].Message, "must be one of") {
			t.Errorf("unexpected second field error: %+v", verr.Fields[1])
		}
	})
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: demo-app
environment: staging
version: "1.0.0"
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg Settings
	if err := Load("demo-app", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "demo-app" {
		t.Errorf("expected name 'demo-app', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: demo-app
environment: production
logging:
  level: info
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("DEMO_APP_LOGGING_LEVEL", "warn")

	var cfg Settings
	if err := Load("demo-app", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected env var to win, got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected prefixed env var to reach logging.level, got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(envPath, []byte("APP_TOKEN=s3cret\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	defer os.Unsetenv("APP_TOKEN")

	type tokenConfig struct {
		AppToken string `mapstructure:"app_token"`
	}

	var cfg tokenConfig
	err := Load("demo-app", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AppToken != "s3cret" {
		t.Errorf("expected token from .env, got %q", cfg.AppToken)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Settings
	// With no config file found, Load should still succeed (empty config).
	err := Load("nonexistent-app", &cfg,
		WithConfigFile("/nonexistent/path.yml"),
		WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected Load to succeed with missing files, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./configs/my-app.yaml": true,
		"./my-app.yaml":         true,
		"./.env.my-app":         true,
		"./.env":                true,
	}}
	resolver := &Resolver{FileSystem: fs}

	files := resolver.ResolveFiles("my-app", LoaderConfig{})
	if files.ConfigFile != "./configs/my-app.yaml" {
		t.Errorf("expected ./configs to win, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env.my-app" {
		t.Errorf("expected app-specific .env to win, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./configs/my-app.yaml": true,
	}}
	resolver := &Resolver{FileSystem: fs}

	files := resolver.ResolveFiles("my-app", LoaderConfig{
		ConfigFile: "/etc/my-app/config.yml",
		EnvFile:    "/etc/my-app/.env",
	})
	if files.ConfigFile != "/etc/my-app/config.yml" {
		t.Errorf("expected explicit config path, got %q", files.ConfigFile)
	}
	if files.EnvFile != "/etc/my-app/.env" {
		t.Errorf("expected explicit env path, got %q", files.EnvFile)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig

	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}

func TestEnvPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"demo-app", "DEMO_APP"},
		{"wirekit", "WIREKIT"},
		{"svc.v2", "SVC_V2"},
	}
	for _, tc := range tests {
		if got := envPrefix(tc.in); got != tc.want {
			t.Errorf("envPrefix(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("LOGGING_NO_COLOR")

	want := map[string]bool{
		"logging_no_color": false,
		"logging.no.color": false,
		"logging.no_color": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}

	single := envKeyVariants("DEBUG")
	if len(single) != 1 || single[0] != "debug" {
		t.Errorf("expected single lowercase variant, got %v", single)
	}
}
