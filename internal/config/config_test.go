package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("DATAUTIL_FALLBACK_SCHEMA", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FallbackSchema != "dbc" {
		t.Errorf("Expected fallback schema 'dbc', got '%s'", cfg.FallbackSchema)
	}
	if cfg.DatabricksCatalog != "main" {
		t.Errorf("Expected databricks catalog 'main', got '%s'", cfg.DatabricksCatalog)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "fallback_schema: sales\nmax_depth: 3\nserver:\n  addr: \":9090\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DATAUTIL_FALLBACK_SCHEMA", "")
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FallbackSchema != "sales" {
		t.Errorf("Expected fallback schema 'sales', got '%s'", cfg.FallbackSchema)
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("Expected max depth 3, got %d", cfg.MaxDepth)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}

	t.Setenv("DATAUTIL_FALLBACK_SCHEMA", "finance")
	t.Setenv("DATAUTIL_MAX_DEPTH", "7")
	cfg, err = Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FallbackSchema != "finance" {
		t.Errorf("Expected env override 'finance', got '%s'", cfg.FallbackSchema)
	}
	if cfg.MaxDepth != 7 {
		t.Errorf("Expected max depth 7 from env, got %d", cfg.MaxDepth)
	}
}

func TestLoadAllowedOriginsFromEnv(t *testing.T) {
	t.Setenv("DATAUTIL_SERVER_ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("DATAUTIL_SERVER_ADDR", ":7070")
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Server.AllowedOrigins) != 2 ||
		cfg.Server.AllowedOrigins[0] != "http://a.example" ||
		cfg.Server.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("Expected two origins from env, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Expected server addr ':7070', got '%s'", cfg.Server.Addr)
	}
}

// Helper function to build a flag set shaped like the lineage and serve commands
func newTestFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-depth", 0, "")
	flags.String("addr", "", "")
	flags.String("log-level", "", "")
	flags.String("env-file", ".env", "")
	return flags
}

func TestLoadFlagsOverrideEnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "max_depth: 3\nlog_level: warn\nserver:\n  addr: \":9090\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATAUTIL_MAX_DEPTH", "5")

	flags := newTestFlags()
	if err := flags.Parse([]string{"--max-depth", "9", "--addr", ":6060", "--env-file", "other.env"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxDepth != 9 {
		t.Errorf("Expected max depth 9 from flag, got %d", cfg.MaxDepth)
	}
	if cfg.Server.Addr != ":6060" {
		t.Errorf("Expected server addr ':6060' from flag, got '%s'", cfg.Server.Addr)
	}
	// Unchanged flags keep the file value
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level 'warn' from file, got '%s'", cfg.LogLevel)
	}
}

func TestLoadUnchangedFlagsKeepEnv(t *testing.T) {
	t.Setenv("DATAUTIL_MAX_DEPTH", "5")
	flags := newTestFlags()
	if err := flags.Parse(nil); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxDepth != 5 {
		t.Errorf("Expected max depth 5 from env, got %d", cfg.MaxDepth)
	}
}

func TestLoadInvalidMaxDepth(t *testing.T) {
	t.Setenv("DATAUTIL_MAX_DEPTH", "deep")
	if _, err := Load("", nil); err == nil {
		t.Error("Expected error for non-numeric max depth")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}

	cfg.FallbackSchema = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation to fail with empty fallback schema")
	}

	cfg = Default()
	cfg.MaxDepth = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation to fail with negative max depth")
	}
}
