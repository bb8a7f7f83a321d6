package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/alexwilson/cardex/internal/config"
)

const testConfig = `
http:
  port: 8080
database:
  driver: mongo
  mongo:
    uri: mongodb://localhost:27017
`

func withConfigDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
}

func execute(t *testing.T, v *viper.Viper, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(v)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, viper.New(), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if info["version"] == "" {
		t.Errorf("info = %v", info)
	}
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"ingest", "run", "count", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not found", name)
		}
	}
	ingestCmd, _, _ := root.Find([]string{"ingest"})
	for _, flag := range []string{keyStartOffset, keyPageSize, keyMaxPages, keyUpstreamURL, keyMaxRetries, keyTimeout} {
		if ingestCmd.Flags().Lookup(flag) == nil {
			t.Errorf("ingest flag --%s missing", flag)
		}
	}
}

func TestEnvOverridesFlagDefaults(t *testing.T) {
	t.Setenv("CARDEX_LOADER_PAGE_SIZE", "250")
	t.Setenv("CARDEX_LOADER_START_OFFSET", "1200")

	v := viper.New()
	newRootCmd(v)
	if got := v.GetInt(keyPageSize); got != 250 {
		t.Errorf("page-size = %d, want 250", got)
	}
	if got := v.GetInt(keyStartOffset); got != 1200 {
		t.Errorf("start-offset = %d, want 1200", got)
	}
	if got := v.GetInt(keyMaxPages); got != 0 {
		t.Errorf("max-pages = %d, want default 0", got)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	withConfigDir(t)

	v := viper.New()
	root := newRootCmd(v)
	if err := root.PersistentFlags().Parse([]string{
		"--env", "unittest",
		"--driver", "postgres",
		"--postgres-dsn", "postgres://loader@db/cards",
		"--log-level", "warn",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres || cfg.Database.Postgres.DSN != "postgres://loader@db/cards" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	withConfigDir(t)

	v := viper.New()
	root := newRootCmd(v)
	if err := root.PersistentFlags().Parse([]string{"--env", "unittest", "--driver", "postgres"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := loadConfig(v); err == nil {
		t.Fatal("expected error for postgres without dsn")
	}
}

func TestIngest_RejectsMemoryDriver(t *testing.T) {
	withConfigDir(t)

	_, err := execute(t, viper.New(), "ingest", "--env", "unittest", "--driver", "memory")
	if err == nil || !strings.Contains(err.Error(), "memory driver") {
		t.Fatalf("expected memory driver error, got %v", err)
	}
}

func TestCount_InvalidFilter(t *testing.T) {
	withConfigDir(t)

	_, err := execute(t, viper.New(), "count", "--env", "unittest", "--filter", "level=seven")
	if err == nil || !strings.Contains(err.Error(), "level") {
		t.Fatalf("expected filter error, got %v", err)
	}
}
