package global

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrInit_CreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	store := NewConfigStore(dir)

	cfg, err := store.LoadOrInit()
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if cfg.ListenPort != 4680 {
		t.Fatalf("expected default listen port, got %d", cfg.ListenPort)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("expected config.toml to be written: %v", err)
	}
}

func TestSaveAndReload_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	store := NewConfigStore(dir)

	in := GlobalConfig{
		ListenPort: 9090,
		ServerURL:  " http://127.0.0.1:9090 ",
		OpenAI:     OpenAISettings{Endpoint: "https://openrouter.ai/api/v1", Model: "gpt-4o-mini"},
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.LoadOrInit()
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if out.ListenPort != 9090 {
		t.Fatalf("expected 9090, got %d", out.ListenPort)
	}
	if out.ServerURL != "http://127.0.0.1:9090" {
		t.Fatalf("expected trimmed server url, got %q", out.ServerURL)
	}
	if out.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", out.OpenAI.Model)
	}
}

func TestLoadOrInit_RejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("listen_port = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfigStore(dir).LoadOrInit(); err == nil {
		t.Fatal("expected error for malformed toml")
	}
}

func TestDefaultConfigDir_Override(t *testing.T) {
	t.Setenv("TASKCHAT_CONFIG_DIR", "/tmp/taskchat-test")
	dir, err := DefaultConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/taskchat-test" {
		t.Fatalf("expected override dir, got %q", dir)
	}

	t.Setenv("TASKCHAT_CONFIG_DIR", "")
	dir, err = DefaultConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(dir, ".taskchat") {
		t.Fatalf("expected ~/.taskchat, got %q", dir)
	}
}
