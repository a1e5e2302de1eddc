package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Addr    string        `split_words:"true" default:":8080"`
	Timeout time.Duration `split_words:"true" default:"5s"`
	Secret  string        `split_words:"true" required:"true"`
}

// Not parallel: mutates process environment and the package env path.
func TestNewReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("SAMPLE_SECRET=from-file\nSAMPLE_TIMEOUT=9s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		SetEnvFile("")
		os.Unsetenv("SAMPLE_SECRET")
		os.Unsetenv("SAMPLE_TIMEOUT")
	})

	SetEnvFile(path)
	cfg, err := New[sampleConfig]("SAMPLE")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Secret != "from-file" || cfg.Timeout != 9*time.Second || cfg.Addr != ":8080" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestNewMissingRequired(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile("")
	os.Unsetenv("OTHER_SECRET")

	if _, err := New[sampleConfig]("OTHER"); err == nil {
		t.Fatal("expected error for missing required field")
	}
}

func TestNewMissingEnvFile(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile(filepath.Join(t.TempDir(), "absent.env"))

	if _, err := New[sampleConfig]("SAMPLE"); err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}
