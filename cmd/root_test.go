package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	configx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/config"
	"github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger/autoload"
)

// Not parallel: mutates process environment and the global logger.
func TestApplyEnvFileReloadsLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=error\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		configx.SetEnvFile("")
		autoload.Load()
	})

	applyEnvFile(path)
	if got := log.Logger.GetLevel(); got != zerolog.ErrorLevel {
		t.Fatalf("logger level = %v, want error", got)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	if !names["serve"] || !names["ask"] {
		t.Fatalf("commands = %v, want serve and ask", names)
	}
	if rootCmd.PersistentFlags().Lookup("env") == nil {
		t.Fatal("missing --env flag")
	}
}
