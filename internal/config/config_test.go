package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/dkoosis/qarun/internal/kv"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("NO_COLOR", "")
	return dir
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoad_ReturnsDefaults_When_NothingConfigured(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(afero.NewMemMapFs(), Flags{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalogue != DefaultCatalogue || cfg.Store != kv.KindFile || cfg.OutputDir != "." || cfg.Theme != "default" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DevMode || cfg.Debug {
		t.Fatal("dev mode and debug default to off")
	}
	if want := filepath.Join(dir, "qarun", "state.json"); cfg.StorePath != want {
		t.Fatalf("expected store path %q, got %q", want, cfg.StorePath)
	}
	if cfg.ConfigFile != "" {
		t.Fatalf("expected no config file, got %q", cfg.ConfigFile)
	}
	if cfg.TUI == nil || cfg.TUI.Colors.Primary == "" {
		t.Fatal("expected the default TUI theme")
	}
}

func TestLoad_ReadsLocalFile_When_Present(t *testing.T) {
	isolate(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, FileName, `
catalogue: cases.yaml
catalogue_key: mobile_application.customer_application
store: sqlite
dev_mode: true
tui:
  colors:
    primary: "#123456"
`)

	cfg, err := Load(fs, Flags{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigFile != FileName {
		t.Fatalf("expected local config, got %q", cfg.ConfigFile)
	}
	if cfg.Catalogue != "cases.yaml" || cfg.CatalogueKey != "mobile_application.customer_application" {
		t.Fatalf("unexpected catalogue settings: %+v", cfg)
	}
	if cfg.Store != kv.KindSQLite || !strings.HasSuffix(cfg.StorePath, "state.db") {
		t.Fatalf("expected sqlite store with default path, got %s %s", cfg.Store, cfg.StorePath)
	}
	if !cfg.DevMode || cfg.Sources["dev_mode"] != SourceFile {
		t.Fatalf("expected dev mode from file, got %v (%s)", cfg.DevMode, cfg.Sources["dev_mode"])
	}
	if cfg.TUI.Colors.Primary != "#123456" || cfg.TUI.Colors.Pass == "" {
		t.Fatalf("expected merged TUI theme, got %+v", cfg.TUI.Colors)
	}
}

func TestLoad_UsesXDGPath_When_LocalMissing(t *testing.T) {
	dir := isolate(t)
	fs := afero.NewMemMapFs()
	xdgPath := filepath.Join(dir, "qarun", FileName)
	writeFile(t, fs, xdgPath, "output_dir: /reports\n")

	cfg, err := Load(fs, Flags{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigFile != xdgPath || cfg.OutputDir != "/reports" {
		t.Fatalf("expected XDG config %q, got %q (%s)", xdgPath, cfg.ConfigFile, cfg.OutputDir)
	}
}

func TestLoad_AppliesPrecedence_When_AllSourcesSet(t *testing.T) {
	isolate(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, FileName, "store: memory\ntheme: orca\ndev_mode: false\noutput_dir: from-file\n")
	t.Setenv("QARUN_STORE", "sqlite")
	t.Setenv("QARUN_DEV_MODE", "true")
	t.Setenv("QARUN_OUTPUT_DIR", "from-env")

	cfg, err := Load(fs, Flags{Store: "file", OutputDir: "", DevMode: false, DevModeSet: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name   string
		got    string
		want   string
		source Source
	}{
		{"store", string(cfg.Store), "file", SourceFlag},
		{"output_dir", cfg.OutputDir, "from-env", SourceEnv},
		{"theme", cfg.Theme, "orca", SourceFile},
		{"catalogue", cfg.Catalogue, DefaultCatalogue, SourceDefault},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, tt.got)
		}
		if cfg.Sources[tt.name] != tt.source {
			t.Errorf("%s: expected source %s, got %s", tt.name, tt.source, cfg.Sources[tt.name])
		}
	}
	if cfg.DevMode || cfg.Sources["dev_mode"] != SourceFlag {
		t.Errorf("explicit --dev=false should win over env, got %v (%s)", cfg.DevMode, cfg.Sources["dev_mode"])
	}
}

func TestLoad_SelectsMonoTheme_When_NoColorSet(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")

	cfg, err := Load(afero.NewMemMapFs(), Flags{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.NoColor || cfg.Theme != "mono" || cfg.TUI.Colors.Primary != "" {
		t.Fatalf("expected mono theme, got %s %+v", cfg.Theme, cfg.TUI.Colors)
	}

	cfg, err = Load(afero.NewMemMapFs(), Flags{Theme: "orca"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "orca" {
		t.Fatalf("--theme should override NO_COLOR, got %s", cfg.Theme)
	}
}

func TestLoad_ReturnsError_When_InputInvalid(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		flags Flags
		want  string
	}{
		{name: "bad yaml", file: "store: [unterminated\n", want: "parsing config"},
		{name: "unknown store", flags: Flags{Store: "redis"}, want: "invalid store value"},
		{name: "missing explicit config", flags: Flags{ConfigPath: "/nope.yaml"}, want: "reading config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			fs := afero.NewMemMapFs()
			if tt.file != "" {
				writeFile(t, fs, FileName, tt.file)
			}
			_, err := Load(fs, tt.flags)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_RejectsMalformedEnvBool(t *testing.T) {
	isolate(t)
	t.Setenv("QARUN_DEBUG", "maybe")

	if _, err := Load(afero.NewMemMapFs(), Flags{}); err == nil {
		t.Fatal("expected an error for QARUN_DEBUG=maybe")
	}
}

func TestDefaultStorePath(t *testing.T) {
	if got := DefaultStorePath("/s", kv.KindMemory); got != "" {
		t.Errorf("memory store has no path, got %q", got)
	}
	if got := DefaultStorePath("/s", kv.KindSQLite); got != filepath.Join("/s", "state.db") {
		t.Errorf("unexpected sqlite path %q", got)
	}
}
