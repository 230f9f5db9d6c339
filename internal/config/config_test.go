package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/reactor/internal/errors"
)

func errCode(err error) string {
	var re *errors.ReactorError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.MaxUpdateCount != DefaultMaxUpdateCount {
		t.Errorf("MaxUpdateCount = %d, want %d", cfg.MaxUpdateCount, DefaultMaxUpdateCount)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v, want info/console", cfg.Log)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Metrics.Addr != DefaultMetricsAddr {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, DefaultMetricsAddr)
	}
	if cfg.Demo.Items != DefaultDemoItems {
		t.Errorf("Demo.Items = %d, want %d", cfg.Demo.Items, DefaultDemoItems)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, JSONFileName, `{
  "maxUpdateCount": 20,
  "log": {"level": "debug", "format": "json"},
  "metrics": {"enabled": true, "namespace": "todo"}
}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxUpdateCount != 20 {
		t.Errorf("MaxUpdateCount = %d, want 20", cfg.MaxUpdateCount)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != "todo" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	// Unset fields keep their defaults.
	if cfg.Metrics.Addr != DefaultMetricsAddr {
		t.Errorf("Metrics.Addr = %q, want default", cfg.Metrics.Addr)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, YAMLFileName, `
maxUpdateCount: 7
tracing:
  enabled: true
  tracerName: todo
demo:
  items: 12
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxUpdateCount != 7 {
		t.Errorf("MaxUpdateCount = %d, want 7", cfg.MaxUpdateCount)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "todo" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Demo.Items != 12 {
		t.Errorf("Demo.Items = %d, want 12", cfg.Demo.Items)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reactor.yml", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxUpdateCount != DefaultMaxUpdateCount {
		t.Errorf("MaxUpdateCount = %d, want default", cfg.MaxUpdateCount)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		body string
		code string
	}{
		{"missing", "", "", errors.CodeConfigMissing},
		{"bad json", "a.json", `{"log": `, errors.CodeConfigParse},
		{"unknown json field", "b.json", `{"colour": "red"}`, errors.CodeConfigParse},
		{"bad yaml", "c.yaml", "log: [", errors.CodeConfigParse},
		{"unknown yaml field", "d.yaml", "colour: red", errors.CodeConfigParse},
		{"invalid level", "e.json", `{"log": {"level": "loud"}}`, errors.CodeConfigInvalid},
		{"invalid bound", "f.yaml", "maxUpdateCount: -1", errors.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "nope.json")
			if tt.file != "" {
				path = writeFile(t, dir, tt.file, tt.body)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromDir(dir); errCode(err) != errors.CodeConfigMissing {
		t.Fatalf("LoadFromDir on empty dir = %v, want %s", err, errors.CodeConfigMissing)
	}

	writeFile(t, dir, YAMLFileName, "demo:\n  items: 3\n")
	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir error: %v", err)
	}
	if cfg.Demo.Items != 3 {
		t.Errorf("Demo.Items = %d, want 3", cfg.Demo.Items)
	}

	// JSON wins when both exist.
	writeFile(t, dir, JSONFileName, `{"demo": {"items": 4}}`)
	cfg, err = LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir error: %v", err)
	}
	if cfg.Demo.Items != 4 {
		t.Errorf("Demo.Items = %d, want 4", cfg.Demo.Items)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := Default()
			cfg.MaxUpdateCount = 42
			cfg.Metrics.Enabled = true

			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if loaded.MaxUpdateCount != 42 || !loaded.Metrics.Enabled {
				t.Errorf("loaded = %+v", loaded)
			}

			loaded.Demo.Items = 9
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			again, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if again.Demo.Items != 9 {
				t.Errorf("Demo.Items = %d, want 9", again.Demo.Items)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := Default().Save(); err == nil {
		t.Error("expected error saving a config with no path")
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	want := writeFile(t, root, YAMLFileName, "")

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig error: %v", err)
	}
	if got != want {
		t.Errorf("FindConfig = %q, want %q", got, want)
	}
}
