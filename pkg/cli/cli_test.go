package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestConfigFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
	if _, err := cfg.CurrentContext(); err == nil {
		t.Error("fresh config should have no current context")
	}
}

func TestConfigContexts(t *testing.T) {
	cfg := testConfig(t)

	if err := cfg.SetContext("prod", &Context{ServerURL: "https://ai.example.edu", OpenAIKey: "sk-prod"}); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetContext("dev", &Context{ServerURL: "http://localhost:8000"}); err != nil {
		t.Fatal(err)
	}

	// The first context becomes current automatically.
	cur, err := cfg.CurrentContext()
	if err != nil {
		t.Fatal(err)
	}
	if cur.Name != "prod" {
		t.Errorf("current = %q, want prod", cur.Name)
	}

	if err := cfg.UseContext("dev"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.UseContext("staging"); err == nil {
		t.Error("UseContext of unknown name should fail")
	}

	if !slices.Equal(cfg.ListContexts(), []string{"dev", "prod"}) {
		t.Errorf("contexts = %v", cfg.ListContexts())
	}

	// Changes persist across reloads.
	reloaded, err := LoadConfig(cfg.Path())
	if err != nil {
		t.Fatal(err)
	}
	cur, err = reloaded.CurrentContext()
	if err != nil {
		t.Fatal(err)
	}
	if cur.Name != "dev" || cur.ServerURL != "http://localhost:8000" {
		t.Errorf("reloaded current = %+v", cur)
	}

	// Deleting the current context clears the selection.
	if err := reloaded.DeleteContext("dev"); err != nil {
		t.Fatal(err)
	}
	if reloaded.Current != "" {
		t.Errorf("current = %q after deleting it", reloaded.Current)
	}
	if err := reloaded.DeleteContext("dev"); err == nil {
		t.Error("double delete should fail")
	}
}

func TestResolveContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.SetContext("a", &Context{})
	cfg.SetContext("b", &Context{})

	got, err := cfg.ResolveContext("")
	if err != nil || got.Name != "a" {
		t.Errorf("ResolveContext(\"\") = (%v, %v)", got, err)
	}
	got, err = cfg.ResolveContext("b")
	if err != nil || got.Name != "b" {
		t.Errorf("ResolveContext(b) = (%v, %v)", got, err)
	}
}

func TestContextExtra(t *testing.T) {
	ctx := &Context{}
	if ctx.GetExtra("missing") != "" {
		t.Error("GetExtra on empty context")
	}
	ctx.SetExtra("namespace", "morgan-cs-dept")
	if ctx.GetExtra("namespace") != "morgan-cs-dept" {
		t.Errorf("extra = %q", ctx.GetExtra("namespace"))
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "*****"},
		{"sk-abcdefgh1234", "sk-a*******1234"},
	}
	for _, tt := range tests {
		if got := MaskKey(tt.in); got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutputFormats(t *testing.T) {
	type result struct {
		Name  string `json:"name" yaml:"name"`
		Count int    `json:"count" yaml:"count"`
	}
	r := result{Name: "threads", Count: 3}

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Output(r, OutputOptions{Writer: &buf}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "name: threads") {
			t.Errorf("yaml = %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Output(r, OutputOptions{Format: FormatJSON, Writer: &buf}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"count": 3`) {
			t.Errorf("json = %q", buf.String())
		}
	})

	t.Run("raw", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Output("plain text", OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "plain text" {
			t.Errorf("raw = %q", buf.String())
		}
		if err := Output(r, OutputOptions{Format: FormatRaw, Writer: &buf}); err == nil {
			t.Error("raw struct output should fail")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		if err := Output(r, OutputOptions{Format: FormatJSON, File: path}); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "threads") {
			t.Errorf("file = %q", data)
		}
	})
}

func TestLoadRequest(t *testing.T) {
	type req struct {
		Message string `json:"message" yaml:"message"`
	}
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "req.yaml")
	os.WriteFile(yamlPath, []byte("message: hello\n"), 0o644)
	jsonPath := filepath.Join(dir, "req.json")
	os.WriteFile(jsonPath, []byte(`{"message": "hola"}`), 0o644)
	anyPath := filepath.Join(dir, "req.txt")
	os.WriteFile(anyPath, []byte(`{"message": "guess"}`), 0o644)

	var r req
	if err := LoadRequest(yamlPath, &r); err != nil || r.Message != "hello" {
		t.Errorf("yaml = (%+v, %v)", r, err)
	}
	if err := LoadRequest(jsonPath, &r); err != nil || r.Message != "hola" {
		t.Errorf("json = (%+v, %v)", r, err)
	}
	if err := LoadRequest(anyPath, &r); err != nil || r.Message != "guess" {
		t.Errorf("sniffed = (%+v, %v)", r, err)
	}
	if err := LoadRequest(filepath.Join(dir, "missing.yaml"), &r); err == nil {
		t.Error("missing file should fail")
	}
}

func TestPaths(t *testing.T) {
	p := &Paths{HomeDir: t.TempDir()}
	if err := p.EnsureAll(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{p.DataDir(), p.DocsDir(), p.LogDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("missing dir %s: %v", dir, err)
		}
	}
	if p.DataPath("kv") != filepath.Join(p.DataDir(), "kv") {
		t.Errorf("DataPath = %q", p.DataPath("kv"))
	}
}
