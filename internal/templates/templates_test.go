package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/errors"
	"github.com/vango-dev/wcdk/pkg/component"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"minimal", false},
		{"starter", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
		})
	}
}

func TestList(t *testing.T) {
	names := List()
	if strings.Join(names, ",") != "minimal,starter" {
		t.Errorf("List() = %v", names)
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"widgets", "widgets"},
		{"my-widgets", "my-widgets"},
		{"MyWidgets", "my-widgets"},
		{"acme ui", "acme-ui"},
		{"123", "wc-123"},
		{"", "wc"},
	}
	for _, tt := range tests {
		if got := Prefix(tt.name); got != tt.want {
			t.Errorf("Prefix(%q) = %q, want %q", tt.name, got, tt.want)
		}
		if err := component.ValidateName(Prefix(tt.name) + "-counter"); err != nil {
			t.Errorf("Prefix(%q) does not yield a valid element name: %v", tt.name, err)
		}
	}
}

func TestTemplate_Create_Starter(t *testing.T) {
	dir := t.TempDir()

	tmpl, _ := Get("starter")
	written, err := tmpl.Create(dir, Config{Name: "acme", Description: "Acme widgets", Port: 4000})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(written) != len(tmpl.Files) {
		t.Errorf("wrote %d files, want %d", len(written), len(tmpl.Files))
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Name != "acme" || cfg.Dev.Port != 4000 {
		t.Errorf("config = %+v", cfg)
	}

	counter, err := os.ReadFile(filepath.Join(dir, "components", "counter.wcdk"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(counter), "{{count}}") {
		t.Errorf("template braces were not preserved:\n%s", counter)
	}

	result, err := build.New(cfg, build.Options{}).Build(t.Context())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("generated components failed: %v", result.Err())
	}
	var names []string
	for _, m := range result.Modules {
		names = append(names, m.Name)
	}
	if strings.Join(names, ",") != "acme-counter,acme-greeting" {
		t.Errorf("modules = %v", names)
	}
}

func TestTemplate_Create_Minimal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hello-world")

	tmpl, _ := Get("minimal")
	if _, err := tmpl.Create(dir, Config{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	src, err := os.ReadFile(filepath.Join(dir, "components", "hello.wcdk"))
	if err != nil {
		t.Fatal(err)
	}
	m, err := build.Transform(string(src), "hello.wcdk")
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	if m.Name != "hello-world-hello" {
		t.Errorf("Name = %q", m.Name)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "hello-world" || cfg.Dev.Port != config.DefaultPort {
		t.Errorf("config = %+v", cfg)
	}
}

func TestTemplate_Create_Existing(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "wcdk.yaml")
	if err := os.WriteFile(existing, []byte("name: keep\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tmpl, _ := Get("starter")
	_, err := tmpl.Create(dir, Config{Name: "acme"})
	d, ok := err.(*errors.Diagnostic)
	if !ok || d.Code != "W062" {
		t.Fatalf("err = %v, want W062", err)
	}

	data, _ := os.ReadFile(existing)
	if string(data) != "name: keep\n" {
		t.Error("existing file was overwritten")
	}
	if _, err := os.Stat(filepath.Join(dir, "components")); !os.IsNotExist(err) {
		t.Error("no files should be written when one exists")
	}
}
