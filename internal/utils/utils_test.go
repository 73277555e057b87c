package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochronus/gogett/internal/config"
)

func TestConfigTemplateContent(t *testing.T) {
	requiredSections := []string{
		"[gett]",
		"api_key",
		"email",
		"password",
		"base_url",
		"loglevel",
		"timeout",
		"download_directory",
		"download_workers",
	}

	for _, section := range requiredSections {
		if !strings.Contains(configTemplate, section) {
			t.Errorf("configTemplate missing required section: %s", section)
		}
	}
}

func TestRenderConfigLoads(t *testing.T) {
	rendered := RenderConfig("my-key", "me@example.com")
	if strings.Contains(rendered, "{{") {
		t.Fatalf("unreplaced placeholder in:\n%s", rendered)
	}

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(rendered), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("rendered config does not load: %v", err)
	}
	if cfg.Gett.APIKey != "my-key" {
		t.Errorf("expected api key 'my-key', got '%s'", cfg.Gett.APIKey)
	}
	if cfg.Gett.Email != "me@example.com" {
		t.Errorf("expected email 'me@example.com', got '%s'", cfg.Gett.Email)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("rendered config is invalid: %v", err)
	}

	defaults := config.DefaultConfig()
	if cfg.Timeout != defaults.Timeout || cfg.DownloadWorkers != defaults.DownloadWorkers {
		t.Errorf("template defaults drifted from DefaultConfig: %+v", cfg)
	}
}

func TestGenerateConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")
	var out bytes.Buffer
	p := NewReaderPrompter(strings.NewReader("key-1\nuser@example.com\n"), &out)

	if err := GenerateConfig(configPath, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), `api_key = "key-1"`) {
		t.Errorf("api key missing from config:\n%s", data)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestGenerateConfigBacksUpExisting(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	p := NewReaderPrompter(strings.NewReader("key-2\nuser@example.com\n"), &out)
	if err := GenerateConfig(configPath, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backup, err := os.ReadFile(configPath + ".bak")
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if string(backup) != "old" {
		t.Errorf("unexpected backup content: %q", backup)
	}
}

func TestGenerateConfigMissingInput(t *testing.T) {
	var out bytes.Buffer
	p := NewReaderPrompter(strings.NewReader(""), &out)

	if err := GenerateConfig(filepath.Join(t.TempDir(), "config.toml"), p); err == nil {
		t.Error("expected error when input ends early")
	}
}

func TestPrompterAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewReaderPrompter(strings.NewReader("  answer  \nlast"), &out)

	answer, err := p.Ask("Question? ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "answer" {
		t.Errorf("expected 'answer', got '%s'", answer)
	}
	if out.String() != "Question? " {
		t.Errorf("unexpected prompt output: %q", out.String())
	}

	// A final line without newline still counts.
	last, err := p.Password("Password: ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != "last" {
		t.Errorf("expected 'last', got '%s'", last)
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := HumanSize(tt.size); got != tt.expected {
				t.Errorf("HumanSize(%d) = %s, want %s", tt.size, got, tt.expected)
			}
		})
	}
}
