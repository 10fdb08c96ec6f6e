package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFileMissingCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tinkertasker", "config.yaml")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if cfg.Version != Version {
		t.Errorf("expected version %s, got %s", Version, cfg.Version)
	}
	if cfg.AgentConfig.MaxSteps != 25 {
		t.Errorf("expected default max_steps 25, got %d", cfg.AgentConfig.MaxSteps)
	}
	if cfg.LLMConfig.ModelName == "" {
		t.Errorf("expected a default model name")
	}

	// the file must exist afterwards
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.LLMConfig.ModelName = "ollama/llama3"
	cfg.AgentConfig.MaxSteps = 7
	cfg.AgentConfig.MCPServers = []MCPServerConfig{
		{Identifier: "context7", Command: "npx", Args: []string{"-y", "@upstash/context7-mcp"}, Prefix: "ctx"},
	}
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded.LLMConfig.ModelName != "ollama/llama3" {
		t.Errorf("expected model ollama/llama3, got %s", loaded.LLMConfig.ModelName)
	}
	if loaded.AgentConfig.MaxSteps != 7 {
		t.Errorf("expected max_steps 7, got %d", loaded.AgentConfig.MaxSteps)
	}
	if len(loaded.AgentConfig.MCPServers) != 1 {
		t.Fatalf("expected 1 mcp server, got %d", len(loaded.AgentConfig.MCPServers))
	}
	srv := loaded.AgentConfig.MCPServers[0]
	if srv.Identifier != "context7" || srv.Command != "npx" || srv.Prefix != "ctx" {
		t.Errorf("unexpected mcp server config: %+v", srv)
	}
}

func TestLoadFileCorruptedResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{{ not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load corrupted config: %v", err)
	}
	if cfg.Version != Version {
		t.Errorf("expected regenerated defaults, got version %s", cfg.Version)
	}

	// file should have been rewritten as valid yaml
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "model_name") {
		t.Errorf("expected regenerated file to contain defaults, got: %s", data)
	}
}

func TestLoadFileVersionMismatchResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Version = "0.0.1"
	cfg.AgentConfig.MaxSteps = 99
	if err := SaveFile(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load old-version config: %v", err)
	}
	if loaded.Version != Version {
		t.Errorf("expected version %s after reset, got %s", Version, loaded.Version)
	}
	if loaded.AgentConfig.MaxSteps != 25 {
		t.Errorf("expected defaults after version reset, got max_steps %d", loaded.AgentConfig.MaxSteps)
	}
}

func TestLoadFileEmptyResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load empty config: %v", err)
	}
	if cfg.Version != Version {
		t.Errorf("expected defaults for empty file")
	}
}
