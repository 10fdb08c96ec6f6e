package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is the config schema version. A config file carrying a different
// version is replaced with fresh defaults on load.
const Version = "0.1.0"

// LLMConfig selects the model backend and completion parameters.
// ModelName is a LiteLLM-style identifier, e.g. "ollama_chat/qwen3:30b-a3b-q4_K_M".
type LLMConfig struct {
	ModelName           string  `yaml:"model_name"`
	MaxCompletionTokens int     `yaml:"max_completion_tokens"`
	Temperature         float64 `yaml:"temperature"`
	// NumCtx is only forwarded to Ollama backends. nil disables it.
	NumCtx *int `yaml:"num_ctx"`
}

// PromptConfig holds labels interpolated into the system prompt.
type PromptConfig struct {
	KnowledgeCutoff string `yaml:"knowledge_cutoff"`
	Timezone        string `yaml:"timezone"`
}

// MCPServerConfig describes an externally spawned MCP server.
type MCPServerConfig struct {
	Identifier string   `yaml:"identifier"`
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	// Prefix, when set, is prepended to every tool name of this server
	// as "<prefix>_<tool>".
	Prefix string `yaml:"prefix"`
}

// AgentConfig controls the agent loop and its tool servers.
type AgentConfig struct {
	MaxSteps         int               `yaml:"max_steps"`
	PromptConfig     PromptConfig      `yaml:"prompt_config"`
	NativeMCPServers []string          `yaml:"native_mcp_servers"`
	MCPServers       []MCPServerConfig `yaml:"mcp_servers"`
}

// UXConfig controls terminal display truncation.
type UXConfig struct {
	// NumberToolLines is the number of lines shown for tool output, -1 for all.
	NumberToolLines int `yaml:"number_tool_lines"`
	// MaxArgValueLength truncates displayed tool argument values.
	MaxArgValueLength int `yaml:"max_arg_value_length"`
}

// Config is the persisted YAML configuration.
type Config struct {
	Version     string      `yaml:"version"`
	LLMConfig   LLMConfig   `yaml:"llm_config"`
	AgentConfig AgentConfig `yaml:"agent_config"`
	UXConfig    UXConfig    `yaml:"ux_config"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	numCtx := 32000
	return &Config{
		Version: Version,
		LLMConfig: LLMConfig{
			ModelName:           "ollama_chat/qwen3:30b-a3b-q4_K_M",
			MaxCompletionTokens: 4000,
			Temperature:         0.7,
			NumCtx:              &numCtx,
		},
		AgentConfig: AgentConfig{
			MaxSteps: 25,
			PromptConfig: PromptConfig{
				KnowledgeCutoff: "2025-01",
				Timezone:        "UTC",
			},
			NativeMCPServers: []string{"filesystem", "web"},
		},
		UXConfig: UXConfig{
			NumberToolLines:   1,
			MaxArgValueLength: 50,
		},
	}
}

// Path returns the full path to the config file:
// %APPDATA%\tinkertasker\config.yaml on Windows,
// $XDG_CONFIG_HOME/tinkertasker/config.yaml elsewhere.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "tinkertasker", "config.yaml"), nil
}

// LogDir returns the directory for log files, next to the config file.
func LogDir() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "logs"), nil
}

// SessionDir returns the directory for session transcripts.
func SessionDir() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "sessions"), nil
}

// Load reads the config file, creating it with defaults if missing.
// A file that fails to parse, is empty, or carries a different version
// is replaced with fresh defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return resetFile(path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if len(data) == 0 {
		return resetFile(path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return resetFile(path)
	}
	if cfg.Version != Version {
		return resetFile(path)
	}
	return &cfg, nil
}

// Save writes the config as YAML, creating parent directories as needed.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile is Save with an explicit path.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func resetFile(path string) (*Config, error) {
	cfg := Default()
	if err := SaveFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
