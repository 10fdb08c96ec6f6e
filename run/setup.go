package run

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/providers"
)

// SetupMain is the entry point of the tinkertasker-setup binary. It
// creates the configuration and data directories, and checks that the
// configured model backend is reachable.
func SetupMain() {
	if err := runSetup(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runSetup() error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	configPath, err := config.Path()
	if err != nil {
		return err
	}
	green.Printf("✓ Config ready at %s\n", configPath)

	for _, dirFn := range []func() (string, error){config.LogDir, config.SessionDir} {
		dir, err := dirFn()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		green.Printf("✓ Created %s\n", dir)
	}

	route, err := providers.ParseModel(cfg.LLMConfig.ModelName)
	if err != nil {
		return err
	}
	if !route.Ollama {
		yellow.Printf("- Model %s is not served by Ollama, skipping runtime check\n", cfg.LLMConfig.ModelName)
		return nil
	}

	if err := checkOllama(route.Model); err != nil {
		yellow.Printf("- %v\n", err)
		yellow.Println("- Install Ollama from https://ollama.com and run: ollama pull " + route.Model)
		return nil
	}
	green.Printf("✓ Ollama is serving %s\n", route.Model)
	return nil
}

// checkOllama verifies the local Ollama runtime is up and has the model
// pulled.
func checkOllama(model string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://localhost:11434/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama is not reachable at localhost:11434: %w", err)
	}
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("parse Ollama model list: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == model || strings.TrimSuffix(m.Name, ":latest") == model {
			return nil
		}
	}
	return fmt.Errorf("model %s is not pulled", model)
}
