package ux

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/tinkertasker/tinkertasker/config"
)

// Welcome prints the startup box: where the config lives, where the agent
// works, which model it talks to and which MCP servers are enabled.
func Welcome(out io.Writer, cfg *config.Config, configPath, workDir string) {
	var enabled []string
	enabled = append(enabled, cfg.AgentConfig.NativeMCPServers...)
	sort.Strings(enabled)
	for _, server := range cfg.AgentConfig.MCPServers {
		enabled = append(enabled, server.Identifier)
	}
	mcpInfo := "No MCP Servers enabled"
	if len(enabled) > 0 {
		mcpInfo = "Enabled MCP Servers: " + strings.Join(enabled, ", ")
	}

	lines := []string{
		"Welcome to TinkerTasker!",
		"",
		fmt.Sprintf("Config: %s (restart if changed)", configPath),
		fmt.Sprintf("Working Directory: %s (start from a different dir to change)", workDir),
		fmt.Sprintf("LiteLLM Model Name: %s", cfg.LLMConfig.ModelName),
		mcpInfo,
		"",
		"Press CTRL+C twice to quit.",
	}
	printBox(out, "TinkerTasker", lines)
}

// printBox draws a fitted single-line border around the content.
func printBox(out io.Writer, title string, lines []string) {
	width := utf8.RuneCountInString(title) + 2
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > width {
			width = n
		}
	}

	border := color.New(color.FgCyan)
	titleGap := width - utf8.RuneCountInString(title) - 1
	border.Fprintf(out, "╭─ %s %s╮\n", title, strings.Repeat("─", titleGap))
	for _, line := range lines {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(line))
		fmt.Fprintf(out, "%s %s%s %s\n", border.Sprint("│"), line, pad, border.Sprint("│"))
	}
	border.Fprintf(out, "╰%s╯\n", strings.Repeat("─", width+2))
}
