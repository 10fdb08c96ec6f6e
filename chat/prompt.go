package chat

import (
	"regexp"
	"strings"
	"time"

	"github.com/tinkertasker/tinkertasker/config"
)

// SystemPromptTemplate is the agent system prompt. Placeholders of the form
// {{name}} are filled in by BuildSystemPrompt.
const SystemPromptTemplate = `You are an autonomous AI agent named TinkerTasker, powered by a locally hosted Large Language Model (LLM). You help users get their work done.
Please keep going until the user's query is completely resolved, before ending your turn and sending a message to the user. Only terminate your turn when you are sure that the problem is solved.
Use your tools to read files and gather the relevant information: do NOT guess or make up an answer.
You MUST plan extensively before each function call, and reflect extensively on the outcomes of the previous function calls. DO NOT do this entire process by making function calls only, as this can impair your ability to solve the problem and think insightfully.

Knowledge cutoff: {{knowledge_cutoff}}
Current date: {{current_date}}

# Your Working Directory

The user has configured a working directory for you to use. When choosing paths, they can be relative to this working directory.
This is also the directory where you are allowed to create and edit files. Any attempts to create or edit files outside of this directory will be rejected. You are allowed to read any file in the system.

Working directory: {{working_directory}}

# MCP Servers

The Model Context Protocol (MCP) is an open protocol that standardizes how applications provide context to LLMs. Think of MCP like a USB-C port for AI applications. Just as USB-C provides a standardized way to connect your devices to various peripherals and accessories, MCP provides a standardized way to connect AI models to different data sources and tools.
You have available to you a set of MCP servers, which are lightweight programs, presented to you as tools, that each expose specific capabilities through the standardized Model Context Protocol.

# Enabled MCP Servers
{{mcp_instructions}}`

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Interpolate replaces {{name}} placeholders with values from vars.
// Placeholders without a value are left untouched.
func Interpolate(template string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// BuildSystemPrompt fills the system prompt template. The current date is
// rendered in the configured timezone, falling back to UTC when the
// timezone is unknown.
func BuildSystemPrompt(promptCfg config.PromptConfig, workDir string, mcpInstructions string, now time.Time) string {
	loc, err := time.LoadLocation(promptCfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return Interpolate(SystemPromptTemplate, map[string]string{
		"knowledge_cutoff":  promptCfg.KnowledgeCutoff,
		"current_date":      now.In(loc).Format("2006-01-02"),
		"working_directory": workDir,
		"mcp_instructions":  mcpInstructions,
	})
}

var thinkingRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes <think>...</think> blocks from model output and
// trims the surrounding whitespace.
func StripThinking(content string) string {
	if content == "" {
		return content
	}
	return strings.TrimSpace(thinkingRe.ReplaceAllString(content, ""))
}
