package chat

import (
	"testing"

	"github.com/tinkertasker/tinkertasker/types"
)

func TestMessagesToOpenAI(t *testing.T) {
	history := Messages{
		NewMessage(types.MsgType_Msg, types.Role_System, "m", "system prompt"),
		NewMessage(types.MsgType_Msg, types.Role_User, "m", "hello"),
		NewToolCallMessage("m", "view", "call-1", `{"path":"a.txt"}`),
		NewToolResultMessage("m", "view", "call-1", "contents"),
		NewMessage(types.MsgType_Msg, types.Role_Assistant, "m", "done"),
		{Type: types.MsgType_Info, Role: types.Role_User, Content: "not sendable"},
	}

	msgs, systemPrompts, err := history.ToOpenAI()
	if err != nil {
		t.Fatalf("to openai: %v", err)
	}
	if len(systemPrompts) != 1 || systemPrompts[0] != "system prompt" {
		t.Errorf("expected system prompt to be extracted, got %v", systemPrompts)
	}
	// system and info messages are excluded from the list
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].OfUser == nil {
		t.Errorf("expected first message to be a user message")
	}
	if msgs[1].OfAssistant == nil || len(msgs[1].OfAssistant.ToolCalls) != 1 {
		t.Fatalf("expected second message to carry the tool call")
	}
	call := msgs[1].OfAssistant.ToolCalls[0]
	if call.ID != "call-1" || call.Function.Name != "view" || call.Function.Arguments != `{"path":"a.txt"}` {
		t.Errorf("unexpected tool call: %+v", call)
	}
	if msgs[2].OfTool == nil || msgs[2].OfTool.ToolCallID != "call-1" {
		t.Errorf("expected third message to be the tool result")
	}
	if msgs[3].OfAssistant == nil {
		t.Errorf("expected final assistant message")
	}
}

func TestMessagesToAnthropic(t *testing.T) {
	history := Messages{
		NewMessage(types.MsgType_Msg, types.Role_System, "m", "system prompt"),
		NewMessage(types.MsgType_Msg, types.Role_User, "m", "hello"),
		NewToolCallMessage("m", "fetch", "toolu_1", `{"url":"https://example.com"}`),
		NewToolResultMessage("m", "fetch", "toolu_1", "page summary"),
	}

	msgs, systemPrompts, err := history.ToAnthropic()
	if err != nil {
		t.Fatalf("to anthropic: %v", err)
	}
	if len(systemPrompts) != 1 {
		t.Errorf("expected 1 system prompt, got %v", systemPrompts)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Role != "assistant" {
		t.Errorf("expected tool call on assistant message, got role %s", msgs[1].Role)
	}
	if msgs[2].Role != "user" {
		t.Errorf("expected tool result on user message, got role %s", msgs[2].Role)
	}
}

func TestToolsToOpenAI(t *testing.T) {
	unified := []types.UnifiedTool{
		{
			Name:        "view",
			Description: "Examines a file",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"path"},
			},
		},
	}

	tools, err := toolsToOpenAI(unified)
	if err != nil {
		t.Fatalf("to openai: %v", err)
	}
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	if tools[0].Function.Name != "view" {
		t.Errorf("unexpected tool name: %s", tools[0].Function.Name)
	}
	if tools[0].Function.Parameters["type"] != "object" {
		t.Errorf("unexpected parameters: %v", tools[0].Function.Parameters)
	}
}

func TestToolsToAnthropic(t *testing.T) {
	unified := []types.UnifiedTool{
		{
			Name:        "search",
			Description: "Searches the web",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
				},
			},
		},
	}

	tools, err := toolsToAnthropic(unified)
	if err != nil {
		t.Fatalf("to anthropic: %v", err)
	}
	if len(tools) != 1 || tools[0].OfTool == nil {
		t.Fatalf("expected 1 tool, got %+v", tools)
	}
	if tools[0].OfTool.Name != "search" {
		t.Errorf("unexpected tool name: %s", tools[0].OfTool.Name)
	}
}

func TestParseToolCall(t *testing.T) {
	call := parseToolCall("id-1", "view", `{"path":"a.txt","start_line":2}`)
	if call.ID != "id-1" || call.Name != "view" || call.ArgsError != "" {
		t.Errorf("unexpected call: %+v", call)
	}
	if call.Arguments["path"] != "a.txt" {
		t.Errorf("unexpected arguments: %v", call.Arguments)
	}
	if call.RawArgs != `{"path":"a.txt","start_line":2}` {
		t.Errorf("unexpected raw args: %s", call.RawArgs)
	}

	empty := parseToolCall("id-2", "search", "")
	if empty.Arguments != nil || empty.ArgsError != "" {
		t.Errorf("expected nil arguments, got %+v", empty)
	}

	broken := parseToolCall("id-3", "view", "{broken")
	if broken.ArgsError == "" {
		t.Error("expected an argument error for malformed arguments")
	}
	if broken.Arguments != nil {
		t.Errorf("expected nil arguments on parse failure, got %v", broken.Arguments)
	}
	if broken.RawArgs != "{broken" {
		t.Errorf("expected raw args to be preserved, got %s", broken.RawArgs)
	}
}
