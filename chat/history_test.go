package chat

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/tinkertasker/tinkertasker/types"
)

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	session, err := NewSession(dir)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	msgs := []types.Message{
		NewMessage(types.MsgType_Msg, types.Role_System, "ollama_chat/qwen3:30b-a3b-q4_K_M", "system prompt"),
		NewMessage(types.MsgType_Msg, types.Role_User, "ollama_chat/qwen3:30b-a3b-q4_K_M", "hello"),
		NewToolCallMessage("ollama_chat/qwen3:30b-a3b-q4_K_M", "view", "call-1", `{"path":"a.txt"}`),
		NewToolResultMessage("ollama_chat/qwen3:30b-a3b-q4_K_M", "view", "call-1", "Read 1 lines\n1→hi"),
	}
	for _, msg := range msgs {
		if err := session.Append(msg); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	loaded, err := LoadSession(session.Path())
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if len(loaded) != len(msgs) {
		t.Fatalf("expected %d messages, got %d", len(msgs), len(loaded))
	}
	for i, msg := range msgs {
		if loaded[i].ID != msg.ID {
			t.Errorf("message %d: expected id %s, got %s", i, msg.ID, loaded[i].ID)
		}
		if loaded[i].Type != msg.Type {
			t.Errorf("message %d: expected type %s, got %s", i, msg.Type, loaded[i].Type)
		}
		if loaded[i].Content != msg.Content {
			t.Errorf("message %d: expected content %q, got %q", i, msg.Content, loaded[i].Content)
		}
	}
	if loaded[2].ToolUseID != "call-1" || loaded[2].ToolName != "view" {
		t.Errorf("tool call fields not preserved: %+v", loaded[2])
	}
	if loaded[3].Role != types.Role_User {
		t.Errorf("expected tool result role user, got %s", loaded[3].Role)
	}
}

func TestLoadSessionMissingFile(t *testing.T) {
	msgs, err := LoadSession(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs != nil {
		t.Errorf("expected nil history, got %v", msgs)
	}
}

func TestListSessions(t *testing.T) {
	dir := t.TempDir()

	paths, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no sessions, got %v", paths)
	}

	first, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Append(NewMessage(types.MsgType_Msg, types.Role_User, "m", "one")); err != nil {
		t.Fatal(err)
	}
	second, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Append(NewMessage(types.MsgType_Msg, types.Role_User, "m", "two")); err != nil {
		t.Fatal(err)
	}

	paths, err = ListSessions(dir)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 sessions, got %v", paths)
	}
	for _, path := range paths {
		if !strings.HasSuffix(path, ".jsonl") {
			t.Errorf("expected jsonl transcript, got %s", path)
		}
	}
}

func TestListSessionsMissingDir(t *testing.T) {
	paths, err := ListSessions(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths != nil {
		t.Errorf("expected nil, got %v", paths)
	}
}

func TestNewMessageFillsIDAndTime(t *testing.T) {
	msg := NewMessage(types.MsgType_Msg, types.Role_User, "model", "hi")
	if msg.ID == "" {
		t.Error("expected message id")
	}
	if msg.Time == "" || msg.Timestamp == 0 {
		t.Errorf("expected timestamp to be filled: %+v", msg)
	}
}

func TestGetLastUserMessage(t *testing.T) {
	msgs := []types.Message{
		NewMessage(types.MsgType_Msg, types.Role_System, "m", "sys"),
		NewMessage(types.MsgType_Msg, types.Role_User, "m", "first"),
		NewMessage(types.MsgType_Msg, types.Role_Assistant, "m", "reply"),
		NewMessage(types.MsgType_Msg, types.Role_User, "m", "second"),
		NewToolResultMessage("m", "view", "id", "result"),
	}
	got := GetLastUserMessage(msgs)
	if got == nil || got.Content != "second" {
		t.Errorf("expected last user message 'second', got %+v", got)
	}

	if got := GetLastUserMessage(nil); got != nil {
		t.Errorf("expected nil for empty history, got %+v", got)
	}
}
