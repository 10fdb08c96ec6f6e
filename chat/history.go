package chat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tinkertasker/tinkertasker/types"
)

// Session records a conversation as JSON lines, one message per line.
type Session struct {
	ID   string
	path string
}

// NewSession creates a transcript file under dir, named by start time and
// session id.
func NewSession(dir string) (*Session, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	id := uuid.New().String()
	name := fmt.Sprintf("%s_%s.jsonl", time.Now().Format("20060102-150405"), id)
	return &Session{
		ID:   id,
		path: filepath.Join(dir, name),
	}, nil
}

// Path returns the transcript file path.
func (s *Session) Path() string {
	return s.path
}

// Append writes a single message to the transcript.
func (s *Session) Append(msg types.Message) error {
	msg = msg.TimeFilled()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// LoadSession reads a transcript back into messages. A missing file is an
// empty history.
func LoadSession(path string) ([]types.Message, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	var messages []types.Message
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var msg types.Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return nil, fmt.Errorf("parse session message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return messages, nil
}

// ListSessions returns the transcript files under dir, newest last.
func ListSessions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// NewMessage creates a message with a fresh id and timestamp.
func NewMessage(msgType types.MsgType, role types.Role, model, content string) types.Message {
	return types.Message{
		ID:      uuid.New().String(),
		Type:    msgType,
		Role:    role,
		Model:   model,
		Content: content,
	}.TimeFilled()
}

// NewToolCallMessage creates a tool call message. Content carries the raw
// argument JSON.
func NewToolCallMessage(model, toolName, toolUseID, content string) types.Message {
	return types.Message{
		ID:        uuid.New().String(),
		Type:      types.MsgType_ToolCall,
		Role:      types.Role_Assistant,
		Model:     model,
		Content:   content,
		ToolUseID: toolUseID,
		ToolName:  toolName,
	}.TimeFilled()
}

// NewToolResultMessage creates a tool result message.
func NewToolResultMessage(model, toolName, toolUseID, content string) types.Message {
	return types.Message{
		ID:        uuid.New().String(),
		Type:      types.MsgType_ToolResult,
		Role:      types.Role_User,
		Model:     model,
		Content:   content,
		ToolUseID: toolUseID,
		ToolName:  toolName,
	}.TimeFilled()
}

// GetLastUserMessage returns the last user message from history
func GetLastUserMessage(messages []types.Message) *types.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Type == types.MsgType_Msg && msg.Role == types.Role_User {
			return &msg
		}
	}
	return nil
}
