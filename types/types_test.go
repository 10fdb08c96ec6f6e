package types

import (
	"testing"
	"time"
)

func TestTimeFilled(t *testing.T) {
	msg := Message{
		Type:    MsgType_Msg,
		Role:    Role_User,
		Content: "hello",
	}

	filled := msg.TimeFilled()
	if filled.Timestamp == 0 {
		t.Errorf("expected timestamp to be set")
	}
	if filled.Time == "" {
		t.Errorf("expected time annotation to be set")
	}

	// preset timestamp keeps its value, only the annotation is derived
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Unix()
	msg2 := Message{Timestamp: ts}
	filled2 := msg2.TimeFilled()
	if filled2.Timestamp != ts {
		t.Errorf("expected timestamp %d, got %d", ts, filled2.Timestamp)
	}
	if filled2.Time == "" {
		t.Errorf("expected time annotation to be derived from timestamp")
	}
}

func TestHistorySendable(t *testing.T) {
	sendable := []MsgType{MsgType_Msg, MsgType_ToolCall, MsgType_ToolResult}
	for _, mt := range sendable {
		if !mt.HistorySendable() {
			t.Errorf("expected %s to be history sendable", mt)
		}
	}
	notSendable := []MsgType{MsgType_Info, MsgType_Error, MsgType_TokenUsage}
	for _, mt := range notSendable {
		if mt.HistorySendable() {
			t.Errorf("expected %s to not be history sendable", mt)
		}
	}
}

func TestTokenUsageAdd(t *testing.T) {
	a := TokenUsage{Input: 10, Output: 5, Total: 15}
	b := TokenUsage{Input: 3, Output: 2, Total: 5}
	sum := a.Add(b)
	if sum.Input != 13 || sum.Output != 7 || sum.Total != 20 {
		t.Errorf("unexpected sum: %+v", sum)
	}
}
