package ux

import (
	"testing"
)

func TestFormatToolArguments(t *testing.T) {
	tests := []struct {
		name string
		args string
		max  int
		want string
	}{
		{
			name: "empty string",
			args: "",
			max:  50,
			want: "()",
		},
		{
			name: "empty object",
			args: "{}",
			max:  50,
			want: "()",
		},
		{
			name: "string value quoted",
			args: `{"path":"test.txt"}`,
			max:  50,
			want: `(path="test.txt")`,
		},
		{
			name: "number value unquoted",
			args: `{"start_line":2}`,
			max:  50,
			want: "(start_line=2)",
		},
		{
			name: "boolean value",
			args: `{"replace_all":true}`,
			max:  50,
			want: "(replace_all=true)",
		},
		{
			name: "keys sorted",
			args: `{"url":"https://example.com","max_results":3}`,
			max:  50,
			want: `(max_results=3, url="https://example.com")`,
		},
		{
			name: "whitespace collapsed",
			args: `{"new_str":"line one\n   line two"}`,
			max:  50,
			want: `(new_str="line one line two")`,
		},
		{
			name: "long value truncated",
			args: `{"file_text":"` + "aaaaaaaaaabbbbbbbbbbcc" + `"}`,
			max:  10,
			want: `(file_text="aaaaaaaaaa...")`,
		},
		{
			name: "invalid json passed through",
			args: "{broken",
			max:  50,
			want: "({broken)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatToolArguments(tt.args, tt.max); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHeadLines(t *testing.T) {
	content := "one\ntwo\nthree\n"

	if got := headLines(content, 1); len(got) != 1 || got[0] != "one" {
		t.Errorf("expected first line only, got %v", got)
	}
	if got := headLines(content, -1); len(got) != 3 {
		t.Errorf("expected all lines, got %v", got)
	}
	if got := headLines(content, 10); len(got) != 3 {
		t.Errorf("expected all lines when limit exceeds content, got %v", got)
	}
}
