// Package filesystem is the native MCP server for interacting with the
// local filesystem. Reads are allowed anywhere; edits are confined to the
// configured working directory.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Name = "FilesystemServer"

const Instructions = `This server provides the ability to interact with the local filesystem.`

const contextLines = 2

type handler struct {
	workDir string
}

// New creates the filesystem MCP server rooted at workDir.
func New(workDir string) *server.MCPServer {
	h := &handler{workDir: filepath.Clean(workDir)}

	s := server.NewMCPServer(Name, "0.1.0",
		server.WithInstructions(Instructions),
	)

	s.AddTool(mcp.NewTool("view",
		mcp.WithDescription("The view command examines the contents of a file or lists the contents of a directory. It can read the entire file or a specific range of lines."),
		mcp.WithString("path", mcp.Required(),
			mcp.Description("The path to the file or directory to view, which can be absolute or relative to the working directory.")),
		mcp.WithNumber("start_line",
			mcp.Description("The first line to view (1-indexed, inclusive). Only applies when viewing files.")),
		mcp.WithNumber("end_line",
			mcp.Description("The last line to view (inclusive), -1 to read to the end of the file. Only applies when viewing files.")),
	), h.view)

	s.AddTool(mcp.NewTool("insert",
		mcp.WithDescription("The insert command inserts text at a specific location in a file."),
		mcp.WithString("path", mcp.Required(),
			mcp.Description("The path to the file to modify. This file must be in the current working directory or a subdirectory.")),
		mcp.WithNumber("insert_line", mcp.Required(),
			mcp.Description("The line number after which to insert the text (0 for beginning of file)")),
		mcp.WithString("new_str", mcp.Required(),
			mcp.Description("The text to insert")),
	), h.insert)

	s.AddTool(mcp.NewTool("str_replace",
		mcp.WithDescription("The str_replace command replaces a specific string in a file with a new string. This is used for making precise edits."),
		mcp.WithString("path", mcp.Required(),
			mcp.Description("The path to the file to modify. This file must be in the current working directory or a subdirectory.")),
		mcp.WithString("old_str", mcp.Required(),
			mcp.Description("The text to replace (must match exactly, including whitespace and indentation)")),
		mcp.WithString("new_str", mcp.Required(),
			mcp.Description("The new text to insert in place of the old text")),
		mcp.WithBoolean("replace_all",
			mcp.Description("If true, replaces all occurrences of old_str. If false, replaces only the first occurrence.")),
	), h.strReplace)

	s.AddTool(mcp.NewTool("create",
		mcp.WithDescription("Creates a new file with the specified text."),
		mcp.WithString("path", mcp.Required(),
			mcp.Description("The path to the new file to create. This file must be in the current working directory or a subdirectory.")),
		mcp.WithString("file_text", mcp.Required(),
			mcp.Description("The content to write to the new file")),
	), h.create)

	return s
}

// resolvePath resolves path against the working directory. With confine set,
// the resolved path must stay inside the working directory.
func (h *handler) resolvePath(path string, confine bool) (string, string) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(h.workDir, resolved)
	}
	resolved = filepath.Clean(resolved)

	if confine {
		rel, err := filepath.Rel(h.workDir, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Sprintf("Error: Path must be within the configured root directory: %s", resolved)
		}
	}
	return resolved, ""
}

// validateForEditing loads a file for an edit operation, returning an error
// string on any precondition failure.
func (h *handler) validateForEditing(path string) (resolved string, content string, errMsg string) {
	resolved, errMsg = h.resolvePath(path, true)
	if errMsg != "" {
		return "", "", errMsg
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Sprintf("Error: File not found at %s", resolved)
		}
		if os.IsPermission(err) {
			return "", "", fmt.Sprintf("Error: Permission denied at %s", resolved)
		}
		return "", "", fmt.Sprintf("Error reading %s: %s", resolved, err)
	}
	if info.IsDir() {
		return "", "", fmt.Sprintf("Error: Cannot edit directory: %s", resolved)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsPermission(err) {
			return "", "", fmt.Sprintf("Error: Permission denied at %s", resolved)
		}
		return "", "", fmt.Sprintf("Error reading %s: %s", resolved, err)
	}
	if !utf8.Valid(data) {
		return "", "", fmt.Sprintf("Error: Cannot edit binary files. The file appears to be a binary %s file", filepath.Ext(resolved))
	}
	return resolved, string(data), ""
}

// numberLines renders lines with right-aligned 1-indexed numbers starting
// after offset, in the "N→line" format.
func numberLines(lines []string, offset int) []string {
	width := len(fmt.Sprintf("%d", offset+len(lines)))
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		out = append(out, fmt.Sprintf("%*d→%s", width, offset+i+1, line))
	}
	return out
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func (h *handler) view(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startLine := request.GetInt("start_line", 1)
	endLine := request.GetInt("end_line", -1)

	// reads may leave the working directory
	resolved, errMsg := h.resolvePath(path, false)
	if errMsg != "" {
		return mcp.NewToolResultText(errMsg), nil
	}

	info, statErr := os.Stat(resolved)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return mcp.NewToolResultText(fmt.Sprintf("Error: Path not found: %s", path)), nil
		}
		if os.IsPermission(statErr) {
			return mcp.NewToolResultText(fmt.Sprintf("Error: Permission denied: %s", resolved)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Error reading %s: %s", resolved, statErr)), nil
	}

	if info.IsDir() {
		return mcp.NewToolResultText(h.listDirectory(resolved)), nil
	}

	data, readErr := os.ReadFile(resolved)
	if readErr != nil {
		if os.IsPermission(readErr) {
			return mcp.NewToolResultText(fmt.Sprintf("Error: Permission denied: %s", resolved)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Error reading %s: %s", resolved, readErr)), nil
	}
	if !utf8.Valid(data) {
		return mcp.NewToolResultText(fmt.Sprintf("Error: This tool cannot read binary files. The file appears to be a binary %s file", filepath.Ext(resolved))), nil
	}

	lines := splitLines(string(data))
	startIdx := startLine - 1
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := len(lines)
	if endLine != -1 && endLine < endIdx {
		endIdx = endLine
	}
	if startIdx > endIdx {
		startIdx = endIdx
	}
	selected := lines[startIdx:endIdx]

	var b strings.Builder
	fmt.Fprintf(&b, "Read %d lines", len(selected))
	for _, line := range numberLines(selected, startIdx) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// listDirectory formats the immediate children of a directory as a tree.
func (h *handler) listDirectory(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Sprintf("- %s/\n  (Permission denied)", dir)
		}
		return fmt.Sprintf("Error reading %s: %s", dir, err)
	}
	if len(entries) == 0 {
		return "The directory is empty"
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Listed %d paths\n- %s/", len(names), dir)
	for _, name := range names {
		fmt.Fprintf(&b, "\n  - %s", name)
	}
	return b.String()
}

func (h *handler) insert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	insertLine := request.GetInt("insert_line", 0)
	newStr, err := request.RequireString("new_str")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, content, errMsg := h.validateForEditing(path)
	if errMsg != "" {
		return mcp.NewToolResultText(errMsg), nil
	}

	if insertLine < 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Error: insert_line must be >= 0, got %d", insertLine)), nil
	}

	lines := splitLines(content)
	if insertLine > len(lines) {
		insertLine = len(lines)
	}

	updated := make([]string, 0, len(lines)+1)
	updated = append(updated, lines[:insertLine]...)
	updated = append(updated, newStr)
	updated = append(updated, lines[insertLine:]...)

	if writeErr := os.WriteFile(resolved, []byte(strings.Join(updated, "\n")), 0644); writeErr != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error inserting into %s: %s", resolved, writeErr)), nil
	}

	startIdx := insertLine - contextLines
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := insertLine + contextLines + 1
	if endIdx > len(updated) {
		endIdx = len(updated)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully inserted text at line %d in %s:", insertLine, resolved)
	for _, line := range numberLines(updated[startIdx:endIdx], startIdx) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (h *handler) strReplace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	oldStr, err := request.RequireString("old_str")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newStr, err := request.RequireString("new_str")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	replaceAll := request.GetBool("replace_all", false)

	resolved, content, errMsg := h.validateForEditing(path)
	if errMsg != "" {
		return mcp.NewToolResultText(errMsg), nil
	}

	occurrences := strings.Count(content, oldStr)
	if occurrences == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Error: String not found in %s: '%s'", path, oldStr)), nil
	}
	if !replaceAll && occurrences > 1 {
		return mcp.NewToolResultText(fmt.Sprintf("Error: replace_all is False, but %d occurrences were found. Set replace_all to True if you want to replace all occurrences, or make old_str more specific to replace only one instance.", occurrences)), nil
	}

	var newContent string
	if replaceAll {
		newContent = strings.ReplaceAll(content, oldStr, newStr)
	} else {
		newContent = strings.Replace(content, oldStr, newStr, 1)
	}

	if writeErr := os.WriteFile(resolved, []byte(newContent), 0644); writeErr != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error replacing in %s: %s", path, writeErr)), nil
	}

	// show context around the first changed line
	oldLines := splitLines(content)
	newLines := splitLines(newContent)
	changedIdx := 0
	for i := 0; i < len(oldLines) && i < len(newLines); i++ {
		if oldLines[i] != newLines[i] {
			changedIdx = i
			break
		}
	}

	startIdx := changedIdx - contextLines
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := changedIdx + contextLines + 1
	if endIdx > len(newLines) {
		endIdx = len(newLines)
	}

	var b strings.Builder
	if replaceAll {
		fmt.Fprintf(&b, "Successfully replaced %d occurrences in %s:", occurrences, resolved)
	} else {
		fmt.Fprintf(&b, "Successfully replaced text in %s:", resolved)
	}
	for _, line := range numberLines(newLines[startIdx:endIdx], startIdx) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (h *handler) create(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileText, err := request.RequireString("file_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, errMsg := h.resolvePath(path, true)
	if errMsg != "" {
		return mcp.NewToolResultText(errMsg), nil
	}

	if info, statErr := os.Stat(resolved); statErr == nil {
		if info.IsDir() {
			return mcp.NewToolResultText(fmt.Sprintf("Error: Cannot create file at directory: %s", resolved)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Error: File already exists at %s use str_replace or insert to modify it.", resolved)), nil
	}

	if mkErr := os.MkdirAll(filepath.Dir(resolved), 0755); mkErr != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error creating %s: %s", resolved, mkErr)), nil
	}
	if writeErr := os.WriteFile(resolved, []byte(fileText), 0644); writeErr != nil {
		if os.IsPermission(writeErr) {
			return mcp.NewToolResultText(fmt.Sprintf("Error: Permission denied: %s", resolved)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Error creating %s: %s", resolved, writeErr)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("File successfully created at %s", resolved)), nil
}
