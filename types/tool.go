package types

// UnifiedTool represents a provider-independent tool definition.
// InputSchema is a JSON schema object as delivered by MCP.
type UnifiedTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema,omitempty"`
}
