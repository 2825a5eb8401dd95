// internal/workers/assistant-reply/models.go
package assistantreply

type Input struct {
	Prompt      string `json:"prompt"`
	Context     string `json:"context,omitempty"`
	Provider    string `json:"provider,omitempty"`
	InventoryID string `json:"inventoryId,omitempty"`
	// RequireProvider fails the job instead of completing it with a rule reply.
	RequireProvider bool `json:"requireProvider,omitempty"`
}

type Output struct {
	Response       string `json:"response"`
	Category       string `json:"category"`
	Source         string `json:"source"`
	Provider       string `json:"provider,omitempty"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}
