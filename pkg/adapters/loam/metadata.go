package loam

// PromptMetadata is the front-matter of an agent instruction document.
// Agent may be omitted when the file is named after the agent (hotel.md).
type PromptMetadata struct {
	Agent       string `json:"agent" mapstructure:"agent"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
}
