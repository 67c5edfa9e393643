package domain

// ContentKind discriminates the sum type of content items nested inside a
// user or assistant Record's message.content array. The space is closed;
// callers switch exhaustively rather than relying on open polymorphism.
type ContentKind string

const (
	ContentText       ContentKind = "text"
	ContentToolUse    ContentKind = "tool_use"
	ContentToolResult ContentKind = "tool_result"
	ContentThinking   ContentKind = "thinking"
	ContentImage      ContentKind = "image"
)

// ContentItem is one block of a message's content array.
type ContentItem struct {
	Kind ContentKind

	// ContentText / ContentThinking
	Text string

	// ContentToolUse
	ToolUseID string
	ToolName  string
	ToolInput map[string]any

	// ContentToolResult
	ToolResultForID string
	ToolResultText  string
	IsError         bool

	// ContentImage
	ImageMediaType string
	ImageSource    string
}

// HasDisplayableContent reports whether the item carries anything a
// renderer would show. Used by the filter step to drop records with no
// meaningful content.
func (c ContentItem) HasDisplayableContent() bool {
	switch c.Kind {
	case ContentText:
		return c.Text != ""
	case ContentToolUse:
		return c.ToolUseID != ""
	case ContentToolResult:
		return c.ToolResultForID != ""
	case ContentThinking:
		return c.Text != ""
	case ContentImage:
		return c.ImageSource != ""
	default:
		return false
	}
}
