package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// toolUseInfo is what a tool-use's sibling tool-result needs to know
// about the tool that produced it.
type toolUseInfo struct {
	Name     string
	FilePath string
}

// renderToTemplateMessages implements step 6: convert each filtered
// record into one or more domain.TemplateMessage, splitting a record's
// content items (text, tool-use, tool-result, thinking, image) into
// individual siblings when more than one kind is present. It also
// returns the tool-use-id -> tool info context map (tool name and file
// path); a tool-result whose tool-use was rendered earlier carries that
// tool's name.
func renderToTemplateMessages(records []domain.Record, countsForTokens []bool) ([]*domain.TemplateMessage, map[string]toolUseInfo) {
	toolContext := make(map[string]toolUseInfo)
	var out []*domain.TemplateMessage

	for i, rec := range records {
		out = append(out, renderOne(rec, countsForTokens[i], toolContext)...)
	}
	return out, toolContext
}

func renderOne(rec domain.Record, countsForTokens bool, toolContext map[string]toolUseInfo) []*domain.TemplateMessage {
	switch rec.Type {
	case domain.DiscUser:
		return renderUser(rec, toolContext)
	case domain.DiscAssistant:
		return renderAssistant(rec, countsForTokens, toolContext)
	case domain.DiscSystem:
		return []*domain.TemplateMessage{renderSystem(rec)}
	case domain.DiscQueueOperation:
		return renderQueueOperation(rec)
	default:
		return nil
	}
}

func base(rec domain.Record) domain.TemplateMessage {
	return domain.TemplateMessage{
		SessionID:        rec.SessionID,
		UUID:             rec.UUID,
		ParentUUID:       rec.ParentUUID,
		AgentID:          rec.AgentID,
		RawTimestamp:     rec.Timestamp,
		DisplayTimestamp: rec.Timestamp,
		Modifiers:        domain.Modifiers{IsSidechain: rec.Sidechain},
	}
}

func renderUser(rec domain.Record, toolContext map[string]toolUseInfo) []*domain.TemplateMessage {
	var out []*domain.TemplateMessage
	text := textOnly(rec.Content)

	if text != "" {
		m := base(rec)
		switch {
		case isBashInputText(text):
			m.Type = domain.TmplBashInput
		case isBashOutputText(text):
			m.Type = domain.TmplBashOutput
		default:
			m.Type = domain.TmplUser
			m.Modifiers.IsSlashCommand = isSlashCommand(text)
			m.Modifiers.IsCommandOutput = isCommandOutput(text)
			m.Modifiers.IsCompactedSummary = isCompactedSummaryText(text)
		}
		m.RawTextContent = text
		out = append(out, &m)
	}

	for _, item := range rec.Content {
		switch item.Kind {
		case domain.ContentToolResult:
			m := base(rec)
			m.Type = domain.TmplToolResult
			m.ToolUseID = item.ToolResultForID
			if info, ok := toolContext[item.ToolResultForID]; ok {
				m.ToolName = info.Name
			}
			m.ToolResultText = item.ToolResultText
			m.IsError = item.IsError
			out = append(out, &m)
		case domain.ContentImage:
			m := base(rec)
			m.Type = domain.TmplImage
			m.ImageSource = item.ImageSource
			m.ImageMediaType = item.ImageMediaType
			out = append(out, &m)
		}
	}
	return out
}

func renderAssistant(rec domain.Record, countsForTokens bool, toolContext map[string]toolUseInfo) []*domain.TemplateMessage {
	var out []*domain.TemplateMessage
	text := textOnly(rec.Content)
	if text != "" {
		m := base(rec)
		m.Type = domain.TmplAssistant
		m.RawTextContent = text
		m.RequestID = rec.RequestID
		if countsForTokens {
			m.Usage = rec.Usage
			m.CountsForTokens = true
		}
		out = append(out, &m)
	}

	for _, item := range rec.Content {
		switch item.Kind {
		case domain.ContentThinking:
			m := base(rec)
			m.Type = domain.TmplThinking
			m.RawTextContent = item.Text
			out = append(out, &m)
		case domain.ContentToolUse:
			m := base(rec)
			m.Type = domain.TmplToolUse
			m.ToolUseID = item.ToolUseID
			m.ToolName = item.ToolName
			m.ToolInput = item.ToolInput
			out = append(out, &m)
			toolContext[item.ToolUseID] = toolUseInfo{Name: item.ToolName, FilePath: filePathFromToolInput(item.ToolInput)}
		case domain.ContentImage:
			m := base(rec)
			m.Type = domain.TmplImage
			m.ImageSource = item.ImageSource
			m.ImageMediaType = item.ImageMediaType
			out = append(out, &m)
		}
	}
	return out
}

func renderSystem(rec domain.Record) *domain.TemplateMessage {
	m := base(rec)
	m.Type = domain.TmplSystem
	m.RawTextContent = rec.SystemContent
	m.SystemLevel = rec.SystemLevel
	return &m
}

func renderQueueOperation(rec domain.Record) []*domain.TemplateMessage {
	text := textOnly(rec.Content)
	m := base(rec)
	m.Type = domain.TmplUser
	m.Modifiers.IsSteering = true
	m.RawTextContent = text
	return []*domain.TemplateMessage{&m}
}

// textOnly concatenates a record's text content items; it is distinct
// from domain.Record.TextContent in that it also covers
// queue-operation content, which is parsed into the same ContentItem
// shape as a user/assistant message's content array.
func textOnly(items []domain.ContentItem) string {
	out := ""
	for _, c := range items {
		if c.Kind == domain.ContentText {
			if out != "" {
				out += "\n"
			}
			out += c.Text
		}
	}
	return out
}
