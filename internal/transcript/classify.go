package transcript

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// rawRecord mirrors the superset of fields that can appear on any JSONL
// line; only the fields relevant to its "type" are populated upstream.
type rawRecord struct {
	Type      string          `json:"type"`
	UUID      string          `json:"uuid"`
	Parent    string          `json:"parentUuid"`
	SessionID string          `json:"sessionId"`
	Timestamp string          `json:"timestamp"`
	IsSide    bool            `json:"isSidechain"`
	IsMeta    bool            `json:"isMeta"`
	AgentID   string          `json:"agentId"`
	RequestID string          `json:"requestId"`
	Cwd       string          `json:"cwd"`
	GitBranch string          `json:"gitBranch"`
	LeafUUID  string          `json:"leafUuid"`
	Summary   string          `json:"summary"`
	Message   json.RawMessage `json:"message"`
	Content   json.RawMessage `json:"content"`
	Level     string          `json:"level"`
	Operation string          `json:"operation"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Usage   *rawUsage       `json:"usage"`
}

type rawUsage struct {
	InputTokens         *int64 `json:"input_tokens"`
	OutputTokens        *int64 `json:"output_tokens"`
	CacheCreationTokens *int64 `json:"cache_creation_input_tokens"`
	CacheReadTokens     *int64 `json:"cache_read_input_tokens"`
}

type rawContentItem struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     map[string]any  `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	Content   json.RawMessage `json:"content"`
	Source    *rawImageSource `json:"source"`
}

type rawImageSource struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
	URL       string `json:"url"`
}

// parseRecord turns one raw JSONL line into a domain.Record, dispatching
// on the "type" discriminator. Unrecognized types return
// domain.ErrUnknownDiscriminator so the caller can skip-and-warn.
func parseRecord(lineNum int, line []byte) (domain.Record, error) {
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return domain.Record{}, fmt.Errorf("line %d: %w", lineNum, err)
	}

	rec := domain.Record{
		Type:         domain.Discriminator(raw.Type),
		UUID:         raw.UUID,
		ParentUUID:   raw.Parent,
		SessionID:    raw.SessionID,
		LineNum:      lineNum,
		RawTimestamp: raw.Timestamp,
		Sidechain:    raw.IsSide,
		Meta:         raw.IsMeta,
		AgentID:      raw.AgentID,
		RequestID:    raw.RequestID,
		Cwd:          raw.Cwd,
		GitBranch:    raw.GitBranch,
		Raw:          json.RawMessage(append([]byte(nil), line...)),
	}

	if raw.Timestamp != "" {
		ts, err := CanonicalizeTimestamp(raw.Timestamp)
		if err != nil {
			return domain.Record{}, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rec.Timestamp = ts
	}

	switch rec.Type {
	case domain.DiscUser, domain.DiscAssistant:
		if err := fillMessage(&rec, raw.Message); err != nil {
			return domain.Record{}, fmt.Errorf("line %d: %w", lineNum, err)
		}
	case domain.DiscSystem:
		rec.SystemLevel = domain.SystemLevel(raw.Level)
		if rec.SystemLevel == "" {
			rec.SystemLevel = domain.SystemInfo
		}
		var content string
		if len(raw.Content) > 0 {
			_ = json.Unmarshal(raw.Content, &content)
		}
		rec.SystemContent = content
	case domain.DiscSummary:
		rec.SummaryText = raw.Summary
		rec.LeafUUID = raw.LeafUUID
	case domain.DiscQueueOperation:
		rec.QueueOperation = raw.Operation
		items, err := parseContent(raw.Content)
		if err != nil {
			return domain.Record{}, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rec.Content = items
	default:
		return domain.Record{}, fmt.Errorf("line %d: %w: %q", lineNum, domain.ErrUnknownDiscriminator, raw.Type)
	}

	return rec, nil
}

func fillMessage(rec *domain.Record, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var msg rawMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}
	rec.Role = msg.Role
	if msg.Usage != nil {
		rec.Usage = &domain.Usage{
			InputTokens:         msg.Usage.InputTokens,
			OutputTokens:        msg.Usage.OutputTokens,
			CacheCreationTokens: msg.Usage.CacheCreationTokens,
			CacheReadTokens:     msg.Usage.CacheReadTokens,
		}
	}

	items, err := parseContent(msg.Content)
	if err != nil {
		return err
	}
	rec.Content = items
	return nil
}

// parseContent handles the fact that message.content is either a bare
// string (plain text) or an array of typed content blocks.
func parseContent(raw json.RawMessage) ([]domain.ContentItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "\"") {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		if text == "" {
			return nil, nil
		}
		return []domain.ContentItem{{Kind: domain.ContentText, Text: text}}, nil
	}

	var raws []rawContentItem
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, err
	}
	items := make([]domain.ContentItem, 0, len(raws))
	for _, r := range raws {
		item, ok := convertContentItem(r)
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func convertContentItem(r rawContentItem) (domain.ContentItem, bool) {
	switch r.Type {
	case "text":
		return domain.ContentItem{Kind: domain.ContentText, Text: r.Text}, true
	case "thinking":
		return domain.ContentItem{Kind: domain.ContentThinking, Text: r.Text}, true
	case "tool_use":
		return domain.ContentItem{
			Kind:      domain.ContentToolUse,
			ToolUseID: r.ID,
			ToolName:  r.Name,
			ToolInput: r.Input,
		}, true
	case "tool_result":
		return domain.ContentItem{
			Kind:            domain.ContentToolResult,
			ToolResultForID: r.ToolUseID,
			ToolResultText:  extractToolResultText(r.Content),
			IsError:         r.IsError,
		}, true
	case "image":
		if r.Source == nil {
			return domain.ContentItem{}, false
		}
		source := r.Source.Data
		if source == "" {
			source = r.Source.URL
		}
		return domain.ContentItem{
			Kind:           domain.ContentImage,
			ImageMediaType: r.Source.MediaType,
			ImageSource:    source,
		}, true
	default:
		return domain.ContentItem{}, false
	}
}

// extractToolResultText handles tool_result.content being a bare string,
// an array of text blocks, or absent entirely.
func extractToolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "\"") {
		var text string
		_ = json.Unmarshal(raw, &text)
		return text
	}
	var blocks []rawContentItem
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var b strings.Builder
	for _, blk := range blocks {
		if blk.Type == "text" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(blk.Text)
		}
	}
	return b.String()
}

// timestampLayouts are the formats observed in transcript source files:
// RFC3339 with fractional seconds, RFC3339 without, and a bare
// space-separated form.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// CanonicalizeTimestamp parses a timestamp in any recognized source
// format and renders it in the canonical YYYY-MM-DDTHH:MM:SSZ form,
// truncating sub-second precision and normalizing to UTC.
func CanonicalizeTimestamp(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC().Format("2006-01-02T15:04:05Z"), nil
		}
		lastErr = err
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(n, 0).UTC().Format("2006-01-02T15:04:05Z"), nil
	}
	return "", fmt.Errorf("unrecognized timestamp %q: %w", raw, lastErr)
}
