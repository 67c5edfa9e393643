package builder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// firstUserMessagePreviewLength caps the session-starter preview, per
// the Glossary's "session starter" entry.
const firstUserMessagePreviewLength = 1000

// sessionMeta is step 5's per-session accumulator: first/last timestamp,
// message count, session-starter preview, and token aggregates, plus the
// summary text step 2 resolved for this session.
type sessionMeta struct {
	SessionID      string
	Summary        string
	FirstTimestamp string
	LastTimestamp  string
	MessageCount   int
	Preview        string
	Usage          domain.Usage
	HasUserMessage bool
}

// collectSessionMetadata implements step 5: group records by sessionId,
// preserving first-seen order as session order.
func collectSessionMetadata(records []domain.Record, countsForTokens []bool, summaryBySession map[string]string) ([]string, map[string]*sessionMeta) {
	order := make([]string, 0)
	info := make(map[string]*sessionMeta)

	for i, rec := range records {
		if rec.SessionID == "" || rec.Type == domain.DiscSystem {
			continue
		}
		meta, ok := info[rec.SessionID]
		if !ok {
			meta = &sessionMeta{SessionID: rec.SessionID, Summary: summaryBySession[rec.SessionID]}
			info[rec.SessionID] = meta
			order = append(order, rec.SessionID)
		}

		meta.MessageCount++
		if rec.Timestamp != "" {
			if meta.FirstTimestamp == "" || rec.Timestamp < meta.FirstTimestamp {
				meta.FirstTimestamp = rec.Timestamp
			}
			if rec.Timestamp > meta.LastTimestamp {
				meta.LastTimestamp = rec.Timestamp
			}
		}

		if rec.Type == domain.DiscUser && !rec.Meta && !rec.Sidechain {
			meta.HasUserMessage = true
			if meta.Preview == "" {
				text := rec.TextContent()
				if shouldUseAsSessionStarter(text) {
					meta.Preview = createSessionPreview(text)
				}
			}
		}

		if rec.Type == domain.DiscAssistant && rec.Usage != nil && countsForTokens[i] {
			meta.Usage.Add(*rec.Usage)
		}
	}

	return order, info
}

// shouldUseAsSessionStarter filters candidates for the session-starter
// preview: warmup and most slash commands are disqualified, "init" is
// the one command that is typically the start of a real session.
func shouldUseAsSessionStarter(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "Warmup" {
		return false
	}
	if strings.Contains(trimmed, "<command-name>") {
		return strings.Contains(trimmed, "<command-name>init")
	}
	return true
}

var ideTagPattern = regexp.MustCompile(`(?s)<ide_(?:selection|opened_file|diagnostics)>.*?</ide_(?:selection|opened_file|diagnostics)>`)

// createSessionPreview applies the init-command friendly description,
// compacts leading IDE tags, then truncates to
// firstUserMessagePreviewLength with an ellipsis.
func createSessionPreview(text string) string {
	text = extractInitCommandDescription(text)
	text = compactLeadingIDETags(text)
	runes := []rune(text)
	if len(runes) <= firstUserMessagePreviewLength {
		return text
	}
	return string(runes[:firstUserMessagePreviewLength]) + "..."
}

// extractInitCommandDescription swaps the raw `/init` command XML for a
// human-friendly description, the one slash command allowed as a session
// starter.
func extractInitCommandDescription(text string) string {
	if strings.Contains(text, "<command-name>init") && strings.Contains(text, "<command-contents>") {
		return "Claude Initializes Codebase Documentation Guide (/init command)"
	}
	return text
}

// compactLeadingIDETags replaces IDE-context tags at the very start of a
// preview with a short indicator, without touching tags appearing later
// (e.g. inside quoted transcript content).
func compactLeadingIDETags(text string) string {
	loc := ideTagPattern.FindStringIndex(text)
	if loc == nil || loc[0] != 0 {
		return text
	}
	return "[IDE context omitted]" + text[loc[1]:]
}

func formatTokenSummary(u domain.Usage) string {
	in, out := usageValue(u.InputTokens), usageValue(u.OutputTokens)
	if in == 0 && out == 0 {
		return ""
	}
	return fmt.Sprintf("%d in / %d out", in, out)
}

func usageValue(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
