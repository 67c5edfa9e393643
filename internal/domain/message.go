package domain

import "encoding/json"

// Discriminator is the closed set of transcript record types recognized
// via the JSONL `type` field.
type Discriminator string

const (
	DiscUser           Discriminator = "user"
	DiscAssistant      Discriminator = "assistant"
	DiscSummary        Discriminator = "summary"
	DiscSystem         Discriminator = "system"
	DiscQueueOperation Discriminator = "queue-operation"
)

// SystemLevel is the level of a system record, used by the hierarchy pass.
type SystemLevel string

const (
	SystemInfo    SystemLevel = "info"
	SystemWarning SystemLevel = "warning"
	SystemError   SystemLevel = "error"
)

// Usage carries the four nullable token counters that appear on assistant
// records.
type Usage struct {
	InputTokens         *int64
	OutputTokens        *int64
	CacheCreationTokens *int64
	CacheReadTokens     *int64
}

// Add adds another Usage's counters into this one, treating absent
// counters as zero (null-safe summation).
func (u *Usage) Add(o Usage) {
	u.InputTokens = addNullable(u.InputTokens, o.InputTokens)
	u.OutputTokens = addNullable(u.OutputTokens, o.OutputTokens)
	u.CacheCreationTokens = addNullable(u.CacheCreationTokens, o.CacheCreationTokens)
	u.CacheReadTokens = addNullable(u.CacheReadTokens, o.CacheReadTokens)
}

func addNullable(a, b *int64) *int64 {
	if a == nil && b == nil {
		return nil
	}
	var av, bv int64
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	sum := av + bv
	return &sum
}

// Record is one parsed transcript line, tagged by Discriminator. Fields not
// relevant to a given discriminator are left zero-valued; callers switch on
// Type rather than relying on open polymorphism.
type Record struct {
	Type Discriminator

	// Identity & linkage.
	UUID       string
	ParentUUID string
	SessionID  string

	// Source provenance, filled in by the loader/synchronizer, not present
	// in the JSONL itself.
	ProjectID int64
	FileID    int64
	LineNum   int

	// Timestamp, both the raw string as it appeared in the source and the
	// canonicalized YYYY-MM-DDTHH:MM:SSZ form.
	RawTimestamp string
	Timestamp    string

	Sidechain bool
	Meta      bool
	AgentID   string
	RequestID string
	Cwd       string
	GitBranch string

	// user / assistant payload.
	Role    string // "user" | "assistant"
	Content []ContentItem
	Usage   *Usage

	// system payload.
	SystemLevel   SystemLevel
	SystemContent string

	// summary payload.
	SummaryText string
	LeafUUID    string

	// queue-operation payload.
	QueueOperation string // e.g. "remove"

	// Full original JSON, kept for payload compression and round-trip
	// export.
	Raw json.RawMessage
}

// TextContent concatenates the text of all text content items, joined
// by newlines.
func (r *Record) TextContent() string {
	out := ""
	for _, c := range r.Content {
		if c.Kind == ContentText {
			if out != "" {
				out += "\n"
			}
			out += c.Text
		}
	}
	return out
}
