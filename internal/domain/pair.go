package domain

// PairRole is the small enum marking a TemplateMessage's role within a
// display pair. Unpaired messages carry PairNone.
type PairRole string

const (
	PairNone  PairRole = ""
	PairFirst PairRole = "pair_first"
	PairLast  PairRole = "pair_last"
)

// TemplateKind extends Discriminator with the rendering-only variants
// materialized from a Record's content items while building the template
// tree: tool_use, tool_result, thinking, image, bash-input, bash-output,
// and the synthetic session-header.
type TemplateKind string

const (
	TmplUser          TemplateKind = "user"
	TmplAssistant     TemplateKind = "assistant"
	TmplSystem        TemplateKind = "system"
	TmplToolUse       TemplateKind = "tool_use"
	TmplToolResult    TemplateKind = "tool_result"
	TmplThinking      TemplateKind = "thinking"
	TmplImage         TemplateKind = "image"
	TmplBashInput     TemplateKind = "bash-input"
	TmplBashOutput    TemplateKind = "bash-output"
	TmplSessionHeader TemplateKind = "session-header"
)
