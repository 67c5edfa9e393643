package builder

import "strings"

// These tag markers identify the small set of synthetic user-message
// shapes the editor emits inline with regular transcript text: slash
// commands and their local output, and raw bash input/output captured
// outside the tool-use/tool-result protocol. original_source/'s
// parser.py defines the matching detectors, but its regex bodies were
// filtered out of the retrieved pack (kept only the call sites in
// utils.py/renderer.py) — these are grounded on spec.md's own
// description of the tags (§3, §9 Glossary) and on the `<command-name>`
// / `<ide_...>` tag conventions already used by internal/sync/aggregate.go
// for the same transcript format.
const compactedSummaryPrefix = "This session is being continued from a previous conversation that ran out of context"

func isSlashCommand(text string) bool {
	return strings.Contains(text, "<command-name>")
}

func isCommandOutput(text string) bool {
	return strings.Contains(text, "<local-command-stdout>") || strings.Contains(text, "<local-command-stderr>")
}

func isBashInputText(text string) bool {
	return strings.Contains(text, "<bash-input>")
}

func isBashOutputText(text string) bool {
	return strings.Contains(text, "<bash-stdout>") || strings.Contains(text, "<bash-stderr>")
}

func isCompactedSummaryText(text string) bool {
	return strings.HasPrefix(text, compactedSummaryPrefix)
}

// filePathFromToolInput extracts the file path argument from a tool-use
// input when the tool operates on a single named file (Read, Edit,
// Write, NotebookEdit and similar); used to give the paired tool-result
// a file-path hint without re-parsing the tool-use's own input.
func filePathFromToolInput(input map[string]any) string {
	for _, key := range []string{"file_path", "path", "notebook_path"} {
		if v, ok := input[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
