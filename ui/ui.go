package ui

import (
	"encoding/json"
	"io"
)

// Severity classifies the visual weight of a piece of inline text.
type Severity uint8

const (
	SeverityInfo     Severity = iota // plain
	SeveritySuccess                  // green, known / positive
	SeverityWarn                     // yellow, loading / needs attention
	SeverityError                    // red, failed read or action
	SeverityCritical                 // bold, must review before signing
)

// StyledText pairs a plain string with a Severity annotation. It marshals
// as the plain string so JSON consumers never see colour codes.
//
//	u.Info("Total assets: %s", u.Style(ui.StyledText{Text: "loading...", Severity: ui.SeverityWarn}))
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI is all terminal interaction of vaultctl commands. Production code uses
// TerminalUI, tests use RecordingUI.
type UI interface {
	// Style returns t coloured according to its Severity, or the plain text
	// when colours are disabled.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error writes a failure in red. It does not exit.
	Error(format string, args ...any)
	// Critical writes what the user must review before signing, or the proof
	// of what was just broadcast.
	Critical(format string, args ...any)

	// Section writes a separator centred around title.
	Section(title string)
	// KeyValue renders label/value rows with values aligned to one column.
	KeyValue(rows [][2]string)
	// Table renders a bordered table. A nil headers slice omits the header row.
	Table(headers []string, rows [][]string)
	// TableWithGroups is Table with a divider between each group of rows.
	TableWithGroups(headers []string, groups [][][]string)

	// Spinner shows msg with an animation until the returned func is called.
	Spinner(msg string) func()

	// Interpret echoes what was understood from the last input, e.g.
	// "→ 1,500,000 (1.5 USDC)".
	Interpret(value string)

	// Ask reads one line after a "> " prompt, looping until validate returns
	// nil. A nil validate accepts anything.
	Ask(validate func(string) error) string
	Confirm(prompt string, defaultYes bool) bool
	// Choose returns the 0-based index of the selected option.
	Choose(prompt string, options []string) int

	// Indent returns a child UI one level deeper sharing the same streams.
	Indent() UI
	// Writer returns a writer that indents every line at the current level.
	Writer() io.Writer
}
