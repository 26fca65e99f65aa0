package export

import "strings"

// TextExporter renders pre-formatted report lines into plain text bytes.
// The line content itself is the consumed contract; this only joins and
// terminates them.
type TextExporter struct{}

// NewTextExporter builds a text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Render joins report lines with newlines, ending with a trailing newline.
func (e *TextExporter) Render(lines []string) []byte {
	if len(lines) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
