// Package luatable emits nested Lua table literals to an io.Writer.
//
// The writer is a stack of open table scopes: values and child tables are
// separated by commas tracked per scope, keys are written bare or quoted
// as the caller chooses, and a compact mode trades newlines and
// indentation for single spaces inside dense numeric runs.
//
// Errors are sticky: after the first sink failure or scope discipline
// violation every further call is a no-op, so a misused or failed writer
// never emits malformed text. The first error is available from Err and
// returned by EndDocument.
package luatable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrProtocol reports a broken scope discipline: unbalanced tables,
	// writes outside the document bracket, or a second root table.
	// It is a programmer error, never recoverable.
	ErrProtocol = errors.New("luatable: protocol violation")

	// ErrWrite reports a failure of the underlying sink.
	ErrWrite = errors.New("luatable: write failed")
)

type Writer struct {
	w *bufio.Writer

	indent       int
	depth        int
	started      bool
	ended        bool
	rootOpened   bool
	newLine      bool
	valueWritten bool
	suppress     bool
	err          error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), newLine: true}
}

// Err returns the first error the writer ran into, if any.
func (w *Writer) Err() error {
	return w.err
}

// StartDocument begins the document. It must be called exactly once,
// before any other method.
func (w *Writer) StartDocument() {
	if w.err != nil {
		return
	}
	if w.started {
		w.violate("document started twice")
		return
	}
	w.started = true
}

// EndDocument closes the document, flushes the sink and returns the
// writer's error state. All tables must be closed before calling it.
func (w *Writer) EndDocument() error {
	if w.err == nil {
		switch {
		case !w.started:
			w.violate("document never started")
		case w.ended:
			w.violate("document ended twice")
		case !w.rootOpened:
			w.violate("no root table")
		case w.depth != 0:
			w.violate(fmt.Sprintf("%d tables left open", w.depth))
		default:
			w.ended = true
			w.write("\n")
			if err := w.w.Flush(); err != nil && w.err == nil {
				w.err = fmt.Errorf("%w: %v", ErrWrite, err)
			}
		}
	}
	return w.err
}

// StartReturnTable opens the single top-level returned table.
func (w *Writer) StartReturnTable() {
	if !w.ready() {
		return
	}
	if w.rootOpened {
		w.violate("second root table")
		return
	}
	w.rootOpened = true
	w.open("return {")
}

// StartTable opens a positional child table.
func (w *Writer) StartTable() {
	if !w.inTable() {
		return
	}
	w.open("{")
}

// StartNamedTable opens a child table keyed by a bare identifier.
func (w *Writer) StartNamedTable(key string) {
	if !w.inTable() {
		return
	}
	w.open(key + " = {")
}

// StartQuotedTable opens a child table keyed by an arbitrary string,
// written in ["key"] form.
func (w *Writer) StartQuotedTable(key string) {
	if !w.inTable() {
		return
	}
	w.open(`["` + escapeString(key) + `"] = {`)
}

// EndTable closes the most recently opened table.
func (w *Writer) EndTable() {
	if !w.ready() {
		return
	}
	if w.depth == 0 {
		w.violate("table closed with none open")
		return
	}
	w.indent--
	w.depth--
	if w.valueWritten {
		w.writeNewline()
	}
	w.write("}")
	w.newLine = false
	w.valueWritten = true
}

// WriteValue writes one positional scalar into the current table.
func (w *Writer) WriteValue(v any) {
	if !w.inTable() {
		return
	}
	w.prepareNewValue()
	w.write(formatValue(v))
	w.newLine = false
	w.valueWritten = true
}

// WriteKeyAndValue writes a bare-identifier keyed scalar entry.
func (w *Writer) WriteKeyAndValue(key string, v any) {
	if !w.inTable() {
		return
	}
	w.prepareNewLine()
	w.write(key + " = " + formatValue(v))
	w.newLine = false
	w.valueWritten = true
}

// WriteQuotedKeyAndValue writes a keyed scalar entry with the key in
// quoted ["key"] form, for keys that are arbitrary user data.
func (w *Writer) WriteQuotedKeyAndValue(key string, v any) {
	if !w.inTable() {
		return
	}
	w.prepareNewLine()
	w.write(`["` + escapeString(key) + `"] = ` + formatValue(v))
	w.newLine = false
	w.valueWritten = true
}

// WriteKeyAndUnquotedValue writes a keyed entry with the value emitted
// verbatim as a Lua expression.
func (w *Writer) WriteKeyAndUnquotedValue(key, raw string) {
	if !w.inTable() {
		return
	}
	w.prepareNewLine()
	w.write(key + " = " + raw)
	w.newLine = false
	w.valueWritten = true
}

// SetCompact toggles compact mode: newlines and indentation are replaced
// by single spaces until toggled off. Comma placement is unaffected.
func (w *Writer) SetCompact(enabled bool) {
	w.suppress = enabled
}

// PrepareNewLine forces a line break before the next entry, emitting any
// pending comma. Used to group dense runs one source row per line.
func (w *Writer) PrepareNewLine() {
	if !w.inTable() {
		return
	}
	w.prepareNewLine()
}

func (w *Writer) ready() bool {
	if w.err != nil {
		return false
	}
	if !w.started || w.ended {
		w.violate("call outside document")
		return false
	}
	return true
}

func (w *Writer) inTable() bool {
	if !w.ready() {
		return false
	}
	if w.depth == 0 {
		w.violate("no open table")
		return false
	}
	return true
}

func (w *Writer) violate(msg string) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: %s", ErrProtocol, msg)
	}
}

func (w *Writer) open(head string) {
	w.prepareNewLine()
	w.write(head)
	w.indent++
	w.depth++
	w.newLine = false
	w.valueWritten = false
}

func (w *Writer) prepareNewLine() {
	if w.valueWritten {
		w.write(",")
		w.valueWritten = false
	}
	w.writeNewline()
}

func (w *Writer) prepareNewValue() {
	if w.valueWritten {
		w.write(", ")
	} else {
		w.writeNewline()
	}
}

func (w *Writer) writeNewline() {
	if w.newLine {
		return
	}
	if w.suppress {
		w.write(" ")
	} else {
		w.write("\n")
		w.write(strings.Repeat("  ", w.indent))
	}
	w.newLine = true
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.w.WriteString(s); err != nil {
		w.err = fmt.Errorf("%w: %v", ErrWrite, err)
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case string:
		return `"` + escapeString(x) + `"`
	case []byte:
		return `"` + escapeString(string(x)) + `"`
	default:
		return `"` + escapeString(fmt.Sprint(x)) + `"`
	}
}

// formatFloat writes integral floats without an exponent or trailing
// fraction, matching how tile coordinates usually read.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func escapeString(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
