// Package render provides ANSI-colored terminal rendering for a decoded
// event stream.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/calumba-holding/spacebot/opencode"
)

// ANSI color codes - chosen to work on both light and dark backgrounds
const (
	ColorReset   = "\x1b[0m"
	ColorDim     = "\x1b[2m"
	ColorItalic  = "\x1b[3m"
	ColorBold    = "\x1b[1m"
	ColorRed     = "\x1b[31m"
	ColorGreen   = "\x1b[32m"
	ColorYellow  = "\x1b[33m"
	ColorBlue    = "\x1b[34m"
	ColorMagenta = "\x1b[35m"
	ColorCyan    = "\x1b[36m"
	ColorGray    = "\x1b[90m"
)

// Renderer handles terminal output with ANSI colors. Tool lifecycles are
// tracked by call ID so completion lines can name the tool that started
// them; text parts are deduplicated against full-text snapshots so only new
// output is printed.
type Renderer struct {
	out     io.Writer
	tools   map[string]string // callID → tool name
	texts   map[string]string // part ID → text printed so far
	seen    map[string]bool   // message IDs already announced
	mu      sync.Mutex
	verbose bool
	noColor bool
	midLine bool
}

// NewRenderer creates a new renderer writing to the given output.
// If verbose is true, message headers, steps, and tool output are shown.
// If noColor is true, ANSI color codes are suppressed.
func NewRenderer(out io.Writer, verbose, noColor bool) *Renderer {
	if !noColor {
		noColor = !isTerminal(out)
	}
	return &Renderer{
		out:     out,
		verbose: verbose,
		noColor: noColor,
		tools:   make(map[string]string),
		texts:   make(map[string]string),
		seen:    make(map[string]bool),
	}
}

// isTerminal checks if the writer is a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// color returns the color code if colors are enabled, empty string otherwise.
func (r *Renderer) color(c string) string {
	if r.noColor {
		return ""
	}
	return c
}

// Event renders a single decoded event.
func (r *Renderer) Event(ev opencode.Event) {
	switch e := ev.(type) {
	case opencode.MessageUpdatedEvent:
		r.message(e.Info)
	case opencode.MessagePartUpdatedEvent:
		r.part(e.Part, e.Delta)
	case opencode.SessionStatusEvent:
		r.Status(fmt.Sprintf("session %s %s", e.SessionID, e.Status))
	case opencode.SessionIdleEvent:
		r.idle(e.SessionID)
	case opencode.SessionErrorEvent:
		r.sessionError(e)
	case opencode.ErrorEvent:
		r.Error(e.Error, "stream")
	case opencode.UnknownEvent:
		if r.verbose {
			r.Status("event " + e.Tag)
		}
	}
}

// message announces a message the first time it appears. Later updates to
// the same message (e.g. completion timestamps) stay silent.
func (r *Renderer) message(info *opencode.MessageInfo) {
	if info == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.verbose || r.seen[info.ID] {
		return
	}
	r.seen[info.ID] = true

	label := string(info.Role)
	if info.ProviderID != "" && info.ModelID != "" {
		label += " " + info.ProviderID + "/" + info.ModelID
	}
	r.breakLine()
	fmt.Fprintf(r.out, "%s[%s]%s\n", r.color(ColorGray), label, r.color(ColorReset))
}

// part renders one part update.
func (r *Renderer) part(part opencode.Part, delta *string) {
	switch p := part.(type) {
	case opencode.TextPart:
		r.text(p, delta)
	case opencode.ToolPart:
		r.tool(p)
	case opencode.StepFinishPart:
		r.stepFinish(p)
	}
}

// text prints streaming text output. With a delta the chunk is printed as
// is; otherwise the new snapshot is diffed against what was already printed
// so re-sent prefixes stay silent.
func (r *Renderer) text(part opencode.TextPart, delta *string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chunk := ""
	switch {
	case delta != nil:
		chunk = *delta
	case strings.HasPrefix(part.Text, r.texts[part.ID]):
		chunk = part.Text[len(r.texts[part.ID]):]
	default:
		chunk = part.Text
	}
	if part.Text != "" {
		r.texts[part.ID] = part.Text
	}
	if chunk == "" {
		return
	}

	fmt.Fprint(r.out, chunk)
	r.midLine = !strings.HasSuffix(chunk, "\n")
}

// tool renders a tool lifecycle transition.
func (r *Renderer) tool(part opencode.ToolPart) {
	if part.State == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch state := part.State.(type) {
	case opencode.ToolStatePending, opencode.ToolStateRunning:
		r.tools[part.CallID] = part.Tool
	case opencode.ToolStateCompleted:
		label := state.Title
		if label == "" {
			label = r.toolName(part)
		}
		r.breakLine()
		fmt.Fprintf(r.out, "%s[%s]%s %s✓%s%s\n",
			r.color(ColorCyan), truncate(label, 60), r.color(ColorReset),
			r.color(ColorGreen), duration(state.Time), r.color(ColorReset))
		if r.verbose && state.Output != "" {
			fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorDim), strings.TrimRight(state.Output, "\n"), r.color(ColorReset))
		}
		delete(r.tools, part.CallID)
	case opencode.ToolStateError:
		r.breakLine()
		fmt.Fprintf(r.out, "%s[%s]%s %s✗ %s%s%s\n",
			r.color(ColorCyan), truncate(r.toolName(part), 60), r.color(ColorReset),
			r.color(ColorRed), state.Error, duration(state.Time), r.color(ColorReset))
		delete(r.tools, part.CallID)
	}
}

// toolName resolves the display name for a tool call.
func (r *Renderer) toolName(part opencode.ToolPart) string {
	if name, ok := r.tools[part.CallID]; ok && name != "" {
		return name
	}
	return part.Tool
}

// stepFinish prints step accounting in verbose mode.
func (r *Renderer) stepFinish(part opencode.StepFinishPart) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.verbose {
		return
	}

	fields := []string{"step " + part.Reason}
	if part.Tokens != nil {
		fields = append(fields, fmt.Sprintf("%d input / %d output tokens", part.Tokens.Input, part.Tokens.Output))
	}
	if part.Cost != nil {
		fields = append(fields, fmt.Sprintf("$%.4f", *part.Cost))
	}
	r.breakLine()
	fmt.Fprintf(r.out, "%s[%s]%s\n", r.color(ColorGray), strings.Join(fields, ", "), r.color(ColorReset))
}

// Status prints a status message.
func (r *Renderer) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
	fmt.Fprintf(r.out, "%s[Status]%s %s\n", r.color(ColorGray), r.color(ColorReset), msg)
}

// idle prints the end-of-turn separator.
func (r *Renderer) idle(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
	fmt.Fprintf(r.out, "%s───────────────────────────────────────────────────────%s\n", r.color(ColorDim), r.color(ColorReset))
	fmt.Fprintf(r.out, "%s✓ session %s idle%s\n", r.color(ColorGreen), sessionID, r.color(ColorReset))
}

// sessionError prints a server-reported session error.
func (r *Renderer) sessionError(e opencode.SessionErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	detail := ""
	if len(e.Err) > 0 {
		detail = " " + string(e.Err)
	}
	r.breakLine()
	fmt.Fprintf(r.out, "%s[Error: session %s]%s%s\n", r.color(ColorRed), e.SessionID, r.color(ColorReset), detail)
}

// Error prints an error message.
func (r *Renderer) Error(err error, context string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
	fmt.Fprintf(r.out, "%s[Error: %s]%s %v\n", r.color(ColorRed), context, r.color(ColorReset), err)
}

// Done finishes a dangling text line before the program exits.
func (r *Renderer) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakLine()
}

// breakLine terminates an unfinished streaming text line. Callers must hold
// the mutex.
func (r *Renderer) breakLine() {
	if r.midLine {
		fmt.Fprintln(r.out)
		r.midLine = false
	}
}

// duration formats the elapsed time of a tool state (omitted when unknown).
func duration(t opencode.ToolTime) string {
	if t.End == nil || *t.End <= t.Start {
		return ""
	}
	return fmt.Sprintf(" %.2fs", float64(*t.End-t.Start)/1000)
}

// truncate truncates a string to the given max length.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
