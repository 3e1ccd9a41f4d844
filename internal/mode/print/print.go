// ABOUTME: Headless output for the CLI: chat replies, history tables and ingestion summaries
// ABOUTME: Text for terminals, one JSON document per call for scripts; columns are width-aware

package print

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/mauromedda/medsupport-go/internal/chat"
	"github.com/mauromedda/medsupport-go/internal/rag"
	"github.com/mauromedda/medsupport-go/internal/store"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const (
	messageColumn  = 48
	responseColumn = 60
)

// Printer writes results in one format.
type Printer struct {
	w      io.Writer
	format string
}

// New creates a Printer. Unknown formats print text.
func New(w io.Writer, format string) *Printer {
	if format != FormatJSON {
		format = FormatText
	}
	return &Printer{w: w, format: format}
}

// Format returns the effective format.
func (p *Printer) Format() string { return p.format }

// Reply prints one chat answer.
func (p *Printer) Reply(r chat.Reply) error {
	if p.format == FormatJSON {
		return p.json(r)
	}
	_, err := fmt.Fprintf(p.w, "%s\n\n[%s via %s]\n", r.Text, r.Intent, r.Source)
	return err
}

type jsonHistoryEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Intent      string    `json:"intent"`
	DataSource  string    `json:"data_source"`
}

// History prints chat log entries, newest first as given.
func (p *Printer) History(logs []store.ChatLog) error {
	if p.format == FormatJSON {
		out := make([]jsonHistoryEntry, len(logs))
		for i, l := range logs {
			out[i] = jsonHistoryEntry{l.Timestamp, l.UserMessage, l.AIResponse, l.Intent, l.DataSource}
		}
		return p.json(out)
	}

	if len(logs) == 0 {
		_, err := fmt.Fprintln(p.w, "No conversations yet.")
		return err
	}
	var b strings.Builder
	for _, l := range logs {
		fmt.Fprintf(&b, "%s  %-24s %-5s  %s  %s\n",
			l.Timestamp.Local().Format("2006-01-02 15:04"),
			l.Intent,
			l.DataSource,
			column(l.UserMessage, messageColumn),
			column(l.AIResponse, responseColumn),
		)
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Ingest prints an ingestion summary.
func (p *Printer) Ingest(dir string, st rag.Stats) error {
	if p.format == FormatJSON {
		return p.json(map[string]any{"dir": dir, "files": st.Files, "chunks": st.Chunks})
	}
	_, err := fmt.Fprintf(p.w, "Ingested %d chunks from %d files in %s\n", st.Chunks, st.Files, dir)
	return err
}

// Message prints a plain status line; in JSON mode it becomes {"message": ...}.
func (p *Printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.format == FormatJSON {
		return p.json(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func (p *Printer) json(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// column flattens s to one line and pads or truncates it to exactly width cells.
func column(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = runewidth.Truncate(s, width, "…")
	return runewidth.FillRight(s, width)
}
