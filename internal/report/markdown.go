package report

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/Caellian/wiki-extractor/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writePages(md, summary)
	w.writeOutputs(md, summary)
	w.writeDiagnostics(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Extraction Report")
	md.PlainText("")

	source := summary.Source
	if summary.Language != "" {
		source += " (" + summary.Language + "/" + summary.DumpVersion + ")"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + source + "`"},
			{"Output Directory", "`" + summary.OutputDir + "`"},
			{"Started", summary.Started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Elapsed.Round(10 * time.Millisecond).String()},
			{"Status", w.statusText(summary)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on the run outcome.
func (w *MarkdownWriter) statusText(summary *Summary) string {
	var status string
	switch summary.Outcome {
	case model.OutcomeCompleted:
		status = "✅ Complete"
	case model.OutcomeCancelled:
		status = "⚠️ Cancelled (partial results)"
	case model.OutcomeFailed:
		status = "❌ Failed at " + string(summary.FailedStage)
	default:
		status = string(summary.Outcome)
	}
	if summary.Unverified {
		status += " (checksum mismatch)"
	}
	return status
}

// writePages writes the page and byte counters.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, summary *Summary) {
	md.H2("Pages")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages emitted", format(summary.PagesEmitted)},
			{"Pages written", format(summary.PagesWritten)},
			{"Pages skipped", format(summary.PagesSkipped)},
			{"Pages degraded", format(summary.PagesDegraded)},
			{"Redirects", format(summary.Redirects)},
			{"Bytes read", humanize.Bytes(uint64(summary.BytesRead))},
			{"Bytes decoded", humanize.Bytes(uint64(summary.BytesDecoded))},
		},
	})
	md.PlainText("")
}

// writeOutputs writes the per-generator counters and artifact list.
func (w *MarkdownWriter) writeOutputs(md *markdown.Markdown, summary *Summary) {
	md.H2("Output")
	md.PlainText("")

	var rows [][]string
	if summary.TextUnits > 0 {
		rows = append(rows, []string{"Text units", format(summary.TextUnits)})
	}
	if summary.DistinctTokens > 0 {
		rows = append(rows, []string{"Distinct tokens", format(int64(summary.DistinctTokens))})
		rows = append(rows, []string{"Total tokens", format(summary.TotalTokens)})
	}
	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Counter", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(summary.Artifacts) > 0 {
		items := make([]string, len(summary.Artifacts))
		for i, a := range summary.Artifacts {
			items[i] = "`" + a + "`"
		}
		md.BulletList(items...)
		md.PlainText("")
	}
}

// writeDiagnostics writes the non-fatal error tallies, if any.
func (w *MarkdownWriter) writeDiagnostics(md *markdown.Markdown, summary *Summary) {
	if len(summary.Diagnostics) == 0 {
		return
	}

	md.H2("Diagnostics")
	md.PlainText("")

	kinds := make([]string, 0, len(summary.Diagnostics))
	for kind := range summary.Diagnostics {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	rows := make([][]string, 0, len(kinds))
	for _, kind := range kinds {
		rows = append(rows, []string{kind, strconv.Itoa(summary.Diagnostics[kind])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func format(n int64) string {
	return humanize.Comma(n)
}
