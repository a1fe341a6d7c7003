// services/reliability-svc/internal/report/markdown.go
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// MarkdownGenerator генератор Markdown отчётов
type MarkdownGenerator struct {
	BaseGenerator
}

// NewMarkdownGenerator создаёт новый генератор
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Format возвращает формат генератора
func (g *MarkdownGenerator) Format() Format {
	return FormatMarkdown
}

// Generate генерирует Markdown отчёт
func (g *MarkdownGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer

	g.writeHeader(&buf, data)
	if est := data.Estimate; est != nil {
		fmt.Fprintf(&buf, "> Reliability **%s** (%s confidence interval %s .. %s)\n\n",
			g.FormatPercent(est.Probability), g.FormatPercent(est.ConfidenceLvl),
			g.FormatPercent(est.Confidence.Low), g.FormatPercent(est.Confidence.High))
	}

	for _, s := range sections(data) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "## %s\n\n", s.Title)
		if len(s.Items) > 0 {
			buf.WriteString("| Metric | Value |\n")
			buf.WriteString("|--------|-------|\n")
			for _, kv := range s.Items {
				fmt.Fprintf(&buf, "| %s | %s |\n", kv.Key, escapeMarkdown(formatCell(kv.Value)))
			}
			buf.WriteString("\n")
		}
		if s.Table != nil {
			g.writeTable(&buf, s.Table)
		}
	}

	g.writeFooter(&buf)
	return buf.Bytes(), nil
}

func (g *MarkdownGenerator) writeHeader(buf *bytes.Buffer, data *ReportData) {
	fmt.Fprintf(buf, "# %s\n\n", g.GetTitle(data))

	buf.WriteString("## Report Information\n\n")
	fmt.Fprintf(buf, "- **Generated:** %s\n", g.FormatTimestamp(data.GeneratedAt))
	fmt.Fprintf(buf, "- **Author:** %s\n", g.GetAuthor(data))
	if data.RunID != "" {
		fmt.Fprintf(buf, "- **Run:** `%s`\n", data.RunID)
	}
	if desc := g.GetDescription(data); desc != "" {
		fmt.Fprintf(buf, "- **Description:** %s\n", desc)
	}

	buf.WriteString("\n---\n\n")
}

func (g *MarkdownGenerator) writeTable(buf *bytes.Buffer, t *table) {
	buf.WriteString("| " + strings.Join(t.Headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat("---|", len(t.Headers)) + "\n")
	for _, row := range t.Rows {
		cells := formatRow(row)
		for i := range cells {
			cells[i] = escapeMarkdown(cells[i])
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeFooter(buf *bytes.Buffer) {
	buf.WriteString("---\n\n")
	buf.WriteString("*Generated by netreliability*\n")
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
