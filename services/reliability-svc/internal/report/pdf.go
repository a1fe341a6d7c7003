// services/reliability-svc/internal/report/pdf.go
package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfMaxRows ограничение числа строк таблицы в PDF
const pdfMaxRows = 30

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Стили
var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	successColor   = &props.Color{Red: 39, Green: 174, Blue: 96}   // #27ae60
	dangerColor    = &props.Color{Red: 231, Green: 76, Blue: 60}   // #e74c3c
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{
		Size:  22,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  15,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	normalStyle = props.Text{Size: 10}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
		Top:   10,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  8,
		Align: align.Center,
	}
)

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, data)
	g.addHighlights(m, data)

	for _, s := range sections(data) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.addSection(m, s.Title)
		g.addKeyValueTable(m, s.Items)
		if s.Table != nil {
			g.addTable(m, s.Table)
		}
	}

	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *ReportData) {
	m.AddRow(15,
		text.NewCol(12, g.GetTitle(data), titleStyle),
	)
	m.AddRow(5,
		line.NewCol(12),
	)
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", g.GetAuthor(data)), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", g.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	if data.RunID != "" {
		m.AddRow(5,
			text.NewCol(12, fmt.Sprintf("Run: %s", data.RunID), smallStyle),
		)
	}
	if desc := g.GetDescription(data); desc != "" {
		m.AddRow(5,
			text.NewCol(12, desc, smallStyle),
		)
	}
	m.AddRow(8)
}

// addHighlights крупные карточки с главными числами отчёта
func (g *PDFGenerator) addHighlights(m core.Maroto, data *ReportData) {
	var cards []metricCard
	switch data.Kind() {
	case KindEstimate:
		r := data.Estimate
		cards = []metricCard{
			{Label: "Reliability", Value: g.FormatPercent(r.Probability), Highlight: true},
			{Label: "CI low", Value: g.FormatPercent(r.Confidence.Low)},
			{Label: "CI high", Value: g.FormatPercent(r.Confidence.High)},
			{Label: "Trials", Value: fmt.Sprintf("%d", r.Trials)},
		}
	case KindSweep:
		s := data.Sweep
		cards = []metricCard{
			{Label: "Parameter", Value: string(s.Parameter)},
			{Label: "Points", Value: fmt.Sprintf("%d", len(s.Points))},
		}
		if s.HasCrossing {
			cards = append(cards, metricCard{Label: "Below target at", Value: formatCell(s.Crossing), Highlight: true})
		}
	case KindGrow:
		gr := data.Grow
		final := gr.Baseline
		if n := len(gr.Steps); n > 0 {
			final = gr.Steps[n-1].Result
		}
		cards = []metricCard{
			{Label: "Baseline", Value: g.FormatPercent(gr.Baseline.Probability)},
			{Label: "Final", Value: g.FormatPercent(final.Probability), Highlight: true},
			{Label: "Added edges", Value: fmt.Sprintf("%d", len(gr.Steps))},
		}
	case KindNetwork:
		if data.Network != nil {
			cards = []metricCard{
				{Label: "Nodes", Value: fmt.Sprintf("%d", data.Network.NodeCount)},
				{Label: "Edges", Value: fmt.Sprintf("%d", data.Network.EdgeCount)},
				{Label: "Bridges", Value: fmt.Sprintf("%d", data.Bridges)},
			}
		}
	}
	g.addMetricCards(m, cards)
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := max(2, 12/len(cards))

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 14
		}
		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

func (g *PDFGenerator) addKeyValueTable(m core.Maroto, items []keyValue) {
	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Key, boldStyle),
			text.NewCol(6, formatCell(item.Value), normalStyle),
		)
	}
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

// addTable выводит таблицу равными колонками. Логические значения
// окрашиваются: да красным, нет зелёным.
func (g *PDFGenerator) addTable(m core.Maroto, t *table) {
	m.AddRow(4)

	size := max(1, 12/len(t.Headers))
	header := make([]core.Col, 0, len(t.Headers))
	for _, h := range t.Headers {
		header = append(header, text.NewCol(size, h, tableHeaderTextStyle).WithStyle(tableHeaderStyle))
	}
	m.AddRow(8, header...)

	for i, row := range t.Rows {
		if i >= pdfMaxRows {
			m.AddRow(6,
				text.NewCol(12, fmt.Sprintf("... and %d more rows", len(t.Rows)-pdfMaxRows), smallStyle),
			)
			break
		}
		cols := make([]core.Col, 0, len(row))
		for _, v := range row {
			style := tableCellTextStyle
			if b, ok := v.(bool); ok {
				style.Color = successColor
				if b {
					style.Color = dangerColor
				}
			}
			cols = append(cols, text.NewCol(size, formatCell(v), style).WithStyle(tableCellStyle))
		}
		m.AddRow(6, cols...)
	}
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *ReportData) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by netreliability | %s", g.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
