// services/reliability-svc/internal/report/excel.go
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// ExcelGenerator генератор Excel отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

// Generate генерирует Excel отчёт. Пары ключ-значение всех разделов
// попадают на лист Summary, каждая таблица получает собственный лист.
func (g *ExcelGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("excel sheet error: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel style error: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, fmt.Errorf("excel style error: %w", err)
	}

	w := &sheetWriter{f: f}
	parts := sections(data)

	// Лист со сводкой
	row := 1
	w.set(summarySheet, Cell(0, row), g.GetTitle(data))
	w.style(summarySheet, Cell(0, row), Cell(0, row), titleStyle)
	w.merge(summarySheet, Cell(0, row), Cell(3, row))
	row++
	w.set(summarySheet, Cell(0, row), "Generated")
	w.set(summarySheet, Cell(1, row), g.FormatTimestamp(data.GeneratedAt))
	row++
	if data.RunID != "" {
		w.set(summarySheet, Cell(0, row), "Run")
		w.set(summarySheet, Cell(1, row), data.RunID)
		row++
	}
	row++

	for _, s := range parts {
		if len(s.Items) == 0 {
			continue
		}
		w.set(summarySheet, Cell(0, row), s.Title)
		w.style(summarySheet, Cell(0, row), Cell(1, row), headerStyle)
		row++
		for _, kv := range s.Items {
			w.set(summarySheet, Cell(0, row), kv.Key)
			w.set(summarySheet, Cell(1, row), kv.Value)
			row++
		}
		row++
	}
	w.width(summarySheet, "A", "A", 26)
	w.width(summarySheet, "B", "B", 18)

	// Листы с таблицами
	for _, s := range parts {
		if s.Table == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.writeTableSheet(w, s.Table, headerStyle)
	}

	if w.err != nil {
		return nil, fmt.Errorf("excel write error: %w", w.err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeTableSheet(w *sheetWriter, t *table, headerStyle int) {
	if _, err := w.f.NewSheet(t.Name); err != nil {
		w.fail(err)
		return
	}

	last := len(t.Headers) - 1
	for i, h := range t.Headers {
		w.set(t.Name, Cell(i, 1), h)
	}
	w.style(t.Name, Cell(0, 1), Cell(last, 1), headerStyle)

	for r, values := range t.Rows {
		for c, v := range values {
			if b, ok := v.(bool); ok {
				v = formatCell(b)
			}
			w.set(t.Name, Cell(c, r+2), v)
		}
	}
	w.width(t.Name, ColName(0), ColName(last), 14)
}

// sheetWriter запоминает первую ошибку excelize
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *sheetWriter) set(sheet, cell string, value any) {
	if w.err != nil {
		return
	}
	w.fail(w.f.SetCellValue(sheet, cell, value))
}

func (w *sheetWriter) style(sheet, from, to string, style int) {
	if w.err != nil {
		return
	}
	w.fail(w.f.SetCellStyle(sheet, from, to, style))
}

func (w *sheetWriter) merge(sheet, from, to string) {
	if w.err != nil {
		return
	}
	w.fail(w.f.MergeCell(sheet, from, to))
}

func (w *sheetWriter) width(sheet, from, to string, width float64) {
	if w.err != nil {
		return
	}
	w.fail(w.f.SetColWidth(sheet, from, to, width))
}
