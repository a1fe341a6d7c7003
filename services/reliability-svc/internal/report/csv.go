// services/reliability-svc/internal/report/csv.go
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
)

// CSVGenerator генератор CSV отчётов
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

// Generate генерирует CSV отчёт. Разделы идут один за другим и отделяются
// пустой строкой, таблицы выводятся полностью.
func (g *CSVGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	cw := &csvWriter{w: w}

	cw.Write([]string{"# " + g.GetTitle(data)})
	cw.Write([]string{"Generated", g.FormatTimestamp(data.GeneratedAt)})
	if data.RunID != "" {
		cw.Write([]string{"Run", data.RunID})
	}
	cw.Write([]string{""})

	for _, s := range sections(data) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cw.Write([]string{s.Title})
		for _, kv := range s.Items {
			cw.Write([]string{kv.Key, formatCell(kv.Value)})
		}
		if s.Table != nil {
			cw.Write(s.Table.Headers)
			for _, row := range s.Table.Rows {
				cw.Write(formatRow(row))
			}
		}
		cw.Write([]string{""})
	}

	cw.Flush()
	if cw.err != nil {
		return nil, fmt.Errorf("csv write error: %w", cw.err)
	}
	return buf.Bytes(), nil
}
