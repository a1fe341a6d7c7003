// services/reliability-svc/internal/report/generator.go
package report

import (
	"context"
	"fmt"
	"time"

	"netreliability/pkg/apperror"
)

// Generator генератор отчётов одного формата
type Generator interface {
	Generate(ctx context.Context, data *ReportData) ([]byte, error)
	Format() Format
}

// New возвращает генератор для формата
func New(format Format) (Generator, error) {
	switch format {
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatJSON:
		return NewJSONGenerator(), nil
	case FormatMarkdown:
		return NewMarkdownGenerator(), nil
	case FormatExcel:
		return NewExcelGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	default:
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unknown report format %q", format), "format")
	}
}

// BaseGenerator общие утилиты генераторов
type BaseGenerator struct{}

// GetTitle заголовок отчёта
func (b *BaseGenerator) GetTitle(data *ReportData) string {
	if data.Options != nil && data.Options.Title != "" {
		return data.Options.Title
	}
	switch data.Kind() {
	case KindEstimate:
		return "Network Reliability Estimate"
	case KindSweep:
		return "Reliability Sensitivity Report"
	case KindGrow:
		return "Topology Growth Report"
	default:
		return "Network Report"
	}
}

// GetAuthor автор отчёта
func (b *BaseGenerator) GetAuthor(data *ReportData) string {
	if data.Options != nil && data.Options.Author != "" {
		return data.Options.Author
	}
	return "netreliability"
}

// GetDescription описание отчёта
func (b *BaseGenerator) GetDescription(data *ReportData) string {
	if data.Options != nil {
		return data.Options.Description
	}
	return ""
}

// FormatPercent форматирует долю как процент
func (b *BaseGenerator) FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatTimestamp форматирует время генерации
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02 15:04:05")
}

// ColName преобразует индекс колонки в буквенное обозначение (0 -> A, 25 -> Z, 26 -> AA)
func ColName(index int) string {
	result := ""
	for {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}

// Cell возвращает адрес ячейки по индексам колонки и строки
func Cell(colIndex, row int) string {
	return fmt.Sprintf("%s%d", ColName(colIndex), row)
}
