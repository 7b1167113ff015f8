package extractspec

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// PDF rendering limits keep the fixed-width table legible.
const (
	pdfMaxFields     = 6
	pdfMaxRecords    = 50
	pdfMaxCellRunes  = 30
	pdfComplexTrunc  = 47
	pdfComplexMarker = "..."
)

type pdfSerializer struct{}

func (pdfSerializer) Name() spectypes.ExportFormat { return spectypes.FormatPDF }
func (pdfSerializer) ContentType() string          { return "application/pdf" }
func (pdfSerializer) Ext() string                  { return "pdf" }
func (pdfSerializer) Binary() bool                 { return true }

func (pdfSerializer) Serialize(result *spectypes.SearchResult, options spectypes.ExportOptions) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Data Export Report", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	if options.IncludeMetadata {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetFillColor(211, 211, 211)
		meta := [][2]string{
			{"Total Records", fmt.Sprintf("%d", result.TotalCount)},
			{"Execution Time", fmt.Sprintf("%gms", result.ExecutionTimeMs)},
			{"Exported At", time.Now().Format("2006-01-02 15:04:05")},
		}
		for _, entry := range meta {
			pdf.CellFormat(50, 7, entry[0], "", 0, "L", true, 0, "")
			pdf.CellFormat(80, 7, entry[1], "", 1, "L", true, 0, "")
		}
		pdf.Ln(6)
	}

	if len(result.Data) > 0 {
		fields := fieldNames(result.Data)
		if len(fields) > pdfMaxFields {
			fields = fields[:pdfMaxFields]
		}

		pageWidth, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		colWidth := (pageWidth - left - right) / float64(len(fields))

		if options.IncludeHeaders {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetFillColor(128, 128, 128)
			pdf.SetTextColor(245, 245, 245)
			for _, field := range fields {
				pdf.CellFormat(colWidth, 8, truncateCell(field), "1", 0, "L", true, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetFillColor(245, 245, 220)
		pdf.SetTextColor(0, 0, 0)

		records := result.Data
		if len(records) > pdfMaxRecords {
			records = records[:pdfMaxRecords]
		}
		for _, record := range records {
			for _, field := range fields {
				pdf.CellFormat(colWidth, 7, truncateCell(pdfCellValue(record[field])), "1", 0, "L", true, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pdfCellValue renders structured values truncated with an ellipsis
// before the generic cell cap is applied.
func pdfCellValue(value interface{}) string {
	switch value.(type) {
	case map[string]interface{}, []interface{}, []string, []map[string]interface{}:
		s := cellString(value)
		if len(s) > pdfComplexTrunc+len(pdfComplexMarker) {
			return s[:pdfComplexTrunc] + pdfComplexMarker
		}
		return s
	default:
		return cellString(value)
	}
}

func truncateCell(s string) string {
	runes := []rune(s)
	if len(runes) > pdfMaxCellRunes {
		return string(runes[:pdfMaxCellRunes])
	}
	return s
}
