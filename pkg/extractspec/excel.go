package extractspec

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bitechdev/MineSpec/pkg/logger"
	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

type excelSerializer struct{}

func (excelSerializer) Name() spectypes.ExportFormat { return spectypes.FormatExcel }
func (excelSerializer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (excelSerializer) Ext() string  { return "xlsx" }
func (excelSerializer) Binary() bool { return true }

func (excelSerializer) Serialize(result *spectypes.SearchResult, options spectypes.ExportOptions) ([]byte, error) {
	if len(result.Data) == 0 {
		return []byte{}, nil
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Closing workbook: %v", err)
		}
	}()

	const sheet = "Data Export"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	fields := fieldNames(result.Data)
	rowOffset := 1

	if options.IncludeHeaders {
		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		})
		if err != nil {
			return nil, err
		}
		for col, field := range fields {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, field); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return nil, err
			}
		}
		rowOffset = 2
	}

	for rowIdx, record := range result.Data {
		for colIdx, field := range fields {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+rowOffset)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, excelCellValue(record[field])); err != nil {
				return nil, err
			}
		}
	}

	if options.IncludeMetadata {
		const meta = "Metadata"
		if _, err := f.NewSheet(meta); err != nil {
			return nil, err
		}
		entries := [][2]interface{}{
			{"Total Count", result.TotalCount},
			{"Execution Time (ms)", result.ExecutionTimeMs},
			{"Exported At", time.Now().Format(time.RFC3339)},
		}
		for i, entry := range entries {
			if err := f.SetCellValue(meta, fmt.Sprintf("A%d", i+1), entry[0]); err != nil {
				return nil, err
			}
			if err := f.SetCellValue(meta, fmt.Sprintf("B%d", i+1), entry[1]); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// excelCellValue keeps native numbers and bools; everything structured
// becomes a JSON string like the other tabular formats.
func excelCellValue(value interface{}) interface{} {
	switch value.(type) {
	case nil:
		return ""
	case bool, int, int64, float64, string:
		return value
	default:
		return cellString(value)
	}
}
