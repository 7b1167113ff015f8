package extractspec

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

func exportEngine() *Engine {
	return &Engine{templates: DefaultTemplates()}
}

func TestExportCSV(t *testing.T) {
	engine := exportEngine()

	options := spectypes.DefaultExportOptions()
	options.Format = spectypes.FormatCSV

	result, err := engine.Export(sampleResult(), "students", options)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if result.Format != spectypes.FormatCSV || result.ContentType != "text/csv" {
		t.Errorf("unexpected descriptor: %+v", result)
	}
	if result.RecordCount != 2 {
		t.Errorf("expected 2 records, got %d", result.RecordCount)
	}
	if result.SizeBytes != len(result.FileData) {
		t.Errorf("text payload should travel unencoded, size=%d len=%d", result.SizeBytes, len(result.FileData))
	}

	pattern := regexp.MustCompile(`^students_export_\d{8}_\d{6}\.csv$`)
	if !pattern.MatchString(result.Filename) {
		t.Errorf("unexpected filename %q", result.Filename)
	}
}

func TestExportCustomFilename(t *testing.T) {
	engine := exportEngine()

	options := spectypes.DefaultExportOptions()
	options.Format = spectypes.FormatCSV
	options.CustomFilename = "roster.csv"

	result, err := engine.Export(sampleResult(), "students", options)
	if err != nil {
		t.Fatal(err)
	}
	if result.Filename != "roster.csv" {
		t.Errorf("custom filename should win, got %q", result.Filename)
	}
}

func TestExportTemplateFilenameBase(t *testing.T) {
	engine := exportEngine()

	options := spectypes.DefaultExportOptions()
	options.Format = spectypes.FormatCSV
	options.TemplateName = "student_report"

	result, err := engine.Export(sampleResult(), "students", options)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(result.Filename, "student_report_") {
		t.Errorf("template name should become the filename base, got %q", result.Filename)
	}
}

func TestExportFlattensForTabularFormats(t *testing.T) {
	engine := exportEngine()

	nested := &spectypes.SearchResult{
		Data: []map[string]interface{}{
			{"name": "Ada", "user": map[string]interface{}{"email": "ada@example.com"}},
		},
		TotalCount: 1,
	}

	options := spectypes.DefaultExportOptions()
	options.Format = spectypes.FormatCSV
	options.IncludeMetadata = false

	result, err := engine.Export(nested, "students", options)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.FileData, "user.email") {
		t.Errorf("nested map should flatten into a dotted column, got %q", result.FileData)
	}

	// JSON keeps the nesting even with flattening requested
	options.Format = spectypes.FormatJSON
	result, err = engine.Export(nested, "students", options)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(result.FileData, "user.email") {
		t.Errorf("json export should keep nesting, got %q", result.FileData)
	}
}

func TestExportCompression(t *testing.T) {
	engine := exportEngine()

	options := spectypes.DefaultExportOptions()
	options.Format = spectypes.FormatCSV
	options.Compression = true

	result, err := engine.Export(sampleResult(), "students", options)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(result.Filename, ".csv.zip") {
		t.Errorf("compressed export should gain a .zip suffix, got %q", result.Filename)
	}

	payload, err := base64.StdEncoding.DecodeString(result.FileData)
	if err != nil {
		t.Fatalf("compressed payload should be base64: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("payload is not a zip archive: %v", err)
	}
	if len(reader.File) != 1 || !strings.HasSuffix(reader.File[0].Name, ".csv") {
		t.Fatalf("expected a single csv entry, got %v", reader.File)
	}

	entry, err := reader.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer entry.Close()
	content, err := io.ReadAll(entry)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "Ada") {
		t.Errorf("archive entry should hold the csv payload, got %q", content)
	}
}

func TestExportBinaryEncoding(t *testing.T) {
	engine := exportEngine()

	options := spectypes.DefaultExportOptions()
	options.Format = spectypes.FormatExcel

	result, err := engine.Export(sampleResult(), "students", options)
	if err != nil {
		t.Fatal(err)
	}

	payload, err := base64.StdEncoding.DecodeString(result.FileData)
	if err != nil {
		t.Fatalf("binary payload should be base64: %v", err)
	}
	if !bytes.HasPrefix(payload, []byte("PK")) {
		t.Errorf("xlsx payload should be a zip container, got %q", payload[:4])
	}
	if result.SizeBytes != len(payload) {
		t.Errorf("size should count raw bytes, got %d for %d", result.SizeBytes, len(payload))
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	engine := exportEngine()

	options := spectypes.DefaultExportOptions()
	options.Format = "parquet"

	if _, err := engine.Export(sampleResult(), "students", options); !spectypes.IsUnsupportedFormat(err) {
		t.Errorf("expected UnsupportedFormatError, got %v", err)
	}
}
