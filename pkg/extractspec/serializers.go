package extractspec

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// Serializer renders one search result page into an export format.
// Implementations are stateless; the static table below registers one
// per wire format.
type Serializer interface {
	// Name is the wire name of the format
	Name() spectypes.ExportFormat

	// ContentType is the MIME type served on download
	ContentType() string

	// Ext is the filename extension, without the dot
	Ext() string

	// Binary reports whether the payload needs base64 transport encoding
	Binary() bool

	Serialize(result *spectypes.SearchResult, options spectypes.ExportOptions) ([]byte, error)
}

var serializers = map[spectypes.ExportFormat]Serializer{
	spectypes.FormatJSON:  jsonSerializer{},
	spectypes.FormatCSV:   csvSerializer{},
	spectypes.FormatExcel: excelSerializer{},
	spectypes.FormatPDF:   pdfSerializer{},
	spectypes.FormatXML:   xmlSerializer{},
}

// SerializerFor returns the serializer registered for format.
func SerializerFor(format spectypes.ExportFormat) (Serializer, error) {
	s, ok := serializers[format]
	if !ok {
		return nil, &spectypes.UnsupportedFormatError{Format: format}
	}
	return s, nil
}

// Formats describes every registered format for the formats endpoint.
func Formats() []map[string]interface{} {
	names := make([]spectypes.ExportFormat, 0, len(serializers))
	for name := range serializers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	out := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		s := serializers[name]
		out = append(out, map[string]interface{}{
			"format":       s.Name(),
			"content_type": s.ContentType(),
			"extension":    s.Ext(),
			"binary":       s.Binary(),
		})
	}
	return out
}

// fieldNames returns the sorted union of keys across all records.
func fieldNames(data []map[string]interface{}) []string {
	seen := make(map[string]struct{})
	for _, record := range data {
		for key := range record {
			seen[key] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for key := range seen {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// cellString renders one value for a tabular cell. Maps and lists become
// JSON strings, nil becomes the empty string.
func cellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}, []interface{}, []string, []map[string]interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	case float64:
		// Avoid trailing zeros on round numbers
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

type jsonSerializer struct{}

func (jsonSerializer) Name() spectypes.ExportFormat { return spectypes.FormatJSON }
func (jsonSerializer) ContentType() string          { return "application/json" }
func (jsonSerializer) Ext() string                  { return "json" }
func (jsonSerializer) Binary() bool                 { return false }

func (jsonSerializer) Serialize(result *spectypes.SearchResult, options spectypes.ExportOptions) ([]byte, error) {
	payload := map[string]interface{}{
		"data": result.Data,
	}
	if options.IncludeMetadata {
		payload["metadata"] = map[string]interface{}{
			"total_count":       result.TotalCount,
			"page":              result.Page,
			"page_size":         result.PageSize,
			"total_pages":       result.TotalPages,
			"execution_time_ms": result.ExecutionTimeMs,
			"query_info":        result.QueryInfo,
			"exported_at":       time.Now().Format(time.RFC3339),
		}
	}
	if len(result.Aggregations) > 0 {
		payload["aggregations"] = result.Aggregations
	}

	return json.MarshalIndent(payload, "", "  ")
}

type csvSerializer struct{}

func (csvSerializer) Name() spectypes.ExportFormat { return spectypes.FormatCSV }
func (csvSerializer) ContentType() string          { return "text/csv" }
func (csvSerializer) Ext() string                  { return "csv" }
func (csvSerializer) Binary() bool                 { return false }

func (csvSerializer) Serialize(result *spectypes.SearchResult, options spectypes.ExportOptions) ([]byte, error) {
	if len(result.Data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	fields := fieldNames(result.Data)

	if options.IncludeHeaders {
		if err := writer.Write(fields); err != nil {
			return nil, err
		}
	}

	row := make([]string, len(fields))
	for _, record := range result.Data {
		for i, field := range fields {
			row[i] = cellString(record[field])
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	if options.IncludeMetadata {
		buf.WriteString("\n# Metadata\n")
		fmt.Fprintf(&buf, "# Total Count: %d\n", result.TotalCount)
		fmt.Fprintf(&buf, "# Execution Time: %gms\n", result.ExecutionTimeMs)
		fmt.Fprintf(&buf, "# Exported At: %s\n", time.Now().Format(time.RFC3339))
	}

	return buf.Bytes(), nil
}

type xmlSerializer struct{}

func (xmlSerializer) Name() spectypes.ExportFormat { return spectypes.FormatXML }
func (xmlSerializer) ContentType() string          { return "application/xml" }
func (xmlSerializer) Ext() string                  { return "xml" }
func (xmlSerializer) Binary() bool                 { return false }

var xmlTagSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Serialize writes records with field names as element tags. Tags are
// dynamic data, so this stays a manual writer: encoding/xml cannot emit
// element names taken from values.
func (xmlSerializer) Serialize(result *spectypes.SearchResult, options spectypes.ExportOptions) ([]byte, error) {
	var lines []string
	lines = append(lines, `<?xml version="1.0" encoding="UTF-8"?>`, "<export>")

	if options.IncludeMetadata {
		lines = append(lines,
			"  <metadata>",
			fmt.Sprintf("    <total_count>%d</total_count>", result.TotalCount),
			fmt.Sprintf("    <execution_time_ms>%g</execution_time_ms>", result.ExecutionTimeMs),
			fmt.Sprintf("    <exported_at>%s</exported_at>", time.Now().Format(time.RFC3339)),
			"  </metadata>")
	}

	lines = append(lines, "  <data>")
	for _, record := range result.Data {
		lines = append(lines, "    <record>")
		for _, key := range fieldNames([]map[string]interface{}{record}) {
			tag := xmlTagSanitizer.ReplaceAllString(key, "_")
			value := escapeXML(cellString(record[key]))
			lines = append(lines, fmt.Sprintf("      <%s>%s</%s>", tag, value, tag))
		}
		lines = append(lines, "    </record>")
	}
	lines = append(lines, "  </data>", "</export>")

	return []byte(strings.Join(lines, "\n")), nil
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
