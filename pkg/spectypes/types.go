package spectypes

import "time"

// SearchOperator identifies a filter predicate. The set mirrors what the
// query endpoint accepts on the wire.
type SearchOperator string

const (
	OpEquals       SearchOperator = "equals"
	OpNotEquals    SearchOperator = "not_equals"
	OpContains     SearchOperator = "contains"
	OpNotContains  SearchOperator = "not_contains"
	OpStartsWith   SearchOperator = "starts_with"
	OpEndsWith     SearchOperator = "ends_with"
	OpGreaterThan  SearchOperator = "gt"
	OpGreaterEqual SearchOperator = "gte"
	OpLessThan     SearchOperator = "lt"
	OpLessEqual    SearchOperator = "lte"
	OpBetween      SearchOperator = "between"
	OpIn           SearchOperator = "in"
	OpNotIn        SearchOperator = "not_in"
	OpIsNull       SearchOperator = "is_null"
	OpIsNotNull    SearchOperator = "is_not_null"
	OpRegex        SearchOperator = "regex"
	OpFullText     SearchOperator = "full_text"
)

// DataType is the semantic type of a searchable field. It drives value
// coercion and decides which operators are legal on the field.
type DataType string

const (
	TypeString   DataType = "string"
	TypeInteger  DataType = "integer"
	TypeFloat    DataType = "float"
	TypeBoolean  DataType = "boolean"
	TypeDate     DataType = "date"
	TypeDateTime DataType = "datetime"
	TypeJSON     DataType = "json"
	TypeArray    DataType = "array"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Operators returns every supported operator, in wire order.
func Operators() []SearchOperator {
	return []SearchOperator{
		OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpStartsWith, OpEndsWith,
		OpGreaterThan, OpGreaterEqual, OpLessThan, OpLessEqual,
		OpBetween, OpIn, OpNotIn,
		OpIsNull, OpIsNotNull, OpRegex, OpFullText,
	}
}

// DataTypes returns every supported field data type.
func DataTypes() []DataType {
	return []DataType{
		TypeString, TypeInteger, TypeFloat, TypeBoolean,
		TypeDate, TypeDateTime, TypeJSON, TypeArray,
	}
}

// OperatorAllowed reports whether op may be applied to a field of type dt.
// Ordered comparisons need ordered types, substring matching needs text-like
// storage, and the nullity operators work everywhere.
func OperatorAllowed(op SearchOperator, dt DataType) bool {
	switch op {
	case OpEquals, OpNotEquals, OpIn, OpNotIn, OpIsNull, OpIsNotNull:
		return true
	case OpContains, OpNotContains:
		return dt == TypeString || dt == TypeArray || dt == TypeJSON
	case OpStartsWith, OpEndsWith, OpRegex, OpFullText:
		return dt == TypeString
	case OpGreaterThan, OpGreaterEqual, OpLessThan, OpLessEqual, OpBetween:
		return dt == TypeInteger || dt == TypeFloat || dt == TypeDate || dt == TypeDateTime || dt == TypeString
	default:
		return false
	}
}

// FilterCondition narrows a search to records whose field matches the
// operator/value pair. Value is coerced to DataType before being applied.
type FilterCondition struct {
	Field    string         `json:"field"`
	Operator SearchOperator `json:"operator"`
	Value    interface{}    `json:"value"`
	DataType DataType       `json:"data_type"`
}

type SortCondition struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// SearchQuery is the declarative request executed by the search engine.
// Construct with DefaultSearchQuery so absent JSON keys keep their
// documented defaults; the engine clamps page bounds itself.
type SearchQuery struct {
	Entity             string            `json:"entity"`
	Filters            []FilterCondition `json:"filters"`
	SearchText         string            `json:"search_text,omitempty"`
	SearchFields       []string          `json:"search_fields,omitempty"`
	Sort               []SortCondition   `json:"sort,omitempty"`
	Page               int               `json:"page"`
	PageSize           int               `json:"page_size"`
	IncludeRelations   bool              `json:"include_relations"`
	AggregateFunctions map[string]string `json:"aggregate_functions,omitempty"`
}

// DefaultSearchQuery returns a query with the wire defaults applied.
func DefaultSearchQuery() SearchQuery {
	return SearchQuery{
		Page:             1,
		PageSize:         20,
		IncludeRelations: true,
	}
}

// SearchResult is one page of rows plus the pre-pagination totals,
// aggregations, and diagnostics for the query that produced it.
type SearchResult struct {
	Data            []map[string]interface{} `json:"data"`
	TotalCount      int                      `json:"total_count"`
	Page            int                      `json:"page"`
	PageSize        int                      `json:"page_size"`
	TotalPages      int                      `json:"total_pages"`
	Aggregations    map[string]interface{}   `json:"aggregations,omitempty"`
	ExecutionTimeMs float64                  `json:"execution_time_ms"`
	QueryInfo       map[string]interface{}   `json:"query_info,omitempty"`

	// Warnings lists the request parts that were ignored rather than
	// failing the whole query: filters on unknown fields, operators not
	// legal for a field's type, malformed between/in values.
	Warnings []string `json:"warnings,omitempty"`
}

// EntitySchema describes what can be searched on an entity.
type EntitySchema struct {
	Entity             string              `json:"entity"`
	SearchableFields   map[string]DataType `json:"searchable_fields"`
	FullTextFields     []string            `json:"full_text_fields"`
	SupportedOperators []SearchOperator    `json:"supported_operators"`
	SupportedDataTypes []DataType          `json:"supported_data_types"`
	RelationFields     []string            `json:"relation_fields,omitempty"`
}

type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
	FormatPDF   ExportFormat = "pdf"
	FormatXML   ExportFormat = "xml"
)

// ExportOptions shapes how a search result is serialized. Construct with
// DefaultExportOptions so absent JSON keys keep their defaults.
type ExportOptions struct {
	Format           ExportFormat `json:"format"`
	IncludeHeaders   bool         `json:"include_headers"`
	IncludeMetadata  bool         `json:"include_metadata"`
	IncludeRelations bool         `json:"include_relations"`
	FlattenJSON      bool         `json:"flatten_json"`
	CustomFilename   string       `json:"custom_filename,omitempty"`
	TemplateName     string       `json:"template_name,omitempty"`
	Compression      bool         `json:"compression"`
}

// DefaultExportOptions returns options with the wire defaults applied.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		IncludeHeaders:  true,
		IncludeMetadata: true,
		FlattenJSON:     true,
	}
}

// ExportResult carries the serialized payload. FileData holds plain text
// for text formats and base64 for binary ones (excel, pdf, zip).
type ExportResult struct {
	Filename    string       `json:"filename"`
	Format      ExportFormat `json:"format"`
	ContentType string       `json:"content_type"`
	SizeBytes   int          `json:"size_bytes"`
	RecordCount int          `json:"record_count"`
	FileData    string       `json:"file_data"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ExportTemplate is a named projection applied to rows before serializing.
// Fields may use dotted paths into eager-loaded relations ("user.email").
type ExportTemplate struct {
	Fields      []string `json:"fields"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}
