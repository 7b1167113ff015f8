package minespec

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitechdev/MineSpec/pkg/common"
	"github.com/bitechdev/MineSpec/pkg/logger"
	"github.com/bitechdev/MineSpec/pkg/metrics"
	"github.com/bitechdev/MineSpec/pkg/schema"
	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// Engine executes declarative search queries against registered entities.
// It is stateless apart from its wiring and safe for concurrent use.
type Engine struct {
	db       common.Database
	registry common.ModelRegistry
	schema   *schema.Registry

	// DefaultPageSize and MaxPageSize bound pagination. Zero keeps the
	// wire defaults of 20 and 100.
	DefaultPageSize int
	MaxPageSize     int
}

// NewEngine creates a search engine over the given database, model
// registry, and entity schema catalogue.
func NewEngine(db common.Database, registry common.ModelRegistry, sc *schema.Registry) *Engine {
	return &Engine{
		db:       db,
		registry: registry,
		schema:   sc,
	}
}

// Database returns the underlying database connection
func (e *Engine) Database() common.Database {
	return e.db
}

// Schema returns the entity catalogue the engine searches over
func (e *Engine) Schema() *schema.Registry {
	return e.schema
}

// Search executes the query: filters, free-text, count, sort, paginate,
// scan, aggregate. Unknown fields and illegal operator/type combinations
// never fail the query; they are skipped and reported in Warnings.
func (e *Engine) Search(ctx context.Context, query spectypes.SearchQuery) (result *spectypes.SearchResult, err error) {
	start := time.Now()
	defer func() {
		metrics.GetProvider().RecordSearch(query.Entity, time.Since(start), err)
	}()

	e.clampPage(&query)

	ent, err := e.schema.Entity(query.Entity)
	if err != nil {
		return nil, err
	}

	model, err := e.registry.GetModel(query.Entity)
	if err != nil {
		return nil, &spectypes.UnknownEntityError{Entity: query.Entity}
	}

	logger.Debug("Searching %s: %d filters, text=%q, page=%d size=%d",
		query.Entity, len(query.Filters), query.SearchText, query.Page, query.PageSize)

	var warnings []string

	rows := newModelSlice(model)
	q := e.db.NewSelect().Model(rows)

	if query.IncludeRelations {
		for _, rel := range ent.Relations {
			q = q.Relation(rel)
		}
	}

	for _, cond := range query.Filters {
		q = e.applyFilter(q, &ent, cond, &warnings)
	}

	if query.SearchText != "" {
		q = e.applyTextSearch(q, &ent, query.SearchText, query.SearchFields, &warnings)
	}

	totalCount, err := q.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting %s: %w", query.Entity, err)
	}

	for _, sc := range query.Sort {
		if !ent.HasField(sc.Field) {
			warnings = append(warnings, fmt.Sprintf("sort on unknown field %q ignored", sc.Field))
			continue
		}
		dir := "ASC"
		if sc.Order == spectypes.SortDesc {
			dir = "DESC"
		}
		q = q.Order(fmt.Sprintf("%s %s", sc.Field, dir))
	}

	q = q.Limit(query.PageSize).Offset((query.Page - 1) * query.PageSize)

	if err := q.Scan(ctx, rows); err != nil {
		return nil, fmt.Errorf("searching %s: %w", query.Entity, err)
	}

	data := sliceToMaps(rows, &ent)

	var aggregations map[string]interface{}
	if len(query.AggregateFunctions) > 0 {
		aggregations = e.aggregate(ctx, &ent, query.Filters, query.AggregateFunctions)
	}

	return &spectypes.SearchResult{
		Data:            data,
		TotalCount:      totalCount,
		Page:            query.Page,
		PageSize:        query.PageSize,
		TotalPages:      (totalCount + query.PageSize - 1) / query.PageSize,
		Aggregations:    aggregations,
		ExecutionTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		QueryInfo: map[string]interface{}{
			"entity":             query.Entity,
			"filters_applied":    len(query.Filters),
			"full_text_search":   query.SearchText != "",
			"relations_included": query.IncludeRelations,
		},
		Warnings: warnings,
	}, nil
}

// clampPage bounds pagination using the engine limits.
func (e *Engine) clampPage(q *spectypes.SearchQuery) {
	def, max := e.DefaultPageSize, e.MaxPageSize
	if def <= 0 {
		def = 20
	}
	if max <= 0 {
		max = 100
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = def
	}
	if q.PageSize > max {
		q.PageSize = max
	}
}

// applyFilter translates one condition into a WHERE clause. Field names
// are validated against the entity schema before they reach SQL; nothing
// from the request is interpolated unchecked.
func (e *Engine) applyFilter(q common.SelectQuery, ent *schema.Entity, cond spectypes.FilterCondition, warnings *[]string) common.SelectQuery {
	fieldType, ok := ent.Fields[cond.Field]
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("filter on unknown field %q ignored", cond.Field))
		return q
	}
	if !spectypes.OperatorAllowed(cond.Operator, fieldType) {
		*warnings = append(*warnings, fmt.Sprintf("operator %s not supported on %s field %q, filter ignored",
			cond.Operator, fieldType, cond.Field))
		return q
	}

	// The wire may declare its own data type for the value; the schema
	// type wins when they disagree.
	value := CoerceValue(cond.Value, fieldType)
	col := cond.Field

	switch cond.Operator {
	case spectypes.OpEquals:
		return q.Where(fmt.Sprintf("%s = ?", col), value)
	case spectypes.OpNotEquals:
		return q.Where(fmt.Sprintf("%s != ?", col), value)
	case spectypes.OpContains:
		if fieldType == spectypes.TypeJSON || fieldType == spectypes.TypeArray {
			return q.Where(fmt.Sprintf("CAST(%s AS TEXT) LIKE ?", col), "%"+stringify(cond.Value)+"%")
		}
		return q.Where(fmt.Sprintf("%s LIKE ?", col), "%"+stringify(value)+"%")
	case spectypes.OpNotContains:
		if fieldType == spectypes.TypeJSON || fieldType == spectypes.TypeArray {
			return q.Where(fmt.Sprintf("CAST(%s AS TEXT) NOT LIKE ?", col), "%"+stringify(cond.Value)+"%")
		}
		return q.Where(fmt.Sprintf("%s NOT LIKE ?", col), "%"+stringify(value)+"%")
	case spectypes.OpStartsWith:
		return q.Where(fmt.Sprintf("%s LIKE ?", col), stringify(value)+"%")
	case spectypes.OpEndsWith:
		return q.Where(fmt.Sprintf("%s LIKE ?", col), "%"+stringify(value))
	case spectypes.OpGreaterThan:
		return q.Where(fmt.Sprintf("%s > ?", col), value)
	case spectypes.OpGreaterEqual:
		return q.Where(fmt.Sprintf("%s >= ?", col), value)
	case spectypes.OpLessThan:
		return q.Where(fmt.Sprintf("%s < ?", col), value)
	case spectypes.OpLessEqual:
		return q.Where(fmt.Sprintf("%s <= ?", col), value)
	case spectypes.OpBetween:
		low, high, ok := asPair(cond.Value)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("between filter on %q needs a two-element value, ignored", col))
			return q
		}
		return q.Where(fmt.Sprintf("%s BETWEEN ? AND ?", col),
			CoerceValue(low, fieldType), CoerceValue(high, fieldType))
	case spectypes.OpIn:
		list, ok := asList(cond.Value)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("in filter on %q needs a non-empty list value, ignored", col))
			return q
		}
		return q.Where(fmt.Sprintf("%s IN (?)", col), coerceList(list, fieldType))
	case spectypes.OpNotIn:
		list, ok := asList(cond.Value)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("not_in filter on %q needs a non-empty list value, ignored", col))
			return q
		}
		return q.Where(fmt.Sprintf("%s NOT IN (?)", col), coerceList(list, fieldType))
	case spectypes.OpIsNull:
		return q.Where(fmt.Sprintf("%s IS NULL", col))
	case spectypes.OpIsNotNull:
		return q.Where(fmt.Sprintf("%s IS NOT NULL", col))
	case spectypes.OpRegex:
		if e.db.DriverName() != "postgres" {
			*warnings = append(*warnings, fmt.Sprintf("regex filter on %q requires postgres, ignored", col))
			return q
		}
		return q.Where(fmt.Sprintf("%s ~ ?", col), stringify(value))
	case spectypes.OpFullText:
		if e.db.DriverName() == "postgres" {
			return q.Where(fmt.Sprintf("to_tsvector('english', %s) @@ plainto_tsquery('english', ?)", col), stringify(value))
		}
		return q.Where(fmt.Sprintf("%s LIKE ?", col), "%"+stringify(value)+"%")
	default:
		*warnings = append(*warnings, fmt.Sprintf("unknown operator %q on field %q ignored", cond.Operator, col))
		return q
	}
}

// applyTextSearch ORs a substring match (and on postgres a full-text
// match) per candidate field. Fields default to the entity's full-text
// list when the request names none.
func (e *Engine) applyTextSearch(q common.SelectQuery, ent *schema.Entity, text string, fields []string, warnings *[]string) common.SelectQuery {
	candidates := fields
	if len(candidates) == 0 {
		candidates = ent.FullText
	}

	pg := e.db.DriverName() == "postgres"
	pattern := "%" + text + "%"

	var exprs []string
	var args []interface{}
	for _, field := range candidates {
		if !ent.CanSearchText(field) {
			*warnings = append(*warnings, fmt.Sprintf("search field %q not text-searchable on %s, ignored", field, ent.Name))
			continue
		}
		if pg {
			exprs = append(exprs,
				fmt.Sprintf("%s ILIKE ?", field),
				fmt.Sprintf("to_tsvector('english', %s) @@ plainto_tsquery('english', ?)", field))
			args = append(args, pattern, text)
		} else {
			exprs = append(exprs, fmt.Sprintf("%s LIKE ?", field))
			args = append(args, pattern)
		}
	}
	if len(exprs) == 0 {
		return q
	}

	return q.Where("("+strings.Join(exprs, " OR ")+")", args...)
}

// aggregate runs one query per requested function over the filtered set
// (free-text search excluded, matching the query endpoint contract).
// A failing aggregate yields a null value under its key instead of
// failing the search.
func (e *Engine) aggregate(ctx context.Context, ent *schema.Entity, filters []spectypes.FilterCondition, functions map[string]string) map[string]interface{} {
	aggregations := make(map[string]interface{})
	var discard []string

	for field, function := range functions {
		key := fmt.Sprintf("%s_%s", field, function)

		switch function {
		case "count":
			q := e.db.NewSelect().Table(ent.Table)
			for _, cond := range filters {
				q = e.applyFilter(q, ent, cond, &discard)
			}
			n, err := q.Count(ctx)
			if err != nil {
				logger.Warn("Aggregation %s failed: %v", key, err)
				aggregations[key] = nil
				continue
			}
			aggregations[key] = n

		case "avg", "sum", "min", "max":
			if !ent.HasField(field) {
				continue
			}
			q := e.db.NewSelect().Table(ent.Table).
				ColumnExpr(fmt.Sprintf("%s(%s)", strings.ToUpper(function), field))
			for _, cond := range filters {
				q = e.applyFilter(q, ent, cond, &discard)
			}
			var out interface{}
			if err := q.Scan(ctx, &out); err != nil {
				logger.Warn("Aggregation %s failed: %v", key, err)
				aggregations[key] = nil
				continue
			}
			aggregations[key] = out

		default:
			// Unknown function, no key emitted
			continue
		}
	}

	return aggregations
}

// EntitySchema returns the searchable schema descriptor for an entity.
func (e *Engine) EntitySchema(entity string) (*spectypes.EntitySchema, error) {
	return e.schema.Describe(entity)
}

// Entities returns all searchable entity names.
func (e *Engine) Entities() []string {
	return e.schema.Names()
}

func stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func coerceList(list []interface{}, dt spectypes.DataType) []interface{} {
	out := make([]interface{}, len(list))
	for i, v := range list {
		out[i] = CoerceValue(v, dt)
	}
	return out
}
