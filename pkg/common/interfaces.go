package common

import "context"

// Database is the row-store handle the engines depend on. It is the
// read-side subset of an ORM: the search engine only ever selects, counts,
// and aggregates; inserts exist for seeding and host applications.
// Implementations must be safe for concurrent use.
type Database interface {
	NewSelect() SelectQuery
	NewInsert() InsertQuery

	// Raw SQL execution, for schema setup and host-side plumbing.
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	// DriverName returns the canonical driver name: "postgres", "sqlite",
	// "mysql" or "mssql". Adapters normalise vendor strings (e.g. Bun's
	// "pg") before returning. The engines branch on this for features
	// that are not portable, such as full-text search and regex matching.
	DriverName() string

	// GetUnderlyingDB exposes the wrapped connection (*bun.DB for the bun
	// adapter) for provider-specific features.
	GetUnderlyingDB() interface{}
}

// SelectQuery builds a SELECT against the row-store.
type SelectQuery interface {
	Model(model interface{}) SelectQuery
	Table(table string) SelectQuery
	Column(columns ...string) SelectQuery
	ColumnExpr(query string, args ...interface{}) SelectQuery
	Where(query string, args ...interface{}) SelectQuery
	WhereOr(query string, args ...interface{}) SelectQuery
	Relation(name string, apply ...func(SelectQuery) SelectQuery) SelectQuery
	Order(order string) SelectQuery
	Limit(n int) SelectQuery
	Offset(n int) SelectQuery

	Scan(ctx context.Context, dest interface{}) error
	ScanModel(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context) (bool, error)
}

// InsertQuery builds an INSERT.
type InsertQuery interface {
	Model(model interface{}) InsertQuery
	Table(table string) InsertQuery
	Value(column string, value interface{}) InsertQuery

	Exec(ctx context.Context) (Result, error)
}

// Result reports the outcome of a statement.
type Result interface {
	RowsAffected() int64
	LastInsertId() (int64, error)
}

// ModelRegistry resolves entity names to their registered model structs.
type ModelRegistry interface {
	RegisterModel(name string, model interface{}) error
	GetModel(name string) (interface{}, error)
	GetAllModels() map[string]interface{}
}

// TableNameProvider is implemented by models that declare their own table.
type TableNameProvider interface {
	TableName() string
}
