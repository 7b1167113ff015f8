package database

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/bitechdev/MineSpec/pkg/common"
	"github.com/bitechdev/MineSpec/pkg/logger"
	"github.com/bitechdev/MineSpec/pkg/metrics"
)

// QueryDebugHook is a Bun query hook that logs all SQL queries including preloads
type QueryDebugHook struct{}

func (h *QueryDebugHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryDebugHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)
	if event.Err != nil {
		logger.Error("SQL Query Failed [%s]: %s. Error: %v", duration, event.Query, event.Err)
	} else {
		logger.Debug("SQL Query Success [%s]: %s", duration, event.Query)
	}
}

// BunAdapter adapts Bun to work with our Database interface
type BunAdapter struct {
	db *bun.DB
}

// NewBunAdapter creates a new Bun adapter
func NewBunAdapter(db *bun.DB) *BunAdapter {
	return &BunAdapter{db: db}
}

// EnableQueryDebug enables query debugging which logs all SQL queries including preloads
func (b *BunAdapter) EnableQueryDebug() {
	b.db.AddQueryHook(&QueryDebugHook{})
	logger.Info("Bun query debug mode enabled - all SQL queries will be logged")
}

func (b *BunAdapter) NewSelect() common.SelectQuery {
	return &BunSelectQuery{
		query: b.db.NewSelect(),
		db:    b.db,
	}
}

func (b *BunAdapter) NewInsert() common.InsertQuery {
	return &BunInsertQuery{query: b.db.NewInsert()}
}

func (b *BunAdapter) Exec(ctx context.Context, query string, args ...interface{}) (res common.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunAdapter.Exec", r)
		}
	}()
	start := time.Now()
	result, err := b.db.ExecContext(ctx, query, args...)
	metrics.GetProvider().RecordDBQuery("exec", "", time.Since(start), err)
	return &BunResult{result: result}, err
}

func (b *BunAdapter) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunAdapter.Query", r)
		}
	}()
	return b.db.NewRaw(query, args...).Scan(ctx, dest)
}

// DriverName reports the canonical driver name, normalizing Bun's
// dialect identifiers ("pg" becomes "postgres").
func (b *BunAdapter) DriverName() string {
	switch b.db.Dialect().Name() {
	case dialect.PG:
		return "postgres"
	case dialect.SQLite:
		return "sqlite"
	case dialect.MySQL:
		return "mysql"
	case dialect.MSSQL:
		return "mssql"
	default:
		return b.db.Dialect().Name().String()
	}
}

func (b *BunAdapter) GetUnderlyingDB() interface{} {
	return b.db
}

// BunSelectQuery wraps a bun.SelectQuery behind the SelectQuery interface.
type BunSelectQuery struct {
	query    *bun.SelectQuery
	db       *bun.DB
	hasModel bool
}

func (b *BunSelectQuery) Model(model interface{}) common.SelectQuery {
	b.query = b.query.Model(model)
	b.hasModel = true
	return b
}

func (b *BunSelectQuery) Table(table string) common.SelectQuery {
	b.query = b.query.Table(table)
	return b
}

func (b *BunSelectQuery) Column(columns ...string) common.SelectQuery {
	b.query = b.query.Column(columns...)
	return b
}

func (b *BunSelectQuery) ColumnExpr(query string, args ...interface{}) common.SelectQuery {
	b.query = b.query.ColumnExpr(query, args...)
	return b
}

func (b *BunSelectQuery) Where(query string, args ...interface{}) common.SelectQuery {
	b.query = b.query.Where(query, expandSliceArgs(args)...)
	return b
}

func (b *BunSelectQuery) WhereOr(query string, args ...interface{}) common.SelectQuery {
	b.query = b.query.WhereOr(query, expandSliceArgs(args)...)
	return b
}

func (b *BunSelectQuery) Relation(name string, apply ...func(common.SelectQuery) common.SelectQuery) common.SelectQuery {
	b.query = b.query.Relation(name, func(sq *bun.SelectQuery) *bun.SelectQuery {
		defer func() {
			if r := recover(); r != nil {
				_ = logger.HandlePanic("BunSelectQuery.Relation", r)
			}
		}()
		if len(apply) == 0 {
			return sq
		}

		current := common.SelectQuery(&BunSelectQuery{query: sq, db: b.db})
		for _, fn := range apply {
			if fn != nil {
				current = fn(current)
			}
		}
		if final, ok := current.(*BunSelectQuery); ok {
			return final.query
		}
		return sq
	})
	return b
}

func (b *BunSelectQuery) Order(order string) common.SelectQuery {
	b.query = b.query.Order(order)
	return b
}

func (b *BunSelectQuery) Limit(n int) common.SelectQuery {
	b.query = b.query.Limit(n)
	return b
}

func (b *BunSelectQuery) Offset(n int) common.SelectQuery {
	b.query = b.query.Offset(n)
	return b
}

func (b *BunSelectQuery) Scan(ctx context.Context, dest interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.Scan", r)
		}
	}()
	if dest == nil {
		return fmt.Errorf("destination cannot be nil")
	}

	start := time.Now()
	err = b.query.Scan(ctx, dest)
	metrics.GetProvider().RecordDBQuery("select", b.query.GetTableName(), time.Since(start), err)
	if err != nil {
		logger.Error("BunSelectQuery.Scan failed. SQL: %s. Error: %v", b.query.String(), err)
	}
	return err
}

func (b *BunSelectQuery) ScanModel(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.ScanModel", r)
		}
	}()
	if b.query.GetModel() == nil {
		return fmt.Errorf("model is nil")
	}

	start := time.Now()
	err = b.query.Scan(ctx)
	metrics.GetProvider().RecordDBQuery("select", b.query.GetTableName(), time.Since(start), err)
	if err != nil {
		logger.Error("BunSelectQuery.ScanModel failed. SQL: %s. Error: %v", b.query.String(), err)
	}
	return err
}

func (b *BunSelectQuery) Count(ctx context.Context) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.Count", r)
			count = 0
		}
	}()
	// With a model set bun's native Count() works; otherwise wrap as a
	// subquery to avoid the Model(nil) error when only Table() was used.
	start := time.Now()
	if b.hasModel {
		count, err := b.query.Count(ctx)
		metrics.GetProvider().RecordDBQuery("count", b.query.GetTableName(), time.Since(start), err)
		if err != nil {
			logger.Error("BunSelectQuery.Count failed. SQL: %s. Error: %v", b.query.String(), err)
		}
		return count, err
	}

	countQuery := b.db.NewSelect().
		TableExpr("(?) AS subquery", b.query).
		ColumnExpr("COUNT(*)")
	err = countQuery.Scan(ctx, &count)
	metrics.GetProvider().RecordDBQuery("count", b.query.GetTableName(), time.Since(start), err)
	if err != nil {
		logger.Error("BunSelectQuery.Count (subquery) failed. SQL: %s. Error: %v", countQuery.String(), err)
	}
	return count, err
}

func (b *BunSelectQuery) Exists(ctx context.Context) (exists bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.Exists", r)
			exists = false
		}
	}()
	return b.query.Exists(ctx)
}

// expandSliceArgs wraps slice and array arguments with bun.In so that
// "col IN (?)" predicates expand to the right number of placeholders.
func expandSliceArgs(args []interface{}) []interface{} {
	for i, arg := range args {
		if arg == nil {
			continue
		}
		if _, ok := arg.([]byte); ok {
			continue
		}
		rv := reflect.ValueOf(arg)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			args[i] = bun.In(arg)
		}
	}
	return args
}

// BunInsertQuery wraps a bun.InsertQuery behind the InsertQuery interface.
type BunInsertQuery struct {
	query *bun.InsertQuery
}

func (b *BunInsertQuery) Model(model interface{}) common.InsertQuery {
	b.query = b.query.Model(model)
	return b
}

func (b *BunInsertQuery) Table(table string) common.InsertQuery {
	b.query = b.query.Table(table)
	return b
}

func (b *BunInsertQuery) Value(column string, value interface{}) common.InsertQuery {
	b.query = b.query.Value(column, "?", value)
	return b
}

func (b *BunInsertQuery) Exec(ctx context.Context) (res common.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunInsertQuery.Exec", r)
		}
	}()
	result, err := b.query.Exec(ctx)
	if err != nil {
		return nil, err
	}
	return &BunResult{result: result}, nil
}

// BunResult adapts sql.Result.
type BunResult struct {
	result interface {
		RowsAffected() (int64, error)
		LastInsertId() (int64, error)
	}
}

func (r *BunResult) RowsAffected() int64 {
	if r.result == nil {
		return 0
	}
	n, err := r.result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func (r *BunResult) LastInsertId() (int64, error) {
	if r.result == nil {
		return 0, fmt.Errorf("no result")
	}
	return r.result.LastInsertId()
}
