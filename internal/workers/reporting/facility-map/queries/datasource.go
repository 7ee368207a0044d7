// internal/workers/reporting/facility-map/queries/datasource.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "facility-map/internal/common/errors"
)

// QueryResult is the tabular answer of the query service. Column names are
// upper-cased; each row holds one value per column (nil for SQL NULL).
type QueryResult struct {
	Success bool
	Error   string
	Columns []string
	Rows    [][]interface{}
}

// DataSource executes a query against the data source named by databaseID and
// returns at most rowLimit rows.
type DataSource interface {
	ExecuteSQLQuery(ctx context.Context, databaseID, query string, args []interface{}, rowLimit int) (*QueryResult, error)
}

// SQLDataSource serves queries from database/sql connections keyed by database id.
type SQLDataSource struct {
	dbs map[string]*sql.DB
}

func NewSQLDataSource(dbs map[string]*sql.DB) *SQLDataSource {
	normalized := make(map[string]*sql.DB, len(dbs))
	for id, db := range dbs {
		normalized[strings.ToLower(id)] = db
	}
	return &SQLDataSource{dbs: normalized}
}

func (s *SQLDataSource) ExecuteSQLQuery(ctx context.Context, databaseID, query string, args []interface{}, rowLimit int) (*QueryResult, error) {
	db, ok := s.dbs[strings.ToLower(databaseID)]
	if !ok {
		return nil, apperrors.NewDataSourceNotFoundError(databaseID)
	}

	if rowLimit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, rowLimit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError(ctx, databaseID, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrapQueryError(ctx, databaseID, err)
	}
	for i, c := range columns {
		columns[i] = strings.ToUpper(c)
	}

	result := &QueryResult{Success: true, Columns: columns}
	for rows.Next() {
		if rowLimit > 0 && len(result.Rows) >= rowLimit {
			break
		}
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrapQueryError(ctx, databaseID, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(ctx, databaseID, err)
	}

	return result, nil
}

func wrapQueryError(ctx context.Context, databaseID string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(databaseID)
	}
	return apperrors.NewQueryExecutionFailedError(databaseID, err)
}
