package repository

import (
	"context"
	"fmt"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/clickhouse"
)

// ClickHouseExecutor runs queries directly against a local ClickHouse
// deployment. It satisfies the same contract as the remote executor so
// the facade does not know which backend serves it.
type ClickHouseExecutor struct {
	client *clickhouse.Client
}

// NewClickHouseExecutor wraps an established ClickHouse client.
func NewClickHouseExecutor(client *clickhouse.Client) *ClickHouseExecutor {
	return &ClickHouseExecutor{client: client}
}

// Execute runs one query with positional parameters and materializes the
// result into generic row mappings.
func (e *ClickHouseExecutor) Execute(ctx context.Context, query string, params []interface{}) (*models.ResultSet, error) {
	rows, err := e.client.DB().QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("clickhouse query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("clickhouse columns: %w", err)
	}

	result := &models.ResultSet{Data: []models.Record{}}
	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("clickhouse scan: %w", err)
		}
		record := make(models.Record, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		result.Data = append(result.Data, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clickhouse rows: %w", err)
	}

	return result, nil
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case *string:
		if val == nil {
			return nil
		}
		return *val
	default:
		return v
	}
}
