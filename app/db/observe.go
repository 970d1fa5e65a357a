package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-simple-crud/app/observability/metrics"
)

// ObserveQuery records the duration of one query and counts it as an error unless err is nil
// or pgx.ErrNoRows.
func ObserveQuery(ctx context.Context, table, operation string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(
		attribute.String("db.sql.table", table),
		attribute.String("db.operation", operation),
	)
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
