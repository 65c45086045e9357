package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBTracingConfig controls GORM span instrumentation.
type DBTracingConfig struct {
	Enabled         bool
	DBSystem        string
	IncludeSQLVars  bool
	SlowQueryThresh time.Duration
}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that annotate
// spans with the table, affected rows and a slow-query flag.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.IncludeSQLVars {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) { tx.InstanceSet(queryStartKey, time.Now()) }
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	// our after hooks must run while the otelgorm span is still open
	if err := register(cb.Create().Before("gorm:create"), "before_create", before); err != nil {
		return err
	}
	if err := register(cb.Create().After("gorm:create").Before("otel:after:create"), "after_create", after); err != nil {
		return err
	}
	if err := register(cb.Query().Before("gorm:query"), "before_query", before); err != nil {
		return err
	}
	if err := register(cb.Query().After("gorm:query").Before("otel:after:query"), "after_query", after); err != nil {
		return err
	}
	if err := register(cb.Update().Before("gorm:update"), "before_update", before); err != nil {
		return err
	}
	if err := register(cb.Update().After("gorm:update").Before("otel:after:update"), "after_update", after); err != nil {
		return err
	}
	if err := register(cb.Delete().Before("gorm:delete"), "before_delete", before); err != nil {
		return err
	}
	if err := register(cb.Delete().After("gorm:delete").Before("otel:after:delete"), "after_delete", after); err != nil {
		return err
	}
	if err := register(cb.Raw().Before("gorm:raw"), "before_raw", before); err != nil {
		return err
	}
	if err := register(cb.Raw().After("gorm:raw").Before("otel:after:raw"), "after_raw", after); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type registrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func register(r registrar, name string, fn func(*gorm.DB)) error {
	return r.Register("telemetry:"+name, fn)
}

func annotateSpan(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
	if v, ok := tx.InstanceGet(queryStartKey); ok {
		if start, ok := v.(time.Time); ok {
			if elapsed := time.Since(start); elapsed > slow {
				span.SetAttributes(
					attribute.Bool("db.slow_query", true),
					attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
				)
			}
		}
	}
}
