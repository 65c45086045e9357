package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint
	Name string
}

func TestRegisterDBTracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop()))

	ctx, parent := tp.Tracer("test").Start(t.Context(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "salon"}).Error)
	parent.End()

	var found bool
	for _, s := range rec.Ended() {
		if s.Parent().SpanID() != parent.SpanContext().SpanID() {
			continue
		}
		for _, a := range s.Attributes() {
			if a.Key == "db.rows_affected" {
				found = true
				assert.Equal(t, int64(1), a.Value.AsInt64())
			}
		}
	}
	assert.True(t, found, "gorm span carries rows affected")
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, zap.NewNop()))
	_, ok := db.Plugins["otelgorm"]
	assert.False(t, ok)
}
