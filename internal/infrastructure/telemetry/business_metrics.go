package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when business metrics are built without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Prescription write operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// BusinessMetrics counts agency activity: prescription writes, budget
// movement, document uploads and storage cleanup failures.
type BusinessMetrics struct {
	prescriptionWrites *Counter
	budgetDelta        *Histogram
	uploads            *Counter
	uploadBytes        *Histogram
	orphanedObjects    *Counter
}

// NewBusinessMetrics creates the instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	var (
		bm  BusinessMetrics
		err error
	)
	if bm.prescriptionWrites, err = NewCounter(meter,
		"atelier_prescription_writes_total", "Prescription create/update/delete operations", "{operation}"); err != nil {
		return nil, err
	}
	if bm.budgetDelta, err = NewHistogram(meter, HistogramOpts{
		Name:        "atelier_budget_spent_delta",
		Description: "Signed change applied to project budget_spent per write",
		Unit:        "{currency}",
		Boundaries:  []float64{-10000, -1000, -100, 0, 100, 1000, 10000, 100000},
	}); err != nil {
		return nil, err
	}
	if bm.uploads, err = NewCounter(meter,
		"atelier_document_uploads_total", "Document uploads by owner type", "{file}"); err != nil {
		return nil, err
	}
	if bm.uploadBytes, err = NewHistogram(meter, HistogramOpts{
		Name:        "atelier_document_upload_bytes",
		Description: "Uploaded document sizes",
		Unit:        "By",
		Boundaries:  []float64{10 << 10, 100 << 10, 1 << 20, 5 << 20, 10 << 20, 25 << 20, 50 << 20},
	}); err != nil {
		return nil, err
	}
	if bm.orphanedObjects, err = NewCounter(meter,
		"atelier_storage_orphaned_objects_total", "Stored objects whose deletion failed after metadata removal", "{object}"); err != nil {
		return nil, err
	}
	return &bm, nil
}

// RecordPrescriptionWrite counts a prescription write and the budget delta it applied.
func (bm *BusinessMetrics) RecordPrescriptionWrite(ctx context.Context, op string, delta decimal.Decimal) {
	if bm == nil {
		return
	}
	bm.prescriptionWrites.Inc(ctx, attribute.String("operation", op))
	if !delta.IsZero() {
		bm.budgetDelta.Record(ctx, delta.InexactFloat64(), attribute.String("operation", op))
	}
}

// RecordUpload counts a stored document.
func (bm *BusinessMetrics) RecordUpload(ctx context.Context, ownerType string, size int64) {
	if bm == nil {
		return
	}
	attr := attribute.String("owner_type", ownerType)
	bm.uploads.Inc(ctx, attr)
	bm.uploadBytes.Record(ctx, float64(size), attr)
}

// RecordOrphanedObject counts a storage object left behind by a failed delete.
func (bm *BusinessMetrics) RecordOrphanedObject(ctx context.Context, n int) {
	if bm == nil || n <= 0 {
		return
	}
	bm.orphanedObjects.Add(ctx, int64(n))
}
