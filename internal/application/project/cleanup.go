package project

import (
	"context"

	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ObjectDeleter removes stored file bodies
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// PurgeObjects deletes the stored bodies of already removed document rows.
// Failures are logged and counted, never returned: the metadata is gone and
// the caller's operation has succeeded. It returns the number of failures.
func PurgeObjects(ctx context.Context, store ObjectDeleter, docs []*document.Document, metrics *telemetry.BusinessMetrics, base *zap.Logger) int {
	if store == nil || len(docs) == 0 {
		return 0
	}
	failed := 0
	for _, d := range docs {
		if err := store.Delete(ctx, d.StoragePath); err != nil {
			failed++
			logger.Enrich(ctx, base).Warn("Failed to delete stored file",
				zap.String("document_id", d.ID.String()),
				zap.String("storage_path", d.StoragePath),
				zap.Error(err),
			)
		}
	}
	metrics.RecordOrphanedObject(ctx, failed)
	return failed
}
