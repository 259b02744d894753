// Package publish implements the publication stage: each KPI table is loaded
// into the queryable store with full-replace semantics and a provenance
// metadata record attached.
package publish

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlavergne/stratify/pkg/repository"
	"github.com/mlavergne/stratify/pkg/retry"
	"github.com/mlavergne/stratify/pkg/tabular"
)

const (
	deleteRecords  = `DELETE FROM kpi_records WHERE collection = $1`
	insertRecord   = `INSERT INTO kpi_records (collection, data) VALUES ($1, $2)`
	upsertMetadata = `
		INSERT INTO ingest_metadata (collection, ingest_time, object_name, last_modified)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection) DO UPDATE SET
			ingest_time = EXCLUDED.ingest_time,
			object_name = EXCLUDED.object_name,
			last_modified = EXCLUDED.last_modified`
)

// Publisher writes KPI tables to the store. Each table's delete, inserts, and
// metadata upsert run in one transaction, so a reader never observes a
// partially replaced table and a failed publication leaves the prior version
// intact.
type Publisher struct {
	db     *sql.DB
	policy retry.Policy
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher creates a Publisher over the given run-scoped connection.
func NewPublisher(db *sql.DB, policy retry.Policy, logger *slog.Logger) *Publisher {
	return &Publisher{
		db:     db,
		policy: policy,
		logger: logger.With("stage", "publish"),
		now:    time.Now,
	}
}

// Publish replaces the collection's rows with the frame's records and upserts
// its metadata, recording the upstream object name and last-modified time
// along with the ingestion instant. An empty frame leaves zero rows published
// but still refreshes the metadata.
func (p *Publisher) Publish(ctx context.Context, collection, objectName string, frame *tabular.Frame, lastModified *time.Time) error {
	encoded, err := EncodeRecords(frame)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	err = p.policy.Do(ctx, func(ctx context.Context) error {
		_, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (struct{}, error) {
			if _, err := tx.ExecContext(ctx, deleteRecords, collection); err != nil {
				return struct{}{}, fmt.Errorf("delete %s: %w", collection, err)
			}

			for _, data := range encoded {
				if _, err := tx.ExecContext(ctx, insertRecord, collection, data); err != nil {
					return struct{}{}, fmt.Errorf("insert into %s: %w", collection, err)
				}
			}

			ingestTime := p.now().UTC()
			if _, err := tx.ExecContext(ctx, upsertMetadata, collection, ingestTime, objectName, lastModified); err != nil {
				return struct{}{}, fmt.Errorf("upsert metadata for %s: %w", collection, err)
			}

			return struct{}{}, nil
		})
		return err
	})
	if err != nil {
		return err
	}

	p.logger.Info("collection published",
		"collection", collection,
		"records", len(encoded),
		"object", objectName,
	)
	return nil
}

// EncodeRecords converts a frame's rows to store-ready JSON documents, one
// per row, with absent cells carried as JSON null and numeric cells as JSON
// numbers. Encoding runs before the transaction opens so a marshal failure
// cannot leave a half-replaced table.
func EncodeRecords(frame *tabular.Frame) ([][]byte, error) {
	records := frame.Records()

	encoded := make([][]byte, len(records))
	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		encoded[i] = data
	}
	return encoded, nil
}
