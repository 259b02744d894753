package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlavergne/stratify/pkg/pagination"
	"github.com/mlavergne/stratify/pkg/repository"
)

const (
	listCollections  = `SELECT collection FROM ingest_metadata ORDER BY collection`
	collectionExists = `SELECT EXISTS (SELECT 1 FROM ingest_metadata WHERE collection = $1)`
	countRecords     = `SELECT COUNT(*) FROM kpi_records WHERE collection = $1`
	selectRecords    = `SELECT data FROM kpi_records WHERE collection = $1 ORDER BY id LIMIT $2 OFFSET $3`
	selectFiltered   = `SELECT data FROM kpi_records WHERE collection = $1 AND data->>$2 = $3 ORDER BY id LIMIT $4 OFFSET $5`
	selectMetadata   = `SELECT collection, ingest_time, object_name, last_modified FROM ingest_metadata WHERE collection = $1`
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates a published-table repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "catalog"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context) ([]string, error) {
	return repository.QueryMany(ctx, r.db, listCollections, nil, scanString)
}

func (r *repo) Rows(ctx context.Context, name string, page pagination.PageRequest, filter *Filter) (*pagination.PageResult[Row], error) {
	page.Normalize(r.pagination)

	if err := r.requireCollection(ctx, name); err != nil {
		return nil, err
	}

	query := selectRecords
	args := []any{name, page.Limit, page.Skip}
	if filter != nil {
		query = selectFiltered
		args = []any{name, filter.Field, filter.Value, page.Limit, page.Skip}
	}

	rows, err := repository.QueryMany(ctx, r.db, query, args, scanRow)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", name, err)
	}

	result := pagination.NewPageResult(rows)
	return &result, nil
}

func (r *repo) Count(ctx context.Context, name string) (int, error) {
	if err := r.requireCollection(ctx, name); err != nil {
		return 0, err
	}

	return repository.QueryOne(ctx, r.db, countRecords, []any{name}, scanInt)
}

func (r *repo) Freshness(ctx context.Context, name string) (*Freshness, error) {
	meta, err := repository.QueryOne(ctx, r.db, selectMetadata, []any{name}, scanMetadata)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound)
	}

	freshness := ResolveFreshness(meta, r.now())
	return &freshness, nil
}

func (r *repo) requireCollection(ctx context.Context, name string) error {
	exists, err := repository.QueryOne(ctx, r.db, collectionExists, []any{name}, scanBool)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func scanString(s repository.Scanner) (string, error) {
	var v string
	err := s.Scan(&v)
	return v, err
}

func scanBool(s repository.Scanner) (bool, error) {
	var v bool
	err := s.Scan(&v)
	return v, err
}

func scanInt(s repository.Scanner) (int, error) {
	var v int
	err := s.Scan(&v)
	return v, err
}

func scanRow(s repository.Scanner) (Row, error) {
	var data []byte
	if err := s.Scan(&data); err != nil {
		return nil, err
	}

	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return row, nil
}

func scanMetadata(s repository.Scanner) (Metadata, error) {
	var m Metadata
	err := s.Scan(&m.Collection, &m.IngestTime, &m.ObjectName, &m.LastModified)
	return m, err
}
