package gold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mlavergne/stratify/pkg/retry"
	"github.com/mlavergne/stratify/pkg/storage"
	"github.com/mlavergne/stratify/pkg/tabular"
)

// ErrMissingPrerequisite indicates the required silver objects are absent,
// so aggregation cannot proceed for this run.
var ErrMissingPrerequisite = errors.New("required silver objects not found")

// Stage aggregates the cleaned silver tables into the gold zone.
type Stage struct {
	silver          storage.Zone
	gold            storage.Zone
	clientsObject   string
	purchasesObject string
	policy          retry.Policy
	logger          *slog.Logger
}

// NewStage creates the aggregation stage over the given zones and source
// object names.
func NewStage(silver, gold storage.Zone, clientsObject, purchasesObject string, policy retry.Policy, logger *slog.Logger) *Stage {
	return &Stage{
		silver:          silver,
		gold:            gold,
		clientsObject:   clientsObject,
		purchasesObject: purchasesObject,
		policy:          policy,
		logger:          logger.With("stage", "gold"),
	}
}

// Run reads the cleaned client and purchase tables, aggregates them, and
// uploads the four KPI tables as CSV to the gold zone. Both silver objects
// must exist; otherwise the run fails with ErrMissingPrerequisite.
func (s *Stage) Run(ctx context.Context) error {
	if err := s.gold.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure gold zone: %w", err)
	}

	clients, err := s.readFrame(ctx, s.clientsObject)
	if err != nil {
		return err
	}
	purchases, err := s.readFrame(ctx, s.purchasesObject)
	if err != nil {
		return err
	}

	set, err := Aggregate(clients, purchases)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	for _, table := range set.Tables() {
		if err := s.uploadTable(ctx, table); err != nil {
			return err
		}
		s.logger.Info("kpi table written", "table", table.Name, "rows", table.Frame.Len())
	}

	return nil
}

func (s *Stage) readFrame(ctx context.Context, key string) (*tabular.Frame, error) {
	var data []byte
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		body, err := s.silver.Download(ctx, key)
		if err != nil {
			return err
		}
		defer body.Close()

		data, err = io.ReadAll(body)
		return err
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingPrerequisite, key)
		}
		return nil, fmt.Errorf("read silver object %s: %w", key, err)
	}

	frame, err := tabular.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return frame, nil
}

func (s *Stage) uploadTable(ctx context.Context, table Table) error {
	data, err := tabular.WriteCSV(table.Frame)
	if err != nil {
		return fmt.Errorf("encode %s: %w", table.Name, err)
	}

	key := table.Name + ".csv"
	return s.policy.Do(ctx, func(ctx context.Context) error {
		return s.gold.Upload(ctx, key, bytes.NewReader(data), "text/csv")
	})
}
