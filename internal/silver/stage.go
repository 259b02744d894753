package silver

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

// Stage processes every object in the bronze zone into the silver zone.
type Stage struct {
	bronze  storage.Zone
	silver  storage.Zone
	cleaner *Cleaner
	policy  retry.Policy
	logger  *slog.Logger
}

// NewStage creates the cleaning stage over the given zones.
func NewStage(bronze, silver storage.Zone, policy retry.Policy, logger *slog.Logger) *Stage {
	logger = logger.With("stage", "silver")
	return &Stage{
		bronze:  bronze,
		silver:  silver,
		cleaner: NewCleaner(logger),
		policy:  policy,
		logger:  logger,
	}
}

// Run cleans every bronze object into silver. A failure on one object does
// not stop the others; all per-object failures are joined into the returned
// error so the caller sees the run as failed.
func (s *Stage) Run(ctx context.Context) error {
	if err := s.silver.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure silver zone: %w", err)
	}

	objects, err := s.bronze.List(ctx)
	if err != nil {
		return fmt.Errorf("list bronze zone: %w", err)
	}

	var failures []error
	for _, obj := range objects {
		if err := s.processObject(ctx, obj.Key); err != nil {
			s.logger.Error("object processing failed", "object", obj.Key, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", obj.Key, err))
			continue
		}
		s.logger.Info("object cleaned", "object", obj.Key)
	}

	return errors.Join(failures...)
}

func (s *Stage) processObject(ctx context.Context, key string) error {
	data, err := s.download(ctx, key)
	if err != nil {
		return err
	}

	frame, err := tabular.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}

	cleaned := s.cleaner.Clean(frame, KindForObject(key))

	out, err := tabular.WriteCSV(cleaned)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return s.policy.Do(ctx, func(ctx context.Context) error {
		return s.silver.Upload(ctx, key, bytes.NewReader(out), "text/csv")
	})
}

func (s *Stage) download(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		body, err := s.bronze.Download(ctx, key)
		if err != nil {
			return err
		}
		defer body.Close()

		data, err = io.ReadAll(body)
		return err
	})
	return data, err
}
