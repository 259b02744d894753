package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mlavergne/stratify/pkg/retry"
	"github.com/mlavergne/stratify/pkg/storage"
	"github.com/mlavergne/stratify/pkg/tabular"
)

// Stage publishes every gold object into the store. Tables have no
// cross-table ordering dependency, so they publish concurrently; each one is
// independently atomic.
type Stage struct {
	gold      storage.Zone
	publisher *Publisher
	policy    retry.Policy
	logger    *slog.Logger
}

// NewStage creates the publication stage over the gold zone.
func NewStage(gold storage.Zone, publisher *Publisher, policy retry.Policy, logger *slog.Logger) *Stage {
	return &Stage{
		gold:      gold,
		publisher: publisher,
		policy:    policy,
		logger:    logger.With("stage", "publish"),
	}
}

// Run lists the gold zone and publishes each object as a collection named
// after the object (extension stripped). The first table failure cancels the
// remaining publications and fails the run.
func (s *Stage) Run(ctx context.Context) error {
	objects, err := s.gold.List(ctx)
	if err != nil {
		return fmt.Errorf("list gold zone: %w", err)
	}
	if len(objects) == 0 {
		s.logger.Warn("gold zone empty, nothing to publish")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, obj := range objects {
		g.Go(func() error {
			return s.publishObject(gctx, obj)
		})
	}
	return g.Wait()
}

func (s *Stage) publishObject(ctx context.Context, obj storage.Object) error {
	var data []byte
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		body, err := s.gold.Download(ctx, obj.Key)
		if err != nil {
			return err
		}
		defer body.Close()

		data, err = io.ReadAll(body)
		return err
	})
	if err != nil {
		return fmt.Errorf("read gold object %s: %w", obj.Key, err)
	}

	frame, err := tabular.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", obj.Key, err)
	}

	collection := strings.TrimSuffix(obj.Key, path.Ext(obj.Key))
	return s.publisher.Publish(ctx, collection, obj.Key, tabular.Infer(frame), obj.LastModified)
}
