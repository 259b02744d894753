// Package storage provides zoned blob storage for the pipeline, backed by
// Azure Blob Storage. Each zone (raw, cleaned, aggregated) maps to one
// container on a shared client.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/mlavergne/stratify/pkg/lifecycle"
)

// Object describes a stored blob with its upstream modification timestamp.
type Object struct {
	Key          string     `json:"key"`
	LastModified *time.Time `json:"last_modified"`
}

// Zone is one container-scoped view of the storage system.
type Zone interface {
	// Name returns the zone's container name.
	Name() string
	// Ensure creates the zone's container if it does not exist.
	Ensure(ctx context.Context) error
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob at the given key. The caller must
	// close the reader. Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns every object in the zone with its last-modified timestamp.
	List(ctx context.Context) ([]Object, error)
}

// System manages the storage client and exposes the configured zones.
type System interface {
	// Start registers a startup hook that initializes all zone containers.
	Start(lc *lifecycle.Coordinator) error
	Bronze() Zone
	Silver() Zone
	Gold() Zone
}

type system struct {
	client *azblob.Client
	logger *slog.Logger
	bronze Zone
	silver Zone
	gold   Zone
}

// New creates a storage system from the given configuration. It validates the
// connection string and creates the client but does not touch the account
// until Start or a zone operation runs.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	logger = logger.With("system", "storage")

	return &system{
		client: client,
		logger: logger,
		bronze: &zone{client: client, container: cfg.BronzeContainer, logger: logger},
		silver: &zone{client: client, container: cfg.SilverContainer, logger: logger},
		gold:   &zone{client: client, container: cfg.GoldContainer, logger: logger},
	}, nil
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system")

	lc.OnStartup(func() {
		for _, z := range []Zone{s.bronze, s.silver, s.gold} {
			if err := z.Ensure(lc.Context()); err != nil {
				s.logger.Error("zone initialization failed", "zone", z.Name(), "error", err)
				return
			}
		}
		s.logger.Info("storage zones ready")
	})

	return nil
}

func (s *system) Bronze() Zone { return s.bronze }
func (s *system) Silver() Zone { return s.silver }
func (s *system) Gold() Zone   { return s.gold }

type zone struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

func (z *zone) Name() string {
	return z.container
}

func (z *zone) Ensure(ctx context.Context) error {
	_, err := z.client.CreateContainer(ctx, z.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", z.container, err)
	}
	return nil
}

func (z *zone) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	_, err := z.client.UploadStream(ctx, z.container, key, reader, opts)
	if err != nil {
		return fmt.Errorf("upload blob %s/%s: %w", z.container, key, err)
	}

	return nil
}

func (z *zone) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := z.client.DownloadStream(ctx, z.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s/%s: %w", z.container, key, err)
	}

	return resp.Body, nil
}

func (z *zone) List(ctx context.Context) ([]Object, error) {
	objects := make([]Object, 0)

	pager := z.client.NewListBlobsFlatPager(z.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list container %s: %w", z.container, err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			obj := Object{Key: *item.Name}
			if item.Properties != nil {
				obj.LastModified = item.Properties.LastModified
			}
			objects = append(objects, obj)
		}
	}

	return objects, nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
