package gold_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mlavergne/stratify/internal/gold"
	"github.com/mlavergne/stratify/pkg/retry"
	"github.com/mlavergne/stratify/pkg/storage"
)

type memoryZone struct {
	name    string
	objects map[string][]byte
}

func newMemoryZone(name string) *memoryZone {
	return &memoryZone{name: name, objects: make(map[string][]byte)}
}

func (z *memoryZone) Name() string { return z.name }

func (z *memoryZone) Ensure(ctx context.Context) error { return nil }

func (z *memoryZone) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	z.objects[key] = data
	return nil
}

func (z *memoryZone) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := z.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (z *memoryZone) List(ctx context.Context) ([]storage.Object, error) {
	objects := make([]storage.Object, 0, len(z.objects))
	for key := range z.objects {
		objects = append(objects, storage.Object{Key: key})
	}
	return objects, nil
}

func newStage(source, target storage.Zone) *gold.Stage {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return gold.NewStage(source, target, "clients.csv", "achats.csv", retry.Once(time.Millisecond), logger)
}

func TestStageRunWritesKPITables(t *testing.T) {
	source := newMemoryZone("silver")
	source.objects["clients.csv"] = []byte("id_client,nom,pays\n1,Alice,France\n")
	source.objects["achats.csv"] = []byte("id_achat,id_client,date_achat,montant\n1,1,2024-03-15,49.99\n")
	target := newMemoryZone("gold")

	if err := newStage(source, target).Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range []string{
		gold.TableVolumesDay,
		gold.TableVolumesMonth,
		gold.TableCAByCountry,
		gold.TableMonthlyRevenue,
	} {
		if _, ok := target.objects[name+".csv"]; !ok {
			t.Errorf("missing gold object %s.csv", name)
		}
	}

	expected := "pays,ca\nFrance,49.99\n"
	if got := string(target.objects["ca_by_country.csv"]); got != expected {
		t.Errorf("ca_by_country = %q, want %q", got, expected)
	}
}

func TestStageRunMissingPrerequisite(t *testing.T) {
	source := newMemoryZone("silver")
	source.objects["clients.csv"] = []byte("id_client,pays\n1,France\n")

	err := newStage(source, newMemoryZone("gold")).Run(context.Background())
	if !errors.Is(err, gold.ErrMissingPrerequisite) {
		t.Fatalf("got %v, want ErrMissingPrerequisite", err)
	}
}
