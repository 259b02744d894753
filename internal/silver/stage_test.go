package silver_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/mlavergne/stratify/internal/silver"
	"github.com/mlavergne/stratify/pkg/retry"
	"github.com/mlavergne/stratify/pkg/storage"
)

type memoryZone struct {
	name    string
	objects map[string][]byte
	ensured bool
}

func newMemoryZone(name string) *memoryZone {
	return &memoryZone{name: name, objects: make(map[string][]byte)}
}

func (z *memoryZone) Name() string { return z.name }

func (z *memoryZone) Ensure(ctx context.Context) error {
	z.ensured = true
	return nil
}

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
	modified := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	keys := make([]string, 0, len(z.objects))
	for key := range z.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	objects := make([]storage.Object, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, storage.Object{Key: key, LastModified: &modified})
	}
	return objects, nil
}

func newStage(bronze, target storage.Zone) *silver.Stage {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return silver.NewStage(bronze, target, retry.Once(time.Millisecond), logger)
}

func TestStageRunCleansObjects(t *testing.T) {
	bronze := newMemoryZone("bronze")
	bronze.objects["clients.csv"] = []byte("id_client,nom,email\n1, Alice ,A@x.com\n1, Alice ,A@x.com\n")
	target := newMemoryZone("silver")

	if err := newStage(bronze, target).Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !target.ensured {
		t.Error("silver zone should be ensured before processing")
	}

	out, ok := target.objects["clients.csv"]
	if !ok {
		t.Fatal("cleaned object not uploaded")
	}
	expected := "id_client,nom,email\n1,Alice,a@x.com\n"
	if string(out) != expected {
		t.Errorf("got %q, want %q", out, expected)
	}
}

func TestStageRunContinuesPastBadObject(t *testing.T) {
	bronze := newMemoryZone("bronze")
	bronze.objects["achats.csv"] = []byte("id_achat,id_client,date_achat,montant\n1,1,2024-03-15,49.99\n")
	bronze.objects["broken.csv"] = []byte("")
	target := newMemoryZone("silver")

	err := newStage(bronze, target).Run(context.Background())
	if err == nil {
		t.Fatal("run with an unreadable object should fail")
	}

	if _, ok := target.objects["achats.csv"]; !ok {
		t.Error("good object should still be cleaned when another fails")
	}
	if _, ok := target.objects["broken.csv"]; ok {
		t.Error("unreadable object should not reach silver")
	}
}

func TestStageRunEmptyBronze(t *testing.T) {
	if err := newStage(newMemoryZone("bronze"), newMemoryZone("silver")).Run(context.Background()); err != nil {
		t.Fatalf("empty bronze should be a no-op, got %v", err)
	}
}
