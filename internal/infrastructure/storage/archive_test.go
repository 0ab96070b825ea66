package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	ObjectStore
}

func (failingStore) Upload(context.Context, string, []byte, string) error {
	return errors.New("bucket unavailable")
}

func TestReportArchive_Store(t *testing.T) {
	store := NewMemoryObjectStorage()
	archive := NewReportArchive(store, "reports", 10*time.Minute, nil)
	archive.now = func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }

	file, err := archive.Store(context.Background(), "summary_2024-03-01_2024-03-31.pdf", []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Key, "reports/2024/03/15/093000."))
	assert.True(t, strings.HasSuffix(file.Key, "_summary_2024-03-01_2024-03-31.pdf"))
	assert.True(t, strings.HasPrefix(file.URL, "https://storage.example.com/"+file.Key))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), file.ExpiresAt, 5*time.Second)

	data, contentType, ok := store.Object(file.Key)
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Equal(t, "application/pdf", contentType)
}

func TestReportArchive_StoreStripsDirectories(t *testing.T) {
	store := NewMemoryObjectStorage()
	archive := NewReportArchive(store, "", 0, nil)

	file, err := archive.Store(context.Background(), "../../etc/statement.pdf", []byte("x"))

	require.NoError(t, err)
	assert.NotContains(t, file.Key, "..")
	assert.True(t, strings.HasSuffix(file.Key, "_statement.pdf"))
}

func TestReportArchive_UploadError(t *testing.T) {
	archive := NewReportArchive(failingStore{}, "reports/", time.Minute, nil)

	_, err := archive.Store(context.Background(), "summary.pdf", []byte("x"))

	assert.EqualError(t, err, "bucket unavailable")
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStorage()

	_, _, err := store.GenerateDownloadURL(ctx, "missing.pdf", time.Minute)
	require.Error(t, err)

	require.Error(t, store.Upload(ctx, "", nil, "application/pdf"))

	payload := []byte("abc")
	require.NoError(t, store.Upload(ctx, "a.pdf", payload, "application/pdf"))
	payload[0] = 'z'

	data, _, ok := store.Object("a.pdf")
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), data)
}
