package dedup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctangarife/legalbot/internal/models"
	"github.com/ctangarife/legalbot/pkg/dedup"
)

type fakeStore struct {
	byHash      map[string]*models.Document
	hashless    []*models.Document
	backfilled  map[string]string
	backfillErr error
	hashCalls   int
	scanCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byHash:     make(map[string]*models.Document),
		backfilled: make(map[string]string),
	}
}

func (f *fakeStore) InsertDocument(ctx context.Context, doc *models.Document) error { return nil }

func (f *fakeStore) GetDocument(ctx context.Context, fileID string) (*models.Document, error) {
	return nil, models.ErrNotFound
}

func (f *fakeStore) GetDocumentByHash(ctx context.Context, contentHash string) (*models.Document, error) {
	f.hashCalls++
	if doc, ok := f.byHash[contentHash]; ok {
		return doc, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) ListDocuments(ctx context.Context) ([]*models.Document, error) { return nil, nil }

func (f *fakeStore) ListDocumentsWithoutHash(ctx context.Context, fileSize int64, limit int) ([]*models.Document, error) {
	f.scanCalls++
	var out []*models.Document
	for _, doc := range f.hashless {
		if fileSize != 0 && doc.FileSize != fileSize {
			continue
		}
		out = append(out, doc)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) SetContentHash(ctx context.Context, fileID, contentHash string) error {
	if f.backfillErr != nil {
		return f.backfillErr
	}
	f.backfilled[fileID] = contentHash
	return nil
}

func (f *fakeStore) SetStatus(ctx context.Context, fileID string, status models.DocumentStatus) error {
	return nil
}

func (f *fakeStore) MarkProcessed(ctx context.Context, fileID string, chunkIDs []string) error {
	return nil
}

func (f *fakeStore) MarkError(ctx context.Context, fileID, cause string) error { return nil }

func (f *fakeStore) PurgeDocuments(ctx context.Context) (int64, error) { return 0, nil }

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		dedup.HashBytes(nil))
	assert.Equal(t, dedup.HashBytes([]byte("abc")), dedup.HashBytes([]byte("abc")))
	assert.NotEqual(t, dedup.HashBytes([]byte("abc")), dedup.HashBytes([]byte("abd")))
}

func TestFindDuplicate_FastPath(t *testing.T) {
	store := newFakeStore()
	content := []byte("the same contract text")
	hash := dedup.HashBytes(content)
	store.byHash[hash] = &models.Document{FileID: "doc-1", ContentHash: hash}

	d := dedup.NewDetector(store)
	doc, err := d.FindDuplicate(context.Background(), hash, int64(len(content)))

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "doc-1", doc.FileID)
	// The fast path must not fall through to the legacy scan.
	assert.Equal(t, 0, store.scanCalls)
}

func TestFindDuplicate_NoMatch(t *testing.T) {
	store := newFakeStore()
	d := dedup.NewDetector(store)

	doc, err := d.FindDuplicate(context.Background(), dedup.HashBytes([]byte("new")), 3)

	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 1, store.scanCalls)
}

func TestFindDuplicate_LegacyFallbackAndBackfill(t *testing.T) {
	content := []byte("uploaded before hashing existed")
	path := writeTempFile(t, content)

	store := newFakeStore()
	store.hashless = append(store.hashless, &models.Document{
		FileID:   "legacy-1",
		FilePath: path,
		FileSize: int64(len(content)),
	})

	d := dedup.NewDetector(store)
	hash := dedup.HashBytes(content)
	doc, err := d.FindDuplicate(context.Background(), hash, int64(len(content)))

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "legacy-1", doc.FileID)
	assert.Equal(t, hash, doc.ContentHash)
	assert.Equal(t, hash, store.backfilled["legacy-1"])
}

func TestFindDuplicate_BackfillFailureStillReportsMatch(t *testing.T) {
	content := []byte("legacy content")
	path := writeTempFile(t, content)

	store := newFakeStore()
	store.backfillErr = assert.AnError
	store.hashless = append(store.hashless, &models.Document{
		FileID:   "legacy-1",
		FilePath: path,
		FileSize: int64(len(content)),
	})

	d := dedup.NewDetector(store)
	doc, err := d.FindDuplicate(context.Background(), dedup.HashBytes(content), int64(len(content)))

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Empty(t, store.backfilled)
}

func TestFindDuplicate_SkipsUnreadableCandidates(t *testing.T) {
	content := []byte("readable legacy content")
	path := writeTempFile(t, content)

	store := newFakeStore()
	store.hashless = append(store.hashless,
		&models.Document{FileID: "gone", FilePath: filepath.Join(t.TempDir(), "missing.txt"), FileSize: int64(len(content))},
		&models.Document{FileID: "blank", FilePath: "", FileSize: int64(len(content))},
		&models.Document{FileID: "match", FilePath: path, FileSize: int64(len(content))},
	)

	d := dedup.NewDetector(store)
	doc, err := d.FindDuplicate(context.Background(), dedup.HashBytes(content), int64(len(content)))

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "match", doc.FileID)
}

func TestFindDuplicate_SizePrefilter(t *testing.T) {
	content := []byte("sized content")
	path := writeTempFile(t, content)

	store := newFakeStore()
	store.hashless = append(store.hashless, &models.Document{
		FileID:   "legacy-1",
		FilePath: path,
		FileSize: int64(len(content)),
	})

	d := dedup.NewDetector(store)

	// A different size must exclude the candidate before any disk read.
	doc, err := d.FindDuplicate(context.Background(), dedup.HashBytes(content), int64(len(content))+1)
	require.NoError(t, err)
	assert.Nil(t, doc)
}
