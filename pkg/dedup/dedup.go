// Package dedup prevents re-ingesting byte-identical files under new
// identifiers. New uploads hit the content-hash unique index; records
// from before hashing are covered by a bounded recompute-and-compare
// fallback.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"os"

	"github.com/ctangarife/legalbot/internal/models"
	"github.com/ctangarife/legalbot/internal/types"
)

// DefaultScanLimit caps the legacy fallback scan.
const DefaultScanLimit = 100

// HashBytes returns the hex-encoded SHA-256 digest of content.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

type Detector struct {
	store     types.DocumentStore
	scanLimit int
}

func NewDetector(store types.DocumentStore) *Detector {
	return &Detector{
		store:     store,
		scanLimit: DefaultScanLimit,
	}
}

// FindDuplicate reports an existing document with the same content, or
// nil when there is none. The exact hash lookup is the fast path; when
// it misses, up to scanLimit hashless legacy records (narrowed by file
// size when non-zero) are read back from disk and digested. A match
// gets its hash backfilled best-effort so the next check takes the
// fast path.
func (d *Detector) FindDuplicate(ctx context.Context, contentHash string, fileSize int64) (*models.Document, error) {
	doc, err := d.store.GetDocumentByHash(ctx, contentHash)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	candidates, err := d.store.ListDocumentsWithoutHash(ctx, fileSize, d.scanLimit)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if candidate.FilePath == "" {
			continue
		}

		content, err := os.ReadFile(candidate.FilePath)
		if err != nil {
			// A single unreadable candidate must not fail the check.
			log.Printf("dedup: skipping candidate %s: %v", candidate.FileID, err)
			continue
		}

		if HashBytes(content) != contentHash {
			continue
		}

		if err := d.store.SetContentHash(ctx, candidate.FileID, contentHash); err != nil {
			log.Printf("dedup: could not backfill hash for %s: %v", candidate.FileID, err)
		} else {
			candidate.ContentHash = contentHash
		}
		return candidate, nil
	}

	return nil, nil
}
