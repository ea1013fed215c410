// Package snapshot exports the catalog schema to object storage and restores
// it back. A snapshot is the JSON-encoded set of all registered tables,
// snappy-compressed, stored under a fingerprinted key with a CURRENT pointer
// advanced by conditional put.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"

	"github.com/meridiandb/meridian/internal/catalog"
	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/internal/storage"
	"github.com/meridiandb/meridian/pkg/types"
)

const (
	snapshotPrefix = "snapshots/"
	currentKey     = "snapshots/CURRENT"

	// pruneConcurrency bounds parallel deletes when retiring old snapshots.
	pruneConcurrency = 4
)

// Manifest describes an exported snapshot.
type Manifest struct {
	Key         string    `json:"key"`
	Fingerprint uint64    `json:"fingerprint"`
	TableCount  int       `json:"table_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Snapshotter exports and restores catalog schema snapshots.
type Snapshotter struct {
	catalog catalog.Catalog
	store   storage.ObjectStorage

	lastFingerprint uint64
}

// NewSnapshotter creates a snapshotter over the given catalog and store.
func NewSnapshotter(cat catalog.Catalog, store storage.ObjectStorage) *Snapshotter {
	return &Snapshotter{
		catalog: cat,
		store:   store,
	}
}

// Export serializes the full catalog schema and uploads it. When the schema
// has not changed since the last export the upload is skipped and the
// previous manifest fingerprint is reused.
func (s *Snapshotter) Export(ctx context.Context) (*Manifest, error) {
	tables, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(tables)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode snapshot", err)
	}

	fp := murmur3.Sum64(payload)
	if fp == s.lastFingerprint {
		log.Printf("snapshot: schema unchanged (fingerprint %016x), skipping export", fp)
		return nil, nil
	}

	compressed := snappy.Encode(nil, payload)
	key := fmt.Sprintf("%s%016x.json.snappy", snapshotPrefix, fp)

	if err := s.store.Put(ctx, key, compressed); err != nil {
		return nil, errors.NewStorageError(errors.CodeUploadFailed,
			"failed to upload snapshot "+key, err)
	}

	manifest := &Manifest{
		Key:         key,
		Fingerprint: fp,
		TableCount:  len(tables),
		CreatedAt:   time.Now().UTC(),
	}
	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode manifest", err)
	}

	// Advance CURRENT. The pointer write is unconditional on first export
	// and etag-guarded afterwards so a stale exporter cannot move it back.
	etag, err := s.store.GetETag(ctx, currentKey)
	if err != nil {
		if err != storage.ErrObjectNotFound {
			return nil, errors.NewStorageError(errors.CodeDownloadFailed,
				"failed to read snapshot pointer etag", err)
		}
		etag = ""
	}
	if err := s.store.ConditionalPut(ctx, currentKey, manifestData, etag); err != nil {
		return nil, errors.NewStorageError(errors.CodeUploadFailed,
			"failed to advance snapshot pointer", err)
	}

	s.lastFingerprint = fp
	log.Printf("snapshot: exported %d tables to %s", len(tables), key)
	return manifest, nil
}

// Restore downloads the CURRENT snapshot and registers every table it
// contains. Tables already present with an identical schema are skipped by
// the catalog's idempotent registration.
func (s *Snapshotter) Restore(ctx context.Context) (int, error) {
	manifestData, err := s.store.Get(ctx, currentKey)
	if err != nil {
		if err == storage.ErrObjectNotFound {
			return 0, errors.NewStorageError(errors.CodeObjectNotFound,
				"no snapshot to restore", err)
		}
		return 0, errors.NewStorageError(errors.CodeDownloadFailed,
			"failed to read snapshot pointer", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return 0, errors.NewInternalError("failed to decode manifest", err)
	}

	compressed, err := s.store.Get(ctx, manifest.Key)
	if err != nil {
		return 0, errors.NewStorageError(errors.CodeDownloadFailed,
			"failed to download snapshot "+manifest.Key, err)
	}

	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return 0, errors.NewInternalError("failed to decompress snapshot", err)
	}

	if fp := murmur3.Sum64(payload); fp != manifest.Fingerprint {
		return 0, errors.NewInternalError(
			fmt.Sprintf("snapshot fingerprint mismatch: manifest %016x, payload %016x",
				manifest.Fingerprint, fp), nil)
	}

	var tables []*types.Table
	if err := json.Unmarshal(payload, &tables); err != nil {
		return 0, errors.NewInternalError("failed to decode snapshot", err)
	}

	restored := 0
	for _, table := range tables {
		if err := s.catalog.RegisterTable(ctx, table); err != nil {
			return restored, err
		}
		restored++
	}

	log.Printf("snapshot: restored %d tables from %s", restored, manifest.Key)
	return restored, nil
}

// Prune deletes snapshot objects no longer reachable from CURRENT. Only the
// blob the manifest points at survives; superseded blobs are removed in
// parallel. Returns the number of objects deleted.
func (s *Snapshotter) Prune(ctx context.Context) (int, error) {
	manifestData, err := s.store.Get(ctx, currentKey)
	if err != nil {
		if err == storage.ErrObjectNotFound {
			return 0, nil
		}
		return 0, errors.NewStorageError(errors.CodeDownloadFailed,
			"failed to read snapshot pointer", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return 0, errors.NewInternalError("failed to decode manifest", err)
	}

	keys, err := s.store.ListObjects(ctx, snapshotPrefix)
	if err != nil {
		return 0, errors.NewStorageError(errors.CodeDownloadFailed,
			"failed to list snapshot objects", err)
	}

	var stale []string
	for _, key := range keys {
		if key == currentKey || key == manifest.Key {
			continue
		}
		stale = append(stale, key)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	result, err := storage.NewBatchDeleter(s.store, pruneConcurrency).Delete(ctx, stale)
	if err != nil {
		return 0, err
	}
	for key, derr := range result.Errors {
		log.Printf("snapshot: failed to prune %s: %v", key, derr)
	}
	if result.Deleted > 0 {
		log.Printf("snapshot: pruned %d superseded objects", result.Deleted)
	}
	return result.Deleted, nil
}

// Run exports snapshots on the given interval until the context is canceled.
// Each successful export is followed by a prune of superseded objects.
func (s *Snapshotter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manifest, err := s.Export(ctx)
			if err != nil {
				log.Printf("snapshot: export failed: %v", err)
				continue
			}
			if manifest == nil {
				continue
			}
			if _, err := s.Prune(ctx); err != nil {
				log.Printf("snapshot: prune failed: %v", err)
			}
		}
	}
}
