package storage

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BatchDeleter coordinates parallel deletes against object storage. It is
// used to retire superseded snapshot objects without serializing on storage
// latency.
type BatchDeleter struct {
	storage     ObjectStorage
	concurrency int64
}

// BatchDeleteResult contains the outcome of a batch delete operation.
type BatchDeleteResult struct {
	Deleted int
	Errors  map[string]error
}

// NewBatchDeleter creates a new batch deleter.
// storage: the ObjectStorage implementation to delete from
// concurrency: maximum number of parallel deletes
func NewBatchDeleter(storage ObjectStorage, concurrency int) *BatchDeleter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchDeleter{
		storage:     storage,
		concurrency: int64(concurrency),
	}
}

// Delete removes the given objects in parallel. Per-object failures are
// collected by path rather than aborting the batch; missing objects count
// as deleted since Delete on the underlying store is idempotent.
func (b *BatchDeleter) Delete(ctx context.Context, objectPaths []string) (*BatchDeleteResult, error) {
	result := &BatchDeleteResult{
		Errors: make(map[string]error),
	}
	if len(objectPaths) == 0 {
		return result, nil
	}

	sem := semaphore.NewWeighted(b.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, path := range objectPaths {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.Errors[path] = fmt.Errorf("semaphore acquire failed: %w", err)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(objectPath string) {
			defer wg.Done()
			defer sem.Release(1)

			err := b.storage.Delete(ctx, objectPath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[objectPath] = err
				return
			}
			result.Deleted++
		}(path)
	}

	wg.Wait()
	return result, nil
}
