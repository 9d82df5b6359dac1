package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// lockTable hands out per-scope locks. Scopes are string keys: one per
// project for structural and dependency mutations, one per
// (project, list_position) bucket for ordering mutations.
//
// Keys are always acquired in sorted order, so overlapping multi-key
// acquisitions cannot deadlock. Acquisition is bounded by the configured
// timeout; on expiry the caller gets ErrBusy and is expected to retry.
type lockTable struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	timeout time.Duration
}

func newLockTable(timeout time.Duration) *lockTable {
	return &lockTable{
		locks:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (lt *lockTable) sem(key string) chan struct{} {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	sem, ok := lt.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		lt.locks[key] = sem
	}
	return sem
}

// acquire takes every key, deduplicated and sorted, within one shared
// timeout budget. On success the returned release function unlocks all of
// them; on failure everything already taken is released.
func (lt *lockTable) acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := dedupeSorted(keys)

	deadline := time.NewTimer(lt.timeout)
	defer deadline.Stop()

	var held []chan struct{}
	releaseHeld := func() {
		for _, sem := range held {
			<-sem
		}
	}

	for _, key := range sorted {
		sem := lt.sem(key)
		select {
		case sem <- struct{}{}:
			held = append(held, sem)
		case <-deadline.C:
			releaseHeld()
			return nil, fmt.Errorf("%w (scope %s)", ErrBusy, key)
		case <-ctx.Done():
			releaseHeld()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

func dedupeSorted(keys []string) []string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, k := range sorted {
		if i > 0 && sorted[i-1] == k {
			continue
		}
		out = append(out, k)
	}
	return out
}

// projectKey scopes structural, dependency, and delete mutations.
func projectKey(projectID int) string {
	return fmt.Sprintf("project:%d", projectID)
}

// bucketKey scopes ordering mutations within one workflow column.
func bucketKey(projectID int, listPosition string) string {
	return fmt.Sprintf("project:%d:bucket:%s", projectID, listPosition)
}
