package gitlab

import (
	"sync"
	"time"

	"reviewdeck-backend/internal/types"
)

// detailCache stores fully assembled pull-request detail keyed by numeric
// id. Mutating operations delete the affected entry before they return.
type detailCache struct {
	mu      sync.Mutex
	entries map[int]*types.PullRequest
}

func newDetailCache() *detailCache {
	return &detailCache{entries: make(map[int]*types.PullRequest)}
}

func (c *detailCache) Get(numericID int) (*types.PullRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pr, ok := c.entries[numericID]
	return pr, ok
}

func (c *detailCache) Set(numericID int, pr *types.PullRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[numericID] = pr
}

func (c *detailCache) Invalidate(numericID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, numericID)
}

func (c *detailCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]*types.PullRequest)
}

// fileCommentCache caches per-file comment lookups keyed by
// "repoPath|relativeFilePath". The stored value is the in-flight
// computation itself: a miss registers the entry immediately and kicks the
// compute off asynchronously, so concurrent lookups for the same key share
// one fetch. The caller that causes the miss gets no synchronous result;
// the computed comments are delivered through the onReady callback (which
// feeds the change notifier) once the compute completes.
type fileCommentCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*fileCacheEntry
}

type fileCacheEntry struct {
	expiresAt time.Time
	done      chan struct{}
	comments  []types.FileComment
	err       error
}

func newFileCommentCache(ttl time.Duration) *fileCommentCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &fileCommentCache{ttl: ttl, entries: make(map[string]*fileCacheEntry)}
}

func FileCommentKey(repoPath, relPath string) string {
	return repoPath + "|" + relPath
}

// Lookup returns the cached comments when a completed, unexpired entry
// exists. Otherwise it registers an in-flight entry, starts compute on a
// new goroutine and returns (nil, false); onReady fires when the compute
// lands. If an in-flight entry already exists, no second compute starts.
func (c *fileCommentCache) Lookup(key string, compute func() ([]types.FileComment, error), onReady func([]types.FileComment, error)) ([]types.FileComment, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok {
		select {
		case <-entry.done:
			if entry.err == nil && time.Now().Before(entry.expiresAt) {
				comments := entry.comments
				c.mu.Unlock()
				return comments, true
			}
			// Completed but expired or failed: fall through and refresh.
		default:
			// Still in flight; share it.
			c.mu.Unlock()
			return nil, false
		}
	}

	entry = &fileCacheEntry{done: make(chan struct{})}
	c.entries[key] = entry
	c.mu.Unlock()

	go func() {
		comments, err := compute()
		c.mu.Lock()
		entry.comments = comments
		entry.err = err
		entry.expiresAt = time.Now().Add(c.ttl)
		close(entry.done)
		c.mu.Unlock()
		if onReady != nil {
			onReady(comments, err)
		}
	}()

	return nil, false
}

// Invalidate drops the entry for a key.
func (c *fileCommentCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry. In-flight computations keep running; their
// results land on the orphaned entries and are never served.
func (c *fileCommentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*fileCacheEntry)
}

// Wait blocks until the in-flight entry for key (if any) completes. Used by
// tests.
func (c *fileCommentCache) Wait(key string) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		<-entry.done
	}
}
