package gitlab

import (
	"sync"

	"reviewdeck-backend/internal/types"
)

// PendingReviewStore accumulates draft inline comments per pull request
// until a submit flushes them. Entries exist only in memory; they are never
// visible through any provider call and are synthesized into fetched detail
// by the normalizer.
type PendingReviewStore struct {
	mu     sync.Mutex
	drafts map[int][]types.DraftComment
}

func NewPendingReviewStore() *PendingReviewStore {
	return &PendingReviewStore{drafts: make(map[int][]types.DraftComment)}
}

// Stage appends a draft to the pull request's staged list.
func (p *PendingReviewStore) Stage(numericID int, draft types.DraftComment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drafts[numericID] = append(p.drafts[numericID], draft)
}

// Has reports whether a review is open for the pull request.
func (p *PendingReviewStore) Has(numericID int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.drafts[numericID]) > 0
}

// List returns a copy of the staged drafts.
func (p *PendingReviewStore) List(numericID int) []types.DraftComment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.DraftComment(nil), p.drafts[numericID]...)
}

// Take removes and returns the staged drafts. The flush clears the list
// unconditionally, so Take happens before any network call.
func (p *PendingReviewStore) Take(numericID int) []types.DraftComment {
	p.mu.Lock()
	defer p.mu.Unlock()
	drafts := p.drafts[numericID]
	delete(p.drafts, numericID)
	return drafts
}

// Discard drops the staged list without submitting.
func (p *PendingReviewStore) Discard(numericID int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.drafts, numericID)
}
