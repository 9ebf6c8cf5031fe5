// Package notify fans change notifications out to connected UI sessions.
// Publishing is fire-and-forget: a slow subscriber drops notifications
// rather than blocking the adapter.
package notify

import (
	"sync"
)

// Change names the server-visible state that moved. PullRequestID is the
// opaque identifier token; Path and CommentID are set where relevant so the
// UI layer can invalidate a narrower view.
type Change struct {
	PullRequestID string `json:"pullRequestId,omitempty"`
	NumericID     int    `json:"numericId,omitempty"`
	Path          string `json:"path,omitempty"`
	CommentID     string `json:"commentId,omitempty"`
	Kind          string `json:"kind"`
}

const (
	KindPullRequest  = "pull-request"
	KindComments     = "comments"
	KindFileComments = "file-comments"
)

type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Change)}
}

// Subscribe registers a new listener. The returned cancel func must be
// called when the listener goes away.
func (n *Notifier) Subscribe() (<-chan Change, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan Change, 16)
	n.subs[id] = ch
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers the change to every subscriber without blocking.
func (n *Notifier) Publish(c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- c:
		default:
			// Subscriber is not keeping up; drop.
		}
	}
}
