package store

import (
	"sync"
	"time"
)

// TokenErrorKind separates credential problems (the token itself was
// rejected) from connection problems (the server could not be reached or
// does not support the operation).
type TokenErrorKind string

const (
	TokenErrorCredential TokenErrorKind = "credential"
	TokenErrorConnection TokenErrorKind = "connection"
)

// TokenError is the persisted record of the last classified token failure,
// read by the reconnection flow to decide whether to prompt for
// re-authentication.
type TokenError struct {
	At   time.Time
	Kind TokenErrorKind
}

// ConnectionStore keeps per-account connection state in memory. One entry
// per connected account; the adapter for that account is the only writer of
// its token-error record.
type ConnectionStore struct {
	mu          sync.RWMutex
	tokenErrors map[string]TokenError
	baseURLs    map[string]string
}

func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{
		tokenErrors: make(map[string]TokenError),
		baseURLs:    make(map[string]string),
	}
}

func (c *ConnectionStore) SetBaseURL(accountID, baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURLs[accountID] = baseURL
}

func (c *ConnectionStore) BaseURL(accountID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURLs[accountID]
}

// RecordTokenError stores the last classified failure for the account.
func (c *ConnectionStore) RecordTokenError(accountID string, kind TokenErrorKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenErrors[accountID] = TokenError{At: time.Now(), Kind: kind}
}

// TokenError returns the last recorded failure, if any.
func (c *ConnectionStore) TokenError(accountID string) (TokenError, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	te, ok := c.tokenErrors[accountID]
	return te, ok
}

// ClearTokenError removes the record after a successful (re)connect.
func (c *ConnectionStore) ClearTokenError(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokenErrors, accountID)
}
