package snapshot

import (
	"sync"
)

// Event announces that a new rule table became current.
type Event struct {
	ETag    string `json:"etag"`
	Version string `json:"version,omitempty"`
	Rules   int    `json:"rules"`
}

type subCh = chan Event

var (
	subMu sync.Mutex
	subs  = make(map[subCh]struct{})
)

// Subscribe registers a listener and returns its channel and an unsubscribe func.
// The channel holds one pending event; slower listeners miss intermediate ones
// but always receive the most recent.
func Subscribe() (<-chan Event, func()) {
	ch := make(subCh, 1)
	subMu.Lock()
	subs[ch] = struct{}{}
	subMu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			subMu.Lock()
			delete(subs, ch)
			close(ch)
			subMu.Unlock()
		})
	}
	return ch, unsub
}

// Subscribers returns the number of registered listeners.
func Subscribers() int {
	subMu.Lock()
	defer subMu.Unlock()
	return len(subs)
}

// publishUpdate notifies all listeners (non-blocking). A pending event that
// was not read yet is replaced, so listeners always end on the latest table.
func publishUpdate(ev Event) {
	subMu.Lock()
	for ch := range subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
	subMu.Unlock()
}
