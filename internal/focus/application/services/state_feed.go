package services

import (
	"sync"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// StateFeed fans timer snapshots out to subscribers. A new subscriber
// immediately receives the latest snapshot. Each subscriber holds at most
// one undelivered snapshot; a slow reader skips to the newest value but
// never sees values out of order.
type StateFeed struct {
	mu     sync.Mutex
	last   domain.TimerInfo
	subs   map[int]chan domain.TimerInfo
	nextID int
	closed bool
}

// NewStateFeed creates a feed holding initial.
func NewStateFeed(initial domain.TimerInfo) *StateFeed {
	return &StateFeed{
		last: initial,
		subs: make(map[int]chan domain.TimerInfo),
	}
}

// Current returns the latest snapshot.
func (f *StateFeed) Current() domain.TimerInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Publish replaces the latest snapshot and delivers it.
func (f *StateFeed) Publish(info domain.TimerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishLocked(info)
}

// Update applies fn to the latest snapshot and publishes the result.
func (f *StateFeed) Update(fn func(domain.TimerInfo) domain.TimerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishLocked(fn(f.last))
}

func (f *StateFeed) publishLocked(info domain.TimerInfo) {
	f.last = info
	if f.closed {
		return
	}
	for _, ch := range f.subs {
		select {
		case ch <- info:
		default:
			// drop the stale value so the newest one fits
			select {
			case <-ch:
			default:
			}
			ch <- info
		}
	}
}

// Subscribe returns a channel of snapshots and a function that cancels the
// subscription. The channel is closed on cancel or when the feed closes.
func (f *StateFeed) Subscribe() (<-chan domain.TimerInfo, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan domain.TimerInfo, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- f.last

	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if sub, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(sub)
			}
		})
	}
}

// Close closes every subscriber channel.
func (f *StateFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}
