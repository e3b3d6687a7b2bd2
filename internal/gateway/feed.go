package gateway

import (
	"sync"
)

const feedBuffer = 16

// Feed fans parsed requests out to live subscribers. A subscriber that does
// not keep up loses messages instead of blocking AGI sessions.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
}

func NewFeed() *Feed {
	return &Feed{
		subscribers: map[chan []byte]struct{}{},
	}
}

func (f *Feed) Subscribe() (messages <-chan []byte, unsubscribe func()) {
	ch := make(chan []byte, feedBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()

			close(ch)
		})
	}
}

func (f *Feed) Publish(msg []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.subscribers)
}
