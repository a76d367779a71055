package gateway

import "sync"

const subscriberBuffer = 4

// SessionNotifier fans session changes out to subscribers. Publishing
// never blocks: a subscriber that falls behind loses its oldest pending
// value.
type SessionNotifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Session
}

func NewSessionNotifier() *SessionNotifier {
	return &SessionNotifier{subs: map[int]chan Session{}}
}

func (n *SessionNotifier) Subscribe() (<-chan Session, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan Session, subscriberBuffer)
	n.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

func (n *SessionNotifier) Publish(s Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// full, drop the oldest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
