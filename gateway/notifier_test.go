package gateway

import "testing"

func TestNotifierDeliversToAllSubscribers(t *testing.T) {
	n := NewSessionNotifier()
	a, stopA := n.Subscribe()
	b, stopB := n.Subscribe()
	defer stopA()
	defer stopB()

	n.Publish(Session{ChainID: 8453})
	if s := <-a; s.ChainID != 8453 {
		t.Errorf("a got %+v", s)
	}
	if s := <-b; s.ChainID != 8453 {
		t.Errorf("b got %+v", s)
	}
}

func TestNotifierDropsOldestForSlowSubscriber(t *testing.T) {
	n := NewSessionNotifier()
	ch, stop := n.Subscribe()
	defer stop()

	for i := uint64(1); i <= subscriberBuffer+2; i++ {
		n.Publish(Session{ChainID: i})
	}
	first := <-ch
	if first.ChainID != 3 {
		t.Errorf("oldest values should be dropped, first pending is %d", first.ChainID)
	}
	var last Session
	for len(ch) > 0 {
		last = <-ch
	}
	if last.ChainID != subscriberBuffer+2 {
		t.Errorf("latest value must survive, got %d", last.ChainID)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	n := NewSessionNotifier()
	ch, stop := n.Subscribe()
	stop()
	stop()
	if _, ok := <-ch; ok {
		t.Errorf("channel should be closed")
	}
	n.Publish(Session{})
}
