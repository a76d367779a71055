package orchestrator

import (
	"github.com/tranvictor/vaultctl/ui"
)

type Level uint8

const (
	LevelProgress Level = iota
	LevelSuccess
	LevelError
)

// Notification is one toast-like message about an action. Kind is empty
// for network switches.
type Notification struct {
	Kind    Kind
	Level   Level
	Message string
}

// Notifier must not block.
type Notifier interface {
	Notify(Notification)
}

type UINotifier struct {
	u ui.UI
}

func NewUINotifier(u ui.UI) *UINotifier {
	return &UINotifier{u: u}
}

func (n *UINotifier) Notify(msg Notification) {
	switch msg.Level {
	case LevelSuccess:
		n.u.Success("%s", msg.Message)
	case LevelError:
		n.u.Error("%s", msg.Message)
	default:
		n.u.Info("%s", msg.Message)
	}
}

// ChanNotifier delivers notifications to a buffered channel and drops them
// when nobody reads it.
type ChanNotifier struct {
	C chan Notification
}

func NewChanNotifier(size int) *ChanNotifier {
	return &ChanNotifier{C: make(chan Notification, size)}
}

func (n *ChanNotifier) Notify(msg Notification) {
	select {
	case n.C <- msg:
	default:
	}
}
