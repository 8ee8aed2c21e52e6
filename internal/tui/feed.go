package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngenohkevin/hivedeck-monitor/internal/dashboard"
)

// Feed hands dashboard views to the running program. It holds at most one
// view, so a slow renderer only ever sees the latest outcome.
type Feed struct {
	mu        sync.Mutex
	ch        chan dashboard.View
	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{
		ch:   make(chan dashboard.View, 1),
		done: make(chan struct{}),
	}
}

// Publish replaces any undelivered view with v
func (f *Feed) Publish(v dashboard.View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		select {
		case f.ch <- v:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// Close releases any pending wait. Call it once the program has exited.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

// viewMsg carries a published dashboard view
type viewMsg dashboard.View

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case v := <-f.ch:
			return viewMsg(v)
		case <-f.done:
			return nil
		}
	}
}
