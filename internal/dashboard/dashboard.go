package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ngenohkevin/hivedeck-monitor/internal/poller"
	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

// Dispatcher sends control commands to the process directory
type Dispatcher interface {
	Dispatch(ctx context.Context, pid int32, action process.Action) error
}

// Options tune a Dashboard
type Options struct {
	// Interval between the end of one poll cycle and the start of the next
	Interval time.Duration
	// RequestTimeout bounds each fetch, zero means no bound
	RequestTimeout time.Duration
	// RefreshOnAction forces a poll cycle after a successful action
	RefreshOnAction bool
	// OnUpdate is called after every published poll outcome
	OnUpdate func(View)
}

// View is what the presentation layer renders
type View struct {
	Rows      []process.Record
	Sort      process.SortSpec
	Loading   bool
	Err       error
	UpdatedAt time.Time
	Cycles    uint64
}

// Dashboard ties the poll loop, the ordering engine and the action
// dispatcher together. Each instance owns its own state.
type Dashboard struct {
	state      *poller.State
	scheduler  *poller.Scheduler
	dispatcher Dispatcher
	opts       Options

	mu      sync.Mutex
	sort    process.SortSpec
	lastErr string
}

// New creates a dashboard; call Start to begin polling
func New(fetcher poller.Fetcher, dispatcher Dispatcher, opts Options) *Dashboard {
	d := &Dashboard{
		state:      poller.NewState(),
		dispatcher: dispatcher,
		opts:       opts,
		sort:       process.DefaultSortSpec(),
	}
	d.scheduler = poller.NewScheduler(fetcher, d.state, opts.Interval,
		poller.WithRequestTimeout(opts.RequestTimeout),
		poller.WithOnPublish(d.published),
	)
	return d
}

// Start begins polling
func (d *Dashboard) Start() error {
	return d.scheduler.Start()
}

// Close stops polling; no update is published after it returns
func (d *Dashboard) Close() {
	d.scheduler.Stop()
}

// View returns the current snapshot ordered by the active sort
func (d *Dashboard) View() View {
	return d.view(d.state.Status())
}

// Sort returns the active sort
func (d *Dashboard) Sort() process.SortSpec {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sort
}

// SetSortKey selects key, flipping the direction if it is already active
func (d *Dashboard) SetSortKey(key process.SortKey) process.SortSpec {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sort = d.sort.Toggle(key)
	return d.sort
}

// Refresh asks for an immediate poll cycle
func (d *Dashboard) Refresh() bool {
	return d.scheduler.Refresh()
}

// Dispatch sends action for pid. The snapshot is left alone; the next poll
// cycle reflects the outcome.
func (d *Dashboard) Dispatch(ctx context.Context, pid int32, action process.Action) error {
	if err := d.dispatcher.Dispatch(ctx, pid, action); err != nil {
		log.Printf("Action %s on pid %d failed: %v", action, pid, err)
		return err
	}

	log.Printf("Action %s sent to pid %d", action, pid)
	if d.opts.RefreshOnAction {
		d.scheduler.Refresh()
	}
	return nil
}

// Terminate kills pid
func (d *Dashboard) Terminate(ctx context.Context, pid int32) error {
	return d.Dispatch(ctx, pid, process.ActionTerminate)
}

// Suspend pauses pid
func (d *Dashboard) Suspend(ctx context.Context, pid int32) error {
	return d.Dispatch(ctx, pid, process.ActionSuspend)
}

// Resume continues pid
func (d *Dashboard) Resume(ctx context.Context, pid int32) error {
	return d.Dispatch(ctx, pid, process.ActionResume)
}

func (d *Dashboard) view(st poller.Status) View {
	spec := d.Sort()
	return View{
		Rows:      process.Order(st.Snapshot, spec),
		Sort:      spec,
		Loading:   st.Loading,
		Err:       st.Err,
		UpdatedAt: st.UpdatedAt,
		Cycles:    st.Cycles,
	}
}

func (d *Dashboard) published(st poller.Status) {
	d.logTransition(st.Err)
	if d.opts.OnUpdate != nil {
		d.opts.OnUpdate(d.view(st))
	}
}

// logTransition logs fetch errors once per change instead of every cycle
func (d *Dashboard) logTransition(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	d.mu.Lock()
	prev := d.lastErr
	d.lastErr = msg
	d.mu.Unlock()

	switch {
	case msg == prev:
	case msg == "":
		log.Printf("Process list fetch recovered")
	default:
		log.Printf("Process list fetch failed: %v", err)
	}
}
