package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
)

// PollState represents the current state of the poller.
type PollState int

const (
	PollIdle PollState = iota
	PollRunning
	PollError
)

// Status holds the state of the last poll.
type Status struct {
	State    PollState
	LastPoll time.Time
	Error    error
}

// ResultMsg is a tea.Msg sent when a poll completes.
type ResultMsg struct {
	// Unread is the unread count after the poll.
	Unread int

	// New counts notifications that appeared since the previous poll.
	New int

	// Pruned counts notifications removed by the retention policy.
	Pruned int64

	Error error
}

const (
	// pollTimeout is the maximum time allowed for a single poll.
	pollTimeout = 10 * time.Second

	defaultInterval = 5 * time.Second
)

// Poller watches one inbox in the background so notifications written by
// other processes, such as a generation run from the CLI, reach the UI.
type Poller struct {
	inbox     *notify.Inbox
	interval  time.Duration
	logger    *zap.Logger
	resultCh  chan ResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	status    Status
	seen      map[string]bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the polling interval. Non-positive values keep the
// default.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the poller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a new Poller for in.
func New(in *notify.Inbox, opts ...Option) *Poller {
	p := &Poller{
		inbox:     in,
		interval:  defaultInterval,
		logger:    zap.NewNop(),
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start returns a tea.Cmd that starts the polling goroutine and waits for
// its first result. Calling Start on a running poller returns nil.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A poll is already pending.
	}
}

// Status returns the state of the last poll.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial poll immediately
	p.sendResult(p.Poll(context.Background()))

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.sendResult(p.Poll(context.Background()))
		case <-p.triggerCh:
			p.sendResult(p.Poll(context.Background()))
		}
	}
}

// Poll applies the retention policy, then counts unread notifications and
// those not seen by an earlier poll. The first poll only records what
// exists.
func (p *Poller) Poll(ctx context.Context) ResultMsg {
	p.setStatus(PollRunning, nil)

	ctx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()

	var res ResultMsg

	pruned, err := p.inbox.Prune(ctx)
	if err != nil {
		return p.fail(err)
	}
	res.Pruned = pruned

	current, err := p.inbox.List(ctx)
	if err != nil {
		return p.fail(err)
	}

	p.mu.Lock()
	first := p.seen == nil
	seen := make(map[string]bool, len(current))
	for _, n := range current {
		seen[n.ID] = true
		if !first && !p.seen[n.ID] {
			res.New++
		}
		if !n.Read {
			res.Unread++
		}
	}
	p.seen = seen
	p.mu.Unlock()

	if res.New > 0 || res.Pruned > 0 {
		p.logger.Debug("inbox changed",
			zap.String("user", p.inbox.UserID()),
			zap.Int("new", res.New),
			zap.Int64("pruned", res.Pruned),
		)
	}

	p.setStatus(PollIdle, nil)
	return res
}

func (p *Poller) fail(err error) ResultMsg {
	p.logger.Warn("polling inbox", zap.String("user", p.inbox.UserID()), zap.Error(err))
	p.setStatus(PollError, err)
	return ResultMsg{Error: err}
}

func (p *Poller) setStatus(state PollState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == PollIdle && err == nil {
		p.status.LastPoll = time.Now()
	}
}

// sendResult sends a ResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg ResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// Call it after handling a ResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
