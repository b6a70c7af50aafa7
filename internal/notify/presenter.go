package notify

import (
	"sync"
	"time"

	"taskchat/internal/tasks"
)

const defaultDismissAfter = 3 * time.Second

// Presenter holds at most one visible notification. A new notification
// replaces the current one outright; each self-dismisses after a fixed
// interval unless dismissed earlier. Dismissal only hides the notification,
// it never cancels the mutation behind it.
type Presenter struct {
	mu           sync.Mutex
	current      *tasks.Notice
	seq          uint64
	timer        *time.Timer
	dismissAfter time.Duration
	onChange     func(*tasks.Notice)
}

type Option func(*Presenter)

// WithDismissAfter overrides the auto-dismiss interval.
func WithDismissAfter(d time.Duration) Option {
	return func(p *Presenter) {
		if d > 0 {
			p.dismissAfter = d
		}
	}
}

// WithOnChange registers a callback invoked with the new visible
// notification (nil on dismiss). It may run on the dismiss timer goroutine;
// keep it cheap.
func WithOnChange(fn func(*tasks.Notice)) Option {
	return func(p *Presenter) {
		p.onChange = fn
	}
}

func NewPresenter(opts ...Option) *Presenter {
	p := &Presenter{dismissAfter: defaultDismissAfter}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Notify implements tasks.Notifier.
func (p *Presenter) Notify(n tasks.Notice) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.current = &n
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.dismissAfter, func() {
		p.dismissIfCurrent(seq)
	})
	fn := p.onChange
	p.mu.Unlock()

	if fn != nil {
		copied := n
		fn(&copied)
	}
}

// Current returns the visible notification, or nil.
func (p *Presenter) Current() *tasks.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	copied := *p.current
	return &copied
}

// Dismiss hides the visible notification.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	p.clearLocked()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn(nil)
	}
}

// TakeReversal hands out the visible notification's undo action at most
// once. The notification stays visible; only the reversal is consumed.
func (p *Presenter) TakeReversal() *tasks.Reversal {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.Reversal == nil {
		return nil
	}
	r := p.current.Reversal
	p.current.Reversal = nil
	return r
}

func (p *Presenter) dismissIfCurrent(seq uint64) {
	p.mu.Lock()
	if p.seq != seq {
		p.mu.Unlock()
		return
	}
	p.clearLocked()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn(nil)
	}
}

func (p *Presenter) clearLocked() {
	p.current = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
