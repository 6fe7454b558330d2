package filters

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay used when none is given.
const DefaultDebounce = 500 * time.Millisecond

// Patcher applies filter patches.
type Patcher interface {
	SetFilters(Patch)
}

// Debouncer delays patches and applies only the last one submitted within the delay.
type Debouncer struct {
	target Patcher
	delay  time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *Patch
}

func NewDebouncer(target Patcher, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{target: target, delay: delay}
}

// Update schedules p, replacing any patch still waiting.
func (d *Debouncer) Update(p Patch) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = &p
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.Flush)
}

// Flush applies the waiting patch now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	p := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if p != nil {
		d.target.SetFilters(*p)
	}
}

// Stop discards the waiting patch.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
