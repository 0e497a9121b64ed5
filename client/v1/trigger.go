package v1

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vvangelov/brregservice/internal"
	"github.com/vvangelov/brregservice/internal/handler"
)

// DefaultDebounce is the quiet period after the last keystroke before a lookup fires.
const DefaultDebounce = 300 * time.Millisecond

// Result is delivered once per completed lookup that was not superseded.
type Result struct {
	Number   string
	Response *handler.LookupResponse
	Err      error
}

// Trigger turns a stream of input values into organization lookups. A lookup fires
// only for values of exactly nine characters once the input has been quiet for the
// debounce delay. New input cancels both the pending timer and any lookup in flight,
// so onResult only ever sees the latest value's answer.
type Trigger struct {
	svc      OrganizationService
	delay    time.Duration
	onResult func(Result)

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
}

func NewTrigger(svc OrganizationService, delay time.Duration, onResult func(Result)) *Trigger {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Trigger{svc: svc, delay: delay, onResult: onResult}
}

// Input records the current value of the watched field.
func (t *Trigger) Input(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.seq++
	t.resetLocked()
	if utf8.RuneCountInString(value) != internal.OrganizationNumberLength {
		return
	}
	id := t.seq
	t.timer = time.AfterFunc(t.delay, func() { t.fire(id, value) })
}

// Stop cancels pending work. Input is ignored afterwards.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.seq++
	t.resetLocked()
}

func (t *Trigger) resetLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Trigger) fire(id uint64, number string) {
	t.mu.Lock()
	if id != t.seq || t.stopped {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.mu.Unlock()

	res, err := t.svc.LookupOrganization(ctx, number)

	t.mu.Lock()
	current := id == t.seq && !t.stopped
	if current {
		t.cancel = nil
	}
	t.mu.Unlock()
	cancel()

	if current && t.onResult != nil {
		t.onResult(Result{Number: number, Response: res, Err: err})
	}
}
