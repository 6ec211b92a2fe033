package session

import (
	"context"
	"errors"
	"sync"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/logger"
)

// event runs on the runner goroutine and reports whether it changed state
type event func() bool

// Runner drives a Session from its own goroutine for headless commands.
// Calls post events to the loop; executor invocations run in separate
// goroutines and post their completions back.
type Runner struct {
	session *Session
	log     *logger.Logger

	ctx    context.Context
	stop   context.CancelFunc
	events chan event
	quit   chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup

	// loop-owned
	waiters []chan Snapshot

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int

	closeOnce sync.Once
	closeErr  error
}

// NewRunner starts the event loop for s
func NewRunner(s *Session, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	ctx, stop := context.WithCancel(context.Background())
	r := &Runner{
		session: s,
		log:     log.WithComponent("runner"),
		ctx:     ctx,
		stop:    stop,
		events:  make(chan event, 32),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		subs:    make(map[int]chan Snapshot),
	}
	go r.loop()
	return r
}

func (r *Runner) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.quit:
			return
		case ev := <-r.events:
			if ev() {
				r.publish()
			}
		}
	}
}

func (r *Runner) post(ev event) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}

	select {
	case <-r.done:
		return ErrClosed
	case r.events <- ev:
		return nil
	}
}

// Select posts a file selection
func (r *Runner) Select(f common.File) error {
	return r.post(func() bool {
		pending, err := r.session.SelectFile(r.ctx, f)
		if err != nil {
			return !errors.Is(err, ErrClosed)
		}
		r.launch(pending)
		return true
	})
}

// SelectPath posts a selection by path
func (r *Runner) SelectPath(path string) error {
	return r.post(func() bool {
		pending, err := r.session.SelectPath(r.ctx, path)
		if err != nil {
			return !errors.Is(err, ErrClosed)
		}
		r.launch(pending)
		return true
	})
}

// Retry posts a retry of the current file
func (r *Runner) Retry() error {
	return r.post(func() bool {
		pending, err := r.session.Retry(r.ctx)
		if err != nil {
			r.log.Debug("retry ignored: %v", err)
			return false
		}
		r.launch(pending)
		return true
	})
}

// Cancel posts a cancellation of the live invocation
func (r *Runner) Cancel() error {
	return r.post(func() bool {
		return r.session.CancelAnalysis()
	})
}

// Reset posts a reset to NoFile
func (r *Runner) Reset() error {
	return r.post(func() bool {
		if err := r.session.Reset(); err != nil {
			r.log.Warn("reset: %v", err)
		}
		return true
	})
}

func (r *Runner) launch(p *Pending) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		c := p.Run()
		err := r.post(func() bool {
			return r.session.Complete(c) == nil
		})
		if err != nil {
			r.log.Debug("completion for generation %d dropped: %v", c.Generation, err)
		}
	}()
}

// Snapshot returns the state after every previously posted event
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	if err := r.post(func() bool {
		ch <- r.session.Snapshot()
		return false
	}); err != nil {
		return Snapshot{}, err
	}
	return r.receive(ctx, ch)
}

// Wait returns the first settled snapshot after every previously posted
// event has been applied.
func (r *Runner) Wait(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	if err := r.post(func() bool {
		snap := r.session.Snapshot()
		if snap.Settled() {
			ch <- snap
		} else {
			r.waiters = append(r.waiters, ch)
		}
		return false
	}); err != nil {
		return Snapshot{}, err
	}
	return r.receive(ctx, ch)
}

func (r *Runner) receive(ctx context.Context, ch <-chan Snapshot) (Snapshot, error) {
	select {
	case snap := <-ch:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-r.done:
		return Snapshot{}, ErrClosed
	}
}

// Subscribe delivers a snapshot after every transition. Slow subscribers
// miss snapshots rather than stall the loop. The returned func
// unsubscribes.
func (r *Runner) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan Snapshot, buffer)

	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	if r.subs == nil {
		close(ch)
	} else {
		r.subs[id] = ch
	}
	r.subMu.Unlock()

	return ch, func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
}

func (r *Runner) publish() {
	snap := r.session.Snapshot()

	if snap.Settled() && len(r.waiters) > 0 {
		for _, w := range r.waiters {
			w <- snap
		}
		r.waiters = nil
	}

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		select {
		case ch <- snap:
		default:
			r.log.Warn("subscriber %d is behind, dropped generation %d snapshot", id, snap.Generation)
		}
	}
}

// Close closes the session, stops the loop and waits for outstanding
// executor goroutines.
func (r *Runner) Close() error {
	r.closeOnce.Do(func() {
		result := make(chan error, 1)
		if err := r.post(func() bool {
			result <- r.session.Close()
			return true
		}); err == nil {
			r.closeErr = <-result
		}

		r.stop()
		close(r.quit)
		<-r.done
		r.wg.Wait()

		r.subMu.Lock()
		for id, ch := range r.subs {
			delete(r.subs, id)
			close(ch)
		}
		r.subs = nil
		r.subMu.Unlock()
	})
	return r.closeErr
}
