// Package scheduler coalesces parameter changes into at most one in-flight
// transform job.
//
// The state machine is:
//
//	Idle             --Apply(p)-->   dispatch p, Busy
//	Busy             --Apply(p)-->   BusyWithPending(p)
//	Busy             --complete-->   emit, Idle
//	BusyWithPending  --Apply(p2)-->  BusyWithPending(p2)
//	BusyWithPending  --complete-->   emit, dispatch pending, Busy
//
// A worker error moves the scheduler to Failed, which is terminal. Close
// moves it to Closed from any state.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kinky/internal/logger"
	"kinky/internal/models"
	"kinky/internal/worker"

	"github.com/google/uuid"
)

var (
	ErrClosed       = errors.New("scheduler closed")
	ErrWorkerFailed = errors.New("worker failed")
)

type State int

const (
	Idle State = iota
	Busy
	BusyWithPending
	Failed
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Busy:
		return "Busy"
	case BusyWithPending:
		return "BusyWithPending"
	case Failed:
		return "Failed"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Completion is emitted once per finished job, in dispatch order.
type Completion struct {
	JobID    uuid.UUID
	Seq      uint64
	Params   models.ParameterSet
	Result   *models.Image
	Duration time.Duration
	Err      error
}

// Observer receives activity counts; metrics.Collector implements it.
type Observer interface {
	Requested()
	Coalesced()
	Dispatched()
	Completed(d time.Duration)
	Failed()
	SetBusy(busy bool)
}

type noopObserver struct{}

func (noopObserver) Requested()              {}
func (noopObserver) Coalesced()              {}
func (noopObserver) Dispatched()             {}
func (noopObserver) Completed(time.Duration) {}
func (noopObserver) Failed()                 {}
func (noopObserver) SetBusy(bool)            {}

type Option func(*Scheduler)

func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// WithOnComplete installs the completion hook. It runs on the dispatcher
// goroutine and delays the next job until it returns, so it must not block;
// UI code should hand the Completion to its own event loop.
func WithOnComplete(fn func(Completion)) Option {
	return func(s *Scheduler) { s.onComplete = fn }
}

type job struct {
	id     uuid.UUID
	seq    uint64
	params models.ParameterSet
}

type Scheduler struct {
	worker     worker.Worker
	logger     logger.Logger
	observer   Observer
	onComplete func(Completion)

	mu      sync.Mutex
	state   State
	pending models.ParameterSet
	seq     uint64
	failure error
	latest  *Completion

	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New takes ownership of w and starts the dispatcher goroutine.
func New(w worker.Worker, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		worker:     w,
		logger:     logger.Nop(),
		observer:   noopObserver{},
		onComplete: func(Completion) {},
		state:      Idle,
		jobs:       make(chan job, 1),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// Apply requests a recompute with p and returns immediately. Invalid
// parameters are rejected with a ValidationError and leave the state alone.
func (s *Scheduler) Apply(p models.ParameterSet) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Failed:
		return s.failure
	case Closed:
		return ErrClosed
	}

	s.observer.Requested()

	switch s.state {
	case Idle:
		s.dispatchLocked(p)
		s.state = Busy
		s.observer.SetBusy(true)
	case Busy:
		s.pending = p
		s.state = BusyWithPending
	case BusyWithPending:
		s.pending = p
		s.observer.Coalesced()
		s.logger.Debug("Scheduler", "pending parameters superseded", map[string]interface{}{
			"params": p.String(),
		})
	}
	return nil
}

// dispatchLocked never blocks: the state machine guarantees the job channel
// is empty whenever a dispatch happens.
func (s *Scheduler) dispatchLocked(p models.ParameterSet) {
	s.seq++
	j := job{id: uuid.New(), seq: s.seq, params: p}
	s.jobs <- j
	s.observer.Dispatched()
	s.logger.Debug("Scheduler", "job dispatched", map[string]interface{}{
		"job_id": j.id.String(),
		"seq":    j.seq,
		"params": p.String(),
	})
}

func (s *Scheduler) run() {
	defer close(s.done)

	for {
		select {
		case j := <-s.jobs:
			start := time.Now()
			img, err := s.worker.Process(s.ctx, j.params)
			s.complete(j, img, err, time.Since(start))
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) complete(j job, img *models.Image, err error, d time.Duration) {
	c := Completion{
		JobID:    j.id,
		Seq:      j.seq,
		Params:   j.params,
		Result:   img,
		Duration: d,
	}

	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}

	if err != nil {
		s.failure = fmt.Errorf("%w: %w", ErrWorkerFailed, err)
		s.state = Failed
		s.pending = models.ParameterSet{}
		c.Result = nil
		c.Err = s.failure
		s.observer.Failed()
		s.observer.SetBusy(false)
		s.logger.Error("Scheduler", err, map[string]interface{}{
			"job_id": j.id.String(),
			"seq":    j.seq,
		})
	} else {
		s.observer.Completed(d)
		latest := c
		s.latest = &latest

		switch s.state {
		case BusyWithPending:
			next := s.pending
			s.pending = models.ParameterSet{}
			s.dispatchLocked(next)
			s.state = Busy
		case Busy:
			s.state = Idle
			s.observer.SetBusy(false)
		}
		s.logger.Debug("Scheduler", "job completed", map[string]interface{}{
			"job_id":      j.id.String(),
			"seq":         j.seq,
			"duration_ms": d.Milliseconds(),
			"state":       s.state.String(),
		})
	}
	s.mu.Unlock()

	s.onComplete(c)
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a recompute cycle is outstanding: true from the
// first Apply of a cycle until the scheduler returns to Idle.
func (s *Scheduler) Busy() bool {
	state := s.State()
	return state == Busy || state == BusyWithPending
}

// Pending returns the parameters waiting for the current job to finish.
func (s *Scheduler) Pending() (models.ParameterSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.state == BusyWithPending
}

// Executions returns the number of jobs dispatched so far.
func (s *Scheduler) Executions() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Latest returns the most recent successful completion.
func (s *Scheduler) Latest() (Completion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Completion{}, false
	}
	return *s.latest, true
}

// Err returns the worker failure once the scheduler is Failed.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Close terminates the worker without draining. Completions of a job that
// was running are discarded.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return nil
	}
	s.state = Closed
	s.pending = models.ParameterSet{}
	s.mu.Unlock()

	s.observer.SetBusy(false)
	s.cancel()
	err := s.worker.Close()
	<-s.done
	return err
}
