// Package worker provides the long-lived execution contexts that run the
// enhancement transform on a base image held for the whole session.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kinky/internal/enhance"
	"kinky/internal/models"
)

// ErrWorkerExited is returned once a worker can no longer accept requests.
var ErrWorkerExited = errors.New("worker exited")

// Worker runs the transform on the image it was constructed with. Callers
// must not issue overlapping Process calls.
type Worker interface {
	Process(ctx context.Context, p models.ParameterSet) (*models.Image, error)
	Close() error
}

type request struct {
	params models.ParameterSet
	reply  chan response
}

type response struct {
	image *models.Image
	err   error
}

// Local runs jobs on a dedicated goroutine inside this process.
type Local struct {
	base      *models.Image
	requests  chan request
	done      chan struct{}
	closeOnce sync.Once
}

// NewLocal starts the worker goroutine. base is shared read-only from now on.
func NewLocal(base *models.Image) *Local {
	w := &Local{
		base:     base,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Local) run() {
	for {
		select {
		case req := <-w.requests:
			req.reply <- w.execute(req.params)
		case <-w.done:
			return
		}
	}
}

func (w *Local) execute(p models.ParameterSet) (resp response) {
	defer func() {
		if r := recover(); r != nil {
			resp = response{err: fmt.Errorf("%w: transform panicked: %v", ErrWorkerExited, r)}
		}
	}()
	return response{image: enhance.Transform(w.base, p)}
}

func (w *Local) Process(ctx context.Context, p models.ParameterSet) (*models.Image, error) {
	select {
	case <-w.done:
		return nil, ErrWorkerExited
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply := make(chan response, 1)
	select {
	case w.requests <- request{params: p, reply: reply}:
	case <-w.done:
		return nil, ErrWorkerExited
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-reply:
		return resp.image, resp.err
	case <-w.done:
		return nil, ErrWorkerExited
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting work. A transform already running finishes in the
// background and its result is dropped.
func (w *Local) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}
