package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"kinky/internal/enhance"
	"kinky/internal/logger"
	"kinky/internal/models"
)

// Subprocess runs jobs in a child process speaking the frame protocol over
// its stdin and stdout. The base image crosses the pipe once, at start.
type Subprocess struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	terminate func() error
	logger    logger.Logger

	mu     sync.Mutex
	broken error
}

// StartSubprocess launches name with args and hands it the base image.
// The child is expected to run Serve on its standard streams.
func StartSubprocess(base *models.Image, log logger.Logger, name string, args ...string) (*Subprocess, error) {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("worker process failed to start: %w", err)
	}

	terminate := func() error {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil
	}

	w, err := newSubprocess(stdin, stdout, base, terminate, log)
	if err != nil {
		return nil, err
	}
	w.cmd = cmd

	log.Info("Worker", "worker process started", map[string]interface{}{
		"pid":      cmd.Process.Pid,
		"width":    base.Width,
		"height":   base.Height,
		"channels": base.Channels,
	})
	return w, nil
}

func newSubprocess(stdin io.WriteCloser, stdout io.Reader, base *models.Image, terminate func() error, log logger.Logger) (*Subprocess, error) {
	w := &Subprocess{
		stdin:     stdin,
		stdout:    bufio.NewReader(stdout),
		terminate: terminate,
		logger:    log,
	}

	bw := bufio.NewWriter(stdin)
	err := WriteImage(bw, base)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to send base image: %w", err)
	}
	return w, nil
}

// Process blocks until the child replies. Any I/O failure leaves the worker
// permanently broken.
func (w *Subprocess) Process(ctx context.Context, p models.ParameterSet) (*models.Image, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.broken != nil {
		return nil, w.broken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := w.roundTrip(p)
	if err != nil {
		w.broken = fmt.Errorf("%w: %v", ErrWorkerExited, err)
		w.logger.Error("Worker", err, map[string]interface{}{"params": p.String()})
		return nil, w.broken
	}
	return img, nil
}

func (w *Subprocess) roundTrip(p models.ParameterSet) (*models.Image, error) {
	if err := WriteParams(w.stdin, p); err != nil {
		return nil, err
	}
	img, err := ReadImage(w.stdout)
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return img, err
}

// Close terminates the child unconditionally.
func (w *Subprocess) Close() error {
	_ = w.stdin.Close()
	if w.terminate != nil {
		return w.terminate()
	}
	return nil
}

// Serve is the child side: it reads the base image, then answers parameter
// frames with result frames until the input closes.
func Serve(r io.Reader, w io.Writer) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	base, err := ReadImage(in)
	if err != nil {
		return fmt.Errorf("failed to read base image: %w", err)
	}

	for {
		p, err := ReadParams(in)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}

		if err := WriteImage(out, enhance.Transform(base, p)); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("failed to flush result: %w", err)
		}
	}
}
