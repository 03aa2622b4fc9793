// Package session holds the state of one interactive tuning session: the
// current ParameterSet, the latest displayed result and whether it has been
// saved. A Session is owned by a single goroutine (the UI event loop) and is
// not safe for concurrent use; recomputation happens behind the Recomputer.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"kinky/internal/config"
	"kinky/internal/drag"
	"kinky/internal/logger"
	"kinky/internal/models"
	"kinky/internal/scheduler"
)

// Recomputer is the subset of the scheduler a session drives.
type Recomputer interface {
	Apply(p models.ParameterSet) error
	Busy() bool
}

// SaveFunc persists an image to path.
type SaveFunc func(img *models.Image, path string) error

// Source describes the image a session was opened on.
type Source struct {
	Path  string
	Image *models.Image
	Depth int
}

type Session struct {
	cfg    config.Config
	mapper *drag.Mapper
	recomp Recomputer
	save   SaveFunc
	logger logger.Logger
	source Source

	params    models.ParameterSet
	result    *models.Image
	resultFor models.ParameterSet
	precision bool
	saved     bool
}

func New(cfg config.Config, src Source, recomp Recomputer, save SaveFunc, log logger.Logger) *Session {
	return &Session{
		cfg:    cfg,
		mapper: drag.NewMapper(cfg.Sensitivity),
		recomp: recomp,
		save:   save,
		logger: log,
		source: src,
		params: cfg.Defaults,
		saved:  true,
	}
}

// Start requests the first result for the default parameters.
func (s *Session) Start() error {
	return s.recomp.Apply(s.params)
}

func (s *Session) Params() models.ParameterSet {
	return s.params
}

// SetPrecision toggles the precision modifier for subsequent drags.
func (s *Session) SetPrecision(on bool) {
	s.precision = on
}

func (s *Session) Precision() bool {
	return s.precision
}

// Drag applies one pointer delta with the given buttons held. A delta that
// does not change the parameters triggers no recompute.
func (s *Session) Drag(dx, dy float64, buttons drag.Buttons) error {
	mods := drag.Modifiers{Buttons: buttons, Precision: s.precision}
	next := s.mapper.Map(s.params, dx, dy, mods, s.cfg.Sensitivity.PrecisionFactor)
	if next == s.params {
		return nil
	}
	return s.update(next)
}

// Set replaces the parameters wholesale, for example from typed input.
func (s *Session) Set(p models.ParameterSet) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.update(p)
}

// Reset restores the configured defaults.
func (s *Session) Reset() error {
	return s.update(s.cfg.Defaults)
}

func (s *Session) update(p models.ParameterSet) error {
	s.params = p
	s.saved = false
	return s.recomp.Apply(p)
}

// HandleCompletion installs a finished result. A worker failure is returned
// to the caller and leaves the last good result in place.
func (s *Session) HandleCompletion(c scheduler.Completion) error {
	if c.Err != nil {
		return c.Err
	}
	if c.Result == nil {
		return errors.New("completion carried no result")
	}
	s.result = c.Result
	s.resultFor = c.Params
	return nil
}

// Result returns the latest displayed frame, or the original before the
// first job finishes.
func (s *Session) Result() *models.Image {
	if s.result == nil {
		return s.source.Image
	}
	return s.result
}

func (s *Session) Original() *models.Image {
	return s.source.Image
}

// Current reports whether the displayed result matches the current parameters.
func (s *Session) Current() bool {
	return s.result != nil && s.resultFor == s.params
}

func (s *Session) Busy() bool {
	return s.recomp.Busy()
}

func (s *Session) Saved() bool {
	return s.saved
}

// Labels returns the on-screen text for the current parameters.
func (s *Session) Labels() []string {
	return []string{
		fmt.Sprintf("Enhancement k: %.2f", s.params.KEnh),
		fmt.Sprintf("Enhancement σ: %.2f", s.params.SigmaEnh),
		fmt.Sprintf("Denoising σ: %.2f", s.params.SigmaNoise),
		fmt.Sprintf("Threshold: %.2f", s.params.Threshold),
	}
}

func (s *Session) DepthLabel() string {
	return fmt.Sprintf("Image depth: %d-bit", s.source.Depth)
}

// SuggestedOutputPath names the output after the input and the parameters
// that produced it.
func (s *Session) SuggestedOutputPath() string {
	base := strings.TrimSuffix(s.source.Path, filepath.Ext(s.source.Path))
	return fmt.Sprintf("%s_kay-%.2f_sigma-%.2f_noise-%.2f_thr-%.2f.png",
		base, s.params.KEnh, s.params.SigmaEnh, s.params.SigmaNoise, s.params.Threshold)
}

// Save writes the displayed result. It refuses while the display lags the
// parameters so the file always matches its name.
func (s *Session) Save(path string) error {
	if !s.Current() {
		return errors.New("result is still being recomputed")
	}
	if err := s.save(s.result, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	s.saved = true
	s.logger.Info("Session", "result saved", map[string]interface{}{
		"path":   path,
		"params": s.params.String(),
	})
	return nil
}
