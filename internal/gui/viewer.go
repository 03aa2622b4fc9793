// Package gui is the fyne front end: one window showing the current result,
// the parameter labels and the recompute state. All session access happens on
// the fyne event goroutine; scheduler completions are handed over with
// fyne.Do.
package gui

import (
	"errors"
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"kinky/internal/drag"
	"kinky/internal/logger"
	"kinky/internal/models"
	"kinky/internal/scheduler"
	"kinky/internal/session"
)

// PreviewFunc converts a result into something fyne can draw.
type PreviewFunc func(img *models.Image) image.Image

type Viewer struct {
	app     fyne.App
	window  fyne.Window
	session *session.Session
	preview PreviewFunc
	logger  logger.Logger

	imageDisplay   *ImageDisplay
	toolbar        *Toolbar
	parameterPanel *ParameterPanel

	originalPreview image.Image
	resultPreview   image.Image
	showOriginal    bool
	shownSeq        uint64
	failed          bool
	quitting        bool

	// runOnMain schedules fn on the fyne event goroutine.
	runOnMain func(fn func())
}

func NewViewer(a fyne.App, title string, s *session.Session, preview PreviewFunc, log logger.Logger) *Viewer {
	v := &Viewer{
		app:            a,
		window:         a.NewWindow(title),
		session:        s,
		preview:        preview,
		runOnMain:      fyne.Do,
		logger:         log,
		imageDisplay:   NewImageDisplay(),
		toolbar:        NewToolbar(),
		parameterPanel: NewParameterPanel(),
	}

	v.originalPreview = preview(s.Original())
	v.resultPreview = v.originalPreview

	v.setupEventHandlers()
	v.window.SetContent(container.NewBorder(
		nil,
		container.NewVBox(v.toolbar.GetContainer(), v.parameterPanel.GetContainer()),
		nil, nil,
		v.imageDisplay,
	))
	v.window.SetMaster()
	v.window.SetCloseIntercept(v.Quit)

	v.toolbar.SetDepth(s.DepthLabel())
	v.refresh()
	return v
}

func (v *Viewer) setupEventHandlers() {
	v.imageDisplay.SetDragHandler(v.onDrag)
	v.toolbar.SetSaveHandler(v.Save)
	v.toolbar.SetResetHandler(v.Reset)
	v.toolbar.SetOriginalHandler(v.setShowOriginal)

	v.window.Canvas().SetOnTypedKey(v.onTypedKey)
	if dc, ok := v.window.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if isShift(ev.Name) {
				v.setPrecision(true)
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if isShift(ev.Name) {
				v.setPrecision(false)
			}
		})
	}
}

func isShift(name fyne.KeyName) bool {
	return name == desktop.KeyShiftLeft || name == desktop.KeyShiftRight
}

func (v *Viewer) onTypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyS:
		v.Save()
	case fyne.KeyR:
		v.Reset()
	case fyne.KeyO:
		v.setShowOriginal(!v.showOriginal)
		v.toolbar.SetShowingOriginal(v.showOriginal)
	case fyne.KeyQ, fyne.KeyEscape:
		v.Quit()
	}
}

func (v *Viewer) setPrecision(on bool) {
	v.imageDisplay.SetPrecision(on)
	v.session.SetPrecision(on)
}

func (v *Viewer) onDrag(dx, dy float64, buttons drag.Buttons, precision bool) {
	if v.failed {
		return
	}
	v.session.SetPrecision(precision)
	if err := v.session.Drag(dx, dy, buttons); err != nil {
		v.fail(err)
		return
	}
	v.refresh()
}

// Reset restores the configured default parameters.
func (v *Viewer) Reset() {
	if v.failed {
		return
	}
	if err := v.session.Reset(); err != nil {
		v.fail(err)
		return
	}
	v.logger.Info("Viewer", "parameters reset", map[string]interface{}{
		"params": v.session.Params().String(),
	})
	v.refresh()
}

// Save writes the current result next to the input.
func (v *Viewer) Save() {
	path := v.session.SuggestedOutputPath()
	if err := v.session.Save(path); err != nil {
		v.toolbar.SetStatus(err.Error())
		v.logger.Warning("Viewer", "save refused", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	v.toolbar.SetStatus("Saved " + path)
}

// Quit closes the window, asking first when the current result is unsaved.
func (v *Viewer) Quit() {
	if v.quitting {
		return
	}
	if v.session.Saved() || v.failed {
		v.close()
		return
	}

	v.quitting = true
	prompt := widget.NewLabel("The current result has not been saved.")
	dialog.ShowCustomConfirm("Unsaved result", "Save and quit", "Quit", prompt, func(save bool) {
		v.quitting = false
		if save {
			v.Save()
			if !v.session.Saved() {
				return
			}
		}
		v.close()
	}, v.window)
}

func (v *Viewer) close() {
	v.logger.Info("Viewer", "window closing", nil)
	v.window.Close()
}

func (v *Viewer) setShowOriginal(on bool) {
	v.showOriginal = on
	v.refreshImage()
}

// Deliver hands a scheduler completion to the UI goroutine. It is safe to call
// from any goroutine and returns at once; the preview is built on its own
// goroutine so the scheduler can dispatch the next job meanwhile.
func (v *Viewer) Deliver(c scheduler.Completion) {
	go func() {
		var preview image.Image
		if c.Err == nil && c.Result != nil {
			preview = v.preview(c.Result)
		}
		v.runOnMain(func() {
			v.complete(c, preview)
		})
	}()
}

// complete installs a finished job. Previews may finish out of order, so a
// result older than the one on screen is dropped.
func (v *Viewer) complete(c scheduler.Completion, preview image.Image) {
	if c.Err == nil && c.Seq < v.shownSeq {
		v.logger.Debug("Viewer", "stale result dropped", map[string]interface{}{
			"seq":   c.Seq,
			"shown": v.shownSeq,
		})
		return
	}
	if err := v.session.HandleCompletion(c); err != nil {
		v.fail(err)
		return
	}
	v.shownSeq = c.Seq
	v.resultPreview = preview
	v.logger.Debug("Viewer", "result displayed", map[string]interface{}{
		"job":      c.JobID.String(),
		"seq":      c.Seq,
		"duration": c.Duration.String(),
	})
	v.refresh()
}

func (v *Viewer) fail(err error) {
	if v.failed {
		return
	}
	v.failed = true
	v.logger.Error("Viewer", err, nil)
	v.toolbar.SetBusy(false)
	v.toolbar.SetStatus("Recompute stopped")

	title := "Recompute failed"
	if errors.Is(err, scheduler.ErrClosed) {
		title = "Recompute stopped"
	}
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), v.window)
}

func (v *Viewer) refresh() {
	v.parameterPanel.Update(v.session.Labels())
	if v.failed {
		return
	}
	busy := v.session.Busy()
	v.toolbar.SetBusy(busy)
	switch {
	case busy:
		v.toolbar.SetStatus("Recomputing...")
	case v.session.Saved():
		v.toolbar.SetStatus("Ready")
	default:
		v.toolbar.SetStatus("Unsaved")
	}
	v.refreshImage()
}

func (v *Viewer) refreshImage() {
	if v.showOriginal {
		v.imageDisplay.SetImage(v.originalPreview)
		return
	}
	v.imageDisplay.SetImage(v.resultPreview)
}

func (v *Viewer) Window() fyne.Window {
	return v.window
}

// ShowAndRun displays the window and blocks until the application quits.
func (v *Viewer) ShowAndRun() {
	v.window.Resize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight+160))
	v.window.ShowAndRun()
}
