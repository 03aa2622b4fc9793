package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type Toolbar struct {
	container      *fyne.Container
	saveButton     *widget.Button
	resetButton    *widget.Button
	originalToggle *widget.Check
	depthLabel     *widget.Label
	statusLabel    *widget.Label
	busy           *widget.ProgressBarInfinite

	saveHandler     func()
	resetHandler    func()
	originalHandler func(bool)
}

func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.saveButton = widget.NewButton("Save (S)", func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Importance = widget.HighImportance

	t.resetButton = widget.NewButton("Reset (R)", func() {
		if t.resetHandler != nil {
			t.resetHandler()
		}
	})

	t.originalToggle = widget.NewCheck("Original (O)", func(on bool) {
		if t.originalHandler != nil {
			t.originalHandler(on)
		}
	})

	t.depthLabel = widget.NewLabel("")
	t.statusLabel = widget.NewLabel("Ready")

	t.busy = widget.NewProgressBarInfinite()
	t.busy.Stop()
	t.busy.Hide()
}

func (t *Toolbar) buildLayout() {
	left := container.NewHBox(t.saveButton, t.resetButton, t.originalToggle)
	right := container.NewHBox(t.depthLabel)
	center := container.NewBorder(nil, nil, nil, container.NewGridWrap(fyne.NewSize(120, 20), t.busy), t.statusLabel)

	t.container = container.NewBorder(nil, nil, left, right, center)
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

func (t *Toolbar) SetResetHandler(handler func()) {
	t.resetHandler = handler
}

func (t *Toolbar) SetOriginalHandler(handler func(bool)) {
	t.originalHandler = handler
}

// SetShowingOriginal updates the toggle without firing its handler.
func (t *Toolbar) SetShowingOriginal(on bool) {
	handler := t.originalHandler
	t.originalHandler = nil
	t.originalToggle.SetChecked(on)
	t.originalHandler = handler
}

func (t *Toolbar) SetDepth(text string) {
	t.depthLabel.SetText(text)
}

func (t *Toolbar) SetStatus(text string) {
	t.statusLabel.SetText(text)
}

func (t *Toolbar) Status() string {
	return t.statusLabel.Text
}

func (t *Toolbar) SetBusy(busy bool) {
	if busy {
		t.busy.Show()
		t.busy.Start()
		return
	}
	t.busy.Stop()
	t.busy.Hide()
}

func (t *Toolbar) Busy() bool {
	return t.busy.Visible()
}
