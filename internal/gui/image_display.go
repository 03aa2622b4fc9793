package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"kinky/internal/drag"
)

const (
	ImageAreaWidth  = 800
	ImageAreaHeight = 600
)

// DragHandler receives pointer movement in window coordinates together with
// the buttons held and the precision modifier.
type DragHandler func(dx, dy float64, buttons drag.Buttons, precision bool)

// ImageDisplay shows the current frame and turns pointer drags over it into
// DragHandler calls. Secondary-button drags are not reported by fyne as
// Dragged, so movement is tracked through hover events as well; both paths
// share the last position, which keeps a move from being counted twice.
type ImageDisplay struct {
	widget.BaseWidget

	image     *canvas.Image
	onDrag    DragHandler
	buttons   drag.Buttons
	precision bool
	last      fyne.Position
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{
		image: canvas.NewImageFromImage(nil),
	}
	display.image.FillMode = canvas.ImageFillContain
	display.image.ScaleMode = canvas.ImageScaleSmooth
	display.image.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	display.ExtendBaseWidget(display)
	return display
}

func (id *ImageDisplay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(id.image)
}

func (id *ImageDisplay) SetDragHandler(handler DragHandler) {
	id.onDrag = handler
}

func (id *ImageDisplay) SetImage(img image.Image) {
	id.image.Image = img
	id.image.Refresh()
}

// SetPrecision records the keyboard precision state between mouse events.
func (id *ImageDisplay) SetPrecision(on bool) {
	id.precision = on
}

func (id *ImageDisplay) MouseDown(ev *desktop.MouseEvent) {
	id.buttons |= buttonsFor(ev.Button)
	id.precision = ev.Modifier&fyne.KeyModifierShift != 0
	id.last = ev.Position
}

func (id *ImageDisplay) MouseUp(ev *desktop.MouseEvent) {
	id.buttons &^= buttonsFor(ev.Button)
	id.last = ev.Position
}

func (id *ImageDisplay) MouseIn(ev *desktop.MouseEvent) {
	id.last = ev.Position
}

func (id *ImageDisplay) MouseMoved(ev *desktop.MouseEvent) {
	id.precision = ev.Modifier&fyne.KeyModifierShift != 0
	id.move(ev.Position)
}

func (id *ImageDisplay) MouseOut() {}

func (id *ImageDisplay) Dragged(ev *fyne.DragEvent) {
	id.move(ev.Position)
}

func (id *ImageDisplay) DragEnd() {}

func (id *ImageDisplay) move(pos fyne.Position) {
	dx := float64(pos.X - id.last.X)
	dy := float64(pos.Y - id.last.Y)
	id.last = pos

	if id.buttons == 0 || (dx == 0 && dy == 0) || id.onDrag == nil {
		return
	}
	id.onDrag(dx, dy, id.buttons, id.precision)
}

func buttonsFor(b desktop.MouseButton) drag.Buttons {
	var out drag.Buttons
	if b&desktop.MouseButtonPrimary != 0 {
		out |= drag.Primary
	}
	if b&desktop.MouseButtonSecondary != 0 {
		out |= drag.Secondary
	}
	return out
}
