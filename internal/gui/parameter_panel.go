package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type ParameterPanel struct {
	container *fyne.Container
	labels    []*widget.Label
}

func NewParameterPanel() *ParameterPanel {
	return &ParameterPanel{
		container: container.NewVBox(),
	}
}

func (pp *ParameterPanel) GetContainer() *fyne.Container {
	return pp.container
}

// Update sets one label per line, growing the panel on first use.
func (pp *ParameterPanel) Update(lines []string) {
	for len(pp.labels) < len(lines) {
		label := widget.NewLabel("")
		label.TextStyle = fyne.TextStyle{Monospace: true}
		pp.labels = append(pp.labels, label)
		pp.container.Add(label)
	}
	for i, label := range pp.labels {
		if i < len(lines) {
			label.SetText(lines[i])
		} else {
			label.SetText("")
		}
	}
}

func (pp *ParameterPanel) Text() []string {
	out := make([]string, len(pp.labels))
	for i, label := range pp.labels {
		out[i] = label.Text
	}
	return out
}
