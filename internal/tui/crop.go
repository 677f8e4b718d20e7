package tui

import (
	"fmt"
	"image"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/folio/internal/imaging"
)

// panStep is how far one arrow press moves the crop window, as a fraction
// of the available slack.
const panStep = 0.1

// cropModel is the modal crop overlay. It never touches the draft; the
// editor applies the result when it receives cropDoneMsg.
type cropModel struct {
	session *imaging.CropSession
	blobs   *imaging.BlobStore
	index   int // screenshot slot being replaced, -1 to append
	err     error
	width   int
	height  int
}

// cropDoneMsg carries the stored local URL of a confirmed crop.
type cropDoneMsg struct {
	target imaging.Target
	index  int
	url    string
}

// cropCancelledMsg closes the overlay without changes.
type cropCancelledMsg struct{}

func newCropModel(src *imaging.Source, target imaging.Target, index int, blobs *imaging.BlobStore, width, height int) cropModel {
	return cropModel{
		session: imaging.NewCropSession(target, src),
		blobs:   blobs,
		index:   index,
		width:   width,
		height:  height,
	}
}

func (m cropModel) Update(msg tea.Msg) (cropModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		c := m.session.Cropper
		switch msg.String() {
		case "+", "=":
			c.ZoomBy(imaging.ZoomStep)
		case "-", "_":
			c.ZoomBy(-imaging.ZoomStep)
		case "left", "h":
			c.Move(-panStep, 0)
		case "right", "l":
			c.Move(panStep, 0)
		case "up", "k":
			c.Move(0, -panStep)
		case "down", "j":
			c.Move(0, panStep)
		case "0", "r":
			c.Reset()
		case "esc":
			return m, func() tea.Msg { return cropCancelledMsg{} }
		case "enter":
			url, err := m.session.Confirm(m.blobs)
			if err != nil {
				m.err = err
				return m, nil
			}
			target, index := m.session.Target, m.index
			return m, func() tea.Msg { return cropDoneMsg{target: target, index: index, url: url} }
		}
	}
	return m, nil
}

// previewSize returns the preview size in terminal cells. Each cell shows
// two vertically stacked pixels, so a 3:2 frame of w cells is w/3 rows.
func (m cropModel) previewSize() (int, int) {
	cols := max(m.width-4, 12)
	rows := max(m.height-8, 4)
	if cols/3 > rows {
		cols = rows * 3
	}
	return cols, max(cols/3, 2)
}

func (m cropModel) View() string {
	var b strings.Builder
	src := m.session.Source
	c := m.session.Cropper
	area := c.Area()

	fmt.Fprintf(&b, " %s  %s\n", sectionHeaderStyle.Render("CROP "+strings.ToUpper(m.session.Target.String())),
		metaStyle.Render(fmt.Sprintf("%s  %dx%d  %s", src.Name, src.Bounds().Dx(), src.Bounds().Dy(), formatBytes(len(src.Data)))))
	fmt.Fprintf(&b, " %s  %s\n\n", accentStyle.Render(fmt.Sprintf("zoom %.1fx", c.Zoom())),
		metaStyle.Render(fmt.Sprintf("area %dx%d at %d,%d  aspect 3:2", area.Dx(), area.Dy(), area.Min.X, area.Min.Y)))

	cols, rows := m.previewSize()
	b.WriteString(renderHalfBlocks(m.session.Preview(cols, rows*2), " "))

	if m.err != nil {
		b.WriteString("\n " + errorStyle.Render(m.err.Error()))
	}
	return b.String()
}

// renderHalfBlocks draws an image with "▀" cells: the foreground is the
// upper pixel and the background the lower one.
func renderHalfBlocks(img image.Image, indent string) string {
	bounds := img.Bounds()
	var b strings.Builder
	for y := bounds.Min.Y; y+1 < bounds.Max.Y; y += 2 {
		b.WriteString(indent)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			b.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(img.At(x, y))).
				Background(hexColor(img.At(x, y+1))).
				Render("▀"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m cropModel) helpKeys() string {
	return helpBar(
		helpEntry("+/-", "zoom"), helpEntry("arrows", "pan"), helpEntry("0", "reset"),
		helpEntry("enter", "apply"), helpEntry("esc", "cancel"),
	)
}
