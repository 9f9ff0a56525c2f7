package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Surface is a screen that can be flushed to the terminal. *uv.Terminal
// satisfies it.
type Surface interface {
	uv.Screen
	Display() error
}

// TerminalRenderer draws framebuffers onto a terminal surface.
type TerminalRenderer struct {
	surface    Surface
	cols, rows int
}

// NewTerminalRenderer creates a renderer for a cols x rows terminal.
func NewTerminalRenderer(surface Surface, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{surface: surface, cols: cols, rows: rows}
}

// FramebufferSize returns the pixel size that fills the terminal: one
// column per cell and two pixel rows per cell row.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Resize updates the cell grid after a window change.
func (t *TerminalRenderer) Resize(cols, rows int) {
	t.cols, t.rows = cols, rows
}

// Render copies fb into the surface's cell buffer.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.surface, uv.Rect(0, 0, t.cols, t.rows))
}

// Flush writes pending cells to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.surface.Display()
}

// Draw converts the framebuffer to terminal cells. Each cell is an upper
// half block with the top pixel as foreground and the bottom pixel as
// background, so the framebuffer should be twice as tall as area.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		if topY >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(col, topY)),
					Bg: rgbaToColor(fb.GetPixel(col, topY+1)),
				},
			})
		}
	}
}

// rgbaToColor maps transparent pixels to the terminal default.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
