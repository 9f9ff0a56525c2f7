// Package overlay draws the title bar, quote box and HUD on top of the
// rendered frame using ANSI cursor addressing.
package overlay

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/cheer/pkg/render"
)

const (
	titleRow    = 1
	quoteRow    = 4 // top of the quote box once it settles
	maxBoxWidth = 64
)

// Styles are the lipgloss styles used by the overlay.
type Styles struct {
	Title lipgloss.Style
	Quote lipgloss.Style
	HUD   lipgloss.Style
}

// DefaultStyles is a peach title bar and a dark rounded quote box.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#f9c9b6")).
			Align(lipgloss.Center),
		Quote: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#1e1e24")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f9c9b6")).
			BorderBackground(lipgloss.Color("#1e1e24")).
			Padding(0, 2).
			Align(lipgloss.Center),
		HUD: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e8e8e8")).
			Background(lipgloss.Color("#000000")),
	}
}

// Block is rendered text placed at a 1-based terminal row and column.
type Block struct {
	Row, Col int
	Lines    []string
}

// Width returns the display width of the widest line.
func (b Block) Width() int {
	w := 0
	for _, l := range b.Lines {
		w = max(w, lipgloss.Width(l))
	}
	return w
}

func (b Block) bounds() [4]int {
	return [4]int{b.Row, b.Col, len(b.Lines), b.Width()}
}

// Status is the frame information shown in the HUD.
type Status struct {
	Name      string
	Polys     int
	Load      string
	Wireframe bool
}

// Overlay holds the text layers. It is not safe for concurrent use; drive
// it from the render goroutine.
type Overlay struct {
	Title  string
	Styles Styles

	quote   string
	spring  harmonica.Spring
	y, vel  float64
	showHUD bool
	fps     FPSCounter

	drawn []Block
}

// New creates an overlay animated at fps frames per second.
func New(title string, fps int) *Overlay {
	if fps <= 0 {
		fps = 60
	}
	return &Overlay{
		Title:  title,
		Styles: DefaultStyles(),
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.5),
		y:      quoteRow,
		fps:    FPSCounter{since: time.Now()},
	}
}

// SetQuote replaces the quote. A changed quote slides in from the title bar.
func (o *Overlay) SetQuote(q string) {
	if q == o.quote {
		return
	}
	o.quote = q
	o.y, o.vel = titleRow, 0
}

// Quote returns the displayed quote.
func (o *Overlay) Quote() string { return o.quote }

// ToggleHUD shows or hides the HUD line.
func (o *Overlay) ToggleHUD() { o.showHUD = !o.showHUD }

// HUDVisible reports whether the HUD is shown.
func (o *Overlay) HUDVisible() bool { return o.showHUD }

// Tick advances the slide animation and the FPS counter by one frame.
func (o *Overlay) Tick() {
	o.y, o.vel = o.spring.Update(o.y, o.vel, quoteRow)
	o.fps.Frame(time.Now())
}

// QuoteRow is the current top row of the quote box.
func (o *Overlay) QuoteRow() int {
	return max(titleRow, int(math.Round(o.y)))
}

// Layout places every visible layer for a cols x rows terminal. Later
// blocks are drawn over earlier ones.
func (o *Overlay) Layout(cols, rows int, st Status) []Block {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	var blocks []Block

	if o.quote != "" {
		width := min(maxBoxWidth, cols-4)
		if width > 8 {
			box := o.Styles.Quote.Width(width).Render(o.quote)
			b := Block{Row: o.QuoteRow(), Lines: strings.Split(box, "\n")}
			b.Col = max(1, (cols-b.Width())/2+1)
			blocks = append(blocks, b)
		}
	}

	blocks = append(blocks, Block{
		Row:   titleRow,
		Col:   1,
		Lines: []string{o.Styles.Title.Width(cols).MaxWidth(cols).Render(o.Title)},
	})

	if o.showHUD && rows > 1 {
		blocks = append(blocks, Block{
			Row:   rows,
			Col:   1,
			Lines: []string{o.Styles.HUD.MaxWidth(cols).Render(o.hudLine(st))},
		})
	}
	return blocks
}

func (o *Overlay) hudLine(st Status) string {
	name := st.Name
	if name == "" {
		name = "-"
	}
	wire := "[ ]"
	if st.Wireframe {
		wire = "[✓]"
	}
	return fmt.Sprintf(" %.0f FPS │ %s │ %d polys │ model: %s │ %s x-ray │ ? hide ",
		o.fps.FPS(), name, st.Polys, st.Load, wire)
}

// Draw writes the overlay to w. Cells left behind by the previous draw are
// repainted from fb, which holds the frame just flushed underneath.
func (o *Overlay) Draw(w io.Writer, fb *render.Framebuffer, cols, rows int, st Status) error {
	blocks := o.Layout(cols, rows, st)

	var sb strings.Builder
	if !sameBounds(o.drawn, blocks) {
		for _, b := range o.drawn {
			restore(&sb, fb, b)
		}
	}
	for _, b := range blocks {
		for i, line := range b.Lines {
			row := b.Row + i
			if row > rows {
				break
			}
			sb.WriteString(moveTo(row, b.Col))
			sb.WriteString(line)
		}
	}
	sb.WriteString("\x1b[0m")
	o.drawn = blocks

	_, err := io.WriteString(w, sb.String())
	return err
}

func sameBounds(a, b []Block) bool {
	return slices.EqualFunc(a, b, func(x, y Block) bool { return x.bounds() == y.bounds() })
}

// restore repaints the cells under b with the half-block pixels of fb.
func restore(sb *strings.Builder, fb *render.Framebuffer, b Block) {
	width := b.Width()
	for i := range b.Lines {
		row := b.Row + i - 1
		if row*2 >= fb.Height {
			return
		}
		sb.WriteString(moveTo(row+1, b.Col))
		for col := b.Col - 1; col < b.Col-1+width && col < fb.Width; col++ {
			top, bot := fb.GetPixel(col, row*2), fb.GetPixel(col, row*2+1)
			fmt.Fprintf(sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
	}
}

func moveTo(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}
