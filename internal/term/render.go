// Package term draws a Flight onto a character grid and maps terminal mouse cells to
// viewport pixels.
package term

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/vladimirvolkov/hoopshot/internal/game"
)

// cellAspect is how many pixels tall one cell is per pixel of width.
const cellAspect = 2

const (
	ringSegments = 48
	groundHalf   = 12.0
	groundStep   = 0.25
)

var (
	styleGround  = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleHoop    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	stylePreview = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleBall    = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Canvas is the part of tcell.Screen the renderer draws on.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// Viewport treats each cell as 1 pixel wide and cellAspect pixels tall.
func Viewport(cols, rows int) game.Viewport {
	return game.Viewport{Width: float64(cols), Height: float64(rows * cellAspect)}
}

// CellToPointer returns the pixel at the center of a cell.
func CellToPointer(col, row int) (x, y float64) {
	return float64(col) + 0.5, (float64(row) + 0.5) * cellAspect
}

// PointerToCell is the inverse of CellToPointer.
func PointerToCell(x, y float64) (col, row int) {
	return int(math.Floor(x)), int(math.Floor(y / cellAspect))
}

// Projector maps world points to cells of a cols x rows grid.
type Projector struct {
	Camera game.Camera
	Cols   int
	Rows   int
}

func (p Projector) Cell(w game.Vec3) (col, row int, ok bool) {
	sx, sy, visible := p.Camera.Project(w, Viewport(p.Cols, p.Rows))
	if !visible {
		return 0, 0, false
	}
	col, row = PointerToCell(sx, sy)
	if col < 0 || row < 0 || col >= p.Cols || row >= p.Rows {
		return 0, 0, false
	}
	return col, row, true
}

func (p Projector) plot(c Canvas, w game.Vec3, r rune, style tcell.Style) {
	if col, row, ok := p.Cell(w); ok {
		c.SetContent(col, row, r, nil, style)
	}
}

// HUD is the status line content.
type HUD struct {
	Score    int
	Attempts int
	Status   string
}

// Draw renders ground, hoop, preview and ball, back to front, plus the HUD.
func Draw(c Canvas, f *game.Flight, hud HUD) {
	cols, rows := c.Size()
	course := f.Course()
	p := Projector{Camera: course.Camera, Cols: cols, Rows: rows}

	// Ground lines at the launch and hoop depths; the near one is often below the view.
	for _, z := range []float64{course.LaunchPoint.Z, course.Hoop.Center.Z} {
		for x := -groundHalf; x <= groundHalf; x += groundStep {
			p.plot(c, game.V3(x, course.GroundLevel, z), '_', styleGround)
		}
	}

	h := course.Hoop
	for i := 0; i < ringSegments; i++ {
		a := 2 * math.Pi * float64(i) / ringSegments
		p.plot(c, h.Center.Add(game.V3(math.Cos(a)*h.Radius, 0, math.Sin(a)*h.Radius)), 'o', styleHoop)
	}

	for _, pt := range f.Preview() {
		p.plot(c, pt, '·', stylePreview)
	}

	p.plot(c, f.Ball().Position, '●', styleBall)

	line := fmt.Sprintf(" score %d  attempts %d  %s", hud.Score, hud.Attempts, hud.Status)
	drawText(c, 0, 0, line, styleHUD)
	drawText(c, 0, rows-1, " move the mouse to aim, click to shoot, q to quit", styleHUD)
}

func drawText(c Canvas, col, row int, s string, style tcell.Style) {
	cols, _ := c.Size()
	for _, r := range s {
		if col >= cols {
			return
		}
		c.SetContent(col, row, r, nil, style)
		col++
	}
}
