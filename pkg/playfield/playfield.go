// Package playfield provides the fixed-size character grid the rocket is
// drawn on.
//
// A PlayField holds at most one occupant. Every placement wipes the grid
// first, so frames never carry a trail of earlier positions.
package playfield

import (
	"math"
	"strings"

	"github.com/gunass/terminal-space-program/pkg/physics"
)

// Cell addresses a grid cell; row 0 is the ground.
type Cell struct {
	X int
	Y int
}

// PlayField is a width×height grid with a single optional occupant.
type PlayField struct {
	width    int
	height   int
	occupied bool
	at       Cell
	glyph    rune
	footer   string
}

// New creates a field with launchGlyph at the origin cell. Width and height
// must be positive.
func New(width, height int, launchGlyph rune) *PlayField {
	f := &PlayField{width: width, height: height}
	f.PlaceAt(0, 0, launchGlyph)
	return f
}

// Width returns the number of columns.
func (f *PlayField) Width() int { return f.width }

// Height returns the number of rows.
func (f *PlayField) Height() int { return f.height }

// SetFooter sets a line appended after the grid on every Render.
// An empty footer disables it.
func (f *PlayField) SetFooter(line string) {
	f.footer = line
}

// Clear empties the grid.
func (f *PlayField) Clear() {
	f.occupied = false
	f.at = Cell{}
	f.glyph = 0
}

// Place clears the grid, then draws glyph at pos truncated toward zero.
// Positions outside the grid, or not finite, leave the grid blank.
func (f *PlayField) Place(pos physics.Vector2D, glyph rune) {
	f.Clear()
	if !pos.IsFinite() {
		return
	}
	x, y := math.Trunc(pos.X), math.Trunc(pos.Y)
	if x < 0 || y < 0 || x >= float64(f.width) || y >= float64(f.height) {
		return
	}
	f.PlaceAt(int(x), int(y), glyph)
}

// PlaceAt clears the grid, then draws glyph at (x, y) if it is in bounds.
func (f *PlayField) PlaceAt(x, y int, glyph rune) {
	f.Clear()
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	f.occupied = true
	f.at = Cell{X: x, Y: y}
	f.glyph = glyph
}

// Occupant returns the occupied cell and its glyph, if any.
func (f *PlayField) Occupant() (Cell, rune, bool) {
	return f.at, f.glyph, f.occupied
}

// Render returns height lines, top row first, each width characters wide,
// followed by the footer when one is set. Empty cells render as spaces.
func (f *PlayField) Render() []string {
	lines := make([]string, 0, f.height+1)
	blank := strings.Repeat(" ", f.width)
	for row := f.height - 1; row >= 0; row-- {
		if !f.occupied || row != f.at.Y {
			lines = append(lines, blank)
			continue
		}
		var b strings.Builder
		b.WriteString(blank[:f.at.X])
		b.WriteRune(f.glyph)
		b.WriteString(blank[f.at.X+1:])
		lines = append(lines, b.String())
	}
	if f.footer != "" {
		lines = append(lines, f.footer)
	}
	return lines
}
