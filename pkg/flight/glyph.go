package flight

// Glyphs is the symbol set used to draw the rocket.
type Glyphs struct {
	Vertical rune
	Rising   rune
	Level    rune
	Falling  rune
	Crash    rune
}

// DefaultGlyphs returns the classic terminal symbol set.
func DefaultGlyphs() Glyphs {
	return Glyphs{
		Vertical: '|',
		Rising:   '/',
		Level:    '—',
		Falling:  '\\',
		Crash:    '&',
	}
}

// GlyphForSlope bands a trajectory slope (dy/dx) into a glyph.
//
// Slopes at or below -0.8 fall through to the vertical glyph, the same one
// used for steep climbs. Non-finite slopes from a zero dx band the same way:
// +Inf is steep, -Inf and NaN hit the fallthrough.
func GlyphForSlope(slope float64, g Glyphs) rune {
	switch {
	case slope > 0.8:
		return g.Vertical
	case slope > 0.2:
		return g.Rising
	case slope > -0.2:
		return g.Level
	case slope > -0.8:
		return g.Falling
	default:
		return g.Vertical
	}
}
