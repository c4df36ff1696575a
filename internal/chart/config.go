package chart

import (
	"fmt"
	"slices"
)

// Color is an 8-bit RGBA colour.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Hex renders the colour as #rrggbb, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Transparent reports whether the colour is fully transparent.
func (c Color) Transparent() bool {
	return c.A == 0
}

// Margins are reserved around the plot area, in target units.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Config describes how series are laid out. Nil bounds are computed from
// the data.
type Config struct {
	XLabel string
	YLabel string
	XUnit  string
	YUnit  string

	ShowGrid   bool
	ShowLegend bool

	GridColor  Color
	AxisColor  Color
	TextColor  Color
	Background Color

	Margins Margins

	XMin *float64
	XMax *float64
	YMin *float64
	YMax *float64

	// Divisions is the number of intervals between axis ticks.
	Divisions int
	Palette   []Color
}

const defaultDivisions = 5

// DefaultPalette is used to colour series that are built without an
// explicit colour.
var DefaultPalette = []Color{
	RGB(0xff, 0x5f, 0x87),
	RGB(0x5f, 0xd7, 0xaf),
	RGB(0xff, 0xaf, 0x00),
	RGB(0x7d, 0xce, 0x13),
	RGB(0x5f, 0xaf, 0xff),
}

func DefaultConfig() Config {
	return Config{
		XLabel:     "X Axis",
		YLabel:     "Y Axis",
		ShowGrid:   true,
		ShowLegend: true,
		GridColor:  RGBA(0x80, 0x80, 0x80, 0x33),
		AxisColor:  RGB(0x4d, 0x4d, 0x4d),
		TextColor:  RGB(0xb3, 0xb3, 0xb3),
		Background: RGBA(0, 0, 0, 0),
		Margins: Margins{
			Top:    5,
			Bottom: 85,
			Left:   65,
			Right:  30,
		},
		Divisions: defaultDivisions,
		Palette:   slices.Clone(DefaultPalette),
	}
}

// Float returns a pointer to v, for manual bounds.
func Float(v float64) *float64 {
	return &v
}

// PaletteColor picks the i-th palette colour, cycling.
func (c Config) PaletteColor(i int) Color {
	palette := c.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return palette[i%len(palette)]
}

// Equal compares two configurations by value.
func (c Config) Equal(o Config) bool {
	return c.XLabel == o.XLabel &&
		c.YLabel == o.YLabel &&
		c.XUnit == o.XUnit &&
		c.YUnit == o.YUnit &&
		c.ShowGrid == o.ShowGrid &&
		c.ShowLegend == o.ShowLegend &&
		c.GridColor == o.GridColor &&
		c.AxisColor == o.AxisColor &&
		c.TextColor == o.TextColor &&
		c.Background == o.Background &&
		c.Margins == o.Margins &&
		equalBound(c.XMin, o.XMin) &&
		equalBound(c.XMax, o.XMax) &&
		equalBound(c.YMin, o.YMin) &&
		equalBound(c.YMax, o.YMax) &&
		c.Divisions == o.Divisions &&
		slices.Equal(c.Palette, o.Palette)
}

func (c Config) divisions() int {
	if c.Divisions <= 0 {
		return defaultDivisions
	}
	return c.Divisions
}

func equalBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
