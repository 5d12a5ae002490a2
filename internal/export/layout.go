package export

import (
	"strings"
)

// Paper is a sheet size in inches, portrait.
type Paper struct {
	Width  float64
	Height float64
}

// Margins are page margins in inches.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Layout carries the typography and page setup used to render a document.
type Layout struct {
	FontFamily  string
	FontSize    int // points
	LineSpacing string
	Columns     int
	Paper       Paper
	Margins     Margins
	Landscape   bool
}

// Letter is the default paper size.
var Letter = Paper{Width: 8.5, Height: 11}

// DefaultLayout matches a new editor view.
func DefaultLayout() Layout {
	return Layout{
		FontFamily:  "Calibri",
		FontSize:    11,
		LineSpacing: "1.15",
		Columns:     1,
		Paper:       Letter,
		Margins:     Margins{Top: 1, Right: 1, Bottom: 1, Left: 1},
	}
}

// orDefault fills zero fields from DefaultLayout.
func (l Layout) orDefault() Layout {
	def := DefaultLayout()

	if strings.TrimSpace(l.FontFamily) == "" {
		l.FontFamily = def.FontFamily
	}

	if l.FontSize <= 0 {
		l.FontSize = def.FontSize
	}

	if l.LineSpacing == "" {
		l.LineSpacing = def.LineSpacing
	}

	if l.Columns <= 0 {
		l.Columns = def.Columns
	}

	if l.Paper.Width <= 0 || l.Paper.Height <= 0 {
		l.Paper = def.Paper
	}

	return l
}

// PageWidth is the width of the sheet as laid out.
func (l Layout) PageWidth() float64 {
	if l.Landscape {
		return l.Paper.Height
	}

	return l.Paper.Width
}
