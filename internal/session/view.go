package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/serroba/pdfcraft/internal/export"
)

// ErrInvalidView is returned when a view update holds an unknown value.
var ErrInvalidView = errors.New("invalid view setting")

// Tab is the active ribbon tab.
type Tab string

// Ribbon tabs.
const (
	TabFile       Tab = "file"
	TabHome       Tab = "home"
	TabInsert     Tab = "insert"
	TabDesign     Tab = "design"
	TabLayout     Tab = "layout"
	TabReferences Tab = "references"
	TabMailings   Tab = "mailings"
	TabReview     Tab = "review"
	TabView       Tab = "view"
)

var tabs = []Tab{TabFile, TabHome, TabInsert, TabDesign, TabLayout, TabReferences, TabMailings, TabReview, TabView}

// Font size bounds used by growFont and shrinkFont.
const (
	MinFontSize  = 8
	MaxFontSize  = 72
	FontSizeStep = 2
)

// Zoom bounds, in percent.
const (
	MinZoom = 25
	MaxZoom = 500
)

// MaxColumns is the widest column layout.
const MaxColumns = 4

var paperSizes = map[string]export.Paper{
	"letter":  {Width: 8.5, Height: 11},
	"legal":   {Width: 8.5, Height: 14},
	"a4":      {Width: 8.27, Height: 11.69},
	"a3":      {Width: 11.69, Height: 16.54},
	"tabloid": {Width: 11, Height: 17},
}

var marginPresets = map[string]export.Margins{
	"normal":   {Top: 1, Right: 1, Bottom: 1, Left: 1},
	"narrow":   {Top: 0.5, Right: 0.5, Bottom: 0.5, Left: 0.5},
	"moderate": {Top: 1, Right: 0.75, Bottom: 1, Left: 0.75},
	"wide":     {Top: 1, Right: 2, Bottom: 1, Left: 2},
}

var viewModes = []string{"print", "web", "read"}

var fontFamilies = []string{"Calibri", "Arial", "Times New Roman", "Georgia", "Verdana", "Helvetica", "Comic Sans MS"}

// FontFamilies lists the fonts a document may use.
func FontFamilies() []string {
	return slices.Clone(fontFamilies)
}

// fontFamily returns the listed spelling of name, matched without regard to
// case.
func fontFamily(name string) (string, bool) {
	name = strings.TrimSpace(name)

	for _, f := range fontFamilies {
		if strings.EqualFold(f, name) {
			return f, true
		}
	}

	return "", false
}

// View is the per-session editor configuration: ribbon state, typography,
// page setup and display toggles.
type View struct {
	Tab          Tab    `json:"tab"`
	FontFamily   string `json:"fontFamily"`
	FontSize     int    `json:"fontSize"`
	Color        string `json:"color"`
	Highlight    string `json:"highlight"`
	Zoom         int    `json:"zoom"`
	Theme        string `json:"theme"`
	PageSize     string `json:"pageSize"`
	Orientation  string `json:"orientation"`
	Margins      string `json:"margins"`
	Columns      int    `json:"columns"`
	LineSpacing  string `json:"lineSpacing"`
	Ruler        bool   `json:"ruler"`
	Gridlines    bool   `json:"gridlines"`
	ViewMode     string `json:"viewMode"`
	TrackChanges bool   `json:"trackChanges"`
	Comments     bool   `json:"comments"`
	SpellCheck   bool   `json:"spellCheck"`
	Fullscreen   bool   `json:"fullscreen"`
}

// DefaultView is the view of a freshly opened editor.
func DefaultView() View {
	return View{
		Tab:         TabHome,
		FontFamily:  "Calibri",
		FontSize:    11,
		Color:       "#000000",
		Highlight:   "#ffff00",
		Zoom:        100,
		Theme:       "office",
		PageSize:    "letter",
		Orientation: "portrait",
		Margins:     "normal",
		Columns:     1,
		LineSpacing: "1.15",
		Ruler:       true,
		ViewMode:    "print",
		Comments:    true,
		SpellCheck:  true,
	}
}

// Validate checks every enumerated and bounded field.
func (v View) Validate() error {
	switch {
	case !slices.Contains(tabs, v.Tab):
		return fmt.Errorf("%w: tab %q", ErrInvalidView, v.Tab)
	case !slices.Contains(fontFamilies, v.FontFamily):
		return fmt.Errorf("%w: font family %q", ErrInvalidView, v.FontFamily)
	case v.FontSize < MinFontSize || v.FontSize > MaxFontSize:
		return fmt.Errorf("%w: font size %d", ErrInvalidView, v.FontSize)
	case v.Zoom < MinZoom || v.Zoom > MaxZoom:
		return fmt.Errorf("%w: zoom %d", ErrInvalidView, v.Zoom)
	case themeColor(v.Theme) == "":
		return fmt.Errorf("%w: theme %q", ErrInvalidView, v.Theme)
	case !known(paperSizes, v.PageSize):
		return fmt.Errorf("%w: page size %q", ErrInvalidView, v.PageSize)
	case v.Orientation != "portrait" && v.Orientation != "landscape":
		return fmt.Errorf("%w: orientation %q", ErrInvalidView, v.Orientation)
	case !known(marginPresets, v.Margins):
		return fmt.Errorf("%w: margins %q", ErrInvalidView, v.Margins)
	case v.Columns < 1 || v.Columns > MaxColumns:
		return fmt.Errorf("%w: columns %d", ErrInvalidView, v.Columns)
	case v.LineSpacing == "":
		return fmt.Errorf("%w: empty line spacing", ErrInvalidView)
	case !slices.Contains(viewModes, v.ViewMode):
		return fmt.Errorf("%w: view mode %q", ErrInvalidView, v.ViewMode)
	}

	return nil
}

// Layout converts the view into export page setup.
func (v View) Layout() export.Layout {
	return export.Layout{
		FontFamily:  v.FontFamily,
		FontSize:    v.FontSize,
		LineSpacing: v.LineSpacing,
		Columns:     v.Columns,
		Paper:       paperSizes[v.PageSize],
		Margins:     marginPresets[v.Margins],
		Landscape:   v.Orientation == "landscape",
	}
}

func known[V any](m map[string]V, key string) bool {
	_, ok := m[key]

	return ok
}

func clampFont(size int) int {
	return max(MinFontSize, min(MaxFontSize, size))
}
