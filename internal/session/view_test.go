package session_test

import (
	"testing"

	"github.com/serroba/pdfcraft/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultView_IsValid(t *testing.T) {
	t.Parallel()

	v := session.DefaultView()

	require.NoError(t, v.Validate())
	assert.Equal(t, session.TabHome, v.Tab)
	assert.Equal(t, "Calibri", v.FontFamily)
	assert.Equal(t, 11, v.FontSize)
}

func TestView_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*session.View)
	}{
		{"tab", func(v *session.View) { v.Tab = "ribbon" }},
		{"font family", func(v *session.View) { v.FontFamily = "" }},
		{"unlisted font family", func(v *session.View) { v.FontFamily = "Arial; color: red" }},
		{"font too small", func(v *session.View) { v.FontSize = session.MinFontSize - 1 }},
		{"font too large", func(v *session.View) { v.FontSize = session.MaxFontSize + 1 }},
		{"zoom", func(v *session.View) { v.Zoom = session.MinZoom - 1 }},
		{"theme", func(v *session.View) { v.Theme = "neon" }},
		{"page size", func(v *session.View) { v.PageSize = "b5" }},
		{"orientation", func(v *session.View) { v.Orientation = "sideways" }},
		{"margins", func(v *session.View) { v.Margins = "huge" }},
		{"columns", func(v *session.View) { v.Columns = session.MaxColumns + 1 }},
		{"line spacing", func(v *session.View) { v.LineSpacing = "" }},
		{"view mode", func(v *session.View) { v.ViewMode = "outline" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := session.DefaultView()
			tt.modify(&v)

			require.ErrorIs(t, v.Validate(), session.ErrInvalidView)
		})
	}
}

func TestFontFamilies_AreValid(t *testing.T) {
	t.Parallel()

	for _, family := range session.FontFamilies() {
		v := session.DefaultView()
		v.FontFamily = family

		if err := v.Validate(); err != nil {
			t.Errorf("font %q: %v", family, err)
		}
	}
}

func TestView_Layout(t *testing.T) {
	t.Parallel()

	v := session.DefaultView()
	v.PageSize = "a4"
	v.Orientation = "landscape"
	v.Margins = "wide"
	v.Columns = 2

	l := v.Layout()

	assert.InDelta(t, 8.27, l.Paper.Width, 0.001)
	assert.InDelta(t, 2.0, l.Margins.Left, 0)
	assert.True(t, l.Landscape)
	assert.Equal(t, 2, l.Columns)
	assert.Equal(t, "Calibri", l.FontFamily)
}
