// Package export renders editor documents as standalone HTML files, print
// documents and PDFs.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
)

// ContentType of exported documents.
const ContentType = "text/html; charset=utf-8"

// DefaultName replaces a blank title in file names.
const DefaultName = "Document"

// File is a downloadable export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type exportPage struct {
	Title   string
	Content template.HTML
	Layout  Layout
}

var funcs = template.FuncMap{
	"inches":  func(v float64) string { return fmt.Sprintf("%gin", v) },
	"cssFont": cssFont,
}

// cssFont renders a font family as a quoted CSS name with a generic
// fallback. Characters outside letters, digits, spaces and hyphens are
// dropped.
func cssFont(family string) template.CSS {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			return r
		}

		return -1
	}, family)

	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		name = DefaultLayout().FontFamily
	}

	return template.CSS(`"` + name + `", sans-serif`) //nolint:gosec // name is reduced to a safe alphabet
}

var exportTmpl = template.Must(template.New("export").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: {{cssFont .Layout.FontFamily}}; font-size: {{.Layout.FontSize}}pt; line-height: {{.Layout.LineSpacing}}; margin: 1in; max-width: {{inches .Layout.PageWidth}}; background: white; color: #000; }
{{- if gt .Layout.Columns 1}}
body { column-count: {{.Layout.Columns}}; column-gap: 20px; }
{{- end}}
.heading-1 { font-size: 16pt; font-weight: 700; color: #2F5496; margin: 18pt 0 12pt 0; }
.heading-2 { font-size: 13pt; font-weight: 700; color: #2F5496; margin: 16pt 0 10pt 0; }
.heading-3 { font-size: 12pt; font-weight: 700; color: #2F5496; margin: 14pt 0 8pt 0; }
.title-text { font-size: 28pt; font-weight: 700; color: #2F5496; text-align: center; margin-bottom: 24pt; }
.subtitle-text { font-size: 11pt; font-weight: 400; color: #666666; text-align: center; margin-bottom: 18pt; }
table { border-collapse: collapse; width: 100%; margin: 12pt 0; }
td, th { border: 1px solid #000; padding: 8px; }
img { max-width: 100%; height: auto; margin: 12pt 0; display: block; }
p { margin: 0 0 12pt 0; }
ul, ol { margin: 0 0 12pt 0; padding-left: 24pt; }
@media print {
body { margin: 0.5in; }
.page-break { page-break-before: always; }
}
</style>
</head>
<body>{{.Content}}</body>
</html>
`))

var printTmpl = template.Must(template.New("print").Funcs(funcs).Parse(`<html>
<head>
<title>{{.Title}}</title>
<style>
body { font-family: {{cssFont .Layout.FontFamily}}; font-size: {{.Layout.FontSize}}pt; line-height: {{.Layout.LineSpacing}}; margin: 0.5in; }
.heading-1 { font-size: 16pt; font-weight: 700; color: #2F5496; }
.heading-2 { font-size: 13pt; font-weight: 700; color: #2F5496; }
.heading-3 { font-size: 12pt; font-weight: 700; color: #2F5496; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #000; padding: 8px; }
img { max-width: 100%; height: auto; }
@media print {
body { margin: 0.5in; }
.page-break { page-break-before: always; }
}
</style>
</head>
<body>{{.Content}}</body>
</html>
`))

// HTML renders content as a standalone document named after title. The
// content is embedded as is.
func HTML(title, content string, layout Layout) (File, error) {
	var buf bytes.Buffer

	if err := exportTmpl.Execute(&buf, newPage(title, content, layout)); err != nil {
		return File{}, fmt.Errorf("render export: %w", err)
	}

	return File{
		Name:        FileName(title, ".html"),
		ContentType: ContentType,
		Body:        buf.Bytes(),
	}, nil
}

// PrintHTML renders content as a print document.
func PrintHTML(title, content string, layout Layout) (string, error) {
	var buf bytes.Buffer

	if err := printTmpl.Execute(&buf, newPage(title, content, layout)); err != nil {
		return "", fmt.Errorf("render print: %w", err)
	}

	return buf.String(), nil
}

func newPage(title, content string, layout Layout) exportPage {
	if strings.TrimSpace(title) == "" {
		title = DefaultName
	}

	return exportPage{
		Title:   title,
		Content: template.HTML(content), //nolint:gosec // documents are exported verbatim
		Layout:  layout.orDefault(),
	}
}

// FileName turns a title into a safe file name with the given extension.
func FileName(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r), strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		default:
			return r
		}
	}, title)

	name = strings.Trim(name, " .")
	if name == "" {
		name = DefaultName
	}

	return name + ext
}
