package fragment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Params are the string arguments of an insert request.
type Params map[string]string

func (p Params) intValue(key string, fallback int) (int, error) {
	v, ok := p[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
	}

	return n, nil
}

func (p Params) list(key string) []string {
	v := strings.TrimSpace(p[key])
	if v == "" {
		return nil
	}

	var out []string

	for _, e := range strings.Split(v, "\n") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}

	return out
}

// Parse builds a fragment from its wire name and parameters. Footnote and
// page numbers default to zero and are filled in by the caller.
func Parse(kind string, params Params) (Fragment, error) {
	switch Kind(kind) {
	case KindTable:
		rows, err := params.intValue("rows", 3)
		if err != nil {
			return nil, err
		}

		cols, err := params.intValue("cols", 3)
		if err != nil {
			return nil, err
		}

		return NewTable(rows, cols)
	case KindImage:
		if params["src"] == "" {
			return nil, fmt.Errorf("%w: image src is required", ErrInvalidParam)
		}

		width, err := params.intValue("width", 0)
		if err != nil {
			return nil, err
		}

		return Image{Src: params["src"], Width: width}, nil
	case KindPageBreak:
		return PageBreak{}, nil
	case KindBlankPage:
		return BlankPage{}, nil
	case KindHeader:
		return Header{Text: params["text"]}, nil
	case KindFooter:
		return Footer{Text: params["text"]}, nil
	case KindShape:
		return NewShape(params["type"])
	case KindSymbol:
		if params["glyph"] == "" {
			return nil, fmt.Errorf("%w: symbol glyph is required", ErrInvalidParam)
		}

		size, err := params.intValue("fontSize", 0)
		if err != nil {
			return nil, err
		}

		return Symbol{Glyph: params["glyph"], FontSize: size}, nil
	case KindTextBox:
		return TextBox{Text: params["text"]}, nil
	case KindDateTime:
		return parseDateTime(params)
	case KindPageNumber:
		n, err := params.intValue("n", 0)
		if err != nil {
			return nil, err
		}

		return PageNumber{N: n}, nil
	case KindFootnote:
		return Footnote{Text: params["text"]}, nil
	case KindCitation:
		return Citation{Text: params["text"]}, nil
	case KindTableOfContents:
		return TableOfContents{Entries: params.list("entries")}, nil
	case KindBibliography:
		return Bibliography{Entries: params.list("entries")}, nil
	case KindWatermark:
		return Watermark{Text: params["text"]}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func parseDateTime(params Params) (Fragment, error) {
	v := params["at"]
	if v == "" {
		return DateTime{}, nil
	}

	at, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%w: at=%q", ErrInvalidParam, v)
	}

	return DateTime{At: at}, nil
}

// Kinds lists every kind Parse accepts.
func Kinds() []Kind {
	return []Kind{
		KindTable, KindImage, KindPageBreak, KindBlankPage, KindHeader, KindFooter,
		KindShape, KindSymbol, KindTextBox, KindDateTime, KindPageNumber, KindFootnote,
		KindCitation, KindTableOfContents, KindBibliography, KindWatermark,
	}
}
