package fragment

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/serroba/pdfcraft/internal/dom"
	"golang.org/x/net/html"
)

// Image is a picture embedded by URL, normally a data URI.
type Image struct {
	Src   string `json:"src"`
	Width int    `json:"width,omitempty"`
}

// NewImage embeds raw image bytes as a base64 data URI. The content type is
// sniffed from the bytes; anything that is not an image is rejected.
func NewImage(data []byte) (Image, error) {
	mime := mimetype.Detect(data)

	mediaType, _, _ := strings.Cut(mime.String(), ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return Image{}, fmt.Errorf("%w: detected %s", ErrNotImage, mediaType)
	}

	return Image{Src: "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)}, nil
}

func (Image) Kind() Kind           { return KindImage }
func (Image) Placement() Placement { return AtCursor }

func (i Image) Render() []*html.Node {
	st := dom.NewStyle(
		"max-width", "100%",
		"height", "auto",
		"margin", "12pt 0",
		"display", "block",
	)
	if i.Width > 0 {
		st.Set("width", strconv.Itoa(i.Width)+"px")
	}

	img := dom.Element("img", st)
	dom.SetAttr(img, "src", i.Src)

	return []*html.Node{img}
}
