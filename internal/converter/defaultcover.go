package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/yuanying/epubcover/internal/epub"
)

// DefaultCoverGenerator synthesizes a cover image for books that have
// none. Implementations register the image in the manifest themselves and
// return its href, so the inserter control flow does not depend on how (or
// whether) rendering happens.
type DefaultCoverGenerator interface {
	GenerateCover(book *epub.Book) (href string, err error)
}

const (
	placeholderWidth       = 600
	placeholderHeight      = 800
	placeholderJPEGQuality = 85
	placeholderMargin      = 24
)

var (
	placeholderBackground = color.NRGBA{R: 0x26, G: 0x32, B: 0x42, A: 0xff}
	placeholderPanel      = color.NRGBA{R: 0x39, G: 0x4a, B: 0x61, A: 0xff}
	placeholderText       = color.NRGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}
)

// PlaceholderCover renders a generic text-only cover from the book's
// metadata: title, authors and, when the book belongs to a series, a
// "Book N of Series" line with the index in Roman notation.
type PlaceholderCover struct {
	// Width and Height of the rendered image in pixels; zero values use
	// the 600x800 defaults.
	Width  int
	Height int
}

// GenerateCover renders the placeholder, adds it to the manifest as
// "cover"/"cover_image.jpg" and records it as the book's cover image.
func (g *PlaceholderCover) GenerateCover(book *epub.Book) (string, error) {
	width, height := g.Width, g.Height
	if width <= 0 {
		width = placeholderWidth
	}
	if height <= 0 {
		height = placeholderHeight
	}

	canvas := imaging.New(width, height, placeholderBackground)
	panel := imaging.New(width-2*placeholderMargin, height-2*placeholderMargin, placeholderPanel)
	canvas = imaging.Paste(canvas, panel, image.Pt(placeholderMargin, placeholderMargin))

	drawCoverText(canvas, coverLines(&book.Metadata), width, height)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: placeholderJPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode placeholder cover: %w", err)
	}

	id, href := book.Generate("cover", "cover_image.jpg")
	book.Add(&epub.ManifestItem{
		ID:        id,
		Href:      href,
		MediaType: "image/jpeg",
		Data:      buf.Bytes(),
	})
	book.Metadata.CoverID = id

	return href, nil
}

// coverLines assembles the text lines for the placeholder: title, author
// names and an optional series line.
func coverLines(md *epub.Metadata) []string {
	title := md.Title
	if title == "" {
		title = "Unknown"
	}
	lines := []string{title}

	var authors []string
	for _, c := range md.Creators {
		if c.Role == "aut" && c.Name != "" {
			authors = append(authors, c.Name)
		}
	}
	if len(authors) > 0 {
		lines = append(lines, strings.Join(authors, " & "))
	}

	if md.Series != "" && md.SeriesIndex != "" {
		lines = append(lines, fmt.Sprintf("Book %s of %s",
			FormatSeriesIndex(md.SeriesIndex, "", true), md.Series))
	}

	return lines
}

// drawCoverText stamps the lines horizontally centered on the upper third
// of the canvas.
func drawCoverText(dst *image.NRGBA, lines []string, width, height int) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 8

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(placeholderText),
		Face: face,
	}

	y := height / 3
	for _, line := range lines {
		w := d.MeasureString(line).Ceil()
		x := (width - w) / 2
		if x < placeholderMargin {
			x = placeholderMargin
		}
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += lineHeight
	}
}
