package converter

import (
	"fmt"
	"html"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/yuanying/epubcover/internal/epub"
)

// Fallback page size when the cover image dimensions cannot be read.
const (
	fallbackCoverWidth  = 600
	fallbackCoverHeight = 800
)

// svgCoverTemplate embeds the cover image in an SVG viewport sized to the
// image's natural pixel dimensions, so reflowing readers scale the page as
// a whole. The calibre:cover meta marks the page as a generated cover so
// downstream tools can recognize and replace it.
const svgCoverTemplate = `<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en">
    <head>
        <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
        <meta name="calibre:cover" content="true" />
        <title>Cover</title>
        <style type="text/css" title="override_css">
            @page {padding: 0pt; margin:0pt}
            body { text-align: center; padding:0pt; margin: 0pt; }
        </style>
    </head>
    <body>
        <div>
            <svg version="1.1" xmlns="http://www.w3.org/2000/svg"
                xmlns:xlink="http://www.w3.org/1999/xlink"
                width="100%" height="100%" viewBox="__viewbox__"
                preserveAspectRatio="__ar__">
                <image width="__width__" height="__height__" xlink:href="__href__"/>
            </svg>
        </div>
    </body>
</html>
`

// imgCoverTemplate is the plain-image variant for readers that cannot
// render embedded SVG.
const imgCoverTemplate = `<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en">
    <head>
        <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
        <meta name="calibre:cover" content="true" />
        <title>Cover</title>
        <style type="text/css" title="override_css">
            @page {padding: 0pt; margin:0pt}
            body { text-align: center; padding:0pt; margin: 0pt }
            div { padding:0pt; margin: 0pt }
            img { padding:0pt; margin: 0pt }
        </style>
    </head>
    <body>
        <div>
            <img src="__href__" alt="cover" __style__ />
        </div>
    </body>
</html>
`

// Options configures a CoverManager.
type Options struct {
	// NoDefaultCover suppresses placeholder cover synthesis for books
	// without any cover image.
	NoDefaultCover bool
	// NoSVGCover forces the plain <img> page instead of the SVG wrapper.
	NoSVGCover bool
	// PreserveAspectRatio selects the "xMidYMid meet" SVG scaling policy
	// instead of "none" (stretch to fill).
	PreserveAspectRatio bool
	// FixedWidth/FixedHeight are CSS sizes ("600px", "100%") for the
	// plain-image page. When empty the image fills the page height.
	FixedWidth  string
	FixedHeight string

	// DefaultCover generates a cover image for books that have none.
	// When nil, a PlaceholderCover is used unless NoDefaultCover is set.
	DefaultCover DefaultCoverGenerator
	// Dimensions inspects cover image pixel sizes. When nil, the image
	// payload in the manifest is decoded directly.
	Dimensions DimensionInspector
}

// CoverManager inserts a synthetic title page into a book: it wraps the
// cover image in a minimal XHTML page, registers the page in the manifest,
// puts it first in the spine and repoints the guide at it.
type CoverManager struct {
	opts        Options
	svgTemplate string
	imgTemplate string
	generator   DefaultCoverGenerator
	inspector   DimensionInspector
}

// NewCoverManager builds a CoverManager. The two page templates are
// pre-filled with the aspect-ratio keyword and sizing style selected by
// opts, leaving only the image reference and viewport dimensions open.
func NewCoverManager(opts Options) *CoverManager {
	ar := "none"
	if opts.PreserveAspectRatio {
		ar = "xMidYMid meet"
	}

	style := `style="height: 100%"`
	if opts.FixedWidth != "" || opts.FixedHeight != "" {
		style = fmt.Sprintf(`style="height: %s; width: %s"`, opts.FixedHeight, opts.FixedWidth)
	}

	cm := &CoverManager{
		opts:        opts,
		svgTemplate: strings.ReplaceAll(svgCoverTemplate, "__ar__", ar),
		imgTemplate: strings.ReplaceAll(imgCoverTemplate, "__style__", style),
		generator:   opts.DefaultCover,
		inspector:   opts.Dimensions,
	}
	if cm.generator == nil && !opts.NoDefaultCover {
		cm.generator = &PlaceholderCover{}
	}
	if cm.inspector == nil {
		cm.inspector = manifestDimensions{}
	}
	return cm
}

// InsertCover runs the transform on book. It never fails the caller: a
// book without any cover information is simply left unmodified, and
// recoverable problems degrade to fixed fallbacks with a warning.
func (cm *CoverManager) InsertCover(book *epub.Book) {
	var item *epub.ManifestItem

	if ref, ok := book.GuideRef("titlepage"); ok {
		// The book already carries a title page; reuse it as-is.
		item = book.ItemByHref(ref.Href)
		if item == nil {
			log.Printf("warning: guide titlepage %q not found in manifest", ref.Href)
			return
		}
	} else {
		href := ""
		if cover, ok := book.GuideRef("cover"); ok {
			href = cover.Href
		} else {
			href = cm.defaultCover(book)
		}
		if href == "" {
			return
		}

		width, height, err := cm.inspector.Inspect(book, href)
		if err != nil {
			log.Printf("warning: failed to read cover dimensions: %v", err)
			width, height = fallbackCoverWidth, fallbackCoverHeight
		}

		markup := cm.renderPage(href, width, height)
		id, pageHref := book.Generate("titlepage", "titlepage.xhtml")
		doc, err := epub.ParseContent([]byte(markup))
		if err != nil {
			// The templates only ever produce well-formed markup.
			log.Printf("warning: failed to parse title page markup: %v", err)
		}
		item = &epub.ManifestItem{
			ID:        id,
			Href:      pageHref,
			MediaType: "application/xhtml+xml",
			Data:      []byte(markup),
			Document:  doc,
		}
		book.Add(item)
	}

	book.InsertSpineItem(0, item.ID, true)
	if !book.HasGuideRef("cover") {
		book.AddGuideRef("cover", "Title Page", "a")
	}
	book.SetGuideHref("cover", item.Href)
	if book.HasGuideRef("titlepage") {
		book.SetGuideHref("titlepage", item.Href)
	}
}

// defaultCover asks the configured generator for a synthesized cover and
// returns its href, or "" when generation is suppressed or fails.
func (cm *CoverManager) defaultCover(book *epub.Book) string {
	if cm.opts.NoDefaultCover || cm.generator == nil {
		return ""
	}
	href, err := cm.generator.GenerateCover(book)
	if err != nil {
		log.Printf("warning: failed to generate default cover: %v", err)
		return ""
	}
	return href
}

// renderPage fills the selected template with the image reference and the
// resolved viewport dimensions.
func (cm *CoverManager) renderPage(href string, width, height int) string {
	templ := cm.svgTemplate
	if cm.opts.NoSVGCover {
		templ = cm.imgTemplate
	}

	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}

	return strings.NewReplacer(
		"__viewbox__", fmt.Sprintf("0 0 %d %d", width, height),
		"__width__", strconv.Itoa(width),
		"__height__", strconv.Itoa(height),
		"__href__", html.EscapeString(href),
	).Replace(templ)
}
