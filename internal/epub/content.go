package epub

import (
	"bytes"
	"fmt"
	"path"

	"github.com/PuerkitoBio/goquery"
)

// ParseContent parses XHTML markup into the document representation stored
// on manifest items.
func ParseContent(markup []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}
	return doc, nil
}

// FirstImageRef returns the href of the first raster image referenced by an
// XHTML payload (an <img> src or an SVG <image> href), resolved relative to
// the document's own href. Returns "" when the markup has no image or
// cannot be parsed.
func FirstImageRef(markup []byte, docHref string) string {
	doc, err := ParseContent(markup)
	if err != nil {
		return ""
	}

	baseDir := path.Dir(docHref)

	if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
		return resolveHref(baseDir, src)
	}
	svgImage := doc.Find("image").First()
	if href, ok := svgImage.Attr("xlink:href"); ok && href != "" {
		return resolveHref(baseDir, href)
	}
	if href, ok := svgImage.Attr("href"); ok && href != "" {
		return resolveHref(baseDir, href)
	}
	return ""
}

// resolveHref resolves a relative reference against a base directory and
// cleans "." and ".." segments, keeping forward slashes.
func resolveHref(baseDir, ref string) string {
	if baseDir == "" || baseDir == "." {
		return path.Clean(ref)
	}
	return path.Clean(path.Join(baseDir, ref))
}
