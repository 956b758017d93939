package epub

import (
	"path"
	"strings"
)

// CoverInfo holds information about the detected cover image.
type CoverInfo struct {
	ManifestID      string
	Href            string
	MediaType       string
	DetectionMethod string // "properties", "meta", "guide", "filename"
}

// DetectCover detects the cover image from the book manifest using multiple
// methods. Methods are tried in priority order:
//  1. properties="cover-image" (EPUB 3.0)
//  2. meta name="cover" (EPUB 2.0)
//  3. guide type="cover" (image href, or XHTML page whose first image resolves)
//  4. filename pattern (basename contains "cover", case-insensitive, SVG excluded)
//
// Returns nil if no cover image is found.
func (b *Book) DetectCover() *CoverInfo {
	// Method 1: EPUB 3.0 - check for cover-image property
	for _, id := range b.ManifestOrder {
		item := b.Manifest[id]
		for _, prop := range item.Properties {
			if prop == "cover-image" {
				return &CoverInfo{
					ManifestID:      item.ID,
					Href:            item.Href,
					MediaType:       item.MediaType,
					DetectionMethod: "properties",
				}
			}
		}
	}

	// Method 2: EPUB 2.0 - check for meta name="cover"
	if b.Metadata.CoverID != "" {
		if item, ok := b.Manifest[b.Metadata.CoverID]; ok && isImageMediaType(item.MediaType) {
			return &CoverInfo{
				ManifestID:      item.ID,
				Href:            item.Href,
				MediaType:       item.MediaType,
				DetectionMethod: "meta",
			}
		}
	}

	// Method 3: guide type="cover"
	for _, ref := range b.Guide {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		target := b.ItemByHref(ref.Href)
		if target == nil {
			continue
		}
		if isImageMediaType(target.MediaType) {
			return &CoverInfo{
				ManifestID:      target.ID,
				Href:            target.Href,
				MediaType:       target.MediaType,
				DetectionMethod: "guide",
			}
		}
		// Guide points at an XHTML cover page: follow its first image.
		if isXHTMLMediaType(target.MediaType) && len(target.Data) > 0 {
			imgHref := FirstImageRef(target.Data, target.Href)
			if imgHref == "" {
				continue
			}
			if imgItem := b.ItemByHref(imgHref); imgItem != nil && isImageMediaType(imgItem.MediaType) {
				return &CoverInfo{
					ManifestID:      imgItem.ID,
					Href:            imgItem.Href,
					MediaType:       imgItem.MediaType,
					DetectionMethod: "guide",
				}
			}
		}
	}

	// Method 4: filename pattern - image items with "cover" in basename (case-insensitive, SVG excluded)
	for _, id := range b.ManifestOrder {
		item := b.Manifest[id]
		if !isImageMediaType(item.MediaType) {
			continue
		}
		base := path.Base(item.Href)
		if strings.Contains(strings.ToLower(base), "cover") {
			return &CoverInfo{
				ManifestID:      item.ID,
				Href:            item.Href,
				MediaType:       item.MediaType,
				DetectionMethod: "filename",
			}
		}
	}

	return nil
}

// isImageMediaType checks if a media type is a raster image (SVG excluded).
func isImageMediaType(mediaType string) bool {
	if mediaType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// isXHTMLMediaType checks if a media type indicates an XHTML content file.
func isXHTMLMediaType(mediaType string) bool {
	return strings.Contains(mediaType, "html")
}
