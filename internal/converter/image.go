package converter

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/yuanying/epubcover/internal/epub"
)

// DimensionInspector reports the pixel dimensions of a cover image
// referenced by href. Implementations are free to fail; the caller falls
// back to fixed dimensions.
type DimensionInspector interface {
	Inspect(book *epub.Book, href string) (width, height int, err error)
}

// manifestDimensions resolves the href through the manifest and decodes
// the image header of the stored payload.
type manifestDimensions struct{}

func (manifestDimensions) Inspect(book *epub.Book, href string) (int, int, error) {
	item := book.ItemByHref(href)
	if item == nil {
		return 0, 0, fmt.Errorf("cover image %q not found in manifest", href)
	}
	if len(item.Data) == 0 {
		return 0, 0, fmt.Errorf("cover image %q has no payload", href)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(item.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode cover image %q: %w", href, err)
	}
	return cfg.Width, cfg.Height, nil
}
