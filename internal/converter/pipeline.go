package converter

import (
	"fmt"
	"log"

	"github.com/yuanying/epubcover/internal/epub"
)

// ConvertOptions holds options for the cover insertion pipeline.
type ConvertOptions struct {
	InputPath  string
	OutputPath string
	Cover      Options
}

// Pipeline orchestrates loading an EPUB, inserting the cover page and
// writing the result.
type Pipeline struct {
	Options ConvertOptions
}

// NewPipeline creates a new cover insertion pipeline.
func NewPipeline(opts ConvertOptions) *Pipeline {
	return &Pipeline{Options: opts}
}

// Run executes the pipeline.
func (p *Pipeline) Run() error {
	book, err := epub.Load(p.Options.InputPath)
	if err != nil {
		return err
	}

	seedGuideCover(book)

	cm := NewCoverManager(p.Options.Cover)
	cm.InsertCover(book)

	if err := epub.Save(book, p.Options.OutputPath); err != nil {
		return fmt.Errorf("failed to write EPUB: %w", err)
	}
	return nil
}

// seedGuideCover adds a guide "cover" reference when the book carries a
// detectable cover image the guide does not name. The inserter itself
// only consults the guide, so detection happens up front.
func seedGuideCover(book *epub.Book) {
	if book.HasGuideRef("cover") || book.HasGuideRef("titlepage") {
		return
	}
	info := book.DetectCover()
	if info == nil {
		return
	}
	log.Printf("detected cover image %s (%s)", info.Href, info.DetectionMethod)
	book.AddGuideRef("cover", "Cover", info.Href)
}
