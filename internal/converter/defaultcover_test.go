package converter

import (
	"bytes"
	"image"
	"testing"

	"github.com/yuanying/epubcover/internal/epub"
)

func TestPlaceholderCover_GenerateCover(t *testing.T) {
	book := &epub.Book{}
	book.Metadata.Title = "The Martian Menace"
	book.Metadata.Creators = []epub.Creator{
		{Name: "A. Writer", Role: "aut"},
		{Name: "B. Editor", Role: "edt"},
	}

	gen := &PlaceholderCover{}
	href, err := gen.GenerateCover(book)
	if err != nil {
		t.Fatalf("GenerateCover() error = %v", err)
	}
	if href != "cover_image.jpg" {
		t.Errorf("href = %q, want %q", href, "cover_image.jpg")
	}

	item := book.ItemByHref(href)
	if item == nil {
		t.Fatal("generated cover not registered in manifest")
	}
	if item.MediaType != "image/jpeg" {
		t.Errorf("media type = %q, want %q", item.MediaType, "image/jpeg")
	}
	if book.Metadata.CoverID != item.ID {
		t.Errorf("CoverID = %q, want %q", book.Metadata.CoverID, item.ID)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(item.Data))
	if err != nil {
		t.Fatalf("generated cover does not decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want %q", format, "jpeg")
	}
	if cfg.Width != placeholderWidth || cfg.Height != placeholderHeight {
		t.Errorf("dimensions = %dx%d, want %dx%d", cfg.Width, cfg.Height, placeholderWidth, placeholderHeight)
	}
}

func TestPlaceholderCover_CustomSize(t *testing.T) {
	book := &epub.Book{}
	book.Metadata.Title = "Small"

	gen := &PlaceholderCover{Width: 120, Height: 160}
	href, err := gen.GenerateCover(book)
	if err != nil {
		t.Fatalf("GenerateCover() error = %v", err)
	}

	item := book.ItemByHref(href)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(item.Data))
	if err != nil {
		t.Fatalf("generated cover does not decode: %v", err)
	}
	if cfg.Width != 120 || cfg.Height != 160 {
		t.Errorf("dimensions = %dx%d, want 120x160", cfg.Width, cfg.Height)
	}
}

func TestPlaceholderCover_UniqueHref(t *testing.T) {
	book := &epub.Book{}
	book.Metadata.Title = "Taken"
	book.Add(&epub.ManifestItem{
		ID:        "cover",
		Href:      "cover_image.jpg",
		MediaType: "image/jpeg",
		Data:      []byte("existing"),
	})

	href, err := (&PlaceholderCover{Width: 60, Height: 80}).GenerateCover(book)
	if err != nil {
		t.Fatalf("GenerateCover() error = %v", err)
	}
	if href != "cover_image1.jpg" {
		t.Errorf("href = %q, want %q", href, "cover_image1.jpg")
	}
	if book.Metadata.CoverID != "cover1" {
		t.Errorf("CoverID = %q, want %q", book.Metadata.CoverID, "cover1")
	}
}

func TestCoverLines(t *testing.T) {
	md := &epub.Metadata{
		Title:       "Dune Messiah",
		Creators:    []epub.Creator{{Name: "Frank Herbert", Role: "aut"}},
		Series:      "Dune",
		SeriesIndex: "2",
	}

	lines := coverLines(md)
	want := []string{"Dune Messiah", "Frank Herbert", "Book II of Dune"}
	if len(lines) != len(want) {
		t.Fatalf("coverLines() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCoverLines_MissingTitleAndSeries(t *testing.T) {
	lines := coverLines(&epub.Metadata{})
	if len(lines) != 1 || lines[0] != "Unknown" {
		t.Errorf("coverLines() = %v, want [Unknown]", lines)
	}
}

func TestCoverLines_MultipleAuthors(t *testing.T) {
	md := &epub.Metadata{
		Title: "Good Omens",
		Creators: []epub.Creator{
			{Name: "Terry Pratchett", Role: "aut"},
			{Name: "Neil Gaiman", Role: "aut"},
			{Name: "Someone Else", Role: "ill"},
		},
	}

	lines := coverLines(md)
	if len(lines) != 2 {
		t.Fatalf("coverLines() = %v, want title and author line", lines)
	}
	if lines[1] != "Terry Pratchett & Neil Gaiman" {
		t.Errorf("author line = %q, want %q", lines[1], "Terry Pratchett & Neil Gaiman")
	}
}
