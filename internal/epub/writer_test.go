package epub

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := createTestEPUB(t, dir)

	book, err := Load(src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	out := filepath.Join(dir, "out.epub")
	if err := Save(book, out); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(out)
	if err != nil {
		t.Fatalf("Load() of saved epub error = %v", err)
	}

	if reloaded.Metadata.Title != book.Metadata.Title {
		t.Errorf("Title = %q, want %q", reloaded.Metadata.Title, book.Metadata.Title)
	}
	if reloaded.OPFPath != book.OPFPath {
		t.Errorf("OPFPath = %q, want %q", reloaded.OPFPath, book.OPFPath)
	}
	if got, want := string(reloaded.Manifest["chapter1"].Data), string(book.Manifest["chapter1"].Data); got != want {
		t.Errorf("chapter payload changed: got %q, want %q", got, want)
	}
	if string(reloaded.Extras["OEBPS/unlisted.txt"]) != "stray" {
		t.Errorf("Extras = %v, want unlisted.txt carried through", reloaded.Extras)
	}
}

func TestSave_MimetypeFirstAndStored(t *testing.T) {
	dir := t.TempDir()
	book, err := Load(createTestEPUB(t, dir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	out := filepath.Join(dir, "out.epub")
	if err := Save(book, out); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		t.Fatal("saved epub is empty")
	}
	first := zr.File[0]
	if first.Name != "mimetype" {
		t.Errorf("first entry = %q, want mimetype", first.Name)
	}
	if first.Method != zip.Store {
		t.Errorf("mimetype method = %d, want zip.Store", first.Method)
	}
}

func TestWrite_SynthesizesContainer(t *testing.T) {
	book := &Book{
		Metadata: Metadata{Title: "Synthetic", Language: "en"},
		Manifest: make(map[string]*ManifestItem),
	}
	book.Add(&ManifestItem{
		ID:        "page",
		Href:      "page.xhtml",
		MediaType: "application/xhtml+xml",
		Data:      []byte("<html/>"),
	})
	book.Spine = []SpineItem{{IDRef: "page", Linear: true}}

	var buf bytes.Buffer
	if err := Write(book, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "synthetic.epub")
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reloaded, err := Load(out)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.OPFPath != "content.opf" {
		t.Errorf("OPFPath = %q, want content.opf", reloaded.OPFPath)
	}
	if reloaded.Metadata.Title != "Synthetic" {
		t.Errorf("Title = %q, want Synthetic", reloaded.Metadata.Title)
	}
}
