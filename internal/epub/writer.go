package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
)

const defaultContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="%s" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// Save writes the book back out as an EPUB file. The mimetype entry is
// written first and stored uncompressed, as the container format requires.
func Save(book *Book, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := Write(book, f); err != nil {
		return err
	}
	return nil
}

// Write serializes the book as an EPUB container to w.
func Write(book *Book, w io.Writer) error {
	zw := zip.NewWriter(w)

	// mimetype first, stored uncompressed.
	mw, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("failed to create mimetype entry: %w", err)
	}
	if _, err := mw.Write([]byte("application/epub+zip")); err != nil {
		return fmt.Errorf("failed to write mimetype: %w", err)
	}

	containerXML := book.ContainerXML
	if len(containerXML) == 0 {
		opfPath := book.OPFPath
		if opfPath == "" {
			opfPath = "content.opf"
		}
		containerXML = []byte(fmt.Sprintf(defaultContainerXML, opfPath))
	}
	if err := writeEntry(zw, "META-INF/container.xml", containerXML); err != nil {
		return err
	}

	opfPath := book.OPFPath
	if opfPath == "" {
		opfPath = "content.opf"
	}
	opfData, err := WriteOPF(book)
	if err != nil {
		return err
	}
	if err := writeEntry(zw, opfPath, opfData); err != nil {
		return err
	}

	written := map[string]struct{}{
		"mimetype":               {},
		"META-INF/container.xml": {},
		opfPath:                  {},
	}
	for _, id := range book.ManifestOrder {
		item, ok := book.Manifest[id]
		if !ok {
			continue
		}
		resPath := book.ResourcePath(item.Href)
		if _, ok := written[resPath]; ok {
			continue
		}
		if item.Data == nil {
			log.Printf("warning: manifest item %q has no payload, skipping", item.Href)
			continue
		}
		if err := writeEntry(zw, resPath, item.Data); err != nil {
			return err
		}
		written[resPath] = struct{}{}
	}

	// Pass-through entries, in stable order.
	extras := make([]string, 0, len(book.Extras))
	for name := range book.Extras {
		if _, ok := written[name]; ok {
			continue
		}
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		if err := writeEntry(zw, name, book.Extras[name]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize EPUB: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", name, err)
	}
	return nil
}
