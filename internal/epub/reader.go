package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
)

// Reader provides access to EPUB file contents
type Reader struct {
	zipReader *zip.ReadCloser
	files     map[string]*zip.File
	opfPath   string
}

// container.xml structure
type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

var (
	ErrInvalidMimetype    = errors.New("invalid mimetype: must be 'application/epub+zip'")
	ErrMimetypeCompressed = errors.New("mimetype must not be compressed")
	ErrMimetypeNotFound   = errors.New("mimetype file not found")
	ErrContainerNotFound  = errors.New("META-INF/container.xml not found")
	ErrOPFPathNotFound    = errors.New("OPF path not found in container.xml")
)

// Open opens an EPUB file and validates its structure
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}

	reader := &Reader{
		zipReader: zr,
		files:     make(map[string]*zip.File),
	}

	// Build file map with normalized paths
	for _, f := range zr.File {
		name := normalizePath(f.Name)
		reader.files[name] = f
	}

	// Validate mimetype
	if err := reader.validateMimetype(); err != nil {
		zr.Close()
		return nil, err
	}

	// Parse container.xml to get OPF path
	if err := reader.parseContainer(); err != nil {
		zr.Close()
		return nil, err
	}

	return reader, nil
}

// Close closes the EPUB reader
func (r *Reader) Close() error {
	return r.zipReader.Close()
}

// OPFPath returns the path to the OPF file
func (r *Reader) OPFPath() string {
	return r.opfPath
}

// Files returns a map of all files in the EPUB
func (r *Reader) Files() map[string]*zip.File {
	return r.files
}

// ReadFile reads the contents of a file from the EPUB
func (r *Reader) ReadFile(path string) ([]byte, error) {
	path = normalizePath(path)
	f, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Load opens an EPUB and materializes the whole book into memory: the
// parsed package document plus the payload of every manifest resource.
// Resources the manifest names but the zip lacks are skipped with a
// warning; spine and guide entries pointing at them simply dangle.
func Load(epubPath string) (*Book, error) {
	reader, err := Open(epubPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	opfData, err := reader.ReadFile(reader.OPFPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read OPF: %w", err)
	}

	book, err := ParseOPF(opfData)
	if err != nil {
		return nil, err
	}
	book.OPFPath = reader.OPFPath()
	book.OPFDir = opfDir(reader.OPFPath())

	if data, err := reader.ReadFile("META-INF/container.xml"); err == nil {
		book.ContainerXML = data
	}

	claimed := map[string]struct{}{
		"mimetype":               {},
		"META-INF/container.xml": {},
		book.OPFPath:             {},
	}
	for _, id := range book.ManifestOrder {
		item := book.Manifest[id]
		resPath := book.ResourcePath(item.Href)
		claimed[resPath] = struct{}{}

		data, err := reader.ReadFile(resPath)
		if err != nil {
			log.Printf("warning: failed to read %q: %v, skipping", resPath, err)
			continue
		}
		item.Data = data
	}

	// Everything else in the zip is carried through untouched.
	book.Extras = make(map[string][]byte)
	for name := range reader.Files() {
		if _, ok := claimed[name]; ok {
			continue
		}
		data, err := reader.ReadFile(name)
		if err != nil {
			log.Printf("warning: failed to read %q: %v, skipping", name, err)
			continue
		}
		book.Extras[name] = data
	}

	return book, nil
}

// validateMimetype checks that the mimetype file exists and is valid
func (r *Reader) validateMimetype() error {
	f, ok := r.files["mimetype"]
	if !ok {
		return ErrMimetypeNotFound
	}

	// Check that mimetype is not compressed
	if f.Method != zip.Store {
		return ErrMimetypeCompressed
	}

	// Read and validate content
	content, err := r.ReadFile("mimetype")
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}

	if string(content) != "application/epub+zip" {
		return ErrInvalidMimetype
	}

	return nil
}

// parseContainer parses container.xml to extract OPF path
func (r *Reader) parseContainer() error {
	content, err := r.ReadFile("META-INF/container.xml")
	if err != nil {
		return ErrContainerNotFound
	}

	var c container
	if err := xml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("failed to parse container.xml: %w", err)
	}

	// Find the OPF file path
	for _, rf := range c.Rootfiles.Rootfile {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			r.opfPath = normalizePath(rf.FullPath)
			return nil
		}
	}

	// If no media-type match, use the first one
	if len(c.Rootfiles.Rootfile) > 0 {
		r.opfPath = normalizePath(c.Rootfiles.Rootfile[0].FullPath)
		return nil
	}

	return ErrOPFPathNotFound
}

// opfDir returns the directory part of the OPF path ("" for a root OPF).
func opfDir(opfPath string) string {
	dir := path.Dir(opfPath)
	if dir == "." {
		return ""
	}
	return dir
}

// normalizePath normalizes file paths (removes ./ prefix)
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "./")
	return path
}
