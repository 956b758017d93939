package epub

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Book is the in-memory document model of an EPUB package: metadata,
// manifest, spine and guide, plus the raw payload of every resource.
// A Book is exclusively owned by the transformation pipeline between
// Load and Save; none of its methods are safe for concurrent use.
type Book struct {
	Metadata Metadata
	Manifest map[string]*ManifestItem // id -> item
	// ManifestOrder preserves the document order of manifest items.
	ManifestOrder []string
	Spine         []SpineItem
	Guide         []GuideReference

	// OPFPath is the zip-internal path of the package document; OPFDir is
	// its directory ("" when the OPF sits at the zip root). Manifest and
	// guide hrefs are relative to OPFDir.
	OPFPath string
	OPFDir  string

	// Version is the package version attribute ("2.0", "3.0").
	Version string
	// UniqueID is the unique-identifier attribute of the package element.
	UniqueID string
	// TocID is the spine toc attribute (NCX manifest id), kept for Save.
	TocID string

	// ContainerXML holds the raw META-INF/container.xml payload so Save can
	// write it back unchanged.
	ContainerXML []byte
	// Extras holds zip entries that are not the mimetype, container, OPF or
	// a manifest resource (e.g. Apple metadata). Passed through on Save.
	Extras map[string][]byte

	// rawPkg keeps the parsed package document so WriteOPF can round-trip
	// metadata elements the flattened Metadata model does not carry
	// (secondary titles, identifiers, EPUB 3 refines).
	rawPkg *opfPackage
}

// Metadata represents the metadata section of the OPF
type Metadata struct {
	Title       string
	Creators    []Creator
	Language    string
	Identifier  string
	Publisher   string
	Date        string
	Description string
	Subjects    []string
	Rights      string
	CoverID     string // EPUB 2.0 cover image manifest item ID (from meta name="cover")
	Series      string // from meta name="calibre:series"
	SeriesIndex string // from meta name="calibre:series_index", may be fractional ("2.5")
}

// Creator represents a creator (author, editor, etc.) of the book
type Creator struct {
	Name string
	Role string // e.g., "aut" for author, "edt" for editor
	Lang string // xml:lang attribute
}

// ManifestItem represents one resource in the package manifest.
// Data holds the raw payload; Document is set for XHTML resources whose
// markup has been parsed.
type ManifestItem struct {
	ID         string
	Href       string // relative to the OPF directory
	MediaType  string
	Properties []string
	Data       []byte
	Document   *goquery.Document
}

// SpineItem represents an item reference in the spine
type SpineItem struct {
	IDRef  string
	Linear bool
}

// GuideReference is a named pointer into the book: a guide <reference>
// with a type ("cover", "titlepage", "toc", ...), a display title and an
// href relative to the OPF directory.
type GuideReference struct {
	Type  string
	Title string
	Href  string
}

// Generate returns a fresh (id, href) pair that collides with no existing
// manifest id or href. idBase is the starting id, hrefBase the starting
// file name; a numeric suffix is appended in front of the extension until
// both are unique ("titlepage", "titlepage.xhtml" -> "titlepage1",
// "titlepage1.xhtml" when taken).
func (b *Book) Generate(idBase, hrefBase string) (id, href string) {
	hrefs := make(map[string]struct{}, len(b.Manifest))
	for _, item := range b.Manifest {
		hrefs[normalizeHref(item.Href)] = struct{}{}
	}

	ext := ""
	stem := hrefBase
	if idx := strings.LastIndexByte(hrefBase, '.'); idx >= 0 {
		stem, ext = hrefBase[:idx], hrefBase[idx:]
	}

	id, href = idBase, stem+ext
	for n := 1; ; n++ {
		_, idTaken := b.Manifest[id]
		_, hrefTaken := hrefs[normalizeHref(href)]
		if !idTaken && !hrefTaken {
			return id, href
		}
		id = fmt.Sprintf("%s%d", idBase, n)
		href = fmt.Sprintf("%s%d%s", stem, n, ext)
	}
}

// Add registers a manifest item, keeping ManifestOrder in sync.
// An item whose id is already present replaces the existing one.
func (b *Book) Add(item *ManifestItem) {
	if b.Manifest == nil {
		b.Manifest = make(map[string]*ManifestItem)
	}
	if _, ok := b.Manifest[item.ID]; !ok {
		b.ManifestOrder = append(b.ManifestOrder, item.ID)
	}
	b.Manifest[item.ID] = item
}

// ItemByHref resolves an href (relative to the OPF directory, optionally
// carrying a fragment) to its manifest item. Returns nil when no item
// matches.
func (b *Book) ItemByHref(href string) *ManifestItem {
	want := normalizeHref(href)
	for _, id := range b.ManifestOrder {
		item, ok := b.Manifest[id]
		if !ok {
			continue
		}
		if normalizeHref(item.Href) == want {
			return item
		}
	}
	return nil
}

// InsertSpineItem inserts an itemref at index. Indices past either end are
// clamped, so index 0 always means "first in reading order".
func (b *Book) InsertSpineItem(index int, idref string, linear bool) {
	if index < 0 {
		index = 0
	}
	if index > len(b.Spine) {
		index = len(b.Spine)
	}
	b.Spine = append(b.Spine, SpineItem{})
	copy(b.Spine[index+1:], b.Spine[index:])
	b.Spine[index] = SpineItem{IDRef: idref, Linear: linear}
}

// GuideRef returns the first guide reference of the given type.
// Type matching is case-insensitive, as readers in the wild disagree on
// the casing of guide types.
func (b *Book) GuideRef(typ string) (GuideReference, bool) {
	for _, ref := range b.Guide {
		if strings.EqualFold(ref.Type, typ) {
			return ref, true
		}
	}
	return GuideReference{}, false
}

// HasGuideRef reports whether a guide reference of the given type exists.
func (b *Book) HasGuideRef(typ string) bool {
	_, ok := b.GuideRef(typ)
	return ok
}

// AddGuideRef appends a new guide reference.
func (b *Book) AddGuideRef(typ, title, href string) {
	b.Guide = append(b.Guide, GuideReference{Type: typ, Title: title, Href: href})
}

// SetGuideHref repoints every guide reference of the given type to href.
func (b *Book) SetGuideHref(typ, href string) {
	for i := range b.Guide {
		if strings.EqualFold(b.Guide[i].Type, typ) {
			b.Guide[i].Href = href
		}
	}
}

// ResourcePath returns the zip-internal path of a manifest href.
func (b *Book) ResourcePath(href string) string {
	return joinPath(b.OPFDir, normalizeHref(href))
}

// normalizeHref strips a fragment identifier and any leading "./".
func normalizeHref(href string) string {
	href, _, _ = strings.Cut(href, "#")
	return strings.TrimPrefix(href, "./")
}
