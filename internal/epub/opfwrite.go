package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Write-side mirror of the opf* parse structs. The dc/opf namespaces are
// emitted as literal prefixed names with the declarations on the metadata
// element, which keeps the output close to what authoring tools produce.

type opfWritePackage struct {
	XMLName  xml.Name         `xml:"package"`
	Xmlns    string           `xml:"xmlns,attr"`
	Version  string           `xml:"version,attr"`
	UniqueID string           `xml:"unique-identifier,attr,omitempty"`
	Metadata opfWriteMetadata `xml:"metadata"`
	Manifest opfWriteManifest `xml:"manifest"`
	Spine    opfWriteSpine    `xml:"spine"`
	Guide    *opfWriteGuide   `xml:"guide,omitempty"`
}

type opfWriteMetadata struct {
	XmlnsDC     string          `xml:"xmlns:dc,attr"`
	XmlnsOPF    string          `xml:"xmlns:opf,attr"`
	Title       []string        `xml:"dc:title"`
	Creator     []opfWriteNamed `xml:"dc:creator,omitempty"`
	Language    []string        `xml:"dc:language,omitempty"`
	Identifier  []opfWriteIdent `xml:"dc:identifier,omitempty"`
	Publisher   []string        `xml:"dc:publisher,omitempty"`
	Date        []string        `xml:"dc:date,omitempty"`
	Description []string        `xml:"dc:description,omitempty"`
	Subject     []string        `xml:"dc:subject,omitempty"`
	Rights      []string        `xml:"dc:rights,omitempty"`
	Meta        []opfWriteMeta  `xml:"meta,omitempty"`
}

type opfWriteNamed struct {
	Name string `xml:",chardata"`
	Role string `xml:"opf:role,attr,omitempty"`
	ID   string `xml:"id,attr,omitempty"`
}

type opfWriteIdent struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr,omitempty"`
}

type opfWriteMeta struct {
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Property string `xml:"property,attr,omitempty"`
	Refines  string `xml:"refines,attr,omitempty"`
	Scheme   string `xml:"scheme,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfWriteManifest struct {
	Items []opfWriteItem `xml:"item"`
}

type opfWriteItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfWriteSpine struct {
	Toc      string            `xml:"toc,attr,omitempty"`
	ItemRefs []opfWriteItemRef `xml:"itemref"`
}

type opfWriteItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

type opfWriteGuide struct {
	References []opfWriteGuideRef `xml:"reference"`
}

type opfWriteGuideRef struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr,omitempty"`
	Href  string `xml:"href,attr"`
}

// WriteOPF serializes the book's package state back to an OPF document.
// Manifest, spine and guide come from the mutable Book model; metadata
// elements are carried over from the originally parsed document when one
// exists, with the cover meta reconciled against Metadata.CoverID.
func WriteOPF(book *Book) ([]byte, error) {
	pkg := opfWritePackage{
		Xmlns:    "http://www.idpf.org/2007/opf",
		Version:  book.Version,
		UniqueID: book.UniqueID,
		Metadata: buildWriteMetadata(book),
		Spine:    opfWriteSpine{Toc: book.TocID},
	}
	if pkg.Version == "" {
		pkg.Version = "2.0"
	}

	for _, id := range book.ManifestOrder {
		item, ok := book.Manifest[id]
		if !ok {
			continue
		}
		pkg.Manifest.Items = append(pkg.Manifest.Items, opfWriteItem{
			ID:         item.ID,
			Href:       item.Href,
			MediaType:  item.MediaType,
			Properties: strings.Join(item.Properties, " "),
		})
	}

	for _, ref := range book.Spine {
		itemRef := opfWriteItemRef{IDRef: ref.IDRef}
		if !ref.Linear {
			itemRef.Linear = "no"
		}
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, itemRef)
	}

	if len(book.Guide) > 0 {
		guide := &opfWriteGuide{}
		for _, ref := range book.Guide {
			guide.References = append(guide.References, opfWriteGuideRef{
				Type:  ref.Type,
				Title: ref.Title,
				Href:  ref.Href,
			})
		}
		pkg.Guide = guide
	}

	out, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize OPF: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// buildWriteMetadata assembles the metadata element. When the book was
// parsed from an OPF, the original element lists are reused so nothing the
// flattened model dropped is lost; books built in memory fall back to the
// flattened Metadata fields.
func buildWriteMetadata(book *Book) opfWriteMetadata {
	md := opfWriteMetadata{
		XmlnsDC:  "http://purl.org/dc/elements/1.1/",
		XmlnsOPF: "http://www.idpf.org/2007/opf",
	}

	if raw := book.rawPkg; raw != nil {
		md.Title = raw.Metadata.Title
		for _, c := range raw.Metadata.Creator {
			md.Creator = append(md.Creator, opfWriteNamed{Name: c.Name, Role: c.Role, ID: c.ID})
		}
		md.Language = raw.Metadata.Language
		for _, id := range raw.Metadata.Identifier {
			md.Identifier = append(md.Identifier, opfWriteIdent{Value: id.Value, ID: id.ID})
		}
		md.Publisher = raw.Metadata.Publisher
		md.Date = raw.Metadata.Date
		md.Description = raw.Metadata.Description
		md.Subject = raw.Metadata.Subject
		md.Rights = raw.Metadata.Rights
		for _, m := range raw.Metadata.Meta {
			if m.Name == "cover" {
				// Re-emitted below from Metadata.CoverID.
				continue
			}
			md.Meta = append(md.Meta, opfWriteMeta{
				Name:     m.Name,
				Content:  m.Content,
				Property: m.Property,
				Refines:  m.Refines,
				Scheme:   m.Scheme,
				Value:    strings.TrimSpace(m.Value),
			})
		}
	} else {
		md.Title = []string{book.Metadata.Title}
		for _, c := range book.Metadata.Creators {
			md.Creator = append(md.Creator, opfWriteNamed{Name: c.Name, Role: c.Role})
		}
		if book.Metadata.Language != "" {
			md.Language = []string{book.Metadata.Language}
		}
		if book.Metadata.Identifier != "" {
			md.Identifier = []opfWriteIdent{{Value: book.Metadata.Identifier, ID: book.UniqueID}}
		}
		if book.Metadata.Publisher != "" {
			md.Publisher = []string{book.Metadata.Publisher}
		}
		if book.Metadata.Date != "" {
			md.Date = []string{book.Metadata.Date}
		}
		if book.Metadata.Description != "" {
			md.Description = []string{book.Metadata.Description}
		}
		md.Subject = book.Metadata.Subjects
		if book.Metadata.Rights != "" {
			md.Rights = []string{book.Metadata.Rights}
		}
		if book.Metadata.Series != "" {
			md.Meta = append(md.Meta, opfWriteMeta{Name: "calibre:series", Content: book.Metadata.Series})
		}
		if book.Metadata.SeriesIndex != "" {
			md.Meta = append(md.Meta, opfWriteMeta{Name: "calibre:series_index", Content: book.Metadata.SeriesIndex})
		}
	}

	if book.Metadata.CoverID != "" {
		md.Meta = append(md.Meta, opfWriteMeta{Name: "cover", Content: book.Metadata.CoverID})
	}

	return md
}
